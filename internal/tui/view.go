package tui

import (
	"fmt"
	"strings"

	"github.com/bbernhard/leaf-playground/internal/submission"
)

const barWidth = 20

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.title.Render("Wheat Disease Detection"))
	b.WriteString("\n")

	b.WriteString(m.styles.muted.Render("Drag a wheat leaf image onto the terminal or type its path"))
	b.WriteString("\n")
	b.WriteString(m.styles.input.Render(string(m.input) + "█"))
	b.WriteString("\n")

	if m.notice != "" {
		b.WriteString(m.styles.muted.Render(m.notice))
		b.WriteString("\n")
	}

	if m.session != nil && m.session.File != nil {
		f := m.session.File
		b.WriteString(fmt.Sprintf("%s %s (%s, %s)\n",
			m.styles.label.Render("Selected Image:"), f.Name, f.MediaType, humanSize(f.Size())))
	}

	b.WriteString("\n")
	b.WriteString(m.renderState(m.State()))

	if m.fatal != nil {
		b.WriteString("\n")
		b.WriteString(m.styles.errorMsg.Render("Session error: " + m.fatal.Error()))
	}

	b.WriteString("\n\n")
	b.WriteString(m.styles.muted.Render("enter: select path / detect disease • ctrl+s: detect • ctrl+u: clear • esc: quit"))
	b.WriteString("\n")
	return b.String()
}

func (m *Model) renderState(state submission.State) string {
	switch state.Kind() {
	case submission.Pending:
		return m.styles.pending.Render(spinnerFrames[m.spinnerFrame] + " Analyzing... Processing image, please wait.")
	case submission.Failed:
		msg, _ := state.Message()
		return m.styles.errorMsg.Render(msg)
	case submission.Succeeded:
		result, _ := state.Result()
		var b strings.Builder
		b.WriteString(m.styles.label.Render("Analysis Results"))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("%s %s\n", m.styles.label.Render("Status:"), m.styles.success.Render(result.TopLabel)))
		b.WriteString(fmt.Sprintf("%s %s\n\n", m.styles.label.Render("Confidence:"), submission.Percent(result.Confidence)))
		b.WriteString(m.styles.label.Render("Detailed Predictions:"))
		for _, score := range submission.SortedScores(result.PerClassScores) {
			b.WriteString(fmt.Sprintf("\n  %-16s %s %s", score.Label, m.renderBar(score.Score), submission.Percent(score.Score)))
		}
		if result.ResultImageLocation != "" {
			b.WriteString(fmt.Sprintf("\n\n%s %s", m.styles.label.Render("Processed Image:"), result.ResultImageLocation))
		}
		return m.styles.box.Render(b.String())
	}
	return m.styles.muted.Render("Press enter to detect disease")
}

func (m *Model) renderBar(score float64) string {
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	filled := int(score * barWidth)
	return m.styles.bar.Render(strings.Repeat("█", filled)) + m.styles.muted.Render(strings.Repeat("░", barWidth-filled))
}
