package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bbernhard/leaf-playground/internal/submission"
	"github.com/bbernhard/leaf-playground/internal/upload"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type tickMsg time.Time

type selectedMsg struct {
	file *upload.SelectedFile
	err  error
}

type settledMsg struct {
	state submission.State
	err   error
}

type droppedMsg struct {
	path string
}

// Model is the terminal surface. Paths typed, pasted or dragged onto the
// terminal go to the upload surface; enter on an empty line submits.
type Model struct {
	ctx        context.Context
	controller *submission.Controller
	surface    *upload.Surface
	sessionID  string
	drops      <-chan string

	session *submission.Session
	input   []rune
	notice  string
	fatal   error

	spinnerFrame int
	quitting     bool
	styles       styles
}

// NewModel creates the model for an existing session. drops may be nil;
// otherwise every path received on it is offered to the surface.
func NewModel(ctx context.Context, controller *submission.Controller, surface *upload.Surface, sessionID string, drops <-chan string) *Model {
	m := &Model{
		ctx:        ctx,
		controller: controller,
		surface:    surface,
		sessionID:  sessionID,
		drops:      drops,
		styles:     newStyles(),
	}
	m.refresh()
	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(tick(), m.waitForDrop())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tickMsg:
		m.spinnerFrame = (m.spinnerFrame + 1) % len(spinnerFrames)
		return m, tick()
	case selectedMsg:
		m.notice = ""
		if msg.err != nil {
			m.notice = rejectionNotice(msg.err)
		}
		m.refresh()
		return m, nil
	case settledMsg:
		if msg.err != nil {
			m.fatal = msg.err
		}
		m.refresh()
		return m, nil
	case droppedMsg:
		return m, tea.Batch(m.selectPath(msg.path), m.waitForDrop())
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyEnter:
		path := cleanPath(string(m.input))
		m.input = nil
		if path == "" {
			return m, m.submit()
		}
		return m, m.selectPath(path)
	case tea.KeyCtrlS:
		return m, m.submit()
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
		return m, nil
	case tea.KeyCtrlU:
		m.input = nil
		return m, nil
	case tea.KeyRunes, tea.KeySpace:
		m.input = append(m.input, msg.Runes...)
		return m, nil
	}
	return m, nil
}

// submit begins synchronously so a second keypress while Pending finds the
// session already in flight and sends nothing.
func (m *Model) submit() tea.Cmd {
	m.notice = ""
	attempt, _, err := m.controller.Begin(m.ctx, m.sessionID)
	if err != nil {
		m.fatal = err
		return nil
	}
	m.refresh()
	if attempt == nil {
		return nil
	}

	ctx := m.ctx
	return func() tea.Msg {
		state, err := attempt.Run(ctx)
		return settledMsg{state: state, err: err}
	}
}

func (m *Model) selectPath(path string) tea.Cmd {
	ctx, surface, sessionID := m.ctx, m.surface, m.sessionID
	return func() tea.Msg {
		file, err := surface.DropPath(ctx, sessionID, path)
		return selectedMsg{file: file, err: err}
	}
}

func (m *Model) waitForDrop() tea.Cmd {
	if m.drops == nil {
		return nil
	}
	drops := m.drops
	return func() tea.Msg {
		path, ok := <-drops
		if !ok {
			return nil
		}
		return droppedMsg{path: path}
	}
}

func (m *Model) refresh() {
	session, err := m.controller.Session(m.ctx, m.sessionID)
	if err != nil {
		m.fatal = err
		return
	}
	m.session = session
}

// State is the submission state the view currently renders.
func (m *Model) State() submission.State {
	if m.session == nil {
		return submission.IdleState()
	}
	return m.session.State()
}

func (m *Model) Err() error {
	return m.fatal
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func rejectionNotice(err error) string {
	switch errors.Cause(err) {
	case upload.ErrNotAnImage:
		return "Not an image, selection ignored"
	case upload.ErrTooManyFiles:
		return "Drop a single file"
	}
	return err.Error()
}

// cleanPath undoes the quoting terminals apply to dragged-in paths.
func cleanPath(raw string) string {
	path := strings.TrimSpace(raw)
	if len(path) >= 2 {
		if (path[0] == '\'' && path[len(path)-1] == '\'') || (path[0] == '"' && path[len(path)-1] == '"') {
			path = path[1 : len(path)-1]
		}
	}
	path = strings.TrimPrefix(path, "file://")
	return strings.ReplaceAll(path, `\ `, " ")
}

func humanSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}
