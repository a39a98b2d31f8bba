package cli

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bbernhard/leaf-playground/internal/batch"
	"github.com/bbernhard/leaf-playground/internal/datastructures"
	"github.com/bbernhard/leaf-playground/internal/submission"
	"github.com/pkg/errors"
)

func writePNG(t *testing.T, dir, name string) string {
	t.Helper()
	var buf bytes.Buffer
	ok(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 4, 4))))
	path := filepath.Join(dir, name)
	ok(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func succeeded() submission.State {
	return submission.SucceededState(datastructures.PredictionResult{
		TopLabel:            "Rust",
		Confidence:          0.8125,
		PerClassScores:      map[string]float64{"Rust": 0.8125, "Healthy": 0.1875},
		ResultImageLocation: "http://localhost:8000/static/out.png",
	})
}

func TestWriteText(t *testing.T) {
	outcomes := []batch.Outcome{
		{Job: batch.Job{Index: 0, Path: "a.png"}, State: succeeded()},
		{Job: batch.Job{Index: 1, Path: "b.png"}, State: submission.FailedState("model unavailable")},
		{Job: batch.Job{Index: 2, Path: "c.txt"}, Err: errors.New("File must be an image")},
	}

	var out bytes.Buffer
	writeText(&out, outcomes)
	equals(t, out.String(), `a.png
  Status: Rust
  Confidence: 81.25%
  Detailed Predictions:
    Rust: 81.25%
    Healthy: 18.75%
  Processed Image: http://localhost:8000/static/out.png

b.png
  Error: model unavailable

c.txt
  Error: File must be an image
`)
}

func TestWriteJSON(t *testing.T) {
	outcomes := []batch.Outcome{
		{Job: batch.Job{Path: "a.png"}, State: succeeded()},
		{Job: batch.Job{Path: "b.png"}, State: submission.FailedState("Prediction failed")},
	}

	var out bytes.Buffer
	ok(t, writeJSON(&out, outcomes))

	var decoded []outcomeJSON
	ok(t, json.Unmarshal(out.Bytes(), &decoded))
	equals(t, len(decoded), 2)
	equals(t, decoded[0].Status, "succeeded")
	equals(t, decoded[0].Result.TopLabel, "Rust")
	equals(t, decoded[1].Status, "failed")
	equals(t, decoded[1].Error, "Prediction failed")
	equals(t, decoded[1].Result, (*datastructures.PredictionResult)(nil))
}

func TestPredictCommand(t *testing.T) {
	inference := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		equals(t, r.URL.Path, "/predict/")
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"prediction":{"class":"Healthy","confidence":0.9,"all_predictions":{"Healthy":0.9,"Rust":0.1}},"image_url":"/static/x.png"}`)
	}))
	defer inference.Close()

	path := writePNG(t, t.TempDir(), "leaf.png")

	var out bytes.Buffer
	cmd := NewRootCommand("dev", "none", "unknown")
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"predict", "--server", inference.URL, "--output", "json", path})
	ok(t, cmd.Execute())

	var decoded []outcomeJSON
	ok(t, json.Unmarshal(out.Bytes(), &decoded))
	equals(t, len(decoded), 1)
	equals(t, decoded[0].File, path)
	equals(t, decoded[0].Status, "succeeded")
	equals(t, decoded[0].Result.ResultImageLocation, inference.URL+"/static/x.png")
}

func TestPredictCommandReportsFailures(t *testing.T) {
	inference := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer inference.Close()

	path := writePNG(t, t.TempDir(), "leaf.png")

	var out bytes.Buffer
	cmd := NewRootCommand("dev", "none", "unknown")
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"predict", "--server", inference.URL, path})
	equals(t, cmd.Execute(), errSomeFailed)

	if !strings.Contains(out.String(), "Error: Request failed with status code 503") {
		t.Fatalf("failure not printed:\n%s", out.String())
	}
}

func TestPredictCommandRejectsUnknownFormat(t *testing.T) {
	cmd := NewRootCommand("dev", "none", "unknown")
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"predict", "--output", "xml", "leaf.png"})
	notEquals(t, cmd.Execute(), nil)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := NewRootCommand("1.2.0", "abc123", "2026-10-01")
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	ok(t, cmd.Execute())

	if !strings.HasPrefix(out.String(), "playground 1.2.0 (abc123) built on 2026-10-01\n") {
		t.Fatalf("unexpected version output:\n%s", out.String())
	}
}
