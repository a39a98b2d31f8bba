package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/bbernhard/leaf-playground/internal/batch"
	"github.com/bbernhard/leaf-playground/internal/config"
	"github.com/bbernhard/leaf-playground/internal/datastructures"
	"github.com/bbernhard/leaf-playground/internal/submission"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var errSomeFailed = errors.New("some predictions failed")

func newPredictCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "predict <image>...",
		Short: "Submit images and print their classification",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "text" && output != "json" {
				return errors.Errorf("unknown output format %q", output)
			}

			cfg.Store.Backend = config.BackendMemory
			controller, surface, cleanup, err := newController(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			outcomes := batch.Run(cmd.Context(), controller, surface, args, cfg.Batch.Workers)

			if output == "json" {
				err = writeJSON(cmd.OutOrStdout(), outcomes)
			} else {
				writeText(cmd.OutOrStdout(), outcomes)
			}
			if err != nil {
				return err
			}

			for _, o := range outcomes {
				if o.Err != nil || o.State.Kind() != submission.Succeeded {
					return errSomeFailed
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format (text, json)")
	cmd.Flags().IntP("workers", "w", 2, "number of images submitted concurrently")
	cmd.Flags().Duration("timeout", 0, "timeout for prediction requests (0 waits forever)")
	return cmd
}

type outcomeJSON struct {
	File   string                           `json:"file"`
	Status string                           `json:"status"`
	Result *datastructures.PredictionResult `json:"result,omitempty"`
	Error  string                           `json:"error,omitempty"`
}

func toJSON(o batch.Outcome) outcomeJSON {
	out := outcomeJSON{File: o.Job.Path, Status: o.State.Kind().String()}
	if o.Err != nil {
		out.Status = submission.Failed.String()
		out.Error = o.Err.Error()
		return out
	}
	if result, ok := o.State.Result(); ok {
		out.Result = &result
	}
	if msg, ok := o.State.Message(); ok {
		out.Error = msg
	}
	return out
}

func writeJSON(w io.Writer, outcomes []batch.Outcome) error {
	out := make([]outcomeJSON, 0, len(outcomes))
	for _, o := range outcomes {
		out = append(out, toJSON(o))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeText(w io.Writer, outcomes []batch.Outcome) {
	for i, o := range outcomes {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s\n", o.Job.Path)

		if o.Err != nil {
			fmt.Fprintf(w, "  Error: %s\n", o.Err.Error())
			continue
		}
		if msg, ok := o.State.Message(); ok {
			fmt.Fprintf(w, "  Error: %s\n", msg)
			continue
		}

		result, ok := o.State.Result()
		if !ok {
			fmt.Fprintf(w, "  Status: %s\n", o.State.Kind())
			continue
		}
		fmt.Fprintf(w, "  Status: %s\n", result.TopLabel)
		fmt.Fprintf(w, "  Confidence: %s\n", submission.Percent(result.Confidence))
		fmt.Fprintf(w, "  Detailed Predictions:\n")
		for _, score := range submission.SortedScores(result.PerClassScores) {
			fmt.Fprintf(w, "    %s: %s\n", score.Label, submission.Percent(score.Score))
		}
		if result.ResultImageLocation != "" {
			fmt.Fprintf(w, "  Processed Image: %s\n", result.ResultImageLocation)
		}
	}
}
