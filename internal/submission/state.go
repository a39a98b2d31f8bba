package submission

import (
	"encoding/json"
	"maps"

	"github.com/bbernhard/leaf-playground/internal/datastructures"
	"github.com/pkg/errors"
)

type Kind int

const (
	Idle Kind = iota
	Pending
	Succeeded
	Failed
)

func (k Kind) String() string {
	switch k {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

func parseKind(s string) (Kind, error) {
	for _, k := range []Kind{Idle, Pending, Succeeded, Failed} {
		if k.String() == s {
			return k, nil
		}
	}
	return Idle, errors.Errorf("unknown submission state %q", s)
}

// State is the submission state of one session. Exactly one variant is
// populated: a result only when Succeeded, a message only when Failed.
// The zero value is Idle.
type State struct {
	kind    Kind
	result  *datastructures.PredictionResult
	message string
}

func IdleState() State {
	return State{kind: Idle}
}

func PendingState() State {
	return State{kind: Pending}
}

func SucceededState(result datastructures.PredictionResult) State {
	result.PerClassScores = maps.Clone(result.PerClassScores)
	return State{kind: Succeeded, result: &result}
}

func FailedState(message string) State {
	return State{kind: Failed, message: message}
}

func (s State) Kind() Kind {
	return s.kind
}

// Result returns a copy of the prediction when the state is Succeeded.
func (s State) Result() (datastructures.PredictionResult, bool) {
	if s.kind != Succeeded || s.result == nil {
		return datastructures.PredictionResult{}, false
	}
	result := *s.result
	result.PerClassScores = maps.Clone(s.result.PerClassScores)
	return result, true
}

// Message returns the error message when the state is Failed.
func (s State) Message() (string, bool) {
	if s.kind != Failed {
		return "", false
	}
	return s.message, true
}

func (s State) String() string {
	switch s.kind {
	case Succeeded:
		return "succeeded(" + s.result.TopLabel + ")"
	case Failed:
		return "failed(" + s.message + ")"
	}
	return s.kind.String()
}

type stateJSON struct {
	Kind    string                           `json:"kind"`
	Result  *datastructures.PredictionResult `json:"result,omitempty"`
	Message string                           `json:"message,omitempty"`
}

func (s State) MarshalJSON() ([]byte, error) {
	out := stateJSON{Kind: s.kind.String()}
	switch s.kind {
	case Succeeded:
		out.Result = s.result
	case Failed:
		out.Message = s.message
	}
	return json.Marshal(out)
}

func (s *State) UnmarshalJSON(data []byte) error {
	var in stateJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	kind, err := parseKind(in.Kind)
	if err != nil {
		return err
	}

	switch kind {
	case Succeeded:
		if in.Result == nil {
			return errors.New("succeeded state without result")
		}
		*s = SucceededState(*in.Result)
	case Failed:
		*s = FailedState(in.Message)
	default:
		*s = State{kind: kind}
	}
	return nil
}
