package submission

import (
	"fmt"

	"github.com/pkg/errors"
)

const (
	NoFileMessage   = "Please select an image first"
	FallbackMessage = "Prediction failed"
)

var (
	ErrNoFileSelected    = errors.New(NoFileMessage)
	ErrSubmissionPending = errors.New("a submission is already pending")
	ErrSessionNotFound   = errors.New("session not found")
)

// TransportError means the endpoint could not be reached or the
// connection failed before a response arrived.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServerError is a non-2xx response. Detail holds the body's "detail"
// field when there was one.
type ServerError struct {
	StatusCode int
	Detail     string
}

func (e *ServerError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("Request failed with status code %d", e.StatusCode)
}

// MalformedResponseError is a 2xx response whose body is not a prediction.
type MalformedResponseError struct {
	StatusCode int
	Reason     string
}

func (e *MalformedResponseError) Error() string {
	return "malformed prediction response: " + e.Reason
}

// ErrorMessage picks the text shown for a failed submission: the server's
// detail first, then the error's own text, then FallbackMessage.
func ErrorMessage(err error) string {
	if err == nil {
		return FallbackMessage
	}

	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return nonEmpty(serverErr.Error())
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return nonEmpty(transportErr.Error())
	}

	var malformedErr *MalformedResponseError
	if errors.As(err, &malformedErr) {
		return nonEmpty(malformedErr.Error())
	}

	return nonEmpty(err.Error())
}

func nonEmpty(msg string) string {
	if msg == "" {
		return FallbackMessage
	}
	return msg
}
