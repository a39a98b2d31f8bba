package submission

import (
	"encoding/json"

	"github.com/bbernhard/leaf-playground/internal/datastructures"
	"github.com/gofrs/uuid"
)

// Machine is the transition table of a session, kept free of any I/O so
// every surface drives it the same way.
//
//	Idle/Failed/Succeeded --Begin(no file)--> Failed
//	Idle/Failed/Succeeded --Begin(file)-----> Pending
//	Pending --Settle(ok)--------------------> Succeeded
//	Pending --Settle(err)-------------------> Failed
//	any -------Select-----------------------> Idle
//
// Each Pending state carries a ticket; Settle with any other ticket is a
// stale response and changes nothing.
type Machine struct {
	state  State
	ticket string
}

func (m Machine) State() State {
	return m.state
}

func (m Machine) Ticket() string {
	return m.ticket
}

// Select is the transition for a new file selection.
func (m Machine) Select() Machine {
	return Machine{state: IdleState()}
}

// Begin starts a submission. It returns ErrSubmissionPending with the
// machine unchanged while a request is in flight, and ErrNoFileSelected
// with the machine in Failed when there is nothing to submit.
func (m Machine) Begin(hasFile bool) (Machine, string, error) {
	if m.state.Kind() == Pending {
		return m, "", ErrSubmissionPending
	}
	if !hasFile {
		return Machine{state: FailedState(NoFileMessage)}, "", ErrNoFileSelected
	}

	ticket := uuid.Must(uuid.NewV4()).String()
	return Machine{state: PendingState(), ticket: ticket}, ticket, nil
}

// Settle applies the outcome of the request identified by ticket. The
// second return value is false when the outcome was stale and dropped.
func (m Machine) Settle(ticket string, result *datastructures.PredictionResult, err error) (Machine, bool) {
	if m.state.Kind() != Pending || ticket == "" || ticket != m.ticket {
		return m, false
	}

	if err != nil {
		return Machine{state: FailedState(ErrorMessage(err))}, true
	}
	if result == nil {
		return Machine{state: FailedState(FallbackMessage)}, true
	}
	return Machine{state: SucceededState(*result)}, true
}

type machineJSON struct {
	State  State  `json:"state"`
	Ticket string `json:"ticket,omitempty"`
}

func (m Machine) MarshalJSON() ([]byte, error) {
	return json.Marshal(machineJSON{State: m.state, Ticket: m.ticket})
}

func (m *Machine) UnmarshalJSON(data []byte) error {
	var in machineJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	m.state = in.State
	m.ticket = in.Ticket
	return nil
}
