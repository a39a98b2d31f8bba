package submission

import (
	"context"
	"sync"

	"github.com/bbernhard/leaf-playground/internal/commons"
	"github.com/bbernhard/leaf-playground/internal/upload"
	"github.com/gofrs/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Controller owns the request lifecycle of every session in its store.
// Load-modify-save of a session happens under one lock; the network call
// does not.
type Controller struct {
	client Client
	store  Store
	mu     sync.Mutex
}

var _ upload.Selector = (*Controller)(nil)

func NewController(client Client, store Store) *Controller {
	return &Controller{
		client: client,
		store:  store,
	}
}

// NewSession creates an Idle session with no file.
func (c *Controller) NewSession(ctx context.Context) (*Session, error) {
	session := &Session{ID: uuid.Must(uuid.NewV4()).String()}
	if err := c.store.Save(ctx, session); err != nil {
		return nil, errors.Wrap(err, "couldn't save session")
	}
	log.Debug("[Controller] Created session ", session.ID)
	return session, nil
}

func (c *Controller) Session(ctx context.Context, sessionID string) (*Session, error) {
	return c.store.Load(ctx, sessionID)
}

// Select stores file as the session's selection and resets it to Idle,
// whatever state it was in.
func (c *Controller) Select(ctx context.Context, sessionID string, file *upload.SelectedFile) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, err := c.store.Load(ctx, sessionID)
	if err != nil {
		return err
	}

	if session.State().Kind() == Pending {
		log.Debug("[Controller] Selection supersedes pending ticket ", session.Machine.Ticket())
	}

	session.File = file
	session.Machine = session.Machine.Select()
	return c.store.Save(ctx, session)
}

// Attempt is a submission that has entered Pending and still has to be sent.
type Attempt struct {
	controller *Controller
	sessionID  string
	ticket     string
	file       *upload.SelectedFile
}

func (a *Attempt) Ticket() string {
	return a.ticket
}

// Begin moves the session to Pending and returns the attempt to run. The
// attempt is nil when no request must be made: nothing selected (the
// session is now Failed) or a request already in flight.
func (c *Controller) Begin(ctx context.Context, sessionID string) (*Attempt, State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, err := c.store.Load(ctx, sessionID)
	if err != nil {
		return nil, State{}, err
	}

	machine, ticket, err := session.Machine.Begin(session.File != nil)
	switch err {
	case ErrSubmissionPending:
		log.Debug("[Controller] Session ", sessionID, " already pending, ignoring submit")
		return nil, machine.State(), nil
	case ErrNoFileSelected:
		log.Debug("[Controller] Session ", sessionID, " has no file selected")
	}

	session.Machine = machine
	if err := c.store.Save(ctx, session); err != nil {
		return nil, State{}, errors.Wrap(err, "couldn't save session")
	}

	if ticket == "" {
		return nil, machine.State(), nil
	}

	return &Attempt{
		controller: c,
		sessionID:  sessionID,
		ticket:     ticket,
		file:       session.File,
	}, machine.State(), nil
}

// Run sends the request and settles the session. When a newer selection
// or submission superseded the attempt, the response is dropped and the
// current state returned.
func (a *Attempt) Run(ctx context.Context) (State, error) {
	c := a.controller
	logger := log.WithFields(log.Fields{"session": a.sessionID, "ticket": a.ticket})

	result, predictErr := c.client.Predict(ctx, a.file)
	if predictErr != nil {
		logger.Debug("[Controller] Prediction failed: ", predictErr.Error())
		reportFailure(predictErr, a.sessionID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	session, err := c.store.Load(ctx, a.sessionID)
	if err != nil {
		return State{}, err
	}

	machine, applied := session.Machine.Settle(a.ticket, result, predictErr)
	if !applied {
		logger.Debug("[Controller] Dropping stale response")
		return session.State(), nil
	}

	session.Machine = machine
	if err := c.store.Save(ctx, session); err != nil {
		return State{}, errors.Wrap(err, "couldn't save session")
	}
	logger.Debug("[Controller] Session settled as ", machine.State().String())
	return machine.State(), nil
}

// Submit runs Begin and, when a request is due, the attempt. The returned
// error is only ever a store failure; prediction failures end up in the
// Failed state.
func (c *Controller) Submit(ctx context.Context, sessionID string) (State, error) {
	attempt, state, err := c.Begin(ctx, sessionID)
	if err != nil || attempt == nil {
		return state, err
	}
	return attempt.Run(ctx)
}

func reportFailure(err error, sessionID string) {
	var serverErr *ServerError
	var malformedErr *MalformedResponseError
	switch {
	case errors.As(err, &serverErr):
		commons.ReportError(err, map[string]string{"kind": "server", "session": sessionID})
	case errors.As(err, &malformedErr):
		commons.ReportError(err, map[string]string{"kind": "malformed_response", "session": sessionID})
	}
}
