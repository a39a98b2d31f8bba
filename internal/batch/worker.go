package batch

import (
	"context"
	"sort"

	"github.com/bbernhard/leaf-playground/internal/submission"
	"github.com/bbernhard/leaf-playground/internal/upload"
	log "github.com/sirupsen/logrus"
)

// Job holds the attributes needed to perform unit of work.
type Job struct {
	Index int
	Path  string
}

// Outcome is the settled state of one job. Err is set when the file never
// made it to a submission (unreadable, not an image) or the store failed.
type Outcome struct {
	Job       Job
	SessionID string
	File      *upload.SelectedFile
	State     submission.State
	Err       error
}

// NewWorker creates takes a numeric id and a channel w/ worker pool.
func NewWorker(id int, workerPool chan chan Job, controller *submission.Controller, surface *upload.Surface, results chan<- Outcome) Worker {
	return Worker{
		id:         id,
		jobQueue:   make(chan Job),
		workerPool: workerPool,
		quitChan:   make(chan bool),
		controller: controller,
		surface:    surface,
		results:    results,
	}
}

// Worker runs one session per job, so each session still has at most one
// request in flight.
type Worker struct {
	id         int
	jobQueue   chan Job
	workerPool chan chan Job
	quitChan   chan bool
	controller *submission.Controller
	surface    *upload.Surface
	results    chan<- Outcome
}

func (w Worker) start(ctx context.Context) {
	log.Debug("[Worker] Worker ", w.id, " starting")

	go func() {
		for {
			// Add my jobQueue to the worker pool.
			w.workerPool <- w.jobQueue

			select {
			case job := <-w.jobQueue:
				// Dispatcher has added a job to my jobQueue.
				w.results <- w.process(ctx, job)

			case <-w.quitChan:
				// We have been asked to stop.
				log.Debug("[Worker] Worker ", w.id, " stopping")
				return
			}
		}
	}()
}

func (w Worker) process(ctx context.Context, job Job) Outcome {
	outcome := Outcome{Job: job}

	session, err := w.controller.NewSession(ctx)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	outcome.SessionID = session.ID

	file, err := w.surface.DropPath(ctx, session.ID, job.Path)
	if err != nil {
		log.Debug("[Worker] Couldn't select ", job.Path, ": ", err.Error())
		outcome.Err = err
		return outcome
	}
	outcome.File = file

	state, err := w.controller.Submit(ctx, session.ID)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	outcome.State = state
	return outcome
}

func (w Worker) stop() {
	go func() {
		w.quitChan <- true
	}()
}

// NewDispatcher creates, and returns a new Dispatcher object.
func NewDispatcher(jobQueue chan Job, maxWorkers int) *Dispatcher {
	workerPool := make(chan chan Job, maxWorkers)

	return &Dispatcher{
		jobQueue:   jobQueue,
		maxWorkers: maxWorkers,
		workerPool: workerPool,
	}
}

type Dispatcher struct {
	workerPool chan chan Job
	maxWorkers int
	jobQueue   chan Job
	workers    []Worker
}

func (d *Dispatcher) run(ctx context.Context, controller *submission.Controller, surface *upload.Surface, results chan<- Outcome) {
	for i := 0; i < d.maxWorkers; i++ {
		worker := NewWorker(i+1, d.workerPool, controller, surface, results)
		worker.start(ctx)
		d.workers = append(d.workers, worker)
	}

	go d.dispatch()
}

func (d *Dispatcher) dispatch() {
	for job := range d.jobQueue {
		workerJobQueue := <-d.workerPool
		workerJobQueue <- job
	}
}

func (d *Dispatcher) stop() {
	for _, w := range d.workers {
		w.stop()
	}
}

// Run submits every path as its own session over maxWorkers workers and
// returns the outcomes in input order.
func Run(ctx context.Context, controller *submission.Controller, surface *upload.Surface, paths []string, maxWorkers int) []Outcome {
	if maxWorkers < 1 {
		maxWorkers = 1
	}

	results := make(chan Outcome, len(paths))
	jobQueue := make(chan Job, len(paths))

	dispatcher := NewDispatcher(jobQueue, maxWorkers)
	dispatcher.run(ctx, controller, surface, results)

	for i, path := range paths {
		jobQueue <- Job{Index: i, Path: path}
	}
	close(jobQueue)

	outcomes := make([]Outcome, 0, len(paths))
	for range paths {
		outcomes = append(outcomes, <-results)
	}
	dispatcher.stop()

	sort.Slice(outcomes, func(i, j int) bool {
		return outcomes[i].Job.Index < outcomes[j].Job.Index
	})
	return outcomes
}
