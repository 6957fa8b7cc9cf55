package queue

import (
	"context"
	"fmt"
	"log"
)

// A Dequeuer hands out jobs to a worker. *Queue satisfies it; tests
// substitute their own.
type Dequeuer interface {
	Dequeue(ctx context.Context) (*Job, error)
}

// A HandlerFunc executes one job.
type HandlerFunc func(ctx context.Context, job *Job) error

// A Worker consumes jobs from a Dequeuer and dispatches them to the
// registered handler for each task name. Handlers run at most once per
// delivery; a handler error is reported through OnFailure and the job
// is dropped, there is no retry here.
type Worker struct {
	src      Dequeuer
	handlers map[string]HandlerFunc

	// OnSuccess and OnFailure, when set, observe the outcome of each
	// dispatched job.
	OnSuccess func(job *Job)
	OnFailure func(job *Job, err error)
}

func NewWorker(src Dequeuer) *Worker {
	return &Worker{
		src:      src,
		handlers: make(map[string]HandlerFunc),
	}
}

// Handle registers the handler for a task name, replacing any previous
// registration.
func (w *Worker) Handle(name string, fn HandlerFunc) {
	w.handlers[name] = fn
}

// Run consumes jobs until the context is cancelled or the Dequeuer
// fails.
func (w *Worker) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		job, err := w.src.Dequeue(ctx)
		if err != nil {
			return err
		}
		if job == nil {
			continue
		}
		w.dispatch(ctx, job)
	}
}

func (w *Worker) dispatch(ctx context.Context, job *Job) {
	fn, ok := w.handlers[job.Name]
	if !ok {
		w.fail(job, fmt.Errorf("unknown task: %q", job.Name))
		return
	}
	log.Printf("worker: job %s: running %s", job.ID, job.Name)
	if err := fn(ctx, job); err != nil {
		w.fail(job, err)
		return
	}
	if w.OnSuccess != nil {
		w.OnSuccess(job)
	}
}

func (w *Worker) fail(job *Job, err error) {
	log.Printf("worker: job %s: %s", job.ID, err)
	if w.OnFailure != nil {
		w.OnFailure(job, err)
	}
}
