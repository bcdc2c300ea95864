package notify

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// EventHandler processes one event. The dispatcher in production.
type EventHandler interface {
	Dispatch(ctx context.Context, ev Event) Report
}

type job struct {
	ctx context.Context
	ev  Event
}

// Runner is a bounded in-process worker pool for post-commit fan-out.
// Notify never blocks: when the queue is full the event is dropped.
type Runner struct {
	handler EventHandler
	log     logrus.FieldLogger
	workers int

	mu     sync.RWMutex
	closed bool
	queue  chan job
	wg     sync.WaitGroup
	once   sync.Once
}

func NewRunner(handler EventHandler, workers, queueSize int, log logrus.FieldLogger) *Runner {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Runner{
		handler: handler,
		log:     log,
		workers: workers,
		queue:   make(chan job, queueSize),
	}
}

// Start launches the workers. Calling it again is a no-op.
func (r *Runner) Start() {
	r.once.Do(func() {
		for i := 0; i < r.workers; i++ {
			r.wg.Add(1)
			go r.work()
		}
	})
}

// Notify enqueues ev for background dispatch and reports whether it was accepted.
// The event runs detached from ctx's cancellation but keeps its values.
func (r *Runner) Notify(ctx context.Context, ev Event) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	log := r.log.WithFields(logrus.Fields{
		"event_id":       ev.ID.String(),
		"appointment_id": ev.Appointment.ID,
	})
	if r.closed {
		log.Warn("notification runner closed, event dropped")
		return false
	}
	select {
	case r.queue <- job{ctx: context.WithoutCancel(ctx), ev: ev}:
		return true
	default:
		log.Error("notification queue full, event dropped")
		return false
	}
}

func (r *Runner) work() {
	defer r.wg.Done()
	for j := range r.queue {
		r.run(j)
	}
}

func (r *Runner) run(j job) {
	defer func() {
		if p := recover(); p != nil {
			r.log.WithFields(logrus.Fields{
				"event_id": j.ev.ID.String(),
				"panic":    p,
			}).Error("notification dispatch panicked")
		}
	}()
	r.handler.Dispatch(j.ctx, j.ev)
}

// Close stops intake and waits for queued events to finish or ctx to expire.
func (r *Runner) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	// workers may never have been started
	r.Start()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
