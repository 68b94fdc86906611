// Package tasks runs detached units of work that outlive the request that started them.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sourcegraph/conc/panics"
)

// ErrStopped is returned by the handle of a task submitted after Shutdown began.
var ErrStopped = errors.New("task submitter stopped")

// Submitter schedules fn to run independently of the caller.
type Submitter interface {
	Submit(name string, fn func(ctx context.Context) error) Handle
}

// Handle observes one submitted task.
type Handle interface {
	Done() <-chan struct{}
	// Wait blocks until the task finished and returns its error.
	Wait() error
}

// Recorder is told when tasks start and finish.
type Recorder interface {
	TaskStarted()
	TaskFinished()
}

type nopRecorder struct{}

func (nopRecorder) TaskStarted()  {}
func (nopRecorder) TaskFinished() {}

// GoSubmitter runs every task on its own goroutine with a fresh background
// context. There is no pool and no queue.
type GoSubmitter struct {
	Logger  *slog.Logger
	Metrics Recorder

	mu      sync.Mutex
	stopped bool
	active  int
	idle    chan struct{} // closed when active drops to zero
}

func NewGoSubmitter(logger *slog.Logger) *GoSubmitter {
	return &GoSubmitter{Logger: logger}
}

type handle struct {
	done chan struct{}
	err  error
}

func (h *handle) Done() <-chan struct{} { return h.done }

func (h *handle) Wait() error {
	<-h.done
	return h.err
}

func (s *GoSubmitter) Submit(name string, fn func(ctx context.Context) error) Handle {
	h := &handle{done: make(chan struct{})}
	rec := s.recorder()
	log := s.log()

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		log.Warn("task rejected during shutdown", "task", name)
		h.err = fmt.Errorf("task %s: %w", name, ErrStopped)
		close(h.done)
		return h
	}
	if s.active == 0 {
		s.idle = make(chan struct{})
	}
	s.active++
	s.mu.Unlock()

	rec.TaskStarted()
	go func() {
		defer s.finished()
		defer rec.TaskFinished()
		defer close(h.done)

		var err error
		if r := panics.Try(func() { err = fn(context.Background()) }); r != nil {
			err = fmt.Errorf("task %s panicked: %w", name, r.AsError())
			log.Error("background task panicked", "task", name, "panic", r.Value, "stack", string(r.Stack))
		} else if err != nil {
			log.Error("background task failed", "task", name, "error", err)
		}
		h.err = err
	}()
	return h
}

func (s *GoSubmitter) finished() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active--
	if s.active == 0 {
		close(s.idle)
	}
}

// Wait blocks until every task submitted so far finished or ctx is done.
// New tasks are still accepted.
func (s *GoSubmitter) Wait(ctx context.Context) error {
	s.mu.Lock()
	if s.active == 0 {
		s.mu.Unlock()
		return nil
	}
	idle := s.idle
	s.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown rejects further tasks with ErrStopped, then waits like Wait.
func (s *GoSubmitter) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	return s.Wait(ctx)
}

func (s *GoSubmitter) log() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *GoSubmitter) recorder() Recorder {
	if s.Metrics != nil {
		return s.Metrics
	}
	return nopRecorder{}
}
