package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// writeTimeout bounds a single flush against the store.
const writeTimeout = 10 * time.Second

// Logger is the minimal logging interface the scheduler depends on.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Debug(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(msg string, args ...any)  {}
func (noopLogger) Warn(msg string, args ...any)  {}
func (noopLogger) Error(msg string, args ...any) {}
func (noopLogger) Debug(msg string, args ...any) {}

// SnapshotFunc returns the current in-memory state of one collection,
// ready for JSON serialisation.
type SnapshotFunc func() (any, error)

// Scheduler debounces snapshot writes. The first Schedule after an
// idle period arms a timer; further calls while the timer is pending
// are absorbed, so a burst of mutations costs one write. When the
// timer fires, every registered collection is serialised and written.
// A failed flush is retried on the next cycle; the in-memory state
// stays authoritative throughout.
type Scheduler struct {
	mu      sync.Mutex
	store   Store
	sources map[string]SnapshotFunc
	delay   time.Duration
	timer   *time.Timer
	pending bool
	closed  bool
	logger  Logger

	// test seam
	afterFunc func(d time.Duration, f func()) *time.Timer
}

// NewScheduler creates a debounced writer flushing to the given store
// after delay of inactivity.
func NewScheduler(s Store, delay time.Duration) *Scheduler {
	return &Scheduler{
		store:     s,
		sources:   make(map[string]SnapshotFunc),
		delay:     delay,
		logger:    noopLogger{},
		afterFunc: time.AfterFunc,
	}
}

// SetLogger replaces the no-op logger.
func (s *Scheduler) SetLogger(l Logger) {
	if l != nil {
		s.logger = l
	}
}

// Register adds a collection to the flush set. Must be called before
// the first Schedule.
func (s *Scheduler) Register(collection string, fn SnapshotFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources[collection] = fn
}

// Schedule requests a write. It returns immediately; the write happens
// after the debounce delay. Calls while a write is already pending are
// no-ops.
func (s *Scheduler) Schedule() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.pending {
		return
	}

	s.pending = true
	s.timer = s.afterFunc(s.delay, s.fire)
	s.logger.Debug("snapshot write scheduled", "delay", s.delay)
}

func (s *Scheduler) fire() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.pending = false
	s.mu.Unlock()

	if err := s.Flush(); err != nil {
		s.logger.Error("snapshot flush failed, will retry", "error", err)
		s.Schedule()
	}
}

// Flush serialises every registered collection and writes it to the
// store synchronously.
func (s *Scheduler) Flush() error {
	s.mu.Lock()
	sources := make(map[string]SnapshotFunc, len(s.sources))
	for name, fn := range s.sources {
		sources[name] = fn
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	for name, fn := range sources {
		state, err := fn()
		if err != nil {
			return fmt.Errorf("snapshotting %s: %w", name, err)
		}
		doc, err := json.Marshal(state)
		if err != nil {
			return fmt.Errorf("serialising %s: %w", name, err)
		}
		if err := s.store.WriteSnapshot(ctx, name, doc); err != nil {
			return err
		}
		s.logger.Debug("snapshot written", "collection", name, "bytes", len(doc))
	}
	return nil
}

// Close stops the timer and performs a final synchronous flush so no
// scheduled write is lost on shutdown.
func (s *Scheduler) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	hadPending := s.pending
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()

	if hadPending {
		s.logger.Info("flushing pending snapshot on shutdown")
	}
	return s.Flush()
}
