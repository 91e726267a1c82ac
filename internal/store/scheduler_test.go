package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeStore records snapshot writes and can be told to fail.
type fakeStore struct {
	mu     sync.Mutex
	writes map[string][][]byte
	fail   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{writes: make(map[string][][]byte)}
}

func (f *fakeStore) ReadSnapshot(ctx context.Context, collection string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	docs := f.writes[collection]
	if len(docs) == 0 {
		return nil, ErrNoSnapshot
	}
	return docs[len(docs)-1], nil
}

func (f *fakeStore) WriteSnapshot(ctx context.Context, collection string, doc []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.writes[collection] = append(f.writes[collection], doc)
	return nil
}

func (f *fakeStore) writeCount(collection string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes[collection])
}

func (f *fakeStore) setFail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = err
}

// fakeClock captures debounce callbacks instead of running real timers.
type fakeClock struct {
	mu        sync.Mutex
	callbacks []func()
}

func (c *fakeClock) afterFunc(d time.Duration, f func()) *time.Timer {
	c.mu.Lock()
	c.callbacks = append(c.callbacks, f)
	c.mu.Unlock()
	t := time.NewTimer(time.Hour)
	t.Stop()
	return t
}

// fireNext runs the oldest captured callback.
func (c *fakeClock) fireNext(t *testing.T) {
	t.Helper()
	c.mu.Lock()
	if len(c.callbacks) == 0 {
		c.mu.Unlock()
		t.Fatal("no pending debounce callback")
	}
	f := c.callbacks[0]
	c.callbacks = c.callbacks[1:]
	c.mu.Unlock()
	f()
}

func (c *fakeClock) pendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.callbacks)
}

func newTestScheduler(fs *fakeStore) (*Scheduler, *fakeClock) {
	clock := &fakeClock{}
	sched := NewScheduler(fs, 2*time.Second)
	sched.afterFunc = clock.afterFunc
	return sched, clock
}

func TestScheduler_BurstCoalescesToOneWrite(t *testing.T) {
	fs := newFakeStore()
	sched, clock := newTestScheduler(fs)

	state := []string{"a"}
	sched.Register(CollectionDevices, func() (any, error) { return state, nil })

	// A burst of mutations schedules exactly one timer.
	sched.Schedule()
	state = append(state, "b")
	sched.Schedule()
	state = append(state, "c")
	sched.Schedule()

	if got := clock.pendingCount(); got != 1 {
		t.Fatalf("pending callbacks = %d, want 1", got)
	}
	if fs.writeCount(CollectionDevices) != 0 {
		t.Fatal("no write should happen before the timer fires")
	}

	clock.fireNext(t)

	if fs.writeCount(CollectionDevices) != 1 {
		t.Fatalf("writes = %d, want 1 cumulative write", fs.writeCount(CollectionDevices))
	}

	// The written document reflects the latest state, not the first.
	doc, _ := fs.ReadSnapshot(context.Background(), CollectionDevices)
	var got []string
	if err := json.Unmarshal(doc, &got); err != nil {
		t.Fatalf("unmarshal written doc: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("written state = %v, want all 3 entries", got)
	}
}

func TestScheduler_ReschedulesAfterFlush(t *testing.T) {
	fs := newFakeStore()
	sched, clock := newTestScheduler(fs)
	sched.Register(CollectionDevices, func() (any, error) { return []string{}, nil })

	sched.Schedule()
	clock.fireNext(t)

	// A new mutation after a flush arms a fresh timer.
	sched.Schedule()
	if got := clock.pendingCount(); got != 1 {
		t.Fatalf("pending callbacks = %d, want 1", got)
	}
	clock.fireNext(t)

	if fs.writeCount(CollectionDevices) != 2 {
		t.Errorf("writes = %d, want 2", fs.writeCount(CollectionDevices))
	}
}

func TestScheduler_RetriesFailedFlush(t *testing.T) {
	fs := newFakeStore()
	sched, clock := newTestScheduler(fs)
	sched.Register(CollectionDevices, func() (any, error) { return []string{"a"}, nil })

	fs.setFail(errors.New("disk full"))
	sched.Schedule()
	clock.fireNext(t)

	if fs.writeCount(CollectionDevices) != 0 {
		t.Fatal("failed write should not be recorded")
	}
	// The failure re-armed the timer.
	if got := clock.pendingCount(); got != 1 {
		t.Fatalf("pending callbacks = %d, want retry scheduled", got)
	}

	fs.setFail(nil)
	clock.fireNext(t)

	if fs.writeCount(CollectionDevices) != 1 {
		t.Errorf("writes = %d, want 1 after retry", fs.writeCount(CollectionDevices))
	}
}

func TestScheduler_FlushWritesAllCollections(t *testing.T) {
	fs := newFakeStore()
	sched, _ := newTestScheduler(fs)
	sched.Register(CollectionDevices, func() (any, error) { return []string{"d"}, nil })
	sched.Register(CollectionRooms, func() (any, error) { return []string{"r"}, nil })

	if err := sched.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	if fs.writeCount(CollectionDevices) != 1 || fs.writeCount(CollectionRooms) != 1 {
		t.Errorf("writes = devices:%d rooms:%d, want 1 each",
			fs.writeCount(CollectionDevices), fs.writeCount(CollectionRooms))
	}
}

func TestScheduler_FlushSourceError(t *testing.T) {
	fs := newFakeStore()
	sched, _ := newTestScheduler(fs)
	sched.Register(CollectionDevices, func() (any, error) {
		return nil, errors.New("boom")
	})

	if err := sched.Flush(); err == nil {
		t.Error("Flush() should surface snapshot source errors")
	}
}

func TestScheduler_CloseFlushesPendingWrite(t *testing.T) {
	fs := newFakeStore()
	sched, _ := newTestScheduler(fs)
	sched.Register(CollectionDevices, func() (any, error) { return []string{"a"}, nil })

	sched.Schedule()

	if err := sched.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if fs.writeCount(CollectionDevices) != 1 {
		t.Errorf("writes = %d, want final flush on close", fs.writeCount(CollectionDevices))
	}

	// Schedule after Close is ignored.
	sched.Schedule()
	if fs.writeCount(CollectionDevices) != 1 {
		t.Error("Schedule after Close must be a no-op")
	}
}

func TestScheduler_CloseIsIdempotent(t *testing.T) {
	fs := newFakeStore()
	sched, _ := newTestScheduler(fs)
	sched.Register(CollectionDevices, func() (any, error) { return []string{}, nil })

	if err := sched.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := sched.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if fs.writeCount(CollectionDevices) != 1 {
		t.Errorf("writes = %d, want exactly 1", fs.writeCount(CollectionDevices))
	}
}
