package notify

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type handlerFunc func(ctx context.Context, ev Event) Report

func (f handlerFunc) Dispatch(ctx context.Context, ev Event) Report { return f(ctx, ev) }

type ctxKey struct{}

func TestRunner_DetachedFromCaller(t *testing.T) {
	log, _ := test.NewNullLogger()
	got := make(chan error, 1)
	vals := make(chan any, 1)
	r := NewRunner(handlerFunc(func(ctx context.Context, ev Event) Report {
		got <- ctx.Err()
		vals <- ctx.Value(ctxKey{})
		return Report{}
	}), 1, 4, log)
	r.Start()

	ctx, cancel := context.WithCancel(context.WithValue(context.Background(), ctxKey{}, "req-1"))
	cancel()
	require.True(t, r.Notify(ctx, Event{}))

	select {
	case err := <-got:
		assert.NoError(t, err)
		assert.Equal(t, "req-1", <-vals)
	case <-time.After(2 * time.Second):
		t.Fatal("event not dispatched")
	}
	require.NoError(t, r.Close(context.Background()))
}

func TestRunner_DropsWhenFull(t *testing.T) {
	log, hook := test.NewNullLogger()
	block := make(chan struct{})
	started := make(chan struct{}, 1)
	r := NewRunner(handlerFunc(func(context.Context, Event) Report {
		started <- struct{}{}
		<-block
		return Report{}
	}), 1, 1, log)
	r.Start()

	require.True(t, r.Notify(context.Background(), Event{}))
	<-started // worker is busy with the first event
	require.True(t, r.Notify(context.Background(), Event{}))
	assert.False(t, r.Notify(context.Background(), Event{}))
	assert.Equal(t, "notification queue full, event dropped", hook.LastEntry().Message)

	close(block)
	require.NoError(t, r.Close(context.Background()))
}

func TestRunner_RecoversPanics(t *testing.T) {
	log, hook := test.NewNullLogger()
	var calls atomic.Int32
	r := NewRunner(handlerFunc(func(context.Context, Event) Report {
		if calls.Add(1) == 1 {
			panic("bad template")
		}
		return Report{}
	}), 1, 4, log)
	r.Start()

	r.Notify(context.Background(), Event{})
	r.Notify(context.Background(), Event{})
	require.NoError(t, r.Close(context.Background()))

	assert.Equal(t, int32(2), calls.Load())
	var panicked bool
	for _, e := range hook.AllEntries() {
		if e.Message == "notification dispatch panicked" {
			panicked = true
		}
	}
	assert.True(t, panicked)
}

func TestRunner_CloseDrainsAndRejects(t *testing.T) {
	log, _ := test.NewNullLogger()
	var (
		mu   sync.Mutex
		done int
	)
	r := NewRunner(handlerFunc(func(context.Context, Event) Report {
		time.Sleep(5 * time.Millisecond)
		mu.Lock()
		done++
		mu.Unlock()
		return Report{}
	}), 2, 16, log)

	for i := 0; i < 10; i++ {
		require.True(t, r.Notify(context.Background(), Event{}))
	}
	r.Start()
	require.NoError(t, r.Close(context.Background()))

	mu.Lock()
	assert.Equal(t, 10, done)
	mu.Unlock()
	assert.False(t, r.Notify(context.Background(), Event{}))
	assert.NoError(t, r.Close(context.Background()))
}

func TestRunner_CloseHonoursDeadline(t *testing.T) {
	log, _ := test.NewNullLogger()
	block := make(chan struct{})
	defer close(block)
	r := NewRunner(handlerFunc(func(context.Context, Event) Report {
		<-block
		return Report{}
	}), 1, 1, log)
	r.Start()
	r.Notify(context.Background(), Event{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Close(ctx), context.DeadlineExceeded)
}
