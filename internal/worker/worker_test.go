package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRefresher struct {
	mu    sync.Mutex
	calls map[string]int
	fail  map[string]bool
}

func newStubRefresher(fail ...string) *stubRefresher {
	r := &stubRefresher{calls: make(map[string]int), fail: make(map[string]bool)}
	for _, u := range fail {
		r.fail[u] = true
	}
	return r
}

func (r *stubRefresher) Refresh(ctx context.Context, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[url]++
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("refresh must run with a deadline")
	}
	if r.fail[url] {
		return errors.New("boom")
	}
	return nil
}

func (r *stubRefresher) count(url string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[url]
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWorker_RunOnce(t *testing.T) {
	r := newStubRefresher("u2")
	w := New(r, []string{"u1", "u2", "u3"}, time.Minute, time.Second, discardLogger())

	failed := w.RunOnce(context.Background())

	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, r.count("u1"))
	assert.Equal(t, 1, r.count("u2"))
	assert.Equal(t, 1, r.count("u3"))
}

func TestWorker_StartRefreshesPeriodicallyUntilStopped(t *testing.T) {
	r := newStubRefresher()
	w := New(r, []string{"u1"}, 20*time.Millisecond, time.Second, discardLogger())

	require.NoError(t, w.Start(context.Background()))
	require.Eventually(t, func() bool { return r.count("u1") >= 3 }, time.Second, 5*time.Millisecond)
	w.Stop()

	after := r.count("u1")
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, after, r.count("u1"))
}

func TestWorker_StopWithoutStart(t *testing.T) {
	w := New(newStubRefresher(), nil, time.Minute, time.Second, discardLogger())
	assert.NotPanics(t, w.Stop)
	assert.Equal(t, time.Minute, w.Interval())
	assert.Empty(t, w.URLs())
}

func TestWorker_StartRejectsNonPositiveInterval(t *testing.T) {
	for _, interval := range []time.Duration{0, -time.Second} {
		r := newStubRefresher()
		w := New(r, []string{"u1"}, interval, time.Second, discardLogger())

		err := w.Start(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "interval must be positive")
		assert.NotPanics(t, w.Stop)
		assert.Equal(t, 0, r.count("u1"))
	}
}
