package engine

import (
	"feedloader/internal/domain"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		name   string
		from   State
		ev     event
		want   State
		wantOK bool
	}{
		{"acquire idle", StateIdle, eventAcquire, StateFetching, true},
		{"acquire fetching", StateFetching, eventAcquire, StateFetching, false},
		{"acquire exhausted", StateExhausted, eventAcquire, StateExhausted, false},
		{"has more", StateFetching, eventHasMore, StateIdle, true},
		{"terminal", StateFetching, eventTerminal, StateExhausted, true},
		{"has more without grant", StateIdle, eventHasMore, StateIdle, false},
		{"terminal without grant", StateIdle, eventTerminal, StateIdle, false},
		{"exhausted stays exhausted", StateExhausted, eventHasMore, StateExhausted, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := transition(tt.from, tt.ev)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestGuard_ReleaseByOutcome(t *testing.T) {
	tests := []struct {
		outcome domain.Outcome
		want    State
	}{
		{domain.OutcomeHasMore, StateIdle},
		{domain.OutcomeEmpty, StateExhausted},
		{domain.OutcomePartialLastPage, StateExhausted},
		{domain.OutcomeError, StateExhausted},
	}
	for _, tt := range tests {
		t.Run(tt.outcome.String(), func(t *testing.T) {
			g := NewGuard(false)
			assert.True(t, g.Acquire())
			g.Release(tt.outcome)
			assert.Equal(t, tt.want, g.State())
		})
	}
}

func TestGuard_ExhaustedIsFinal(t *testing.T) {
	g := NewGuard(false)
	assert.True(t, g.Acquire())
	g.Release(domain.OutcomeError)
	for i := 0; i < 10; i++ {
		assert.False(t, g.Acquire())
	}
	assert.True(t, g.Exhausted())
}

func TestGuard_Seeded(t *testing.T) {
	g := NewGuard(true)
	assert.Equal(t, StateExhausted, g.State())
	assert.False(t, g.Acquire())
	blocked, exhausted := g.Flags()
	assert.True(t, blocked)
	assert.True(t, exhausted)
}

func TestGuard_Flags(t *testing.T) {
	g := NewGuard(false)
	blocked, exhausted := g.Flags()
	assert.False(t, blocked)
	assert.False(t, exhausted)

	g.Acquire()
	blocked, exhausted = g.Flags()
	assert.True(t, blocked)
	assert.False(t, exhausted)
}

func TestGuard_ReleaseWithoutGrantPanics(t *testing.T) {
	g := NewGuard(false)
	assert.Panics(t, func() { g.Release(domain.OutcomeHasMore) })

	g.Acquire()
	g.Release(domain.OutcomeHasMore)
	assert.Panics(t, func() { g.Release(domain.OutcomeHasMore) })
}

func TestGuard_ConcurrentAcquireGrantsOnce(t *testing.T) {
	g := NewGuard(false)
	var granted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.Acquire() {
				granted.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), granted.Load())
	assert.Equal(t, StateFetching, g.State())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "fetching", StateFetching.String())
	assert.Equal(t, "exhausted", StateExhausted.String())
	assert.Equal(t, "State(7)", State(7).String())
}
