package appstate

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/weather-state-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRefresher_LoadsOnEveryTick(t *testing.T) {
	f := &mockFetcher{payload: json.RawMessage(`{"name":"Berlin"}`)}
	s, clk := newTestStore(f)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.RunRefresher(ctx, 10*time.Minute)
		close(done)
	}()

	require.NoError(t, clk.BlockUntilContext(ctx, 1))
	assert.Equal(t, 0, f.calls(), "no refresh before the first tick")

	clk.Advance(10 * time.Minute)
	require.Eventually(t, func() bool { return f.calls() == 1 }, time.Second, 5*time.Millisecond)

	clk.Advance(10 * time.Minute)
	require.Eventually(t, func() bool { return f.calls() == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresher did not stop after cancel")
	}
	assert.NotNil(t, s.Snapshot().Weather)
}

func TestRunRefresher_DisabledReturnsImmediately(t *testing.T) {
	f := &mockFetcher{}
	s, _ := newTestStore(f)

	done := make(chan struct{})
	go func() {
		s.RunRefresher(context.Background(), 0)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresher with zero interval should return")
	}
	assert.Equal(t, 0, f.calls())
}

func TestStartBackground_DoneAfterInFlightRefreshFinishes(t *testing.T) {
	gate := make(chan struct{})
	f := &mockFetcher{payload: json.RawMessage(`{"name":"Berlin"}`), gate: gate}
	s, _ := newTestStore(f)

	var notified atomic.Int32
	s.Subscribe(func(domain.State) { notified.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	done := s.StartBackground(ctx, 0)

	require.Eventually(t, func() bool { return f.calls() == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
		t.Fatal("done closed while the startup refresh was still in flight")
	case <-time.After(20 * time.Millisecond):
	}

	gate <- struct{}{}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("background work did not finish")
	}

	assert.Equal(t, int32(2), notified.Load(), "loading and result notifications delivered before done")
	assert.NotNil(t, s.Snapshot().Weather)
}
