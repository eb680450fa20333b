package sweep

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCanceller struct {
	calls  atomic.Int64
	cutoff atomic.Value
	limit  atomic.Int64
}

func (f *fakeCanceller) CancelExpiredPending(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	f.calls.Add(1)
	f.cutoff.Store(cutoff)
	f.limit.Store(int64(limit))
	return 2, nil
}

func TestSweeperPassesCutoffAndBatch(t *testing.T) {
	fc := &fakeCanceller{}
	s := &Sweeper{Orders: fc, TTL: 30 * time.Minute, Interval: time.Hour, Batch: 50, Log: zerolog.Nop()}

	before := time.Now().Add(-30 * time.Minute)
	s.sweep(context.Background())
	after := time.Now().Add(-30 * time.Minute)

	require.EqualValues(t, 1, fc.calls.Load())
	assert.EqualValues(t, 50, fc.limit.Load())
	cutoff := fc.cutoff.Load().(time.Time)
	assert.False(t, cutoff.Before(before))
	assert.False(t, cutoff.After(after))
}

func TestSweeperRunStopsOnContextCancel(t *testing.T) {
	fc := &fakeCanceller{}
	s := &Sweeper{Orders: fc, TTL: time.Minute, Interval: 5 * time.Millisecond, Batch: 10, Log: zerolog.Nop()}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return fc.calls.Load() >= 2 },
		time.Second, time.Millisecond, "ticker should fire repeatedly")
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
