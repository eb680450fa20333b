package sweep

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Canceller is implemented by orders.Repo.
type Canceller interface {
	CancelExpiredPending(ctx context.Context, cutoff time.Time, limit int) (int, error)
}

// Sweeper periodically cancels and restocks orders left pending past TTL.
// The QR countdown shown to the member is cosmetic; this is what actually
// frees the debited stock.
type Sweeper struct {
	Orders   Canceller
	TTL      time.Duration
	Interval time.Duration
	Batch    int
	Log      zerolog.Logger
}

// Run blocks until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	t := time.NewTicker(s.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-s.TTL)
	n, err := s.Orders.CancelExpiredPending(ctx, cutoff, s.Batch)
	if err != nil {
		s.Log.Error().Err(err).Msg("sweep expired pending orders")
		return
	}
	if n > 0 {
		s.Log.Info().Int("cancelled", n).Time("cutoff", cutoff).Msg("expired pending orders cancelled")
	}
}
