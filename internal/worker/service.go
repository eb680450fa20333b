package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/swishwear/storefront/internal/kafka"
	"github.com/swishwear/storefront/internal/orders"
	"github.com/swishwear/storefront/internal/postgres"
	"github.com/swishwear/storefront/internal/redisx"
)

// Service trails the order topics: every event lands in the order_events
// audit table and status changes evict the cached status. Duplicate
// deliveries are dropped via a redis dedup key, with the audit table's
// unique event_id as the durable backstop.
type Service struct {
	DB    postgres.DB
	Redis *redis.Client
	Name  string
	Log   zerolog.Logger
}

func (s *Service) HandleOrderEvent(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	if s.Redis != nil {
		dkey := fmt.Sprintf(redisx.KeyDedup, s.Name, env.EventID)
		if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
			return nil
		}
		_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
	}

	switch env.EventType {
	case orders.EventOrderCreated:
		p, err := kafkax.UnwrapPayload[orders.OrderCreatedPayload](env.Payload)
		if err != nil {
			return err
		}
		return s.record(ctx, env, p.OrderID, "", orders.StatusPending)
	case orders.EventOrderStatusChanged:
		p, err := kafkax.UnwrapPayload[orders.OrderStatusChangedPayload](env.Payload)
		if err != nil {
			return err
		}
		if err := s.record(ctx, env, p.OrderID, p.OldStatus, p.NewStatus); err != nil {
			return err
		}
		// drop the stale cached status so the next read hits the DB
		if s.Redis != nil {
			_ = s.Redis.Del(ctx, fmt.Sprintf(redisx.KeyOrderStatus, p.OrderID)).Err()
		}
		return nil
	default:
		s.Log.Debug().Str("event_type", env.EventType).Msg("ignoring event")
		return nil
	}
}

func (s *Service) record(ctx context.Context, env orders.Envelope, orderID string, old, next orders.Status) error {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO order_events (event_id, order_id, event_type, old_status, new_status, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (event_id) DO NOTHING`,
		env.EventID, orderID, env.EventType, string(old), string(next), env.OccurredAt)
	return err
}
