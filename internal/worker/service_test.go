package worker

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	kafkax "github.com/swishwear/storefront/internal/kafka"
	"github.com/swishwear/storefront/internal/orders"
)

func message(t *testing.T, env orders.Envelope) kafkago.Message {
	t.Helper()
	return kafkago.Message{Key: []byte(env.CorrelationID), Value: kafkax.MustMarshal(env)}
}

func TestHandleOrderCreatedRecordsAudit(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := &Service{DB: mock, Name: "storefront-worker", Log: zerolog.Nop()}
	orderID := uuid.NewString()
	env := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderCreated,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      "storefront-api",
		CorrelationID: orderID,
		Payload: kafkax.MustMarshal(orders.OrderCreatedPayload{
			OrderID: orderID, MemberID: 9, TotalSatang: 100000,
		}),
	}

	mock.ExpectExec("INSERT INTO order_events").
		WithArgs(env.EventID, orderID, orders.EventOrderCreated, "", "pending", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, svc.HandleOrderEvent(context.Background(), message(t, env)))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleStatusChangedRecordsOldAndNew(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := &Service{DB: mock, Name: "storefront-worker", Log: zerolog.Nop()}
	orderID := uuid.NewString()
	env := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderStatusChanged,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      "storefront-api",
		CorrelationID: orderID,
		Payload: kafkax.MustMarshal(orders.OrderStatusChangedPayload{
			OrderID: orderID, MemberID: 9,
			OldStatus: orders.StatusVerifying, NewStatus: orders.StatusCompleted,
		}),
	}

	mock.ExpectExec("INSERT INTO order_events").
		WithArgs(env.EventID, orderID, orders.EventOrderStatusChanged, "verifying", "completed", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, svc.HandleOrderEvent(context.Background(), message(t, env)))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleUnknownEventTypeIsIgnored(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := &Service{DB: mock, Name: "storefront-worker", Log: zerolog.Nop()}
	env := orders.Envelope{
		EventID:   uuid.NewString(),
		EventType: "SomethingElse",
		Payload:   []byte(`{}`),
	}

	require.NoError(t, svc.HandleOrderEvent(context.Background(), message(t, env)))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleBadPayloadFails(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := &Service{DB: mock, Name: "storefront-worker", Log: zerolog.Nop()}
	require.Error(t, svc.HandleOrderEvent(context.Background(),
		kafkago.Message{Value: []byte("not json")}))
}
