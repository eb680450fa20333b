package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderStatusChanged = "OrderStatusChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type LineQty struct {
	VariantID int64 `json:"variant_id"`
	Qty       int   `json:"qty"`
}

type OrderCreatedPayload struct {
	OrderID     string    `json:"order_id"`
	MemberID    int64     `json:"member_id"`
	Lines       []LineQty `json:"lines"`
	TotalSatang int       `json:"total_satang"`
}

type OrderStatusChangedPayload struct {
	OrderID   string `json:"order_id"`
	MemberID  int64  `json:"member_id"`
	OldStatus Status `json:"old_status"`
	NewStatus Status `json:"new_status"`
}
