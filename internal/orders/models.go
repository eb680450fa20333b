package orders

import "time"

type Order struct {
	ID          string    `json:"id"`
	MemberID    int64     `json:"memberId"`
	Status      Status    `json:"status"`
	TotalSatang int       `json:"total"`
	AdminNote   string    `json:"adminNote"`
	SlipPath    string    `json:"slipPath"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Line snapshots quantity, unit price and unit cost as captured at order
// time, decoupled from the live variant price.
type Line struct {
	ID          int64  `json:"id"`
	OrderID     string `json:"orderId"`
	VariantID   int64  `json:"variantId"`
	Qty         int    `json:"quantity"`
	PriceSatang int    `json:"price"`
	CostSatang  int    `json:"cost"`
}

type OrderWithLines struct {
	Order
	Lines []Line `json:"lines"`
}

// LineInput is one requested line at checkout. UnitPriceSatang comes from
// the client and is advisory only: the server recomputes the total from
// variant prices read under the row lock.
type LineInput struct {
	VariantID       int64 `json:"variantId"`
	Qty             int   `json:"quantity"`
	UnitPriceSatang int   `json:"unitPrice"`
}

type CreatedOrder struct {
	ID          string
	TotalSatang int
	CreatedAt   time.Time
}
