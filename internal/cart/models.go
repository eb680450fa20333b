package cart

import "time"

type Item struct {
	ID          int64     `json:"id"`
	VariantID   int64     `json:"variantId"`
	ProductID   int64     `json:"productId"`
	ProductName string    `json:"productName"`
	Size        string    `json:"size"`
	Color       string    `json:"color"`
	Qty         int       `json:"quantity"`
	PriceSatang int       `json:"price"` // snapshot taken when the line was added
	Stock       int       `json:"stock"` // live stock, for the cart page
	AddedAt     time.Time `json:"addedAt"`
}

type Cart struct {
	ID          int64  `json:"id"`
	MemberID    int64  `json:"memberId"`
	Items       []Item `json:"items"`
	TotalSatang int    `json:"total"`
}
