package catalog

import "time"

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Product struct {
	ID          int64     `json:"id"`
	CategoryID  int64     `json:"categoryId"`
	Name        string    `json:"name"`
	Brand       string    `json:"brand"`
	Description string    `json:"description"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Variant is one purchasable SKU: product + size + color with its own
// stock, price and cost. Prices are satang.
type Variant struct {
	ID          int64  `json:"id"`
	ProductID   int64  `json:"productId"`
	SKU         string `json:"sku"`
	Size        string `json:"size"`
	Color       string `json:"color"`
	Stock       int    `json:"stock"`
	PriceSatang int    `json:"price"`
	CostSatang  int    `json:"cost"`
}

type Picture struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"productId"`
	Path      string `json:"path"`
	SortOrder int    `json:"sortOrder"`
}

// ProductListing is the storefront list view: product plus aggregates
// over its variants.
type ProductListing struct {
	Product
	MinPriceSatang int    `json:"minPrice"`
	MaxPriceSatang int    `json:"maxPrice"`
	TotalStock     int    `json:"totalStock"`
	CoverPath      string `json:"coverPath"`
}

type ProductDetail struct {
	Product
	Variants []Variant `json:"variants"`
	Pictures []Picture `json:"pictures"`
}
