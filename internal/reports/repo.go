package reports

import (
	"context"
	"time"

	"github.com/swishwear/storefront/internal/postgres"
)

// Reports aggregate completed orders only; pending, verifying and
// cancelled orders carry no realized revenue.

type DailySales struct {
	Day           time.Time `json:"day"`
	Orders        int       `json:"orders"`
	RevenueSatang int       `json:"revenue"`
	CostSatang    int       `json:"cost"`
	ProfitSatang  int       `json:"profit"`
}

type TopVariant struct {
	VariantID     int64  `json:"variantId"`
	ProductName   string `json:"productName"`
	Size          string `json:"size"`
	Color         string `json:"color"`
	UnitsSold     int    `json:"unitsSold"`
	RevenueSatang int    `json:"revenue"`
}

type Repo struct{ DB postgres.DB }

func (r *Repo) SalesByDay(ctx context.Context, from, to time.Time) ([]DailySales, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT date_trunc('day', o.created_at)::date AS day,
		       COUNT(DISTINCT o.id),
		       COALESCE(SUM(d.qty * d.price_satang), 0),
		       COALESCE(SUM(d.qty * d.cost_satang), 0)
		FROM orders o
		JOIN orderdetails d ON d.order_id = o.id
		WHERE o.status = 'completed' AND o.created_at >= $1 AND o.created_at < $2
		GROUP BY 1
		ORDER BY 1`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DailySales
	for rows.Next() {
		var d DailySales
		if err := rows.Scan(&d.Day, &d.Orders, &d.RevenueSatang, &d.CostSatang); err != nil {
			return nil, err
		}
		d.ProfitSatang = d.RevenueSatang - d.CostSatang
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *Repo) TopVariants(ctx context.Context, from, to time.Time, limit int) ([]TopVariant, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT d.variant_id, p.name, v.size, v.color,
		       SUM(d.qty), SUM(d.qty * d.price_satang)
		FROM orders o
		JOIN orderdetails d ON d.order_id = o.id
		JOIN product_variants v ON v.id = d.variant_id
		JOIN products p ON p.id = v.product_id
		WHERE o.status = 'completed' AND o.created_at >= $1 AND o.created_at < $2
		GROUP BY d.variant_id, p.name, v.size, v.color
		ORDER BY SUM(d.qty) DESC
		LIMIT $3`, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TopVariant
	for rows.Next() {
		var t TopVariant
		if err := rows.Scan(&t.VariantID, &t.ProductName, &t.Size, &t.Color,
			&t.UnitsSold, &t.RevenueSatang); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
