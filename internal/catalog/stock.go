package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrVariantNotFound = errors.New("variant not found")

// InsufficientStockError names the variant that could not cover the
// requested quantity.
type InsufficientStockError struct {
	VariantID int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for variant %d: requested %d, available %d",
		e.VariantID, e.Requested, e.Available)
}

// Querier is the slice of pgx.Tx the ledger needs. Ledger methods must be
// called with an open transaction: the FOR UPDATE lock they take is held
// until that transaction commits or rolls back.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Snapshot is the variant pricing captured under the row lock at
// reservation time.
type Snapshot struct {
	PriceSatang int
	CostSatang  int
}

// Ledger reads and mutates per-variant stock. Stock never goes negative:
// every mutation locks the variant row first and checks before debiting.
type Ledger struct{}

func (Ledger) lock(ctx context.Context, q Querier, variantID int64) (stock, price, cost int, err error) {
	err = q.QueryRow(ctx,
		`SELECT stock, price_satang, cost_satang FROM product_variants WHERE id=$1 FOR UPDATE`,
		variantID).Scan(&stock, &price, &cost)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, 0, 0, ErrVariantNotFound
	}
	return stock, price, cost, err
}

// Reserve locks the variant row, verifies stock covers qty, debits it and
// returns the price/cost read under the same lock.
func (l Ledger) Reserve(ctx context.Context, q Querier, variantID int64, qty int) (Snapshot, error) {
	stock, price, cost, err := l.lock(ctx, q, variantID)
	if err != nil {
		return Snapshot{}, err
	}
	if stock < qty {
		return Snapshot{}, &InsufficientStockError{VariantID: variantID, Requested: qty, Available: stock}
	}
	_, err = q.Exec(ctx,
		`UPDATE product_variants SET stock = stock - $2 WHERE id=$1`, variantID, qty)
	return Snapshot{PriceSatang: price, CostSatang: cost}, err
}

// Debit is Reserve without the snapshot, used by status reconciliation.
func (l Ledger) Debit(ctx context.Context, q Querier, variantID int64, qty int) error {
	_, err := l.Reserve(ctx, q, variantID, qty)
	return err
}

// Credit returns qty units to the variant's stock.
func (l Ledger) Credit(ctx context.Context, q Querier, variantID int64, qty int) error {
	if _, _, _, err := l.lock(ctx, q, variantID); err != nil {
		return err
	}
	_, err := q.Exec(ctx,
		`UPDATE product_variants SET stock = stock + $2 WHERE id=$1`, variantID, qty)
	return err
}
