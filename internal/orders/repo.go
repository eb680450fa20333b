package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/swishwear/storefront/internal/catalog"
	"github.com/swishwear/storefront/internal/postgres"
)

var (
	ErrEmptyOrder = errors.New("order has no items")
	// ErrOrderNotFound covers both a missing order and one the caller does
	// not own; handlers answer 404 either way.
	ErrOrderNotFound = errors.New("order not found")
	// ErrNotCancellable deliberately does not distinguish ownership from
	// wrong-state failures.
	ErrNotCancellable = errors.New("order not found or not cancellable")
	ErrInvalidStatus  = errors.New("invalid status")
)

type Repo struct {
	DB     postgres.DB
	Ledger catalog.Ledger
}

// CreateManual places an order from the given lines in one transaction:
// insert the pending header, then per line lock the variant row, verify
// stock, debit it and snapshot qty/price/cost. Any shortfall rolls the
// whole order back; partial orders are never visible.
func (r *Repo) CreateManual(ctx context.Context, memberID int64, items []LineInput) (*CreatedOrder, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, it := range items {
		if it.Qty <= 0 {
			return nil, errors.New("invalid quantity")
		}
	}

	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	out := CreatedOrder{ID: uuid.NewString()}
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (id, member_id, status, total_satang)
		VALUES ($1, $2, 'pending', 0)
		RETURNING created_at`, out.ID, memberID).Scan(&out.CreatedAt)
	if err != nil {
		return nil, err
	}

	for _, it := range items {
		snap, err := r.Ledger.Reserve(ctx, tx, it.VariantID, it.Qty)
		if err != nil {
			return nil, err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO orderdetails (order_id, variant_id, qty, price_satang, cost_satang)
			VALUES ($1, $2, $3, $4, $5)`,
			out.ID, it.VariantID, it.Qty, snap.PriceSatang, snap.CostSatang); err != nil {
			return nil, err
		}
		out.TotalSatang += it.Qty * snap.PriceSatang
	}

	if _, err := tx.Exec(ctx,
		`UPDATE orders SET total_satang=$2 WHERE id=$1`, out.ID, out.TotalSatang); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConfirmSlip stores the uploaded slip reference, moves the order to
// verifying and clears the matching lines from the member's cart. Stock
// was already debited at creation; none moves here.
func (r *Repo) ConfirmSlip(ctx context.Context, orderID string, memberID int64, slipPath string) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ct, err := tx.Exec(ctx, `
		UPDATE orders SET slip_path=$3, status='verifying', updated_at=now()
		WHERE id=$1 AND member_id=$2 AND status='pending'`,
		orderID, memberID, slipPath)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	if _, err := tx.Exec(ctx, `
		DELETE FROM cartitem USING cart
		WHERE cartitem.cart_id = cart.id AND cart.member_id = $2
		  AND cartitem.variant_id IN (SELECT variant_id FROM orderdetails WHERE order_id = $1)`,
		orderID, memberID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repo) lines(ctx context.Context, q interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}, orderID string) ([]Line, error) {
	rows, err := q.Query(ctx, `
		SELECT id, order_id, variant_id, qty, price_satang, cost_satang
		FROM orderdetails WHERE order_id=$1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.OrderID, &l.VariantID, &l.Qty, &l.PriceSatang, &l.CostSatang); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// CancelPending is the member-initiated cancellation: pending and owned
// only, enforced by the locking query itself. Credits every line back.
func (r *Repo) CancelPending(ctx context.Context, orderID string, memberID int64) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var locked string
	err = tx.QueryRow(ctx, `
		SELECT id FROM orders
		WHERE id=$1 AND member_id=$2 AND status='pending'
		FOR UPDATE`, orderID, memberID).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotCancellable
	}
	if err != nil {
		return err
	}

	ls, err := r.lines(ctx, tx, orderID)
	if err != nil {
		return err
	}
	for _, l := range ls {
		if err := r.Ledger.Credit(ctx, tx, l.VariantID, l.Qty); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(ctx,
		`UPDATE orders SET status='cancelled', updated_at=now() WHERE id=$1`, orderID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// DeletePending hard-deletes an owned pending order before payment. The
// creation-time debit is credited back first so stock does not leak.
func (r *Repo) DeletePending(ctx context.Context, orderID string, memberID int64) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var locked string
	err = tx.QueryRow(ctx, `
		SELECT id FROM orders
		WHERE id=$1 AND member_id=$2 AND status='pending'
		FOR UPDATE`, orderID, memberID).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotCancellable
	}
	if err != nil {
		return err
	}

	ls, err := r.lines(ctx, tx, orderID)
	if err != nil {
		return err
	}
	for _, l := range ls {
		if err := r.Ledger.Credit(ctx, tx, l.VariantID, l.Qty); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(ctx, `DELETE FROM orderdetails WHERE order_id=$1`, orderID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM orders WHERE id=$1`, orderID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repo) scanOrders(rows pgx.Rows) ([]Order, error) {
	defer rows.Close()
	var out []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.MemberID, &o.Status, &o.TotalSatang,
			&o.AdminNote, &o.SlipPath, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *Repo) ListByMember(ctx context.Context, memberID int64) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, member_id, status, total_satang, admin_note, slip_path, created_at, updated_at
		FROM orders WHERE member_id=$1 ORDER BY created_at DESC`, memberID)
	if err != nil {
		return nil, err
	}
	return r.scanOrders(rows)
}

// ListAll is the admin view; status "" means every status.
func (r *Repo) ListAll(ctx context.Context, status Status) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, member_id, status, total_satang, admin_note, slip_path, created_at, updated_at
		FROM orders WHERE ($1 = '' OR status = $1) ORDER BY created_at DESC`, string(status))
	if err != nil {
		return nil, err
	}
	return r.scanOrders(rows)
}

// Get returns the order with its lines. memberID 0 skips the ownership
// check (admin path).
func (r *Repo) Get(ctx context.Context, orderID string, memberID int64) (*OrderWithLines, error) {
	var o OrderWithLines
	err := r.DB.QueryRow(ctx, `
		SELECT id, member_id, status, total_satang, admin_note, slip_path, created_at, updated_at
		FROM orders WHERE id=$1 AND ($2 = 0 OR member_id=$2)`, orderID, memberID).
		Scan(&o.ID, &o.MemberID, &o.Status, &o.TotalSatang,
			&o.AdminNote, &o.SlipPath, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	o.Lines, err = r.lines(ctx, r.DB, orderID)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
