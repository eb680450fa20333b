package orders

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

// Transition is the outcome of an admin status change, for event
// publication and cache invalidation.
type Transition struct {
	OrderID   string
	MemberID  int64
	OldStatus Status
	NewStatus Status
}

// SetStatus applies an admin status change with stock reconciliation in
// one transaction. The order row is locked first so the old status the
// decision is based on cannot move underneath; every affected variant row
// is locked by the ledger. A debit shortfall aborts the whole change.
func (r *Repo) SetStatus(ctx context.Context, orderID string, next Status, adminNote string) (*Transition, error) {
	if !next.Valid() {
		return nil, ErrInvalidStatus
	}

	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	t := Transition{OrderID: orderID, NewStatus: next}
	var old string
	err = tx.QueryRow(ctx,
		`SELECT member_id, status FROM orders WHERE id=$1 FOR UPDATE`, orderID).
		Scan(&t.MemberID, &old)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	t.OldStatus = Status(old)

	switch TransitionEffect(t.OldStatus, next) {
	case EffectCredit:
		ls, err := r.lines(ctx, tx, orderID)
		if err != nil {
			return nil, err
		}
		for _, l := range ls {
			if err := r.Ledger.Credit(ctx, tx, l.VariantID, l.Qty); err != nil {
				return nil, err
			}
		}
	case EffectDebit:
		ls, err := r.lines(ctx, tx, orderID)
		if err != nil {
			return nil, err
		}
		for _, l := range ls {
			if err := r.Ledger.Debit(ctx, tx, l.VariantID, l.Qty); err != nil {
				return nil, err
			}
		}
	}

	if _, err := tx.Exec(ctx,
		`UPDATE orders SET status=$2, admin_note=$3, updated_at=now() WHERE id=$1`,
		orderID, string(next), adminNote); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &t, nil
}

// CancelExpiredPending cancels and restocks orders left pending past
// cutoff, each in its own transaction so one poisoned order does not hold
// up the batch. Returns how many were cancelled.
func (r *Repo) CancelExpiredPending(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id FROM orders
		WHERE status='pending' AND created_at < $1
		ORDER BY created_at LIMIT $2`, cutoff, limit)
	if err != nil {
		return 0, err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	n := 0
	for _, id := range ids {
		if err := r.cancelExpired(ctx, id); err != nil {
			if errors.Is(err, ErrNotCancellable) {
				continue // paid or cancelled since the scan
			}
			return n, err
		}
		n++
	}
	return n, nil
}

func (r *Repo) cancelExpired(ctx context.Context, orderID string) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var locked string
	err = tx.QueryRow(ctx,
		`SELECT id FROM orders WHERE id=$1 AND status='pending' FOR UPDATE`, orderID).
		Scan(&locked)
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
	if _, err := tx.Exec(ctx, `
		UPDATE orders SET status='cancelled', admin_note='expired: payment window passed', updated_at=now()
		WHERE id=$1`, orderID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
