package cart

import (
	"context"
	"errors"

	"github.com/swishwear/storefront/internal/postgres"
)

var (
	ErrItemNotFound    = errors.New("cart item not found")
	ErrVariantNotFound = errors.New("variant not found")
)

type Repo struct{ DB postgres.DB }

// ensure returns the member's cart id, creating the row on first use.
func (r *Repo) ensure(ctx context.Context, memberID int64) (int64, error) {
	var id int64
	err := r.DB.QueryRow(ctx, `
		INSERT INTO cart (member_id) VALUES ($1)
		ON CONFLICT (member_id) DO UPDATE SET updated_at=now()
		RETURNING id`, memberID).Scan(&id)
	return id, err
}

func (r *Repo) Get(ctx context.Context, memberID int64) (*Cart, error) {
	cartID, err := r.ensure(ctx, memberID)
	if err != nil {
		return nil, err
	}
	rows, err := r.DB.Query(ctx, `
		SELECT ci.id, ci.variant_id, p.id, p.name, v.size, v.color,
		       ci.qty, ci.price_satang, v.stock, ci.added_at
		FROM cartitem ci
		JOIN product_variants v ON v.id = ci.variant_id
		JOIN products p ON p.id = v.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.added_at`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	c := Cart{ID: cartID, MemberID: memberID}
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.VariantID, &it.ProductID, &it.ProductName,
			&it.Size, &it.Color, &it.Qty, &it.PriceSatang, &it.Stock, &it.AddedAt); err != nil {
			return nil, err
		}
		c.TotalSatang += it.Qty * it.PriceSatang
		c.Items = append(c.Items, it)
	}
	return &c, rows.Err()
}

// AddItem inserts a line with the variant's current price as snapshot;
// adding the same variant again accumulates the quantity.
func (r *Repo) AddItem(ctx context.Context, memberID, variantID int64, qty int) error {
	cartID, err := r.ensure(ctx, memberID)
	if err != nil {
		return err
	}
	ct, err := r.DB.Exec(ctx, `
		INSERT INTO cartitem (cart_id, variant_id, qty, price_satang)
		SELECT $1, v.id, $3, v.price_satang FROM product_variants v WHERE v.id = $2
		ON CONFLICT (cart_id, variant_id)
		DO UPDATE SET qty = cartitem.qty + EXCLUDED.qty`,
		cartID, variantID, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrVariantNotFound
	}
	return nil
}

func (r *Repo) UpdateItem(ctx context.Context, memberID, itemID int64, qty int) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE cartitem SET qty = $3
		FROM cart
		WHERE cartitem.id = $2 AND cartitem.cart_id = cart.id AND cart.member_id = $1`,
		memberID, itemID, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *Repo) RemoveItem(ctx context.Context, memberID, itemID int64) error {
	ct, err := r.DB.Exec(ctx, `
		DELETE FROM cartitem USING cart
		WHERE cartitem.id = $2 AND cartitem.cart_id = cart.id AND cart.member_id = $1`,
		memberID, itemID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

// Lines returns (variantId, qty, snapshot price) for checkout.
func (r *Repo) Lines(ctx context.Context, memberID int64) ([]Item, error) {
	c, err := r.Get(ctx, memberID)
	if err != nil {
		return nil, err
	}
	return c.Items, nil
}
