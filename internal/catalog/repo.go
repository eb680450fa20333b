package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/swishwear/storefront/internal/postgres"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrVariantReferenced = errors.New("variant is referenced by orders or carts")
)

type Repo struct{ DB postgres.DB }

func (r *Repo) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, name FROM categories ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListProducts returns active products with variant aggregates for the
// storefront grid. categoryID 0 means all categories.
func (r *Repo) ListProducts(ctx context.Context, categoryID int64) ([]ProductListing, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT p.id, COALESCE(p.category_id, 0), p.name, p.brand, p.description,
		       p.is_active, p.created_at, p.updated_at,
		       COALESCE(MIN(v.price_satang), 0),
		       COALESCE(MAX(v.price_satang), 0),
		       COALESCE(SUM(v.stock), 0),
		       COALESCE((SELECT path FROM product_pictures pic
		                 WHERE pic.product_id = p.id
		                 ORDER BY pic.sort_order, pic.id LIMIT 1), '')
		FROM products p
		LEFT JOIN product_variants v ON v.product_id = p.id
		WHERE p.is_active AND ($1 = 0 OR p.category_id = $1)
		GROUP BY p.id
		ORDER BY p.created_at DESC`, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ProductListing
	for rows.Next() {
		var p ProductListing
		if err := rows.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Brand, &p.Description,
			&p.IsActive, &p.CreatedAt, &p.UpdatedAt,
			&p.MinPriceSatang, &p.MaxPriceSatang, &p.TotalStock, &p.CoverPath); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) GetProduct(ctx context.Context, id int64) (*ProductDetail, error) {
	var d ProductDetail
	err := r.DB.QueryRow(ctx, `
		SELECT id, COALESCE(category_id, 0), name, brand, description, is_active, created_at, updated_at
		FROM products WHERE id=$1`, id).
		Scan(&d.ID, &d.CategoryID, &d.Name, &d.Brand, &d.Description, &d.IsActive, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	vrows, err := r.DB.Query(ctx, `
		SELECT id, product_id, sku, size, color, stock, price_satang, cost_satang
		FROM product_variants WHERE product_id=$1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer vrows.Close()
	for vrows.Next() {
		var v Variant
		if err := vrows.Scan(&v.ID, &v.ProductID, &v.SKU, &v.Size, &v.Color,
			&v.Stock, &v.PriceSatang, &v.CostSatang); err != nil {
			return nil, err
		}
		d.Variants = append(d.Variants, v)
	}
	if err := vrows.Err(); err != nil {
		return nil, err
	}

	prows, err := r.DB.Query(ctx, `
		SELECT id, product_id, path, sort_order
		FROM product_pictures WHERE product_id=$1 ORDER BY sort_order, id`, id)
	if err != nil {
		return nil, err
	}
	defer prows.Close()
	for prows.Next() {
		var p Picture
		if err := prows.Scan(&p.ID, &p.ProductID, &p.Path, &p.SortOrder); err != nil {
			return nil, err
		}
		d.Pictures = append(d.Pictures, p)
	}
	return &d, prows.Err()
}

func (r *Repo) CreateProduct(ctx context.Context, p Product) (int64, error) {
	var id int64
	err := r.DB.QueryRow(ctx, `
		INSERT INTO products (category_id, name, brand, description, is_active)
		VALUES (NULLIF($1, 0), $2, $3, $4, $5)
		RETURNING id`,
		p.CategoryID, p.Name, p.Brand, p.Description, p.IsActive).Scan(&id)
	return id, err
}

func (r *Repo) UpdateProduct(ctx context.Context, p Product) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE products
		SET category_id=NULLIF($2, 0), name=$3, brand=$4, description=$5, is_active=$6, updated_at=now()
		WHERE id=$1`,
		p.ID, p.CategoryID, p.Name, p.Brand, p.Description, p.IsActive)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

// DeleteProduct deactivates rather than removes: orders keep referencing
// the variants.
func (r *Repo) DeleteProduct(ctx context.Context, id int64) error {
	ct, err := r.DB.Exec(ctx, `UPDATE products SET is_active=FALSE, updated_at=now() WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *Repo) CreateVariant(ctx context.Context, v Variant) (int64, error) {
	var id int64
	err := r.DB.QueryRow(ctx, `
		INSERT INTO product_variants (product_id, sku, size, color, stock, price_satang, cost_satang)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		v.ProductID, v.SKU, v.Size, v.Color, v.Stock, v.PriceSatang, v.CostSatang).Scan(&id)
	return id, err
}

func (r *Repo) UpdateVariant(ctx context.Context, v Variant) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE product_variants
		SET sku=$2, size=$3, color=$4, stock=$5, price_satang=$6, cost_satang=$7
		WHERE id=$1`,
		v.ID, v.SKU, v.Size, v.Color, v.Stock, v.PriceSatang, v.CostSatang)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrVariantNotFound
	}
	return nil
}

func (r *Repo) DeleteVariant(ctx context.Context, id int64) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM product_variants WHERE id=$1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrVariantReferenced
		}
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrVariantNotFound
	}
	return nil
}

func (r *Repo) AddPicture(ctx context.Context, productID int64, path string, sortOrder int) (int64, error) {
	var id int64
	err := r.DB.QueryRow(ctx, `
		INSERT INTO product_pictures (product_id, path, sort_order)
		VALUES ($1, $2, $3) RETURNING id`, productID, path, sortOrder).Scan(&id)
	return id, err
}

func (r *Repo) DeletePicture(ctx context.Context, id int64) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM product_pictures WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return errors.New("picture not found")
	}
	return nil
}
