package member

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/swishwear/storefront/internal/postgres"
)

var (
	ErrEmailTaken = errors.New("email already registered")
	ErrNotFound   = errors.New("member not found")
)

type Repo struct{ DB postgres.DB }

func (r *Repo) Create(ctx context.Context, m Member) (int64, error) {
	var id int64
	err := r.DB.QueryRow(ctx, `
		INSERT INTO member (email, password_hash, name, phone, role, address_line, subdistrict_id)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, 0))
		RETURNING id`,
		m.Email, m.PasswordHash, m.Name, m.Phone, m.Role, m.AddressLine, m.SubdistrictID).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrEmailTaken
		}
		return 0, err
	}
	return id, nil
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (*Member, error) {
	m, err := r.scanOne(r.DB.QueryRow(ctx, `
		SELECT id, email, password_hash, name, phone, role, address_line, COALESCE(subdistrict_id, 0), created_at
		FROM member WHERE email=$1`, email))
	return m, err
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Member, error) {
	m, err := r.scanOne(r.DB.QueryRow(ctx, `
		SELECT id, email, password_hash, name, phone, role, address_line, COALESCE(subdistrict_id, 0), created_at
		FROM member WHERE id=$1`, id))
	return m, err
}

func (r *Repo) scanOne(row pgx.Row) (*Member, error) {
	var m Member
	err := row.Scan(&m.ID, &m.Email, &m.PasswordHash, &m.Name, &m.Phone, &m.Role,
		&m.AddressLine, &m.SubdistrictID, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repo) UpdateProfile(ctx context.Context, id int64, name, phone, addressLine string, subdistrictID int64) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE member SET name=$2, phone=$3, address_line=$4, subdistrict_id=NULLIF($5, 0)
		WHERE id=$1`, id, name, phone, addressLine, subdistrictID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) Provinces(ctx context.Context) ([]Province, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, name_th FROM provinces ORDER BY name_th`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Province
	for rows.Next() {
		var p Province
		if err := rows.Scan(&p.ID, &p.NameTH); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) Districts(ctx context.Context, provinceID int64) ([]District, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, province_id, name_th FROM districts WHERE province_id=$1 ORDER BY name_th`, provinceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []District
	for rows.Next() {
		var d District
		if err := rows.Scan(&d.ID, &d.ProvinceID, &d.NameTH); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *Repo) Subdistricts(ctx context.Context, districtID int64) ([]Subdistrict, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, district_id, name_th, zip_code FROM subdistricts WHERE district_id=$1 ORDER BY name_th`, districtID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Subdistrict
	for rows.Next() {
		var s Subdistrict
		if err := rows.Scan(&s.ID, &s.DistrictID, &s.NameTH, &s.ZipCode); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
