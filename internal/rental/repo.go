package rental

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

type ProductRepo struct{ DB DB }

const productCols = `id, nama, deskripsi, gambar, harga_sewa_perhari, is_available, category_id, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Nama, &p.Deskripsi, &p.Gambar, &p.HargaSewaPerhari,
		&p.IsAvailable, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) GetProduct(ctx context.Context, id int64) (*Product, error) {
	p, err := scanProduct(r.DB.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound("produk", id)
	}
	if err != nil {
		return nil, ErrPersistence("get product", err)
	}
	return p, nil
}

// ListProducts: katalog storefront, hanya produk yang is_available,
// opsional difilter kategori dan kata kunci (nama atau deskripsi).
func (r *ProductRepo) ListProducts(ctx context.Context, f ProductFilter) ([]Product, error) {
	q := `SELECT ` + productCols + ` FROM products WHERE is_available`
	args := []any{}
	if f.CategoryID != nil {
		args = append(args, *f.CategoryID)
		q += fmt.Sprintf(" AND category_id=$%d", len(args))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		q += fmt.Sprintf(" AND (nama ILIKE $%d OR deskripsi ILIKE $%d)", len(args), len(args))
	}
	q += ` ORDER BY id`

	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, ErrPersistence("list products", err)
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, ErrPersistence("scan product", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, ErrPersistence("list products", err)
	}
	return out, nil
}

func (r *ProductRepo) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, nama FROM categories ORDER BY nama`)
	if err != nil {
		return nil, ErrPersistence("list categories", err)
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Nama); err != nil {
			return nil, ErrPersistence("scan category", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
