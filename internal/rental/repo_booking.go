package rental

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type BookingRepo struct{ DB DB }

const bookingCols = `id, product_id, nama_pemesan, nomor_wa, tanggal_mulai, tanggal_selesai,
	jumlah, durasi_hari, status, total_harga, catatan, created_at, updated_at`

// kode SQLSTATE exclusion_violation dari constraint no-overlap di tabel bookings
const pgExclusionViolation = "23P01"

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	var mulai, selesai time.Time
	err := row.Scan(&b.ID, &b.ProductID, &b.NamaPemesan, &b.NomorWA, &mulai, &selesai,
		&b.Jumlah, &b.DurasiHari, &b.Status, &b.TotalHarga, &b.Catatan, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.TanggalMulai = DateOf(mulai)
	b.TanggalSelesai = DateOf(selesai)
	return &b, nil
}

// ActiveRanges: rentang tanggal semua booking pending/approved utk satu produk.
// Booking rejected/cancelled tidak memblokir tanggal.
func (r *BookingRepo) ActiveRanges(ctx context.Context, productID int64) ([]DateRange, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT tanggal_mulai, tanggal_selesai FROM bookings
		WHERE product_id=$1 AND status IN ('pending','approved')
		ORDER BY tanggal_mulai`, productID)
	if err != nil {
		return nil, ErrPersistence("list booked ranges", err)
	}
	defer rows.Close()

	var out []DateRange
	for rows.Next() {
		var mulai, selesai time.Time
		if err := rows.Scan(&mulai, &selesai); err != nil {
			return nil, ErrPersistence("scan booked range", err)
		}
		out = append(out, DateRange{Mulai: DateOf(mulai), Selesai: DateOf(selesai)})
	}
	if err := rows.Err(); err != nil {
		return nil, ErrPersistence("list booked ranges", err)
	}
	return out, nil
}

func (r *BookingRepo) ListBookings(ctx context.Context) ([]Booking, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+bookingCols+` FROM bookings ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, ErrPersistence("list bookings", err)
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, ErrPersistence("scan booking", err)
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (r *BookingRepo) GetBooking(ctx context.Context, id int64) (*Booking, error) {
	b, err := scanBooking(r.DB.QueryRow(ctx, `SELECT `+bookingCols+` FROM bookings WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound("booking", id)
	}
	if err != nil {
		return nil, ErrPersistence("get booking", err)
	}
	return b, nil
}

// CreateBooking menulis satu booking dalam satu transaksi:
// lock baris produk (FOR UPDATE) -> cek ulang overlap -> insert.
// Lock menyerialisasi cek-lalu-tulis antar request ke produk yang sama;
// constraint exclusion di tabel jadi penjaga terakhir kalau ada yang lolos.
func (r *BookingRepo) CreateBooking(ctx context.Context, b Booking) (*Booking, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, ErrPersistence("begin tx", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	created, err := insertLocked(ctx, tx, b)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, ErrPersistence("commit booking", err)
	}
	return created, nil
}

// CreateCartBookings: satu transaksi untuk seluruh keranjang. Lock produk
// diambil urut id supaya dua checkout yang bersilangan tidak deadlock.
// Kalau satu item konflik, seluruh transaksi di-rollback (all-or-nothing).
func (r *BookingRepo) CreateCartBookings(ctx context.Context, bs []Booking) ([]Booking, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, ErrPersistence("begin tx", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ids := make([]int64, 0, len(bs))
	seen := map[int64]bool{}
	for _, b := range bs {
		if !seen[b.ProductID] {
			seen[b.ProductID] = true
			ids = append(ids, b.ProductID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if err := lockProduct(ctx, tx, id); err != nil {
			return nil, err
		}
	}

	out := make([]Booking, 0, len(bs))
	for i, b := range bs {
		created, err := insertChecked(ctx, tx, b)
		if err != nil {
			if e := asEngineErr(err); e != nil && e.Kind == KindConflict {
				return nil, e.AtItem(i)
			}
			return nil, err
		}
		out = append(out, *created)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, ErrPersistence("commit cart", err)
	}
	return out, nil
}

func lockProduct(ctx context.Context, tx pgx.Tx, productID int64) error {
	var id int64
	err := tx.QueryRow(ctx, `SELECT id FROM products WHERE id=$1 FOR UPDATE`, productID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound("produk", productID)
	}
	if err != nil {
		return ErrPersistence("lock product", err)
	}
	return nil
}

func insertLocked(ctx context.Context, tx pgx.Tx, b Booking) (*Booking, error) {
	if err := lockProduct(ctx, tx, b.ProductID); err != nil {
		return nil, err
	}
	return insertChecked(ctx, tx, b)
}

func insertChecked(ctx context.Context, tx pgx.Tx, b Booking) (*Booking, error) {
	var taken bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE product_id=$1 AND status IN ('pending','approved')
			  AND tanggal_mulai <= $3 AND $2 <= tanggal_selesai
		)`, b.ProductID, b.TanggalMulai.Time(), b.TanggalSelesai.Time()).Scan(&taken)
	if err != nil {
		return nil, ErrPersistence("overlap check", err)
	}
	if taken {
		return nil, ErrConflict(b.ProductID)
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO bookings (product_id, nama_pemesan, nomor_wa, tanggal_mulai, tanggal_selesai,
		                      jumlah, durasi_hari, status, total_harga, catatan)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING `+bookingCols,
		b.ProductID, b.NamaPemesan, b.NomorWA, b.TanggalMulai.Time(), b.TanggalSelesai.Time(),
		b.Jumlah, b.DurasiHari, b.Status, b.TotalHarga, b.Catatan)
	created, err := scanBooking(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgExclusionViolation {
			return nil, ErrConflict(b.ProductID)
		}
		return nil, ErrPersistence("insert booking", err)
	}
	return created, nil
}

// UpdateStatus: transisi status dilakukan admin (di luar engine). Tetap
// divalidasi lewat tabel transisi supaya tidak ada status loncat.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id int64, to Status) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return ErrPersistence("begin tx", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var from Status
	err = tx.QueryRow(ctx, `SELECT status FROM bookings WHERE id=$1 FOR UPDATE`, id).Scan(&from)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound("booking", id)
	}
	if err != nil {
		return ErrPersistence("get booking status", err)
	}
	if !CanTransition(from, to) {
		return ErrValidation(FieldError{Field: "status", Message: string(from) + " -> " + string(to) + " tidak diizinkan"})
	}
	if _, err := tx.Exec(ctx, `UPDATE bookings SET status=$2, updated_at=now() WHERE id=$1`, id, to); err != nil {
		return ErrPersistence("update booking status", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return ErrPersistence("commit status update", err)
	}
	return nil
}
