package rental

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBookingRepoMock(t *testing.T) (pgxmock.PgxPoolIface, *BookingRepo) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, &BookingRepo{DB: mock}
}

func TestBookingRepoActiveRanges(t *testing.T) {
	mock, repo := newBookingRepoMock(t)

	mock.ExpectQuery("SELECT tanggal_mulai, tanggal_selesai FROM bookings").
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"tanggal_mulai", "tanggal_selesai"}).
			AddRow(time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)).
			AddRow(time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC)))

	ranges, err := repo.ActiveRanges(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, ranges, 2)
	assert.Equal(t, "2024-06-10", ranges[0].Mulai.String())
	assert.Equal(t, "2024-06-12", ranges[0].Selesai.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepoGetBookingNotFound(t *testing.T) {
	mock, repo := newBookingRepoMock(t)

	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id=").
		WithArgs(int64(404)).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetBooking(context.Background(), 404)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func draft(t *testing.T) Booking {
	t.Helper()
	r := rng(t, "2024-06-10", "2024-06-12")
	return Booking{
		ProductID:      1,
		NamaPemesan:    "Budi Santoso",
		NomorWA:        "081234567890",
		TanggalMulai:   r.Mulai,
		TanggalSelesai: r.Selesai,
		Jumlah:         1,
		DurasiHari:     3,
		Status:         StatusPending,
		TotalHarga:     450000,
	}
}

func TestBookingRepoCreateBookingConflictOnRecheck(t *testing.T) {
	mock, repo := newBookingRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM products WHERE id=").
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(1), time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	_, err := repo.CreateBooking(context.Background(), draft(t))
	assert.Equal(t, KindConflict, KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepoCreateBookingExclusionViolation(t *testing.T) {
	// race yang lolos pre-check dan re-check: constraint no-overlap di DB
	// tetap menolak insert dan repo memetakannya ke Conflict
	mock, repo := newBookingRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM products WHERE id=").
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(1), time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery("INSERT INTO bookings").
		WithArgs(int64(1), "Budi Santoso", "081234567890",
			time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC),
			1, 3, StatusPending, int64(450000), (*string)(nil)).
		WillReturnError(&pgconn.PgError{Code: pgExclusionViolation})
	mock.ExpectRollback()

	_, err := repo.CreateBooking(context.Background(), draft(t))
	assert.Equal(t, KindConflict, KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepoCreateBooking(t *testing.T) {
	mock, repo := newBookingRepoMock(t)
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM products WHERE id=").
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(1), time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery("INSERT INTO bookings").
		WithArgs(int64(1), "Budi Santoso", "081234567890",
			time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC),
			1, 3, StatusPending, int64(450000), (*string)(nil)).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "product_id", "nama_pemesan", "nomor_wa", "tanggal_mulai", "tanggal_selesai",
			"jumlah", "durasi_hari", "status", "total_harga", "catatan", "created_at", "updated_at",
		}).AddRow(
			int64(7), int64(1), "Budi Santoso", "081234567890",
			time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC),
			1, 3, StatusPending, int64(450000), (*string)(nil), now, now,
		))
	mock.ExpectCommit()

	b, err := repo.CreateBooking(context.Background(), draft(t))
	require.NoError(t, err)
	assert.Equal(t, int64(7), b.ID)
	assert.Equal(t, StatusPending, b.Status)
	assert.Equal(t, "2024-06-10", b.TanggalMulai.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepoUpdateStatus(t *testing.T) {
	mock, repo := newBookingRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status FROM bookings WHERE id=").
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow(StatusPending))
	mock.ExpectExec("UPDATE bookings SET status=").
		WithArgs(int64(7), StatusApproved).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.UpdateStatus(context.Background(), 7, StatusApproved))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepoUpdateStatusInvalidTransition(t *testing.T) {
	mock, repo := newBookingRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status FROM bookings WHERE id=").
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow(StatusRejected))
	mock.ExpectRollback()

	err := repo.UpdateStatus(context.Background(), 7, StatusApproved)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepoCreateBookingUnknownProduct(t *testing.T) {
	mock, repo := newBookingRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM products WHERE id=").
		WithArgs(int64(99)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	b := draft(t)
	b.ProductID = 99
	_, err := repo.CreateBooking(context.Background(), b)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
