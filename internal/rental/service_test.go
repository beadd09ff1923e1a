package rental

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore = ProductStore + BookingStore in-memory. CreateBooking memegang
// mutex selama cek-ulang-lalu-tulis, meniru serialisasi FOR UPDATE di repo
// postgres: store tetap jadi otoritas terakhir walau pre-check service lolos.
type memStore struct {
	mu       sync.Mutex
	products map[int64]Product
	bookings []Booking
	nextID   int64
}

func newMemStore(products ...Product) *memStore {
	m := &memStore{products: map[int64]Product{}, nextID: 1}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *memStore) GetProduct(_ context.Context, id int64) (*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound("produk", id)
	}
	return &p, nil
}

func (m *memStore) ListProducts(_ context.Context, f ProductFilter) ([]Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Product
	for _, p := range m.products {
		if !p.IsAvailable {
			continue
		}
		if f.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *f.CategoryID) {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(p.Nama+" "+p.Deskripsi), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *memStore) ListCategories(_ context.Context) ([]Category, error) { return nil, nil }

func (m *memStore) ActiveRanges(_ context.Context, productID int64) ([]DateRange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeRangesLocked(productID), nil
}

func (m *memStore) activeRangesLocked(productID int64) []DateRange {
	var out []DateRange
	for _, b := range m.bookings {
		if b.ProductID == productID && b.Status.Active() {
			out = append(out, DateRange{Mulai: b.TanggalMulai, Selesai: b.TanggalSelesai})
		}
	}
	return out
}

func (m *memStore) ListBookings(_ context.Context) ([]Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Booking, len(m.bookings))
	copy(out, m.bookings)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (m *memStore) GetBooking(_ context.Context, id int64) (*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.ID == id {
			return &b, nil
		}
	}
	return nil, ErrNotFound("booking", id)
}

func (m *memStore) CreateBooking(_ context.Context, b Booking) (*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertLocked(b)
}

func (m *memStore) insertLocked(b Booking) (*Booking, error) {
	r := DateRange{Mulai: b.TanggalMulai, Selesai: b.TanggalSelesai}
	for _, e := range m.activeRangesLocked(b.ProductID) {
		if r.Overlaps(e) {
			return nil, ErrConflict(b.ProductID)
		}
	}
	b.ID = m.nextID
	m.nextID++
	b.CreatedAt = time.Now().UTC()
	b.UpdatedAt = b.CreatedAt
	m.bookings = append(m.bookings, b)
	return &b, nil
}

func (m *memStore) CreateCartBookings(_ context.Context, bs []Booking) ([]Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := len(m.bookings)
	out := make([]Booking, 0, len(bs))
	for i, b := range bs {
		created, err := m.insertLocked(b)
		if err != nil {
			m.bookings = m.bookings[:before] // rollback
			if e := asEngineErr(err); e != nil && e.Kind == KindConflict {
				return nil, e.AtItem(i)
			}
			return nil, err
		}
		out = append(out, *created)
	}
	return out, nil
}

func newTestService(t *testing.T, store *memStore) *Service {
	t.Helper()
	return &Service{
		Products: store,
		Bookings: store,
		Now: func() time.Time {
			return time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
		},
	}
}

func kamera() Product {
	return Product{ID: 1, Nama: "Kamera Sony A7 III", HargaSewaPerhari: 150000, IsAvailable: true}
}

func TestCheckAvailabilityScenarioA(t *testing.T) {
	store := newMemStore(kamera())
	svc := newTestService(t, store)

	av, err := svc.CheckAvailability(context.Background(), 1, rng(t, "2024-06-10", "2024-06-12"))
	require.NoError(t, err)
	assert.True(t, av.Available)
	assert.Equal(t, 3, av.Days)
	assert.Equal(t, int64(450000), av.TotalPrice)
}

func TestCheckAvailabilityScenarioB(t *testing.T) {
	// booking pending [06-10,06-12] memblokir request [06-12,06-14]: 06-12 beririsan
	store := newMemStore(kamera())
	store.bookings = append(store.bookings, seedbookingWithID(t, 1, "2024-06-10", "2024-06-12", StatusPending))
	svc := newTestService(t, store)

	av, err := svc.CheckAvailability(context.Background(), 1, rng(t, "2024-06-12", "2024-06-14"))
	require.NoError(t, err)
	assert.False(t, av.Available)
}

func TestCheckAvailabilityScenarioC(t *testing.T) {
	// sehari setelah booking selesai -> bebas
	store := newMemStore(kamera())
	store.bookings = append(store.bookings, seedbookingWithID(t, 1, "2024-06-10", "2024-06-12", StatusPending))
	svc := newTestService(t, store)

	av, err := svc.CheckAvailability(context.Background(), 1, rng(t, "2024-06-13", "2024-06-15"))
	require.NoError(t, err)
	assert.True(t, av.Available)
	assert.Equal(t, 3, av.Days)
}

func seedbookingWithID(t *testing.T, productID int64, mulai, selesai string, status Status) Booking {
	t.Helper()
	r := rng(t, mulai, selesai)
	return Booking{
		ID:             999,
		ProductID:      productID,
		NamaPemesan:    "Budi Santoso",
		NomorWA:        "081234567890",
		TanggalMulai:   r.Mulai,
		TanggalSelesai: r.Selesai,
		Jumlah:         1,
		DurasiHari:     r.Days(),
		Status:         status,
		TotalHarga:     150000 * int64(r.Days()),
	}
}

func TestCheckAvailabilityIdempotent(t *testing.T) {
	store := newMemStore(kamera())
	svc := newTestService(t, store)
	r := rng(t, "2024-06-10", "2024-06-12")

	first, err := svc.CheckAvailability(context.Background(), 1, r)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := svc.CheckAvailability(context.Background(), 1, r)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Empty(t, store.bookings, "cek ketersediaan tidak boleh menulis")
}

func TestCheckAvailabilityCancelledDoesNotBlock(t *testing.T) {
	store := newMemStore(kamera())
	store.bookings = append(store.bookings,
		seedbookingWithID(t, 1, "2024-06-10", "2024-06-12", StatusCancelled),
		seedbookingWithID(t, 1, "2024-06-10", "2024-06-12", StatusRejected),
	)
	svc := newTestService(t, store)

	av, err := svc.CheckAvailability(context.Background(), 1, rng(t, "2024-06-10", "2024-06-12"))
	require.NoError(t, err)
	assert.True(t, av.Available)
}

func TestCheckAvailabilityProductDisabled(t *testing.T) {
	p := kamera()
	p.IsAvailable = false
	svc := newTestService(t, newMemStore(p))

	av, err := svc.CheckAvailability(context.Background(), 1, rng(t, "2024-06-10", "2024-06-12"))
	require.NoError(t, err)
	assert.False(t, av.Available)
}

func TestCheckAvailabilityUnknownProduct(t *testing.T) {
	svc := newTestService(t, newMemStore())
	_, err := svc.CheckAvailability(context.Background(), 42, rng(t, "2024-06-10", "2024-06-12"))
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestSubmitBooking(t *testing.T) {
	store := newMemStore(kamera())
	svc := newTestService(t, store)

	catatan := "Untuk event wedding"
	b, err := svc.SubmitBooking(context.Background(), BookingRequest{
		ProductID:      1,
		NamaPemesan:    "Budi Santoso",
		NomorWA:        "081234567890",
		TanggalMulai:   mustDate(t, "2024-06-10"),
		TanggalSelesai: mustDate(t, "2024-06-12"),
		Jumlah:         2,
		Catatan:        &catatan,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), b.ID)
	assert.Equal(t, StatusPending, b.Status)
	assert.Equal(t, 3, b.DurasiHari)
	// total = harga x durasi x jumlah
	assert.Equal(t, int64(150000*3*2), b.TotalHarga)
}

func TestSubmitBookingConflict(t *testing.T) {
	store := newMemStore(kamera())
	store.bookings = append(store.bookings, seedbookingWithID(t, 1, "2024-06-10", "2024-06-12", StatusApproved))
	svc := newTestService(t, store)

	_, err := svc.SubmitBooking(context.Background(), BookingRequest{
		ProductID:      1,
		NamaPemesan:    "Sinta Dewi",
		NomorWA:        "089876543210",
		TanggalMulai:   mustDate(t, "2024-06-12"),
		TanggalSelesai: mustDate(t, "2024-06-14"),
		Jumlah:         1,
	})
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Len(t, store.bookings, 1, "conflict tidak boleh menulis")
}

func TestSubmitBookingValidation(t *testing.T) {
	svc := newTestService(t, newMemStore(kamera()))
	_, err := svc.SubmitBooking(context.Background(), BookingRequest{ProductID: 1})
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestSubmitBookingUnknownProduct(t *testing.T) {
	svc := newTestService(t, newMemStore())
	_, err := svc.SubmitBooking(context.Background(), BookingRequest{
		ProductID:      9,
		NamaPemesan:    "Budi",
		NomorWA:        "0812",
		TanggalMulai:   mustDate(t, "2024-06-10"),
		TanggalSelesai: mustDate(t, "2024-06-12"),
		Jumlah:         1,
	})
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestSubmitBookingNoOverlapInvariant(t *testing.T) {
	store := newMemStore(kamera())
	svc := newTestService(t, store)

	// deretan submit, sebagian sengaja beririsan
	reqs := [][2]string{
		{"2024-06-10", "2024-06-12"},
		{"2024-06-12", "2024-06-14"}, // konflik
		{"2024-06-13", "2024-06-15"},
		{"2024-06-01", "2024-06-30"}, // konflik
		{"2024-06-20", "2024-06-20"},
	}
	for _, r := range reqs {
		_, _ = svc.SubmitBooking(context.Background(), BookingRequest{
			ProductID:      1,
			NamaPemesan:    "Budi",
			NomorWA:        "0812",
			TanggalMulai:   mustDate(t, r[0]),
			TanggalSelesai: mustDate(t, r[1]),
			Jumlah:         1,
		})
	}

	active := store.activeRangesLocked(1)
	require.Len(t, active, 3)
	for i := range active {
		for j := i + 1; j < len(active); j++ {
			assert.False(t, active[i].Overlaps(active[j]),
				"booking %v dan %v beririsan", active[i], active[j])
		}
	}
}

func TestSubmitCartBooking(t *testing.T) {
	lensa := Product{ID: 2, Nama: "Lensa Sony 24-70mm f/2.8", HargaSewaPerhari: 90000, IsAvailable: true}
	store := newMemStore(kamera(), lensa)
	svc := newTestService(t, store)

	res, err := svc.SubmitCartBooking(context.Background(), CartRequest{
		NamaPemesan: "Sinta Dewi",
		NomorWA:     "089876543210",
		Items: []CartItem{
			{ProductID: 1, TanggalMulai: mustDate(t, "2024-06-10"), TanggalSelesai: mustDate(t, "2024-06-12"), Jumlah: 1},
			{ProductID: 2, TanggalMulai: mustDate(t, "2024-06-10"), TanggalSelesai: mustDate(t, "2024-06-11"), Jumlah: 2},
		},
	})
	require.NoError(t, err)
	require.Len(t, res.Bookings, 2)
	// 150000*3*1 + 90000*2*2 = 450000 + 360000
	assert.Equal(t, int64(810000), res.TotalKeseluruhan)
	for _, b := range res.Bookings {
		assert.Equal(t, StatusPending, b.Status)
		assert.NotZero(t, b.ID)
	}
}

func TestSubmitCartBookingScenarioD(t *testing.T) {
	lensa := Product{ID: 2, Nama: "Lensa", HargaSewaPerhari: 90000, IsAvailable: true}
	store := newMemStore(kamera(), lensa)
	store.bookings = append(store.bookings, seedbookingWithID(t, 2, "2024-06-10", "2024-06-12", StatusPending))
	svc := newTestService(t, store)

	_, err := svc.SubmitCartBooking(context.Background(), CartRequest{
		NamaPemesan: "Sinta Dewi",
		NomorWA:     "089876543210",
		Items: []CartItem{
			{ProductID: 1, TanggalMulai: mustDate(t, "2024-06-10"), TanggalSelesai: mustDate(t, "2024-06-12"), Jumlah: 1},
			{ProductID: 2, TanggalMulai: mustDate(t, "2024-06-11"), TanggalSelesai: mustDate(t, "2024-06-13"), Jumlah: 1},
		},
	})
	e := asEngineErr(err)
	require.NotNil(t, e)
	assert.Equal(t, KindConflict, e.Kind)
	assert.Equal(t, 1, e.Item, "item yang konflik harus teridentifikasi")
	assert.Len(t, store.bookings, 1, "seluruh batch harus batal tanpa tulis")
}

func TestSubmitCartBookingIntraCartConflict(t *testing.T) {
	store := newMemStore(kamera())
	svc := newTestService(t, store)

	_, err := svc.SubmitCartBooking(context.Background(), CartRequest{
		NamaPemesan: "Budi",
		NomorWA:     "0812",
		Items: []CartItem{
			{ProductID: 1, TanggalMulai: mustDate(t, "2024-06-10"), TanggalSelesai: mustDate(t, "2024-06-12"), Jumlah: 1},
			{ProductID: 1, TanggalMulai: mustDate(t, "2024-06-12"), TanggalSelesai: mustDate(t, "2024-06-14"), Jumlah: 1},
		},
	})
	e := asEngineErr(err)
	require.NotNil(t, e)
	assert.Equal(t, KindConflict, e.Kind)
	assert.Equal(t, 1, e.Item)
	assert.Empty(t, store.bookings)
}

// Scenario E: dua submit bersamaan utk produk+tanggal sama -> tepat satu
// sukses, satunya Conflict. Pre-check dua-duanya lolos; store yang memutus.
func TestSubmitBookingConcurrent(t *testing.T) {
	store := newMemStore(kamera())
	svc := newTestService(t, store)

	const n = 8
	mulai := mustDate(t, "2024-06-10")
	selesai := mustDate(t, "2024-06-12")
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.SubmitBooking(context.Background(), BookingRequest{
				ProductID:      1,
				NamaPemesan:    fmt.Sprintf("Pemesan %d", i),
				NomorWA:        "081234567890",
				TanggalMulai:   mulai,
				TanggalSelesai: selesai,
				Jumlah:         1,
			})
		}(i)
	}
	wg.Wait()

	var ok, conflict int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case KindOf(err) == KindConflict:
			conflict++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conflict)
	assert.Len(t, store.bookings, 1)
}

func TestListBookedRanges(t *testing.T) {
	store := newMemStore(kamera())
	store.bookings = append(store.bookings,
		seedbookingWithID(t, 1, "2024-06-10", "2024-06-12", StatusPending),
		seedbookingWithID(t, 1, "2024-06-20", "2024-06-21", StatusCancelled),
	)
	svc := newTestService(t, store)

	ranges, err := svc.ListBookedRanges(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, ranges, 1)
	assert.Equal(t, "2024-06-10", ranges[0].Mulai.String())

	_, err = svc.ListBookedRanges(context.Background(), 42)
	assert.Equal(t, KindNotFound, KindOf(err))
}
