package rental

import (
	"context"
	"time"
)

type ProductFilter struct {
	CategoryID *int64
	Search     string
}

type ProductStore interface {
	GetProduct(ctx context.Context, id int64) (*Product, error)
	ListProducts(ctx context.Context, f ProductFilter) ([]Product, error)
	ListCategories(ctx context.Context) ([]Category, error)
}

// BookingStore adalah otoritas terakhir untuk invariant no-overlap:
// CreateBooking / CreateCartBookings wajib menyerialisasi cek-lalu-tulis
// per produk dan gagal dengan error Conflict kalau ada race yang lolos
// dari pre-check.
type BookingStore interface {
	ActiveRanges(ctx context.Context, productID int64) ([]DateRange, error)
	ListBookings(ctx context.Context) ([]Booking, error)
	GetBooking(ctx context.Context, id int64) (*Booking, error)
	CreateBooking(ctx context.Context, b Booking) (*Booking, error)
	CreateCartBookings(ctx context.Context, bs []Booking) ([]Booking, error)
}

type Clock func() time.Time

// Service = engine ketersediaan & booking. Handler HTTP dan worker hanya
// memanggil method di sini, tidak menyentuh store langsung.
type Service struct {
	Products ProductStore
	Bookings BookingStore
	Now      Clock
}

func (s *Service) today() Date {
	now := s.Now
	if now == nil {
		now = time.Now
	}
	return DateOf(now())
}

type BookingRequest struct {
	ProductID      int64   `json:"product_id"`
	NamaPemesan    string  `json:"nama_pemesan"`
	NomorWA        string  `json:"nomor_wa"`
	TanggalMulai   Date    `json:"tanggal_mulai"`
	TanggalSelesai Date    `json:"tanggal_selesai"`
	Jumlah         int     `json:"jumlah"`
	Catatan        *string `json:"catatan"`
}

type CartRequest struct {
	NamaPemesan string     `json:"nama_pemesan"`
	NomorWA     string     `json:"nomor_wa"`
	Items       []CartItem `json:"cart_items"`
	Catatan     *string    `json:"catatan"`
}

type Availability struct {
	Available  bool  `json:"available"`
	Days       int   `json:"days,omitempty"`
	TotalPrice int64 `json:"total_price,omitempty"`
}

type CartResult struct {
	Bookings []Booking
	// TotalKeseluruhan = penjumlahan total_harga semua item; hanya untuk
	// ditampilkan, tidak disimpan.
	TotalKeseluruhan int64
}

// CheckAvailability: read-only, idempotent. Tidak memvalidasi urutan
// tanggal terhadap hari ini; itu urusan validasi request.
func (s *Service) CheckAvailability(ctx context.Context, productID int64, r DateRange) (*Availability, error) {
	p, err := s.Products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !p.IsAvailable {
		return &Availability{Available: false}, nil
	}
	free, err := s.rangeFree(ctx, productID, r)
	if err != nil {
		return nil, err
	}
	if !free {
		return &Availability{Available: false}, nil
	}
	days := r.Days()
	return &Availability{
		Available:  true,
		Days:       days,
		TotalPrice: TotalPrice(p.HargaSewaPerhari, days, 1),
	}, nil
}

func (s *Service) rangeFree(ctx context.Context, productID int64, r DateRange) (bool, error) {
	existing, err := s.Bookings.ActiveRanges(ctx, productID)
	if err != nil {
		return false, err
	}
	for _, e := range existing {
		if r.Overlaps(e) {
			return false, nil
		}
	}
	return true, nil
}

// SubmitBooking: validasi -> cek ketersediaan -> hitung harga -> tulis
// atomik dengan status pending. Store yang memutus konflik final.
func (s *Service) SubmitBooking(ctx context.Context, req BookingRequest) (*Booking, error) {
	if err := ValidateBooking(req, s.today()); err != nil {
		return nil, err
	}
	p, err := s.Products.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	r := DateRange{Mulai: req.TanggalMulai, Selesai: req.TanggalSelesai}
	if !p.IsAvailable {
		return nil, ErrConflict(p.ID)
	}
	if free, err := s.rangeFree(ctx, p.ID, r); err != nil {
		return nil, err
	} else if !free {
		return nil, ErrConflict(p.ID)
	}

	days := r.Days()
	return s.Bookings.CreateBooking(ctx, Booking{
		ProductID:      p.ID,
		NamaPemesan:    req.NamaPemesan,
		NomorWA:        req.NomorWA,
		TanggalMulai:   req.TanggalMulai,
		TanggalSelesai: req.TanggalSelesai,
		Jumlah:         req.Jumlah,
		DurasiHari:     days,
		Status:         StatusPending,
		TotalHarga:     TotalPrice(p.HargaSewaPerhari, days, req.Jumlah),
		Catatan:        req.Catatan,
	})
}

// SubmitCartBooking: semua item dicek dulu; satu saja gagal maka seluruh
// request batal tanpa tulis apa pun. Baru setelah semua lolos, store
// menyimpan satu booking per item dalam satu transaksi.
func (s *Service) SubmitCartBooking(ctx context.Context, req CartRequest) (*CartResult, error) {
	if err := ValidateCart(req, s.today()); err != nil {
		return nil, err
	}

	drafts := make([]Booking, 0, len(req.Items))
	for i, it := range req.Items {
		p, err := s.Products.GetProduct(ctx, it.ProductID)
		if err != nil {
			if e := asEngineErr(err); e != nil {
				return nil, e.AtItem(i)
			}
			return nil, err
		}
		r := DateRange{Mulai: it.TanggalMulai, Selesai: it.TanggalSelesai}
		if !p.IsAvailable {
			return nil, ErrConflict(p.ID).AtItem(i)
		}
		if free, err := s.rangeFree(ctx, p.ID, r); err != nil {
			return nil, err
		} else if !free {
			return nil, ErrConflict(p.ID).AtItem(i)
		}
		// item di keranjang yang sama juga tidak boleh saling beririsan
		for j := 0; j < i; j++ {
			prev := req.Items[j]
			if prev.ProductID == it.ProductID &&
				r.Overlaps(DateRange{Mulai: prev.TanggalMulai, Selesai: prev.TanggalSelesai}) {
				return nil, ErrConflict(p.ID).AtItem(i)
			}
		}

		days := r.Days()
		drafts = append(drafts, Booking{
			ProductID:      p.ID,
			NamaPemesan:    req.NamaPemesan,
			NomorWA:        req.NomorWA,
			TanggalMulai:   it.TanggalMulai,
			TanggalSelesai: it.TanggalSelesai,
			Jumlah:         it.Jumlah,
			DurasiHari:     days,
			Status:         StatusPending,
			TotalHarga:     TotalPrice(p.HargaSewaPerhari, days, it.Jumlah),
			Catatan:        req.Catatan,
		})
	}

	created, err := s.Bookings.CreateCartBookings(ctx, drafts)
	if err != nil {
		return nil, err
	}
	res := &CartResult{Bookings: created}
	for _, b := range created {
		res.TotalKeseluruhan += b.TotalHarga
	}
	return res, nil
}

// ListBookedRanges mengembalikan rentang tanggal yang sudah terisi untuk
// tampilan kalender produk.
func (s *Service) ListBookedRanges(ctx context.Context, productID int64) ([]DateRange, error) {
	if _, err := s.Products.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	return s.Bookings.ActiveRanges(ctx, productID)
}

func (s *Service) ListBookings(ctx context.Context) ([]Booking, error) {
	return s.Bookings.ListBookings(ctx)
}

func (s *Service) GetBooking(ctx context.Context, id int64) (*Booking, error) {
	return s.Bookings.GetBooking(ctx, id)
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*Product, error) {
	return s.Products.GetProduct(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context, f ProductFilter) ([]Product, error) {
	return s.Products.ListProducts(ctx, f)
}

func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.Products.ListCategories(ctx)
}
