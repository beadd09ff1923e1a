package rental

import "time"

type Category struct {
	ID   int64  `json:"id"`
	Nama string `json:"nama"`
}

type Product struct {
	ID               int64     `json:"id"`
	Nama             string    `json:"nama"`
	Deskripsi        string    `json:"deskripsi"`
	Gambar           *string   `json:"gambar"`
	HargaSewaPerhari int64     `json:"harga_sewa_perhari"`
	IsAvailable      bool      `json:"is_available"`
	CategoryID       *int64    `json:"category_id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Booking id dari BIGSERIAL: urut sesuai waktu dibuat, dipakai juga
// sebagai kode booking di pesan konfirmasi.
type Booking struct {
	ID             int64     `json:"id"`
	ProductID      int64     `json:"product_id"`
	NamaPemesan    string    `json:"nama_pemesan"`
	NomorWA        string    `json:"nomor_wa"`
	TanggalMulai   Date      `json:"tanggal_mulai"`
	TanggalSelesai Date      `json:"tanggal_selesai"`
	Jumlah         int       `json:"jumlah"`
	DurasiHari     int       `json:"durasi_hari"`
	Status         Status    `json:"status"`
	TotalHarga     int64     `json:"total_harga"`
	Catatan        *string   `json:"catatan"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CartItem = satu baris di keranjang (produk + tanggal + jumlah unit).
type CartItem struct {
	ProductID      int64 `json:"id"`
	TanggalMulai   Date  `json:"tanggal_mulai"`
	TanggalSelesai Date  `json:"tanggal_selesai"`
	Jumlah         int   `json:"jumlah"`
}
