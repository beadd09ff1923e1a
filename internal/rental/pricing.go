package rental

// TotalPrice: harga sewa harian x durasi inklusif x jumlah unit.
// Semua dalam satuan rupiah bulat, tidak ada pembulatan.
func TotalPrice(hargaPerhari int64, durasiHari, jumlah int) int64 {
	return hargaPerhari * int64(durasiHari) * int64(jumlah)
}
