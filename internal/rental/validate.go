package rental

import "strings"

const (
	maxNamaLen    = 255
	maxNomorWALen = 20
)

func validateCustomer(nama, nomor string) []FieldError {
	var errs []FieldError
	nama = strings.TrimSpace(nama)
	switch {
	case nama == "":
		errs = append(errs, FieldError{Field: "nama_pemesan", Message: "wajib diisi"})
	case len(nama) > maxNamaLen:
		errs = append(errs, FieldError{Field: "nama_pemesan", Message: "maksimal 255 karakter"})
	}
	nomor = strings.TrimSpace(nomor)
	switch {
	case nomor == "":
		errs = append(errs, FieldError{Field: "nomor_wa", Message: "wajib diisi"})
	case len(nomor) > maxNomorWALen:
		errs = append(errs, FieldError{Field: "nomor_wa", Message: "maksimal 20 karakter"})
	}
	return errs
}

// validateDates: tanggal wajib ada, tidak boleh backdate, dan harus urut.
// today disuntik dari clock milik Service supaya bisa dites.
func validateDates(mulai, selesai, today Date) []FieldError {
	var errs []FieldError
	switch {
	case mulai.IsZero():
		errs = append(errs, FieldError{Field: "tanggal_mulai", Message: "wajib diisi"})
	case mulai.Before(today):
		errs = append(errs, FieldError{Field: "tanggal_mulai", Message: "tidak boleh sebelum hari ini"})
	}
	switch {
	case selesai.IsZero():
		errs = append(errs, FieldError{Field: "tanggal_selesai", Message: "wajib diisi"})
	case !mulai.IsZero() && selesai.Before(mulai):
		errs = append(errs, FieldError{Field: "tanggal_selesai", Message: "tidak boleh sebelum tanggal mulai"})
	}
	return errs
}

func validateJumlah(jumlah int) []FieldError {
	if jumlah < 1 {
		return []FieldError{{Field: "jumlah", Message: "minimal 1"}}
	}
	return nil
}

// ValidateCheck: validasi request cek ketersediaan (tanggal saja).
func ValidateCheck(mulai, selesai, today Date) error {
	if errs := validateDates(mulai, selesai, today); len(errs) > 0 {
		return ErrValidation(errs...)
	}
	return nil
}

// ValidateBooking memeriksa seluruh field request satu kali jalan dan
// melaporkan semua pelanggaran sekaligus, bukan hanya yang pertama.
func ValidateBooking(req BookingRequest, today Date) error {
	var errs []FieldError
	errs = append(errs, validateCustomer(req.NamaPemesan, req.NomorWA)...)
	errs = append(errs, validateDates(req.TanggalMulai, req.TanggalSelesai, today)...)
	errs = append(errs, validateJumlah(req.Jumlah)...)
	if len(errs) > 0 {
		return ErrValidation(errs...)
	}
	return nil
}

// ValidateCart memeriksa data pemesan plus setiap item. Error item pertama
// yang gagal dilaporkan dengan index-nya.
func ValidateCart(req CartRequest, today Date) error {
	if errs := validateCustomer(req.NamaPemesan, req.NomorWA); len(errs) > 0 {
		return ErrValidation(errs...)
	}
	if len(req.Items) == 0 {
		return ErrValidation(FieldError{Field: "cart_items", Message: "keranjang kosong"})
	}
	for i, it := range req.Items {
		var errs []FieldError
		errs = append(errs, validateDates(it.TanggalMulai, it.TanggalSelesai, today)...)
		errs = append(errs, validateJumlah(it.Jumlah)...)
		if len(errs) > 0 {
			return ErrValidation(errs...).AtItem(i)
		}
	}
	return nil
}
