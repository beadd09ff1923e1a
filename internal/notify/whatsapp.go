package notify

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ariefcatur/go-rental-booking.git/internal/rental"
)

var printer = message.NewPrinter(language.Indonesian)

// FormatRupiah: pemisah ribuan titik, tanpa desimal. 450000 -> "Rp 450.000".
func FormatRupiah(n int64) string {
	return printer.Sprintf("Rp %d", n)
}

var hariIndo = [...]string{"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu"}

var bulanIndo = [...]string{"", "Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember"}

// formatTanggalPanjang: "Senin, 10 Juni 2024".
func formatTanggalPanjang(d rental.Date) string {
	t := d.Time()
	return fmt.Sprintf("%s, %d %s %d", hariIndo[t.Weekday()], t.Day(), bulanIndo[t.Month()], t.Year())
}

// formatTanggalPendek: "10 Jun 2024".
func formatTanggalPendek(d rental.Date) string {
	t := d.Time()
	return fmt.Sprintf("%d %s %d", t.Day(), bulanIndo[t.Month()][:3], t.Year())
}

// MessageBuilder menyusun pesan konfirmasi untuk admin beserta deep link
// wa.me. Nomor admin disuntik dari config, bukan ditanam di kode.
type MessageBuilder struct {
	AdminPhone string
}

// Build memilih format pesan tunggal atau keranjang berdasarkan jumlah line.
func (mb MessageBuilder) Build(p rental.BookingCreatedPayload, orderedAt time.Time) string {
	if len(p.Lines) == 1 {
		return mb.buildSingle(p, orderedAt)
	}
	return mb.buildCart(p, orderedAt)
}

// Link mengembalikan URL wa.me dengan pesan ter-encode.
func (mb MessageBuilder) Link(p rental.BookingCreatedPayload, orderedAt time.Time) string {
	return "https://wa.me/" + mb.AdminPhone + "?text=" + url.QueryEscape(mb.Build(p, orderedAt))
}

func (mb MessageBuilder) buildSingle(p rental.BookingCreatedPayload, orderedAt time.Time) string {
	l := p.Lines[0]
	var b strings.Builder
	b.WriteString("🎯 *BOOKING BARU*\n")
	b.WriteString("━━━━━━━━━━━━━━━━━━\n\n")
	fmt.Fprintf(&b, "📦 *Produk:* %s\n", l.ProductNama)
	fmt.Fprintf(&b, "👤 *Nama Pemesan:* %s\n", p.NamaPemesan)
	fmt.Fprintf(&b, "📱 *No. WhatsApp:* %s\n\n", p.NomorWA)
	fmt.Fprintf(&b, "📅 *Tanggal Mulai:*\n   %s\n\n", formatTanggalPanjang(l.TanggalMulai))
	fmt.Fprintf(&b, "📅 *Tanggal Selesai:*\n   %s\n\n", formatTanggalPanjang(l.TanggalSelesai))
	fmt.Fprintf(&b, "⏱️ *Durasi Sewa:* %d Hari\n", l.DurasiHari)
	fmt.Fprintf(&b, "🔢 *Jumlah Unit:* %d\n\n", l.Jumlah)
	b.WriteString("💰 *Rincian Harga:*\n")
	fmt.Fprintf(&b, "   %s x %d hari x %d unit\n", FormatRupiah(l.HargaPerhari), l.DurasiHari, l.Jumlah)
	fmt.Fprintf(&b, "   *Total: %s*\n\n", FormatRupiah(l.TotalHarga))
	if p.Catatan != nil && *p.Catatan != "" {
		fmt.Fprintf(&b, "📝 *Catatan:*\n   %s\n\n", *p.Catatan)
	}
	b.WriteString("━━━━━━━━━━━━━━━━━━\n")
	fmt.Fprintf(&b, "🆔 *Kode Booking:* #%d\n", l.BookingID)
	fmt.Fprintf(&b, "⏰ *Waktu Order:* %s\n\n", formatWaktu(orderedAt))
	b.WriteString("_Mohon konfirmasi ketersediaan dan pembayaran_")
	return b.String()
}

func (mb MessageBuilder) buildCart(p rental.BookingCreatedPayload, orderedAt time.Time) string {
	var b strings.Builder
	b.WriteString("🎯 *BOOKING KERANJANG*\n")
	b.WriteString("━━━━━━━━━━━━━━━━━━\n\n")
	fmt.Fprintf(&b, "👤 *Nama Pemesan:* %s\n", p.NamaPemesan)
	fmt.Fprintf(&b, "📱 *No. WhatsApp:* %s\n\n", p.NomorWA)
	b.WriteString("📦 *DAFTAR PRODUK:*\n")
	b.WriteString("━━━━━━━━━━━━━━━━━━\n")
	for i, l := range p.Lines {
		fmt.Fprintf(&b, "\n*%d. %s*\n", i+1, l.ProductNama)
		fmt.Fprintf(&b, "   🔢 Jumlah: %d unit\n", l.Jumlah)
		fmt.Fprintf(&b, "   📅 Mulai: %s\n", formatTanggalPendek(l.TanggalMulai))
		fmt.Fprintf(&b, "   📅 Selesai: %s\n", formatTanggalPendek(l.TanggalSelesai))
		fmt.Fprintf(&b, "   ⏱️ Durasi: %d hari\n", l.DurasiHari)
		fmt.Fprintf(&b, "   💰 Harga: %s/hari\n", FormatRupiah(l.HargaPerhari))
		fmt.Fprintf(&b, "   💵 Subtotal: %s\n", FormatRupiah(l.TotalHarga))
	}
	b.WriteString("\n━━━━━━━━━━━━━━━━━━\n")
	b.WriteString("💰 *TOTAL PEMBAYARAN:*\n")
	fmt.Fprintf(&b, "   *%s*\n\n", FormatRupiah(p.TotalKeseluruhan))
	if p.Catatan != nil && *p.Catatan != "" {
		fmt.Fprintf(&b, "📝 *Catatan:*\n   %s\n\n", *p.Catatan)
	}
	b.WriteString("━━━━━━━━━━━━━━━━━━\n")
	b.WriteString("🆔 *Kode Booking:*\n")
	for _, l := range p.Lines {
		fmt.Fprintf(&b, "   #%d\n", l.BookingID)
	}
	fmt.Fprintf(&b, "\n⏰ *Waktu Order:* %s\n\n", formatWaktu(orderedAt))
	b.WriteString("_Mohon konfirmasi ketersediaan dan pembayaran_")
	return b.String()
}

func formatWaktu(t time.Time) string {
	return fmt.Sprintf("%d %s %d, %02d:%02d", t.Day(), bulanIndo[t.Month()][:3], t.Year(), t.Hour(), t.Minute())
}
