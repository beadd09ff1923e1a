package rental

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Date = tanggal kalender tanpa komponen jam, selalu UTC.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Date{t: t}, nil
}

// DateOf memotong komponen jam dari t (dipakai untuk "hari ini").
func DateOf(t time.Time) Date {
	u := t.UTC()
	return NewDate(u.Year(), u.Month(), u.Day())
}

func (d Date) String() string      { return d.t.Format(dateLayout) }
func (d Date) Time() time.Time     { return d.t }
func (d Date) IsZero() bool        { return d.t.IsZero() }
func (d Date) Before(o Date) bool  { return d.t.Before(o.t) }
func (d Date) After(o Date) bool   { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool   { return d.t.Equal(o.t) }
func (d Date) AddDays(n int) Date  { return Date{t: d.t.AddDate(0, 0, n)} }

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date %s: expected JSON string", s)
	}
	p, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = p
	return nil
}

// DateRange = rentang tanggal inklusif di kedua ujung.
type DateRange struct {
	Mulai   Date `json:"start"`
	Selesai Date `json:"end"`
}

// Days menghitung durasi inklusif: mulai==selesai berarti 1 hari.
func (r DateRange) Days() int {
	return int(r.Selesai.t.Sub(r.Mulai.t).Hours()/24) + 1
}

// Overlaps: dua rentang inklusif beririsan iff
// a.start <= b.end && b.start <= a.end. Rentang yang bersentuhan di satu
// hari (selesai N, mulai N) tetap dihitung beririsan.
func (r DateRange) Overlaps(o DateRange) bool {
	return !r.Mulai.After(o.Selesai) && !o.Mulai.After(r.Selesai)
}
