package rental

import (
	"errors"
	"fmt"
	"strings"
)

type Kind string

const (
	KindValidation  Kind = "VALIDATION"
	KindNotFound    Kind = "NOT_FOUND"
	KindConflict    Kind = "CONFLICT"
	KindPersistence Kind = "PERSISTENCE"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error membawa jenis kegagalan supaya handler bisa memetakan ke status HTTP.
// Untuk validasi, Fields berisi detail per field. Untuk keranjang, Item >= 0
// menunjuk index item yang gagal.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Item    int
	cause   error
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

func (e *Error) Unwrap() error { return e.cause }

func newErr(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg, Item: -1}
}

func ErrNotFound(what string, id int64) *Error {
	return newErr(KindNotFound, fmt.Sprintf("%s %d tidak ditemukan", what, id))
}

func ErrConflict(productID int64) *Error {
	return newErr(KindConflict, fmt.Sprintf("produk %d sudah dibooking pada tanggal tersebut", productID))
}

func ErrValidation(fields ...FieldError) *Error {
	e := newErr(KindValidation, "input tidak valid")
	e.Fields = fields
	return e
}

func ErrPersistence(op string, cause error) *Error {
	e := newErr(KindPersistence, "penyimpanan gagal: "+op)
	e.cause = cause
	return e
}

// AtItem menandai error milik item keranjang ke-i (0-based).
func (e *Error) AtItem(i int) *Error {
	e.Item = i
	e.Message = fmt.Sprintf("item %d: %s", i, e.Message)
	return e
}

// KindOf mengekstrak jenis error; "" kalau bukan *Error.
func KindOf(err error) Kind {
	if e := asEngineErr(err); e != nil {
		return e.Kind
	}
	return ""
}

func asEngineErr(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}
