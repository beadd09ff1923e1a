package rental

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// Active: hanya booking pending/approved yang memblokir tanggal.
// Booking rejected/cancelled tidak ikut dihitung di cek ketersediaan.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusApproved
}

var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusApproved: true, StatusRejected: true, StatusCancelled: true},
	StatusApproved:  {StatusCancelled: true},
	StatusRejected:  {},
	StatusCancelled: {},
}

// CanTransition: transisi status dilakukan admin, bukan engine booking.
func CanTransition(from, to Status) bool {
	return validNext[from][to]
}
