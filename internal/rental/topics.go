package rental

import "strconv"

const TopicBookingCreated = "rental.booking.created"

// Partition key = booking_id, supaya event utk satu booking terjaga urutannya.
func PartitionKey(bookingID int64) []byte {
	return []byte(strconv.FormatInt(bookingID, 10))
}
