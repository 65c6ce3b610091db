package model

import "time"

// Booking statuses. A booking is created CONFIRMED and can only
// transition to CANCELLED; dates and price never change after
// creation. Only confirmed bookings count toward conflict checks.
const (
	StatusConfirmed = "CONFIRMED"
	StatusCancelled = "CANCELLED"
)

// Booking records a user's reservation of a room for a half-open date
// range [CheckIn, CheckOut). TotalPrice is fixed at creation as
// Nights(CheckIn, CheckOut) times the room's nightly rate and is not
// recomputed when the room price later changes.
type Booking struct {
	ID         uint64    `json:"id"`
	UserID     uint64    `json:"user_id"`
	RoomID     uint64    `json:"room_id"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	TotalPrice float64   `json:"total_price"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Overlaps reports whether the half-open ranges [aIn, aOut) and
// [bIn, bOut) intersect. Back-to-back stays sharing a boundary day do
// not overlap: a checkout on the 3rd and a check-in on the 3rd may
// coexist.
func Overlaps(aIn, aOut, bIn, bOut time.Time) bool {
	return aIn.Before(bOut) && bIn.Before(aOut)
}

// Nights returns the number of nights between check-in and check-out.
// Inputs are expected to be date-only values (midnight UTC); the
// result is negative or zero for an invalid range.
func Nights(checkIn, checkOut time.Time) int {
	return int(checkOut.Sub(checkIn).Hours() / 24)
}
