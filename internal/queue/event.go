// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingEvent is published on the booking.events queue whenever a
// booking is confirmed, cancelled or deleted. It carries enough
// information for downstream consumers to log or trigger analytics
// without querying the primary database.
type BookingEvent struct {
	Action     string  `json:"action"` // "confirmed", "cancelled" or "deleted"
	BookingID  uint64  `json:"booking_id"`
	UserID     uint64  `json:"user_id"`
	RoomID     uint64  `json:"room_id"`
	RoomName   string  `json:"room_name"`
	CheckIn    string  `json:"check_in"`
	CheckOut   string  `json:"check_out"`
	TotalPrice float64 `json:"total_price"`
	OccurredAt string  `json:"occurred_at"`
}

// Actions carried by BookingEvent.
const (
	ActionConfirmed = "confirmed"
	ActionCancelled = "cancelled"
	ActionDeleted   = "deleted"
)
