package model

import "time"

// Room represents a bookable room as stored in the `rooms` table.
// Available is a coarse flag toggled by booking creation and
// cancellation: one confirmed booking blocks the room entirely, and
// availability is restored only when that booking is cancelled or
// deleted. It is not computed from date ranges.
//
// Fields:
//
//	ID            – primary key identifier.
//	Name          – human-friendly room name.
//	Description   – free-form description shown in listings.
//	PricePerNight – nightly rate; must be positive.
//	Capacity      – maximum number of guests; must be positive.
//	Available     – whether the room can currently accept a booking.
//	CreatedAt     – creation timestamp.
//	UpdatedAt     – last update timestamp.
type Room struct {
	ID            uint64    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	PricePerNight float64   `json:"price_per_night"`
	Capacity      int       `json:"capacity"`
	Available     bool      `json:"available"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// RoomPatch carries a partial room update. A nil field means the key
// was absent from the request body and the stored value is kept; a
// non-nil pointer means the client supplied the field explicitly,
// including zero values. This distinguishes "omitted" from "set to
// zero", which a plain value cannot.
type RoomPatch struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	PricePerNight *float64 `json:"price_per_night"`
	Capacity      *int     `json:"capacity"`
	Available     *bool    `json:"available"`
}
