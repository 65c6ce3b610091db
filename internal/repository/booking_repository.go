package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lodgio/room-booking/internal/model"
)

// ErrBookingNotFound is returned when a booking id cannot be resolved.
var ErrBookingNotFound = errors.New("booking not found")

// BookingRepo provides persistence for bookings. Mutations that touch
// room availability run inside a transaction opened by the caller, with
// the room row locked first via RoomRepo.GetByIDForUpdateTx.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = "id, user_id, room_id, check_in, check_out, total_price, status, created_at, updated_at"

func scanBooking(row *sql.Row) (model.Booking, error) {
	var b model.Booking
	err := row.Scan(&b.ID, &b.UserID, &b.RoomID, &b.CheckIn, &b.CheckOut,
		&b.TotalPrice, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

// RoomSummary is the room slice attached to booking listings: enough
// for a client to render the line item without a second lookup.
type RoomSummary struct {
	ID            uint64  `json:"id"`
	Name          string  `json:"name"`
	PricePerNight float64 `json:"price_per_night"`
}

// UserSummary identifies the booking owner in admin listings.
type UserSummary struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// BookingDetail is a booking joined with its room summary and, for
// admin listings, the owning user. Room is null when the room was
// deleted after the booking was made; User is nil in customer-scoped
// listings where the owner is the caller.
type BookingDetail struct {
	model.Booking
	Room *RoomSummary `json:"room"`
	User *UserSummary `json:"user,omitempty"`
}

// CreateTx inserts a new booking within the scope of an existing
// transaction and populates the generated ID and timestamps on the
// provided record. The caller must commit or rollback.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings (user_id, room_id, check_in, check_out, total_price, status) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, b.UserID, b.RoomID, b.CheckIn, b.CheckOut, b.TotalPrice, b.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	created, err := scanBooking(tx.QueryRowContext(ctx, "SELECT "+bookingColumns+" FROM bookings WHERE id = ?", b.ID))
	if err != nil {
		return err
	}
	*b = created
	return nil
}

// GetByID fetches a booking by id, translating sql.ErrNoRows into
// ErrBookingNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, "SELECT "+bookingColumns+" FROM bookings WHERE id = ? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, ErrBookingNotFound
	}
	return b, err
}

// GetByIDTx is GetByID inside an existing transaction, used by cancel
// and delete flows after the room lock has been taken.
func (r *BookingRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Booking, error) {
	b, err := scanBooking(tx.QueryRowContext(ctx, "SELECT "+bookingColumns+" FROM bookings WHERE id = ? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, ErrBookingNotFound
	}
	return b, err
}

// HasOverlapTx reports whether any confirmed booking on the room
// intersects the half-open range [checkIn, checkOut). It must run in
// the same transaction that holds the room row lock, otherwise two
// concurrent requests could both observe no overlap and both insert.
func (r *BookingRepo) HasOverlapTx(ctx context.Context, tx *sql.Tx, roomID uint64, checkIn, checkOut time.Time) (bool, error) {
	const q = `SELECT EXISTS(
		SELECT 1 FROM bookings
		WHERE room_id = ? AND status = 'CONFIRMED'
		  AND check_in < ? AND ? < check_out
	)`
	var exists bool
	if err := tx.QueryRowContext(ctx, q, roomID, checkOut, checkIn).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// UpdateStatusTx transitions a booking's status within a transaction.
func (r *BookingRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string) error {
	_, err := tx.ExecContext(ctx, "UPDATE bookings SET status = ? WHERE id = ?", status, id)
	return err
}

// DeleteTx removes a booking row entirely within a transaction. This is
// the hard-delete path offered alongside cancellation.
func (r *BookingRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM bookings WHERE id = ?", id)
	return err
}

const detailSelect = `SELECT b.id, b.user_id, b.room_id, b.check_in, b.check_out, b.total_price, b.status, b.created_at, b.updated_at,
	r.id, r.name, r.price_per_night`

// roomSummaryFrom builds the nullable room slice of a listing row. The
// columns are NULL when the room was deleted out from under a booking;
// the booking itself stays in the ledger, so the summary comes back nil
// rather than the row vanishing from the listing.
func roomSummaryFrom(id sql.NullInt64, name sql.NullString, price sql.NullFloat64) *RoomSummary {
	if !id.Valid {
		return nil
	}
	return &RoomSummary{ID: uint64(id.Int64), Name: name.String, PricePerNight: price.Float64}
}

// ListAll returns every booking with user and room summaries attached.
// Intended for administrators; the result set is unpaginated. Rooms and
// users are left-joined so deleting either never hides a booking.
func (r *BookingRepo) ListAll(ctx context.Context) ([]BookingDetail, error) {
	q := detailSelect + `, u.id, u.name, u.email
		FROM bookings b
		LEFT JOIN rooms r ON r.id = b.room_id
		LEFT JOIN users u ON u.id = b.user_id
		ORDER BY b.id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]BookingDetail, 0)
	for rows.Next() {
		var (
			d                BookingDetail
			roomID, ownerID  sql.NullInt64
			roomName         sql.NullString
			roomPrice        sql.NullFloat64
			ownName, ownMail sql.NullString
		)
		if err := rows.Scan(&d.ID, &d.UserID, &d.RoomID, &d.CheckIn, &d.CheckOut,
			&d.TotalPrice, &d.Status, &d.CreatedAt, &d.UpdatedAt,
			&roomID, &roomName, &roomPrice,
			&ownerID, &ownName, &ownMail); err != nil {
			return nil, err
		}
		d.Room = roomSummaryFrom(roomID, roomName, roomPrice)
		if ownerID.Valid {
			d.User = &UserSummary{ID: uint64(ownerID.Int64), Name: ownName.String, Email: ownMail.String}
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListByUser returns the caller's own bookings with room summaries.
// Same left-join semantics as ListAll.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]BookingDetail, error) {
	q := detailSelect + `
		FROM bookings b
		LEFT JOIN rooms r ON r.id = b.room_id
		WHERE b.user_id = ?
		ORDER BY b.id`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]BookingDetail, 0)
	for rows.Next() {
		var (
			d         BookingDetail
			roomID    sql.NullInt64
			roomName  sql.NullString
			roomPrice sql.NullFloat64
		)
		if err := rows.Scan(&d.ID, &d.UserID, &d.RoomID, &d.CheckIn, &d.CheckOut,
			&d.TotalPrice, &d.Status, &d.CreatedAt, &d.UpdatedAt,
			&roomID, &roomName, &roomPrice); err != nil {
			return nil, err
		}
		d.Room = roomSummaryFrom(roomID, roomName, roomPrice)
		out = append(out, d)
	}
	return out, rows.Err()
}
