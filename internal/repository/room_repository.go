// This file defines repository methods for rooms. Room availability is
// a single flag on the row, not a computed rollup of bookings, and the
// row itself is the lock scope for booking mutations: callers that
// create or cancel a booking first take the room row FOR UPDATE so that
// conflict checks and availability writes on one room are serialized.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lodgio/room-booking/internal/model"
)

// ErrRoomNotFound is returned when a room cannot be found in the DB.
var ErrRoomNotFound = errors.New("room not found")

// RoomRepo encapsulates all database queries related to rooms.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo constructs a RoomRepo with the provided DB handle.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// that span rooms and bookings.
func (r *RoomRepo) DB() *sql.DB { return r.db }

const roomColumns = "id, name, description, price_per_night, capacity, available, created_at, updated_at"

func scanRoom(row *sql.Row) (model.Room, error) {
	var rm model.Room
	err := row.Scan(&rm.ID, &rm.Name, &rm.Description, &rm.PricePerNight,
		&rm.Capacity, &rm.Available, &rm.CreatedAt, &rm.UpdatedAt)
	return rm, err
}

// Create inserts a new room. On success the room's ID, timestamps and
// defaults are populated by a follow-up SELECT so callers receive a
// fully populated record. New rooms start available.
func (r *RoomRepo) Create(ctx context.Context, rm *model.Room) error {
	const qInsert = "INSERT INTO rooms (name, description, price_per_night, capacity, available) VALUES (?, ?, ?, ?, TRUE)"
	res, err := r.db.ExecContext(ctx, qInsert, rm.Name, rm.Description, rm.PricePerNight, rm.Capacity)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rm.ID = uint64(id)
	created, err := scanRoom(r.db.QueryRowContext(ctx, "SELECT "+roomColumns+" FROM rooms WHERE id = ?", rm.ID))
	if err != nil {
		return err
	}
	*rm = created
	return nil
}

// GetByID fetches a room by id, translating sql.ErrNoRows into
// ErrRoomNotFound.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (model.Room, error) {
	rm, err := scanRoom(r.db.QueryRowContext(ctx, "SELECT "+roomColumns+" FROM rooms WHERE id = ? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Room{}, ErrRoomNotFound
	}
	return rm, err
}

// GetByIDForUpdateTx fetches a room inside a transaction and locks its
// row until commit or rollback. Concurrent booking mutations against
// the same room queue on this lock, which is what keeps the conflict
// check and the subsequent writes atomic per room.
func (r *RoomRepo) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Room, error) {
	rm, err := scanRoom(tx.QueryRowContext(ctx, "SELECT "+roomColumns+" FROM rooms WHERE id = ? FOR UPDATE", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Room{}, ErrRoomNotFound
	}
	return rm, err
}

// ListAvailable returns all rooms whose availability flag is set.
// Unavailable rooms are hidden from the public listing entirely.
func (r *RoomRepo) ListAvailable(ctx context.Context) ([]model.Room, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+roomColumns+" FROM rooms WHERE available = TRUE ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Room, 0)
	for rows.Next() {
		var rm model.Room
		if err := rows.Scan(&rm.ID, &rm.Name, &rm.Description, &rm.PricePerNight,
			&rm.Capacity, &rm.Available, &rm.CreatedAt, &rm.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

// Update applies a partial patch: only fields whose pointer is non-nil
// are written, so an explicit zero and an omitted key are distinct.
// Returns the updated room, or ErrRoomNotFound when the id does not
// resolve.
func (r *RoomRepo) Update(ctx context.Context, id uint64, p model.RoomPatch) (model.Room, error) {
	sets := make([]string, 0, 5)
	args := make([]any, 0, 6)
	if p.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *p.Name)
	}
	if p.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *p.Description)
	}
	if p.PricePerNight != nil {
		sets = append(sets, "price_per_night = ?")
		args = append(args, *p.PricePerNight)
	}
	if p.Capacity != nil {
		sets = append(sets, "capacity = ?")
		args = append(args, *p.Capacity)
	}
	if p.Available != nil {
		sets = append(sets, "available = ?")
		args = append(args, *p.Available)
	}
	if len(sets) > 0 {
		args = append(args, id)
		q := "UPDATE rooms SET " + strings.Join(sets, ", ") + " WHERE id = ?"
		if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
			return model.Room{}, err
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes a room unconditionally, including when bookings still
// reference it. Returns ErrRoomNotFound when no row was deleted.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM rooms WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// SetAvailableTx flips the availability flag inside a transaction that
// already holds the room row lock.
func (r *RoomRepo) SetAvailableTx(ctx context.Context, tx *sql.Tx, id uint64, available bool) error {
	_, err := tx.ExecContext(ctx, "UPDATE rooms SET available = ? WHERE id = ?", available, id)
	return err
}
