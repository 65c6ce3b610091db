package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lodgio/room-booking/internal/model"
	"github.com/lodgio/room-booking/internal/queue"
	"github.com/lodgio/room-booking/internal/repository"
	queue_publisher "github.com/lodgio/room-booking/internal/service"
)

// dateLayout is the wire format for check-in/check-out values. Dates
// are day-granular; times of day are not part of the booking model.
const dateLayout = "2006-01-02"

// BookingHandler groups the repositories needed to create, list,
// cancel and delete bookings. JWT authentication and role validation
// run in middleware before any method here. Confirmed bookings on one
// room must never overlap, which is enforced by
// running every booking mutation inside a transaction that first locks
// the room row, so two concurrent requests for the same room cannot
// both pass the conflict check.
// Invalidate, when set, evicts the cached public room listing after a
// mutation flips a room's availability.
type BookingHandler struct {
	Rooms      *repository.RoomRepo
	Bookings   *repository.BookingRepo
	Invalidate func(context.Context)
}

func (h *BookingHandler) dropCachedListing(c echo.Context) {
	if h.Invalidate != nil {
		h.Invalidate(c.Request().Context())
	}
}

// NewBookingHandler constructs a BookingHandler with the provided
// repositories. All dependencies must be non-nil.
func NewBookingHandler(rooms *repository.RoomRepo, bookings *repository.BookingRepo) *BookingHandler {
	if rooms == nil || bookings == nil {
		panic("nil repository passed to NewBookingHandler")
	}
	return &BookingHandler{Rooms: rooms, Bookings: bookings}
}

// CreateBooking handles POST /v1/bookings. The request body must
// contain a room id and a date range. Validation order: the range must
// be strictly positive (400, checked before any room lookup), the room
// must exist (404), and the room must be available and free of
// overlapping confirmed bookings (400).
// On success the booking is stored as CONFIRMED with its total price
// fixed at nights times the room's current rate, and the room is
// marked unavailable.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"msg": "unauthorized"})
	}
	var body struct {
		RoomID   uint64 `json:"room_id"`
		CheckIn  string `json:"check_in"`
		CheckOut string `json:"check_out"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "invalid request body"})
	}
	if body.RoomID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "room_id is required"})
	}
	checkIn, err := time.Parse(dateLayout, body.CheckIn)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "invalid check_in date"})
	}
	checkOut, err := time.Parse(dateLayout, body.CheckOut)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "invalid check_out date"})
	}
	if !checkIn.Before(checkOut) {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "check-out must be after check-in"})
	}

	ctx := c.Request().Context()
	tx, err := h.Rooms.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "server error"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Lock the room row for the remainder of the transaction. Every
	// booking mutation on this room takes the same lock, which
	// serializes the conflict check with the write.
	room, err := h.Rooms.GetByIDForUpdateTx(ctx, tx, body.RoomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"msg": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "server error"})
	}
	if !room.Available {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "room not available"})
	}
	overlap, err := h.Bookings.HasOverlapTx(ctx, tx, room.ID, checkIn, checkOut)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "server error"})
	}
	if overlap {
		return respondBookingErr(c, repository.ErrConflict)
	}

	booking := &model.Booking{
		UserID:     userID,
		RoomID:     room.ID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		TotalPrice: float64(model.Nights(checkIn, checkOut)) * room.PricePerNight,
		Status:     model.StatusConfirmed,
	}
	if err := h.Bookings.CreateTx(ctx, tx, booking); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "server error"})
	}
	if err := h.Rooms.SetAvailableTx(ctx, tx, room.ID, false); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "server error"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "server error"})
	}
	committed = true

	h.dropCachedListing(c)
	h.publishEvent(queue.ActionConfirmed, *booking, room.Name)
	return c.JSON(http.StatusCreated, booking)
}

// ListBookings handles GET /v1/bookings. Administrators see every
// booking with user and room summaries; customers see only their own
// bookings with the room summary. The result set is unpaginated.
func (h *BookingHandler) ListBookings(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"msg": "unauthorized"})
	}
	ctx := c.Request().Context()
	var items []repository.BookingDetail
	if isAdmin(c) {
		items, err = h.Bookings.ListAll(ctx)
	} else {
		items, err = h.Bookings.ListByUser(ctx, userID)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "server error"})
	}
	return c.JSON(http.StatusOK, items)
}

// CancelBooking handles PUT /v1/bookings/cancel/:id. Only the booking
// owner or an administrator may cancel. The booking transitions to
// CANCELLED and the room is marked available again unconditionally;
// availability is a coarse flag, not a scan of remaining bookings.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	return h.finishBooking(c, queue.ActionCancelled)
}

// DeleteBooking handles DELETE /v1/bookings/:id, the irreversible
// variant of cancel: the record is removed entirely and the room is
// marked available. Preconditions match CancelBooking.
func (h *BookingHandler) DeleteBooking(c echo.Context) error {
	return h.finishBooking(c, queue.ActionDeleted)
}

// finishBooking implements the shared cancel/delete flow: load the
// booking, check ownership, lock the room row, apply the status change
// or removal, and release the room's availability flag.
func (h *BookingHandler) finishBooking(c echo.Context, action string) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"msg": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "invalid booking id"})
	}

	ctx := c.Request().Context()
	tx, err := h.Rooms.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "server error"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	booking, err := h.Bookings.GetByIDTx(ctx, tx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"msg": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "server error"})
	}
	if booking.UserID != userID && !isAdmin(c) {
		return respondBookingErr(c, repository.ErrForbidden)
	}

	// Take the room lock so this is serialized with concurrent
	// createBooking calls on the same room. The room may already have
	// been deleted; its availability update is then a no-op.
	roomName := ""
	room, err := h.Rooms.GetByIDForUpdateTx(ctx, tx, booking.RoomID)
	switch {
	case err == nil:
		roomName = room.Name
	case errors.Is(err, repository.ErrRoomNotFound):
		// room deleted out from under the booking; proceed
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "server error"})
	}

	if action == queue.ActionDeleted {
		if err := h.Bookings.DeleteTx(ctx, tx, id); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "server error"})
		}
	} else {
		if err := h.Bookings.UpdateStatusTx(ctx, tx, id, model.StatusCancelled); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "server error"})
		}
	}
	if err := h.Rooms.SetAvailableTx(ctx, tx, booking.RoomID, true); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "server error"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "server error"})
	}
	committed = true

	h.dropCachedListing(c)
	h.publishEvent(action, booking, roomName)
	if action == queue.ActionDeleted {
		return c.JSON(http.StatusOK, echo.Map{"msg": "booking deleted"})
	}
	return c.JSON(http.StatusOK, echo.Map{"msg": "booking cancelled"})
}

// respondBookingErr maps the repository's shared sentinels onto the
// booking API's error contract.
func respondBookingErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"msg": "not authorized to modify this booking"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "room is already booked for the selected dates"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "server error"})
}

// publishEvent emits a booking event to the broker in the background.
// Publish failures are logged by the publisher and never surface to the
// API caller.
func (h *BookingHandler) publishEvent(action string, b model.Booking, roomName string) {
	ev := queue.BookingEvent{
		Action:     action,
		BookingID:  b.ID,
		UserID:     b.UserID,
		RoomID:     b.RoomID,
		RoomName:   roomName,
		CheckIn:    b.CheckIn.Format(dateLayout),
		CheckOut:   b.CheckOut.Format(dateLayout),
		TotalPrice: b.TotalPrice,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue_publisher.PublishBookingEvent(ctx, ev)
	}()
}
