package handler // room catalog handlers: admin CRUD plus the public listing

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/lodgio/room-booking/internal/model"
	"github.com/lodgio/room-booking/internal/repository"
)

// RoomHandler bundles the room repository for catalog endpoints.
// Administrator-only routes are gated by RequireRole(ADMIN) in the
// router; handlers here assume that check already passed.
// Invalidate, when set, evicts the cached public listing after a
// successful mutation.
type RoomHandler struct {
	Rooms      *repository.RoomRepo
	Invalidate func(context.Context)
}

func (h *RoomHandler) dropCachedListing(c echo.Context) {
	if h.Invalidate != nil {
		h.Invalidate(c.Request().Context())
	}
}

// NewRoomHandler constructs a RoomHandler and panics if the repository is nil.
func NewRoomHandler(rooms *repository.RoomRepo) *RoomHandler {
	if rooms == nil {
		panic("nil repository passed to NewRoomHandler")
	}
	return &RoomHandler{Rooms: rooms}
}

// CreateRoom handles POST /v1/rooms. New rooms start available.
func (h *RoomHandler) CreateRoom(c echo.Context) error {
	var body struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Price       float64 `json:"price_per_night"`
		Capacity    int     `json:"capacity"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "name is required"})
	}
	if body.Price <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "price must be positive"})
	}
	if body.Capacity <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "capacity must be positive"})
	}
	room := &model.Room{
		Name:          name,
		Description:   strings.TrimSpace(body.Description),
		PricePerNight: body.Price,
		Capacity:      body.Capacity,
	}
	if err := h.Rooms.Create(c.Request().Context(), room); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "could not create room"})
	}
	h.dropCachedListing(c)
	return c.JSON(http.StatusCreated, room)
}

// ListRooms handles GET /v1/rooms. Public; only rooms whose
// availability flag is set are returned.
func (h *RoomHandler) ListRooms(c echo.Context) error {
	rooms, err := h.Rooms.ListAvailable(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "server error"})
	}
	return c.JSON(http.StatusOK, rooms)
}

// UpdateRoom handles PUT /v1/rooms/:id. The body is a partial patch:
// a field is applied only when its key is present in the JSON, so an
// explicit zero is seen and rejected rather than silently ignored.
func (h *RoomHandler) UpdateRoom(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "invalid room id"})
	}
	var patch model.RoomPatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "invalid request body"})
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "name cannot be empty"})
	}
	if patch.PricePerNight != nil && *patch.PricePerNight <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "price must be positive"})
	}
	if patch.Capacity != nil && *patch.Capacity <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "capacity must be positive"})
	}
	room, err := h.Rooms.Update(c.Request().Context(), id, patch)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"msg": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "update failed"})
	}
	h.dropCachedListing(c)
	return c.JSON(http.StatusOK, room)
}

// DeleteRoom handles DELETE /v1/rooms/:id. Removal is unconditional,
// even when bookings still reference the room.
func (h *RoomHandler) DeleteRoom(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "invalid room id"})
	}
	if err := h.Rooms.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"msg": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "delete failed"})
	}
	h.dropCachedListing(c)
	return c.JSON(http.StatusOK, echo.Map{"msg": "room deleted"})
}
