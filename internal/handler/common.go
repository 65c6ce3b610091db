package handler // handler defines http handlers

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/lodgio/room-booking/internal/model"
)

// getUserID extracts the user_id from echo.Context and converts it to
// uint64. JWT numeric claims arrive as float64 after JSON decoding, so
// several representations are accepted.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// isAdmin reports whether the request's role claim is the
// administrator role. Used for ownership checks where a non-owner
// admin may still act on a booking.
func isAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == model.RoleAdmin
}
