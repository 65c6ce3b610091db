package middleware

// identity.go provides the user-identity lookup shared by the rate
// limiter and cache key builders. Rate-limit keys bucket anonymous
// traffic under "anon" while authenticated traffic is bucketed per
// user id.

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// currentUserID returns a string form of the authenticated user id
// stored in context by JWTAuth, or "anon" when the request carries no
// valid token.
func currentUserID(c echo.Context) string {
	v := c.Get("user_id")
	if v == nil {
		return "anon"
	}
	switch t := v.(type) {
	case string:
		if t != "" {
			return t
		}
	case float64:
		return fmt.Sprintf("%.0f", t)
	case uint64:
		return fmt.Sprintf("%d", t)
	case int64:
		return fmt.Sprintf("%d", t)
	}
	return "anon"
}
