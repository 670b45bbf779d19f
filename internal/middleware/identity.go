package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// UserIDKey is the echo context key holding the verified caller id.
const UserIDKey = "userID"

// UserID returns the caller id set by an auth middleware, or 0.
func UserID(c echo.Context) uint {
	id, _ := c.Get(UserIDKey).(uint)
	return id
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
