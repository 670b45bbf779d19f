package handlers

import (
	"strconv"

	"github.com/anonto42/socialcore/backend/internal/apperrors"
	"github.com/anonto42/socialcore/backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

func getUserIDFromContext(c echo.Context) uint {
	return middleware.UserID(c)
}

// currentUser returns the caller id or an authentication error.
func currentUser(c echo.Context) (uint, error) {
	id := getUserIDFromContext(c)
	if id == 0 {
		return 0, apperrors.Unauthenticated("user not authenticated")
	}
	return id, nil
}

func uintParam(c echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || v == 0 {
		return 0, apperrors.Invalid("invalid " + name)
	}
	return uint(v), nil
}

// bindAndValidate binds the request body into req and runs struct validation.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperrors.Invalid("invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return apperrors.Invalid(err.Error())
	}
	return nil
}

func ok(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}
