package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/socialcore/backend/internal/apperrors"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// HTTPErrorHandler renders every error as
// {"success": false, "error": {"kind": ..., "message": ...}}.
func HTTPErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		kind, message := classify(err)
		status := apperrors.HTTPStatus(kind)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
		}

		if kind == apperrors.KindServer {
			logger.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}

		body := echo.Map{
			"success": false,
			"error":   echo.Map{"kind": kind, "message": message},
		}
		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, body)
		}
		if writeErr != nil {
			logger.Error("failed to write error response", zap.Error(writeErr))
		}
	}
}

func classify(err error) (apperrors.Kind, string) {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		if appErr.Kind == apperrors.KindServer {
			return appErr.Kind, "internal server error"
		}
		return appErr.Kind, appErr.Message
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		message := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok {
			message = m
		}
		switch {
		case he.Code == http.StatusUnauthorized:
			return apperrors.KindAuthentication, message
		case he.Code == http.StatusForbidden:
			return apperrors.KindAuthorization, message
		case he.Code == http.StatusNotFound || he.Code == http.StatusMethodNotAllowed:
			return apperrors.KindNotFound, message
		case he.Code >= 400 && he.Code < 500:
			return apperrors.KindValidation, message
		}
		return apperrors.KindServer, "internal server error"
	}
	return apperrors.KindServer, "internal server error"
}
