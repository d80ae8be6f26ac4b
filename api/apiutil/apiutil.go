// Package apiutil holds the request and error helpers every handler package
// shares.
package apiutil

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/musclegram/musclegram/backend"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultLimit = 50
	MaxLimit     = 100
)

// Error writes the standard error body
func Error(c echo.Context, statusCode int, errType, message string) error {
	return c.JSON(statusCode, map[string]any{
		"error":   errType,
		"message": message,
	})
}

// StoreError maps a backend error onto a response. Anything unrecognized is
// logged and reported as a 500 without detail.
func StoreError(c echo.Context, err error) error {
	var verr *backend.ValidationError
	switch {
	case errors.As(err, &verr):
		return Error(c, http.StatusBadRequest, "InvalidRequest", verr.Error())
	case errors.Is(err, backend.ErrNotFound):
		return Error(c, http.StatusNotFound, "NotFound", "not found")
	case errors.Is(err, backend.ErrForbidden):
		return Error(c, http.StatusForbidden, "Forbidden", "not allowed")
	case errors.Is(err, backend.ErrConflict):
		return Error(c, http.StatusPreconditionFailed, "PreconditionFailed", "record has changed")
	default:
		sc := trace.SpanFromContext(c.Request().Context()).SpanContext()
		slog.Error("request failed", "method", c.Request().Method, "path", c.Path(), "trace", sc.TraceID().String(), "error", err)
		return Error(c, http.StatusInternalServerError, "InternalError", "internal error")
	}
}

func AuthRequired(c echo.Context) error {
	return Error(c, http.StatusUnauthorized, "AuthenticationRequired", "authentication required")
}

func BadRequest(c echo.Context, message string) error {
	return Error(c, http.StatusBadRequest, "InvalidRequest", message)
}

// Viewer returns the authenticated user id, or "" for anonymous requests
func Viewer(c echo.Context) string {
	v := c.Get("viewer")
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// ParseLimit reads ?limit=, falling back to def for missing or out of range
// values.
func ParseLimit(c echo.Context, def int) int {
	limit := def
	if limitParam := c.QueryParam("limit"); limitParam != "" {
		if l, err := strconv.Atoi(limitParam); err == nil && l > 0 && l <= MaxLimit {
			limit = l
		}
	}
	return limit
}

// IfMatch returns the entity tag from the If-Match header without quotes.
func IfMatch(c echo.Context) string {
	v := strings.TrimSpace(c.Request().Header.Get("If-Match"))
	v = strings.TrimPrefix(v, "W/")
	return strings.Trim(v, `"`)
}

// SetETag writes cid as a strong entity tag
func SetETag(c echo.Context, cid string) {
	if cid != "" {
		c.Response().Header().Set("ETag", `"`+cid+`"`)
	}
}
