package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/technotes/notes-api/internal/api/metrics"
	"github.com/technotes/notes-api/internal/core/domain"
	"github.com/technotes/notes-api/internal/infrastructure/eventlog"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Message string `json:"message"`
	IsError bool   `json:"isError"`
}

// ErrorSink receives a copy of every failure. Implementations must not block.
type ErrorSink interface {
	Record(e eventlog.Event)
}

const (
	kindInvalidInput    = "InvalidInput"
	kindNotFound        = "NotFound"
	kindConflict        = "Conflict"
	kindNoContent       = "NoContent"
	kindUniqueViolation = "UniqueViolation"
	kindHTTP            = "HTTPError"
	kindInternal        = "InternalError"

	msgInternal = "internal server error"
)

// Normalize maps any error to the status code, kind name and message
// returned to the client.
func Normalize(err error) (status int, kind, message string) {
	var uv *domain.UniqueViolation
	if errors.As(err, &uv) {
		switch uv.Field {
		case domain.FieldUsername:
			return http.StatusConflict, kindUniqueViolation, "Duplicate username"
		case domain.FieldTitle:
			return http.StatusConflict, kindUniqueViolation, "Duplicate note title"
		default:
			return http.StatusConflict, kindUniqueViolation, "Duplicate value"
		}
	}

	var de *domain.Error
	if errors.As(err, &de) {
		switch {
		case errors.Is(de.Kind, domain.ErrInvalidInput):
			return http.StatusBadRequest, kindInvalidInput, de.Message
		case errors.Is(de.Kind, domain.ErrNotFound):
			return http.StatusNotFound, kindNotFound, de.Message
		case errors.Is(de.Kind, domain.ErrConflict):
			return http.StatusConflict, kindConflict, de.Message
		case errors.Is(de.Kind, domain.ErrNoContent):
			// Empty listings stay a 400 for existing clients.
			return http.StatusBadRequest, kindNoContent, de.Message
		}
	}

	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, kindHTTP, fmt.Sprintf("%v", he.Message)
	}

	return http.StatusInternalServerError, kindInternal, msgInternal
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that logs every failure
// to log and sink, then renders {"message": ..., "isError": true}. Logging is
// best effort and never changes the response. sink may be nil.
func NewHTTPErrorHandler(log zerolog.Logger, sink ErrorSink) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, kind, msg := Normalize(err)
		report(log, sink, c, err, status, kind, msg)
		metrics.ErrorsTotal.WithLabelValues(kind, strconv.Itoa(status)).Inc()

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, errorResponse{Message: msg, IsError: true})
	}
}

func report(log zerolog.Logger, sink ErrorSink, c echo.Context, err error, status int, kind, msg string) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Interface("panic", r).Msg("error reporting failed")
		}
	}()

	req := c.Request()
	origin := req.Header.Get(echo.HeaderOrigin)

	ev := log.Warn()
	if status >= http.StatusInternalServerError {
		// The real cause is only logged, never returned to the client.
		ev = log.Error().Err(err)
	}
	ev.Str("kind", kind).
		Int("status", status).
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Str("origin", origin).
		Msg(msg)

	if sink != nil {
		sink.Record(eventlog.Event{
			Kind:    kind,
			Message: msg,
			Status:  status,
			Method:  req.Method,
			Path:    req.URL.Path,
			Origin:  origin,
		})
	}
}
