package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/technotes/notes-api/internal/api/metrics"
)

// ErrOriginNotAllowed is returned for a browser origin outside the allow-list.
var ErrOriginNotAllowed = errors.New("Not allowed by CORS")

// OriginFilter is a static allow-list of browser origins.
type OriginFilter struct {
	allowed map[string]struct{}
}

// NewOriginFilter builds a filter admitting exactly the given origins.
// Entries are compared verbatim after trimming surrounding spaces.
func NewOriginFilter(origins ...string) *OriginFilter {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			allowed[o] = struct{}{}
		}
	}
	return &OriginFilter{allowed: allowed}
}

// Allow admits an absent origin (non-browser callers) and any origin that is
// on the list.
func (f *OriginFilter) Allow(origin string) error {
	if origin == "" {
		return nil
	}
	if _, ok := f.allowed[origin]; ok {
		return nil
	}
	return ErrOriginNotAllowed
}

// Allowed is Allow as a predicate, in the shape echo's CORS middleware expects.
func (f *OriginFilter) Allowed(origin string) (bool, error) {
	return f.Allow(origin) == nil, nil
}

// Origins returns the allow-list in no particular order.
func (f *OriginFilter) Origins() []string {
	out := make([]string, 0, len(f.allowed))
	for o := range f.allowed {
		out = append(out, o)
	}
	return out
}

// OriginAdmission aborts the request with 403 before any handler runs when
// the Origin header is not admitted by f.
func OriginAdmission(f *OriginFilter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := f.Allow(c.Request().Header.Get(echo.HeaderOrigin)); err != nil {
				metrics.OriginRejectionsTotal.Inc()
				return echo.NewHTTPError(http.StatusForbidden, err.Error()).SetInternal(err)
			}
			return next(c)
		}
	}
}
