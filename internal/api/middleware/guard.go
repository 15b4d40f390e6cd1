package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// NoPayload rejects requests that carry a body or a query string. It guards
// read endpoints that take all their input from the path and credentials.
func NoPayload() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.URL.RawQuery != "" || req.ContentLength > 0 || len(req.TransferEncoding) > 0 {
				return echo.NewHTTPError(http.StatusBadRequest, "request must not carry a payload")
			}
			return next(c)
		}
	}
}

// NoCache marks responses as not cacheable.
func NoCache() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set(echo.HeaderCacheControl, "no-cache, no-store, must-revalidate")
			h.Set("Pragma", "no-cache")
			h.Set("X-Content-Type-Options", "nosniff")
			return next(c)
		}
	}
}
