package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cloudnative/account-service/internal/api/middleware"
	"github.com/cloudnative/account-service/internal/core/ports"
)

// identity extracts the email injected by the Auth middleware. A missing
// value means the route was mounted without authentication.
func identity(c echo.Context) (ports.Identity, error) {
	email, _ := c.Get(middleware.IdentityKey).(string)
	if email == "" {
		return ports.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return ports.Identity{Email: email}, nil
}

// bindAndValidate decodes the JSON body into req and runs struct validation.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
