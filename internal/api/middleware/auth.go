package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cloudnative/account-service/internal/core/domain"
	"github.com/cloudnative/account-service/internal/core/ports"
)

// IdentityKey is the echo context key holding the authenticated email.
const IdentityKey = "email"

// Auth accepts either HTTP Basic credentials (email:password) or a bearer
// token minted by POST /v1/user/token, and stores the caller's email under
// IdentityKey.
func Auth(authn ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			var email string
			switch {
			case strings.EqualFold(parts[0], "basic"):
				user, pass, ok := c.Request().BasicAuth()
				if !ok {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
				}
				if err := authn.Authenticate(c.Request().Context(), user, pass); err != nil {
					if errors.Is(err, domain.ErrUnauthorized) {
						return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
					}
					return err
				}
				email = user
			case strings.EqualFold(parts[0], "bearer"):
				subject, err := authn.ParseToken(strings.TrimSpace(parts[1]))
				if err != nil {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
				}
				email = subject
			default:
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			c.Set(IdentityKey, email)
			return next(c)
		}
	}
}
