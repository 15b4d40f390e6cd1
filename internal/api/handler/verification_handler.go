package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cloudnative/account-service/internal/core/ports"
)

// ResendLimiter decides whether another verification email may be sent.
type ResendLimiter interface {
	Allow(ctx context.Context, email string) (bool, error)
}

// VerificationHandler serves the email verification routes.
type VerificationHandler struct {
	service ports.AccountService
	limiter ResendLimiter
	log     zerolog.Logger
}

// NewVerificationHandler builds the handler. limiter may be nil to disable
// resend throttling.
func NewVerificationHandler(service ports.AccountService, limiter ResendLimiter, log zerolog.Logger) *VerificationHandler {
	return &VerificationHandler{service: service, limiter: limiter, log: log}
}

// Verify consumes a verification token.
//
// @Summary      Verify an email address
// @Tags         verification
// @Produce      plain
// @Param        token  query     string  true  "Verification token"
// @Success      200    {string}  string
// @Failure      400    {object}  map[string]string
// @Router       /v1/user/verify [get]
func (h *VerificationHandler) Verify(c echo.Context) error {
	msg, err := h.service.VerifyEmail(c.Request().Context(), c.QueryParam("token"))
	if err != nil {
		return err
	}
	return c.String(http.StatusOK, msg)
}

// Resend issues a fresh verification token for the authenticated account.
//
// @Summary      Resend the verification email
// @Tags         verification
// @Produce      json
// @Security     BasicAuth
// @Security     BearerAuth
// @Success      202  {object}  messageResponse
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      429  {object}  map[string]string
// @Router       /v1/user/self/verification [post]
func (h *VerificationHandler) Resend(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}

	if h.limiter != nil {
		ok, err := h.limiter.Allow(c.Request().Context(), id.Email)
		if err != nil {
			h.log.Warn().Err(err).Str("email", id.Email).Msg("resend throttle unavailable, allowing request")
		} else if !ok {
			return echo.NewHTTPError(http.StatusTooManyRequests, "verification email recently sent")
		}
	}

	if err := h.service.ResendVerification(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, messageResponse{Message: "verification email sent"})
}
