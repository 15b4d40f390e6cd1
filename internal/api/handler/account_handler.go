package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cloudnative/account-service/internal/core/ports"
)

// AccountHandler serves registration and self-service profile routes.
type AccountHandler struct {
	service ports.AccountService
}

func NewAccountHandler(service ports.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// Register creates a new, unverified account.
//
// @Summary      Register a new user
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details"
// @Success      201   {object}  domain.Account
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /v1/user [post]
func (h *AccountHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	account, err := h.service.Register(c.Request().Context(), ports.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, account)
}

// GetSelf returns the authenticated account.
//
// @Summary      Get the authenticated user
// @Tags         user
// @Produce      json
// @Security     BasicAuth
// @Security     BearerAuth
// @Success      200  {object}  domain.Account
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /v1/user/self [get]
func (h *AccountHandler) GetSelf(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}

	account, err := h.service.GetSelf(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, account)
}

// UpdateSelf changes the name or password of the authenticated account.
//
// @Summary      Update the authenticated user
// @Tags         user
// @Accept       json
// @Security     BasicAuth
// @Security     BearerAuth
// @Param        body  body  updateSelfRequest  true  "Fields to change"
// @Success      204
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /v1/user/self [put]
func (h *AccountHandler) UpdateSelf(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}

	var req updateSelfRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if _, err := h.service.UpdateSelf(c.Request().Context(), id, ports.UpdateSelfInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	}); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
