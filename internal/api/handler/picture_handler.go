package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cloudnative/account-service/internal/core/ports"
)

// PictureFormField is the multipart field carrying the uploaded image.
const PictureFormField = "profilePic"

// PictureHandler serves the profile picture routes.
type PictureHandler struct {
	service  ports.AccountService
	maxBytes int64
}

func NewPictureHandler(service ports.AccountService, maxBytes int64) *PictureHandler {
	return &PictureHandler{service: service, maxBytes: maxBytes}
}

// Upload stores or replaces the profile picture.
//
// @Summary      Upload a profile picture
// @Tags         picture
// @Accept       multipart/form-data
// @Produce      json
// @Security     BasicAuth
// @Security     BearerAuth
// @Param        profilePic  formData  file  true  "PNG or JPEG image"
// @Success      201         {object}  domain.ProfileAsset
// @Failure      400         {object}  map[string]string
// @Failure      403         {object}  map[string]string
// @Failure      413         {object}  map[string]string
// @Failure      503         {object}  map[string]string
// @Router       /v1/user/self/pic [post]
func (h *PictureHandler) Upload(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}

	if h.maxBytes > 0 {
		if c.Request().ContentLength > h.maxBytes {
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file too large")
		}
		c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, h.maxBytes)
	}

	fh, err := c.FormFile(PictureFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file too large")
		}
		return echo.NewHTTPError(http.StatusBadRequest, "missing file field "+PictureFormField)
	}

	file, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable file")
	}
	defer file.Close()

	asset, err := h.service.UploadPicture(c.Request().Context(), id, ports.UploadInput{
		Body:        file,
		Size:        fh.Size,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		FileName:    fh.Filename,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, asset)
}

// Get returns the profile picture metadata.
//
// @Summary      Get the profile picture
// @Tags         picture
// @Produce      json
// @Security     BasicAuth
// @Security     BearerAuth
// @Success      200  {object}  domain.ProfileAsset
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/user/self/pic [get]
func (h *PictureHandler) Get(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}

	asset, err := h.service.GetPicture(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, asset)
}

// Delete removes the profile picture.
//
// @Summary      Delete the profile picture
// @Tags         picture
// @Security     BasicAuth
// @Security     BearerAuth
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/user/self/pic [delete]
func (h *PictureHandler) Delete(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}

	if err := h.service.DeletePicture(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
