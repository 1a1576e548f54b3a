package api

import (
	"net/http"
	"strconv"

	"github.com/Pankajjr12/snapnest-api/internal/service"
	"github.com/labstack/echo/v4"
)

// UploadHandler serves stored profile images.
type UploadHandler struct {
	images *service.ImageStore
}

// NewUploadHandler creates an UploadHandler.
func NewUploadHandler(images *service.ImageStore) *UploadHandler {
	return &UploadHandler{images: images}
}

// Serve handles GET /uploads/:key.
func (h *UploadHandler) Serve(c echo.Context) error {
	obj, err := h.images.Open(c.Request().Context(), c.Param("key"))
	if err != nil {
		return mapServiceError(c, err)
	}
	defer obj.Body.Close()

	contentType := obj.ContentType
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	if obj.Size > 0 {
		c.Response().Header().Set(echo.HeaderContentLength, strconv.FormatInt(obj.Size, 10))
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	return c.Stream(http.StatusOK, contentType, obj.Body)
}
