package api

import (
	"net/http"

	"github.com/Pankajjr12/snapnest-api/internal/auth"
	"github.com/Pankajjr12/snapnest-api/internal/service"
	"github.com/labstack/echo/v4"
)

// UserHandler handles profile and follow endpoints.
type UserHandler struct {
	social *service.SocialService
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(social *service.SocialService) *UserHandler {
	return &UserHandler{social: social}
}

// GetProfile handles GET /users/:username. A session is optional and only
// affects isFollowing.
func (h *UserHandler) GetProfile(c echo.Context) error {
	view, err := h.social.GetProfile(c.Request().Context(), c.Param("username"), auth.TokenFromRequest(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// ToggleFollow handles POST /users/:username/follow.
func (h *UserHandler) ToggleFollow(c echo.Context) error {
	viewerID, ok := auth.GetUserID(c)
	if !ok {
		return Error(c, http.StatusUnauthorized, "UNAUTHENTICATED", "You are not authenticated!")
	}

	if _, err := h.social.ToggleFollow(c.Request().Context(), viewerID, c.Param("username")); err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Successful"})
}
