package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Pankajjr12/snapnest-api/internal/auth"
	"github.com/Pankajjr12/snapnest-api/internal/service"
	"github.com/labstack/echo/v4"
)

// ImageField is the multipart field carrying the optional profile image.
const ImageField = "img"

// AuthHandler handles account and session endpoints.
type AuthHandler struct {
	service *service.AuthService
	cookies auth.CookiePolicy
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(svc *service.AuthService, cookies auth.CookiePolicy) *AuthHandler {
	return &AuthHandler{service: svc, cookies: cookies}
}

type registerRequest struct {
	Username    string `json:"username" form:"username"`
	DisplayName string `json:"displayName" form:"displayName"`
	Email       string `json:"email" form:"email"`
	Password    string `json:"password" form:"password"`
}

// Register handles POST /users/register. The body is JSON or a multipart
// form with an optional image in the "img" field.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	in := service.RegisterInput{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Password:    req.Password,
	}

	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		fh, err := c.FormFile(ImageField)
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid multipart body")
		default:
			f, err := fh.Open()
			if err != nil {
				return Error(c, http.StatusBadRequest, "INVALID_IMAGE", "could not read uploaded image")
			}
			defer f.Close()
			in.Image = &service.ImageUpload{
				Filename:    fh.Filename,
				ContentType: fh.Header.Get(echo.HeaderContentType),
				Size:        fh.Size,
				Reader:      f,
			}
		}
	}

	result, err := h.service.Register(c.Request().Context(), in)
	if err != nil {
		return mapServiceError(c, err)
	}

	h.cookies.SetSession(c, result.Token)
	return c.JSON(http.StatusCreated, result.User)
}

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Login handles POST /users/login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	result, err := h.service.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return mapServiceError(c, err)
	}

	h.cookies.SetSession(c, result.Token)
	return c.JSON(http.StatusOK, result.User)
}

// Logout handles POST /users/logout. It succeeds with or without a session.
func (h *AuthHandler) Logout(c echo.Context) error {
	h.cookies.ClearSession(c)
	return c.JSON(http.StatusOK, MessageResponse{Message: "Logout successful"})
}
