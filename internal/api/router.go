package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Pankajjr12/snapnest-api/internal/auth"
	"github.com/labstack/echo/v4"
)

// Pinger is a dependency the health check probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies holds all handler instances and middleware for route wiring.
type Dependencies struct {
	Auth    *AuthHandler
	Users   *UserHandler
	Uploads *UploadHandler

	TokenService *auth.TokenService
	// HealthChecks maps a dependency name to its probe.
	HealthChecks map[string]Pinger
}

// SetupRouter registers all API routes on the Echo instance.
func SetupRouter(e *echo.Echo, deps *Dependencies) {
	e.GET("/health", healthHandler(deps.HealthChecks))

	e.GET("/uploads/:key", deps.Uploads.Serve)

	users := e.Group("/users")
	users.POST("/register", deps.Auth.Register)
	users.POST("/login", deps.Auth.Login)
	users.POST("/logout", deps.Auth.Logout)

	// Profiles are public; the session only changes isFollowing.
	users.GET("/:username", deps.Users.GetProfile)
	users.POST("/:username/follow", deps.Users.ToggleFollow, deps.TokenService.Middleware())
}

func healthHandler(checks map[string]Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		for name, p := range checks {
			if err := p.Ping(ctx); err != nil {
				slog.WarnContext(ctx, "health check failed", "dependency", name, "error", err)
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "failing": name})
			}
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}
}
