package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const userIDKey = "user_id"

// Middleware rejects requests without a valid session and stores the bound
// user id in the Echo context.
func (ts *TokenService) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := ts.Verify(TokenFromRequest(c))
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]any{
					"error": map[string]string{"code": "UNAUTHENTICATED", "message": "You are not authenticated!"},
				})
			}
			c.Set(userIDKey, userID)
			return next(c)
		}
	}
}

// SetUserID stores an authenticated user id in the Echo context.
func SetUserID(c echo.Context, userID int64) {
	c.Set(userIDKey, userID)
}

// GetUserID extracts the authenticated user ID set by Middleware.
func GetUserID(c echo.Context) (int64, bool) {
	id, ok := c.Get(userIDKey).(int64)
	return id, ok
}
