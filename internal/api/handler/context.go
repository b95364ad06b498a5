package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/projectlink/projectlink-api/internal/api/middleware"
)

// currentUserID returns the authenticated user id injected by the Auth
// middleware. Presence proves the middleware ran.
func currentUserID(c echo.Context) (string, error) {
	userID, _ := c.Get(middleware.ContextUserID).(string)
	if userID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return userID, nil
}

// viewerKey identifies the viewer for view dedup: the authenticated user when
// a valid token was sent, otherwise the client address.
func viewerKey(c echo.Context) string {
	if userID, _ := c.Get(middleware.ContextUserID).(string); userID != "" {
		return "user:" + userID
	}
	return "ip:" + c.RealIP()
}
