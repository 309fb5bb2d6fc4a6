package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/parley/internal/chat"
	"github.com/nfrund/parley/internal/handlers"
)

const (
	// UserContextKey is where CurrentUser stores the *chat.User.
	UserContextKey = "user"
	// SessionName is the cookie session holding the signed-in user id.
	SessionName = "parley-session"
	// SessionUserIDKey is the session value carrying the user id.
	SessionUserIDKey = "user_id"
	// HeaderUserID lets API clients name the user when no session exists.
	HeaderUserID = "X-User-Id"
)

// CurrentUser resolves the requesting user from the session cookie, falling
// back to the X-User-Id header, and loads it from the store. Requests without
// a known user get a 401.
func CurrentUser(store chat.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := sessionUserID(c)
			if userID == "" {
				userID = c.Request().Header.Get(HeaderUserID)
			}
			if userID == "" {
				return c.JSON(http.StatusUnauthorized, handlers.ErrorResponse{
					Code:    "unauthorized",
					Message: "no user on request",
				})
			}

			user, err := store.User(c.Request().Context(), userID)
			if errors.Is(err, chat.ErrUserNotFound) {
				return c.JSON(http.StatusUnauthorized, handlers.ErrorResponse{
					Code:    "unauthorized",
					Message: "unknown user",
				})
			}
			if err != nil {
				FromContext(c.Request().Context()).Error("Failed to load current user", "user_id", userID, "error", err)
				return echo.NewHTTPError(http.StatusInternalServerError, "failed to load user")
			}

			c.Set(UserContextKey, user)
			req := c.Request()
			c.SetRequest(req.WithContext(WithLogger(req.Context(), FromContext(req.Context()).With("user_id", user.ID))))
			return next(c)
		}
	}
}

func sessionUserID(c echo.Context) string {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return ""
	}
	id, _ := sess.Values[SessionUserIDKey].(string)
	return id
}

// UserFrom returns the user CurrentUser stored on the context.
func UserFrom(c echo.Context) (*chat.User, bool) {
	u, ok := c.Get(UserContextKey).(*chat.User)
	return u, ok && u != nil
}
