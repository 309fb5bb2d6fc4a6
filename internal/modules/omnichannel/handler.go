package omnichannel

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/parley/internal/chat"
	"github.com/nfrund/parley/internal/handlers"
	"github.com/nfrund/parley/internal/middleware"
)

// AddManagerRequest names the user to promote.
type AddManagerRequest struct {
	UserID string `json:"userId" form:"userId" validate:"required"`
}

// ManagersResponse lists managers in the {"success": bool} envelope.
type ManagersResponse struct {
	Users   []Manager `json:"users"`
	Success bool      `json:"success"`
}

// Handler serves the live chat manager endpoints.
type Handler struct {
	service *Service
}

// RequirePermission rejects users lacking perm.
func RequirePermission(perm string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, ok := middleware.UserFrom(c)
			if !ok || !chat.HasPermission(u, perm) {
				return c.JSON(http.StatusForbidden, handlers.SuccessResponse{Success: false, Error: "error-not-allowed"})
			}
			return next(c)
		}
	}
}

// List returns every manager.
func (h *Handler) List(c echo.Context) error {
	managers, err := h.service.List(c.Request().Context())
	if err != nil {
		slog.Error("Failed to list managers", "error", err)
		return c.JSON(http.StatusInternalServerError, handlers.SuccessResponse{Success: false, Error: "internal"})
	}
	return c.JSON(http.StatusOK, ManagersResponse{Users: managers, Success: true})
}

// Add promotes a user to manager.
func (h *Handler) Add(c echo.Context) error {
	var req AddManagerRequest
	if err := handlers.BindAndValidate(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, handlers.SuccessResponse{Success: false, Error: "invalid-parameter"})
	}

	if _, err := h.service.Add(c.Request().Context(), req.UserID); err != nil {
		status, code := handlers.StatusFor(err)
		return c.JSON(status, handlers.SuccessResponse{Success: false, Error: code})
	}
	return c.JSON(http.StatusOK, handlers.SuccessResponse{Success: true})
}

// Remove revokes a manager. Unknown ids answer 404 with success false.
func (h *Handler) Remove(c echo.Context) error {
	err := h.service.Remove(c.Request().Context(), c.Param("id"))
	switch {
	case err == nil:
		slog.Info("Manager removed", "user_id", c.Param("id"))
		return c.JSON(http.StatusOK, handlers.SuccessResponse{Success: true})
	case errors.Is(err, ErrNotFound):
		return c.JSON(http.StatusNotFound, handlers.SuccessResponse{Success: false, Error: ErrNotFound.Error()})
	default:
		status, code := handlers.StatusFor(err)
		return c.JSON(status, handlers.SuccessResponse{Success: false, Error: code})
	}
}
