package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthResponse reports liveness and how many actions are registered.
type HealthResponse struct {
	Status  string `json:"status"`
	Actions int    `json:"actions"`
}

// Health returns a handler reporting liveness. count is called per request.
func Health(count func() int) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Actions: count()})
	}
}
