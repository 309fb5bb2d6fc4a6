package handlers

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/parley/internal/chat"
)

// ErrorResponse is the standard format for API error responses.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SuccessResponse mirrors the {"success": bool} shape older clients expect.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// StatusFor maps domain errors to HTTP status codes and error codes.
func StatusFor(err error) (int, string) {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, chat.ErrInvalidParameter), errors.As(err, &verrs):
		return http.StatusBadRequest, "invalid-parameter"
	case errors.Is(err, chat.ErrMessageNotFound):
		return http.StatusNotFound, "message-not-found"
	case errors.Is(err, chat.ErrRoomNotFound):
		return http.StatusNotFound, "room-not-found"
	case errors.Is(err, chat.ErrUserNotFound):
		return http.StatusNotFound, "user-not-found"
	}
	return http.StatusInternalServerError, "internal"
}

// Error writes err as an ErrorResponse with the status StatusFor picks.
func Error(c echo.Context, err error) error {
	status, code := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	return c.JSON(status, ErrorResponse{Code: code, Message: msg})
}
