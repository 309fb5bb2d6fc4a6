package server

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestErrorHandling(t *testing.T) {
	var logs bytes.Buffer
	orig := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	defer slog.SetDefault(orig)

	e := echo.New()
	setupErrorHandling(e)
	e.GET("/unhandled", func(c echo.Context) error {
		return errors.New("token=abc leaked")
	})
	e.GET("/forbidden", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusForbidden, "nope")
	})

	tests := []struct {
		name     string
		path     string
		status   int
		body     string
		logsHave []string
	}{
		{
			name:   "unhandled error is logged with a stack and hidden from the client",
			path:   "/unhandled",
			status: http.StatusInternalServerError,
			body:   `{"code":"internal","message":"Internal Server Error"}`,
			logsHave: []string{
				"Internal Server Error (Unhandled)",
				`error="token=abc leaked"`,
				"path=/unhandled",
				"stack_trace=",
				"runtime/debug",
			},
		},
		{
			name:   "http errors keep their status and message",
			path:   "/forbidden",
			status: http.StatusForbidden,
			body:   `{"message":"nope"}`,
		},
		{
			name:   "unknown routes answer 404",
			path:   "/missing",
			status: http.StatusNotFound,
			body:   `{"message":"Not Found"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs.Reset()
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
			assert.NotContains(t, rec.Body.String(), "abc")
			for _, want := range tt.logsHave {
				assert.Contains(t, logs.String(), want)
			}
		})
	}
}
