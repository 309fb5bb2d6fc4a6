package messageactions

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/parley/internal/actions"
	"github.com/nfrund/parley/internal/chat"
	"github.com/nfrund/parley/internal/config"
	"github.com/nfrund/parley/internal/handlers"
	"github.com/nfrund/parley/internal/middleware"
	"github.com/nfrund/parley/internal/modules/messageactions/topics"
	"github.com/nfrund/parley/internal/registry"
	"github.com/nfrund/parley/internal/script"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func request(e *echo.Echo, method, target, userID, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if userID != "" {
		req.Header.Set(middleware.HeaderUserID, userID)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handlers.ErrorResponse {
	t.Helper()
	var er handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &er))
	return er
}

func TestListActions(t *testing.T) {
	f := newFixture(t)
	e, _ := f.boot(t)

	rec := request(e, http.MethodGet, "/api/v1/actions", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var all []actions.Descriptor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Len(t, all, 8)
	assert.Equal(t, "quote-message", all[0].ID)

	rec = request(e, http.MethodGet, "/api/v1/actions?group=message", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var toolbar []actions.Descriptor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &toolbar))
	assert.Equal(t, []string{"quote-message"}, descriptorIDs(toolbar))

	rec = request(e, http.MethodGet, "/api/v1/actions?format=html", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<!DOCTYPE html>")
	assert.Contains(t, rec.Body.String(), "Reply In Direct Message")
}

func TestMessageActions(t *testing.T) {
	f := newFixture(t)
	e, _ := f.boot(t)

	t.Run("json", func(t *testing.T) {
		rec := request(e, http.MethodGet, "/api/v1/messages/m1/actions?context=message", "u1", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp VisibleResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "m1", resp.MessageID)
		assert.Equal(t, actions.GroupMenu, resp.Group)
		assert.Equal(t, []string{"quote-message", "reply-directly", "permalink", "copy", "report-message"},
			descriptorIDs(resp.Actions))
	})

	t.Run("html for htmx", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/messages/m1/actions?group=message", nil)
		req.Header.Set(middleware.HeaderUserID, "u1")
		req.Header.Set("HX-Request", "true")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `hx-post="/api/v1/messages/m1/actions/quote-message"`)
		assert.NotContains(t, rec.Body.String(), "permalink")
	})

	t.Run("unknown message", func(t *testing.T) {
		rec := request(e, http.MethodGet, "/api/v1/messages/nope/actions", "u1", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "message-not-found", decodeError(t, rec).Code)
	})

	t.Run("no user", func(t *testing.T) {
		rec := request(e, http.MethodGet, "/api/v1/messages/m1/actions", "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestInvoke(t *testing.T) {
	f := newFixture(t)
	e, _ := f.boot(t)

	t.Run("copy", func(t *testing.T) {
		rec := request(e, http.MethodPost, "/api/v1/messages/m1/actions/copy", "u1", `{"context":"threads"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp InvokeResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "copy", resp.Action)
		assert.Equal(t, "hello\nworld", resp.Result.Text)

		msg, ok := f.publisher.last(topics.ActionInvoked.Name())
		require.True(t, ok)
		evt, err := topics.ActionInvoked.Decode(msg)
		require.NoError(t, err)
		assert.Equal(t, "copy", evt.ActionID)
		assert.Equal(t, "threads", evt.Context)
	})

	t.Run("report without reason", func(t *testing.T) {
		rec := request(e, http.MethodPost, "/api/v1/messages/m1/actions/report-message", "u1", `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid-parameter", decodeError(t, rec).Code)
	})

	t.Run("report", func(t *testing.T) {
		rec := request(e, http.MethodPost, "/api/v1/messages/m1/actions/report-message", "u1", `{"reason":"spam"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, f.store.Reports(), 1)
		assert.Contains(t, f.publisher.topics(), topics.MessageReported.Name())
	})

	t.Run("action hidden for user", func(t *testing.T) {
		rec := request(e, http.MethodPost, "/api/v1/messages/m1/actions/delete-message", "u1", `{}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "action-not-available", decodeError(t, rec).Code)

		_, err := f.store.Message(t.Context(), "m1")
		assert.NoError(t, err)
	})

	t.Run("unknown action", func(t *testing.T) {
		rec := request(e, http.MethodPost, "/api/v1/messages/m1/actions/launch-rocket", "u1", `{}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "action-not-found", decodeError(t, rec).Code)
	})

	t.Run("invalid context", func(t *testing.T) {
		rec := request(e, http.MethodPost, "/api/v1/messages/m1/actions/copy", "u1", `{"context":"sidebar"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("author deletes", func(t *testing.T) {
		rec := request(e, http.MethodPost, "/api/v1/messages/m1/actions/delete-message", "u2", `{}`)
		require.Equal(t, http.StatusOK, rec.Code)

		_, err := f.store.Message(t.Context(), "m1")
		assert.ErrorIs(t, err, chat.ErrMessageNotFound)
		assert.Contains(t, f.publisher.topics(), topics.MessageDeleted.Name())
	})

	t.Run("htmx toast trigger", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/messages/m2/actions/permalink",
			strings.NewReader("context=message"))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
		req.Header.Set(middleware.HeaderUserID, "u1")
		req.Header.Set("HX-Request", "true")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"toast":"Copied"}`, rec.Header().Get("HX-Trigger"))
	})
}

func TestPermalinkEndpoint(t *testing.T) {
	f := newFixture(t)
	e, _ := f.boot(t)

	rec := request(e, http.MethodGet, "/api/v1/messages/m1/permalink", "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"permalink":"http://parley.test/channel/general?msg=m1"}`, rec.Body.String())

	rec = request(e, http.MethodGet, "/api/v1/messages/nope/permalink", "u1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	tests := []struct {
		name   string
		msgID  string
		userID string
	}{
		{"guest outside the channel", "m1", "u4"},
		{"moderator outside the direct room", "m3", "u3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := request(e, http.MethodGet, "/api/v1/messages/"+tt.msgID+"/permalink", tt.userID, "")
			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Equal(t, "error-not-allowed", decodeError(t, rec).Code)
			assert.NotContains(t, rec.Body.String(), "http://parley.test")
		})
	}
}

func TestModuleLifecycle(t *testing.T) {
	f := newFixture(t)
	_, m := f.boot(t)

	assert.Equal(t, "messageactions", m.Name())
	assert.Contains(t, f.publisher.topics(), topics.ActionsChanged.Name())

	before := len(f.publisher.topics())
	f.registry.Remove("copy")
	msg, ok := f.publisher.last(topics.ActionsChanged.Name())
	require.True(t, ok)
	evt, err := topics.ActionsChanged.Decode(msg)
	require.NoError(t, err)
	assert.Equal(t, 7, evt.Count)
	assert.Greater(t, len(f.publisher.topics()), before)
}

func TestShutdownUnregistersActions(t *testing.T) {
	f := newFixture(t)
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "scripts/actions.yaml", []byte(`
actions:
  - id: shout
    label: Shout
    groups: [menu]
    script: shout.tengo
`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "scripts/shout.tengo", []byte(`visible := true`), 0o644))

	f.registry.Register(actions.Descriptor{ID: "foreign", Label: "Foreign"})
	loader := script.NewLoader(fs, "scripts", script.NewEngine(script.DefaultSecurityLimits()), f.registry,
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	m := New(Dependencies{
		Registry:  f.registry,
		Store:     f.store,
		Publisher: f.publisher,
		BaseURL:   f.deps.BaseURL,
		Scripts:   loader,
		Now:       f.deps.Now,
	})
	reg := registry.New(&config.Config{})
	require.NoError(t, m.Register(reg))
	require.NoError(t, m.Boot(context.Background(), echo.New().Group("/api/v1"), reg))
	assert.Equal(t, 10, f.registry.Len(), "eight built-in, one scripted, one foreign")

	published := len(f.publisher.topics())
	require.NoError(t, m.Shutdown(context.Background()))
	require.NoError(t, m.Shutdown(context.Background()))

	assert.Equal(t, []string{"foreign"}, descriptorIDs(f.registry.All()))
	assert.Len(t, f.publisher.topics(), published, "no change events after detaching")
}
