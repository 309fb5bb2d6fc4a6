package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nfrund/parley/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHTMLWebsocket_CatalogueFragment checks the htmx channel with an
// independent client implementation.
func TestHTMLWebsocket_CatalogueFragment(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.E)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	header := http.Header{}
	header.Set(middleware.HeaderUserID, "admin")
	htmlWsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/html"
	htmlConn, _, err := websocket.DefaultDialer.DialContext(ctx, htmlWsURL, header)
	require.NoError(t, err)
	defer htmlConn.Close()
	require.Eventually(t, func() bool { return s.ws.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	s.Actions.Remove("reaction-list")

	require.NoError(t, htmlConn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, p, err := htmlConn.ReadMessage()
	require.NoError(t, err)

	html := string(p)
	assert.Contains(t, html, `id="actions-catalogue"`)
	assert.Contains(t, html, "quote-message")
	assert.NotContains(t, html, "reaction-list")
}

func TestHTMLWebsocket_RequiresUser(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.E)
	defer ts.Close()

	htmlWsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/html"
	_, resp, err := websocket.DefaultDialer.Dial(htmlWsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
