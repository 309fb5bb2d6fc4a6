package rendering

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"maragu.dev/gomponents"
	"maragu.dev/gomponents/html"
)

func TestRenderComponent(t *testing.T) {
	r := New()

	out, err := r.RenderComponent(context.Background(), html.Span(gomponents.Text("a<b")))
	require.NoError(t, err)
	assert.Equal(t, "<span>a&lt;b</span>", string(out))

	tc := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<em>templ</em>")
		return err
	})
	out, err = r.RenderComponent(context.Background(), tc)
	require.NoError(t, err)
	assert.Equal(t, "<em>templ</em>", string(out))

	_, err = r.RenderComponent(context.Background(), 42)
	assert.Error(t, err)
}

func TestRenderThroughEcho(t *testing.T) {
	e := echo.New()
	e.Renderer = New()
	e.GET("/", func(c echo.Context) error {
		return c.Render(http.StatusOK, "", html.P(gomponents.Text("hi")))
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<p>hi</p>", rec.Body.String())
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/html")
}
