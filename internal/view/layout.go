package view

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"maragu.dev/gomponents"
)

const htmxSrc = "https://unpkg.com/htmx.org@2.0.4"

// Page wraps body in the HTML shell that loads htmx.
func Page(title string, body gomponents.Node) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>`+
			templ.EscapeString(title)+`</title><script src="`+htmxSrc+`"></script></head><body>`); err != nil {
			return err
		}
		if err := AdaptGomponentToTempl(body).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}
