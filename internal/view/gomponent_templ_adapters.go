package view

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"maragu.dev/gomponents"
)

type gomponentComponent struct {
	node gomponents.Node
}

func (a gomponentComponent) Render(ctx context.Context, w io.Writer) error {
	return a.node.Render(w)
}

// AdaptGomponentToTempl lets a gomponents node render inside templ layouts.
func AdaptGomponentToTempl(node gomponents.Node) templ.Component {
	return gomponentComponent{node: node}
}

type templNode struct {
	component templ.Component
}

func (a templNode) Render(w io.Writer) error {
	return a.component.Render(context.Background(), w)
}

// AdaptTemplToGomponent lets a templ component render inside a gomponents
// tree. The component is rendered with a background context.
func AdaptTemplToGomponent(component templ.Component) gomponents.Node {
	return templNode{component: component}
}
