package components

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/nfrund/parley/internal/actions"
	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	. "maragu.dev/gomponents/html"
)

// InvokePath is the endpoint a menu button posts to.
func InvokePath(msgID, actionID string) string {
	return fmt.Sprintf("/api/v1/messages/%s/actions/%s", url.PathEscape(msgID), url.PathEscape(actionID))
}

func buttonClass(d actions.Descriptor) string {
	classes := []string{"message-action"}
	if d.Color != "" {
		classes = append(classes, "message-action--"+d.Color)
	}
	if d.Classes != "" {
		classes = append(classes, d.Classes)
	}
	return strings.Join(classes, " ")
}

// ActionMenu renders the visible actions of one message as an htmx-driven menu.
// Each button posts to the invoke endpoint with the UI context.
func ActionMenu(msgID string, context actions.Context, ds []actions.Descriptor) g.Node {
	vals, _ := json.Marshal(map[string]string{"context": string(context)})

	return Ul(
		ID("message-actions-"+msgID),
		Class("message-actions"),
		Role("menu"),
		g.If(len(ds) == 0, Li(Class("message-actions__empty"), g.Text("No actions available"))),
		g.Map(ds, func(d actions.Descriptor) g.Node {
			return Li(
				Role("none"),
				Button(
					Type("button"),
					Role("menuitem"),
					Class(buttonClass(d)),
					Data("action", d.ID),
					hx.Post(InvokePath(msgID, d.ID)),
					hx.Vals(string(vals)),
					hx.Swap("none"),
					g.If(d.Icon != "", Span(Class("icon icon-"+d.Icon), Aria("hidden", "true"))),
					g.Text(actions.DisplayLabel(d.Label)),
				),
			)
		}),
	)
}

func joinTags[T ~string](tags []T) string {
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}

// CatalogueTable renders every registered action for operators.
func CatalogueTable(ds []actions.Descriptor) g.Node {
	return Div(
		ID("actions-catalogue"),
		hx.Get("/api/v1/actions?format=html"),
		hx.Trigger("actions-changed from:body"),
		hx.Select("#actions-catalogue"),
		hx.Swap("outerHTML"),
		H1(g.Text("Message actions")),
		Table(
			THead(Tr(
				Th(g.Text("Order")), Th(g.Text("ID")), Th(g.Text("Label")),
				Th(g.Text("Groups")), Th(g.Text("Contexts")),
			)),
			TBody(g.Map(ds, func(d actions.Descriptor) g.Node {
				contexts := joinTags(d.Contexts)
				if contexts == "" {
					contexts = "all"
				}
				return Tr(
					Td(g.Textf("%d", d.Order)),
					Td(Code(g.Text(d.ID))),
					Td(g.Text(actions.DisplayLabel(d.Label))),
					Td(g.Text(joinTags(d.Groups))),
					Td(g.Text(contexts)),
				)
			})),
		),
	)
}
