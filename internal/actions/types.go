package actions

import (
	"context"
	"slices"

	"github.com/nfrund/parley/internal/chat"
)

// Group is a category tag that selects the UI surface an action appears on.
type Group string

const (
	GroupMessage Group = "message" // Inline message toolbar
	GroupMenu    Group = "menu"    // Overflow menu; the default group
)

// Context restricts the UI location where an action is valid.
type Context string

const (
	ContextMessage       Context = "message"
	ContextMessageMobile Context = "message-mobile"
	ContextThreads       Context = "threads"
)

// EvalContext is the record passed to condition predicates. It is also the
// input of the memoization key, so every field must serialize to JSON.
type EvalContext struct {
	Message      *chat.Message      `json:"msg,omitempty"`
	User         *chat.User         `json:"u,omitempty"`
	Room         *chat.Room         `json:"room,omitempty"`
	Subscription *chat.Subscription `json:"subscription,omitempty"`
	Settings     chat.Settings      `json:"settings,omitempty"`
}

// ConditionFunc decides whether an action is visible for an evaluation context.
// It must be a pure function of its input.
type ConditionFunc func(ec *EvalContext) bool

// Result is what a handler hands back to the caller that invoked it.
type Result struct {
	// Toast is an optional notification key for the UI.
	Toast string `json:"toast,omitempty"`
	// Text carries clipboard content, a permalink or an intent payload.
	Text string `json:"text,omitempty"`
	// Redirect asks the UI to navigate.
	Redirect string         `json:"redirect,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// Handler performs the side effect of an action. The registry never calls it.
type Handler func(ctx context.Context, ec *EvalContext) (*Result, error)

// Descriptor describes one invocable, conditionally visible action.
type Descriptor struct {
	ID      string `json:"id"`
	Icon    string `json:"icon,omitempty"`
	Label   string `json:"label,omitempty"`
	Color   string `json:"color,omitempty"`
	Classes string `json:"classes,omitempty"`
	Order   int    `json:"order"`

	// Groups lists every group the action belongs to. Empty means GroupMenu.
	Groups []Group `json:"group"`
	// Contexts restricts where the action surfaces. Nil means everywhere.
	Contexts []Context `json:"context,omitempty"`

	Condition ConditionFunc `json:"-"`
	Action    Handler       `json:"-"`
}

// InGroup reports whether the descriptor carries the group tag.
func (d Descriptor) InGroup(g Group) bool {
	return slices.Contains(d.Groups, g)
}

// ValidIn reports whether the descriptor may surface in the given context.
func (d Descriptor) ValidIn(c Context) bool {
	return c == "" || d.Contexts == nil || slices.Contains(d.Contexts, c)
}

func (d Descriptor) clone() Descriptor {
	d.Groups = slices.Clone(d.Groups)
	d.Contexts = slices.Clone(d.Contexts)
	return d
}

// Patch holds the fields Update merges into an existing descriptor.
// Nil fields are left untouched.
type Patch struct {
	Icon      *string
	Label     *string
	Color     *string
	Classes   *string
	Order     *int
	Groups    []Group
	Contexts  []Context
	Condition ConditionFunc
	Action    Handler
}

func (p Patch) apply(d *Descriptor) {
	if p.Icon != nil {
		d.Icon = *p.Icon
	}
	if p.Label != nil {
		d.Label = *p.Label
	}
	if p.Color != nil {
		d.Color = *p.Color
	}
	if p.Classes != nil {
		d.Classes = *p.Classes
	}
	if p.Order != nil {
		d.Order = *p.Order
	}
	if p.Groups != nil {
		d.Groups = normalizeGroups(p.Groups)
	}
	if p.Contexts != nil {
		d.Contexts = slices.Clone(p.Contexts)
	}
	if p.Condition != nil {
		d.Condition = p.Condition
	}
	if p.Action != nil {
		d.Action = p.Action
	}
}

// normalizeGroups de-duplicates the tags, keeping first-seen order.
func normalizeGroups(in []Group) []Group {
	out := make([]Group, 0, len(in))
	for _, g := range in {
		if g == "" || slices.Contains(out, g) {
			continue
		}
		out = append(out, g)
	}
	if len(out) == 0 {
		out = append(out, GroupMenu)
	}
	return out
}
