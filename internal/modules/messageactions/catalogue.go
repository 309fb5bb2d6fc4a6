package messageactions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nfrund/parley/internal/actions"
	"github.com/nfrund/parley/internal/chat"
	"github.com/nfrund/parley/internal/modules/messageactions/events"
	"github.com/nfrund/parley/internal/modules/messageactions/topics"
	"github.com/nfrund/parley/internal/pubsub"
)

var allContexts = []actions.Context{actions.ContextMessage, actions.ContextMessageMobile, actions.ContextThreads}

// ErrReasonRequired is returned when a report carries no reason.
var ErrReasonRequired = fmt.Errorf("%w: You_need_to_write_something", chat.ErrInvalidParameter)

// CatalogueDeps are the services the built-in actions use.
type CatalogueDeps struct {
	Store     chat.Store
	Publisher pubsub.Publisher
	BaseURL   string
	Now       func() time.Time
	Logger    *slog.Logger
}

type catalogue struct {
	CatalogueDeps
}

// Catalogue returns the built-in message actions in registration order.
func Catalogue(deps CatalogueDeps) []actions.Descriptor {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	c := catalogue{deps}

	return []actions.Descriptor{
		{
			ID:        "reply-directly",
			Icon:      "reply-directly",
			Label:     "Reply_in_direct_message",
			Order:     0,
			Groups:    []actions.Group{actions.GroupMenu},
			Contexts:  allContexts,
			Condition: c.canReplyDirectly,
			Action:    c.replyDirectly,
		},
		{
			ID:        "quote-message",
			Icon:      "quote",
			Label:     "Quote",
			Order:     -3,
			Groups:    []actions.Group{actions.GroupMessage, actions.GroupMenu},
			Contexts:  allContexts,
			Condition: subscribed,
			Action:    c.quote,
		},
		{
			ID:        "permalink",
			Icon:      "permalink",
			Label:     "Get_link",
			Classes:   "clipboard",
			Order:     4,
			Groups:    []actions.Group{actions.GroupMenu},
			Contexts:  allContexts,
			Condition: subscribed,
			Action:    c.permalink,
		},
		{
			ID:        "copy",
			Icon:      "copy",
			Label:     "Copy",
			Classes:   "clipboard",
			Order:     5,
			Groups:    []actions.Group{actions.GroupMenu},
			Contexts:  allContexts,
			Condition: subscribed,
			Action:    c.copyText,
		},
		{
			ID:        "edit-message",
			Icon:      "edit",
			Label:     "Edit",
			Order:     6,
			Groups:    []actions.Group{actions.GroupMenu},
			Contexts:  allContexts,
			Condition: c.canEdit,
			Action:    c.edit,
		},
		{
			ID:        "delete-message",
			Icon:      "trash",
			Label:     "Delete",
			Color:     "alert",
			Order:     18,
			Groups:    []actions.Group{actions.GroupMenu},
			Contexts:  allContexts,
			Condition: c.canDelete,
			Action:    c.deleteMessage,
		},
		{
			ID:        "report-message",
			Icon:      "report",
			Label:     "Report",
			Color:     "alert",
			Order:     17,
			Groups:    []actions.Group{actions.GroupMenu},
			Contexts:  allContexts,
			Condition: subscribed,
			Action:    c.report,
		},
		{
			ID:        "reaction-list",
			Icon:      "emoji",
			Label:     "Reactions",
			Order:     18,
			Groups:    []actions.Group{actions.GroupMenu},
			Contexts:  allContexts,
			Condition: hasReactions,
			Action:    reactions,
		},
	}
}

// RegisterDefaults registers the built-in actions into reg.
func RegisterDefaults(reg *actions.Registry, deps CatalogueDeps) {
	for _, d := range Catalogue(deps) {
		reg.Register(d)
	}
}

func subscribed(ec *actions.EvalContext) bool {
	return ec.Subscription != nil
}

func hasReactions(ec *actions.EvalContext) bool {
	return ec.Message != nil && len(ec.Message.Reactions) > 0
}

func (c catalogue) canReplyDirectly(ec *actions.EvalContext) bool {
	if ec.Subscription == nil || ec.Room == nil || ec.Message == nil || ec.User == nil {
		return false
	}
	if ec.Room.Type == chat.RoomDirect || ec.Room.Type == chat.RoomLive {
		return false
	}
	if ec.User.ID == ec.Message.User.ID || chat.HasPermission(ec.User, chat.PermCreateDirect) {
		return true
	}

	// Without create-d the user may only reuse a direct room they already joined.
	ctx := context.Background()
	dm, err := c.Store.Room(ctx, chat.DirectRoomID(ec.User.ID, ec.Message.User.ID))
	if err != nil {
		if !errors.Is(err, chat.ErrRoomNotFound) {
			c.Logger.Warn("Failed to look up direct room", "error", err)
		}
		return false
	}
	sub, err := c.Store.Subscription(ctx, dm.ID, ec.User.ID)
	if err != nil {
		c.Logger.Warn("Failed to look up direct room subscription", "room", dm.ID, "error", err)
		return false
	}
	return sub != nil
}

func (c catalogue) canEdit(ec *actions.EvalContext) bool {
	return ec.Subscription != nil && chat.CanEditMessage(ec.User, ec.Message, ec.Settings, c.Now())
}

func (c catalogue) canDelete(ec *actions.EvalContext) bool {
	return ec.Subscription != nil && chat.CanDeleteMessage(ec.User, ec.Message, ec.Settings, c.Now())
}

func (c catalogue) replyDirectly(ctx context.Context, ec *actions.EvalContext) (*actions.Result, error) {
	msg := ec.Message
	return &actions.Result{
		Redirect: "/direct/" + url.PathEscape(msg.User.Username) + "?reply=" + url.QueryEscape(msg.ID),
	}, nil
}

func (c catalogue) quote(ctx context.Context, ec *actions.EvalContext) (*actions.Result, error) {
	msg := ec.Message
	lines := strings.Split(msg.Text, "\n")
	for i, l := range lines {
		lines[i] = "> " + l
	}
	return &actions.Result{
		Text: strings.Join(lines, "\n"),
		Data: map[string]any{"reply": []string{msg.ID}, "thread": msg.ThreadID},
	}, nil
}

func (c catalogue) permalink(ctx context.Context, ec *actions.EvalContext) (*actions.Result, error) {
	link, err := chat.Permalink(ctx, c.Store, c.BaseURL, ec.Message.ID)
	if err != nil {
		return nil, err
	}
	return &actions.Result{Text: link, Toast: "Copied"}, nil
}

func (c catalogue) copyText(ctx context.Context, ec *actions.EvalContext) (*actions.Result, error) {
	return &actions.Result{Text: ec.Message.Text, Toast: "Copied"}, nil
}

func (c catalogue) edit(ctx context.Context, ec *actions.EvalContext) (*actions.Result, error) {
	target := ec.Message.ID
	if ec.Message.ThreadID != "" {
		target = "thread-" + ec.Message.ID
	}
	return &actions.Result{
		Text: ec.Message.Text,
		Data: map[string]any{"edit": ec.Message.ID, "target": target},
	}, nil
}

func (c catalogue) deleteMessage(ctx context.Context, ec *actions.EvalContext) (*actions.Result, error) {
	msg := ec.Message
	if err := c.Store.DeleteMessage(ctx, msg.ID); err != nil {
		return nil, err
	}

	err := pubsub.Publish(ctx, c.Publisher, topics.MessageDeleted, ec.User.ID, events.MessageDeleted{
		MessageID: msg.ID,
		RoomID:    msg.RoomID,
		UserID:    ec.User.ID,
		Timestamp: c.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		c.Logger.Error("Failed to publish message deleted event", "message", msg.ID, "error", err)
	}
	return &actions.Result{Toast: "Deleted"}, nil
}

func (c catalogue) report(ctx context.Context, ec *actions.EvalContext) (*actions.Result, error) {
	reason := strings.TrimSpace(InvocationFrom(ctx).Reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}

	now := c.Now()
	r := chat.Report{
		ID:        uuid.NewString(),
		MessageID: ec.Message.ID,
		UserID:    ec.User.ID,
		Reason:    reason,
		CreatedAt: now,
	}
	if err := c.Store.ReportMessage(ctx, r); err != nil {
		return nil, err
	}

	err := pubsub.Publish(ctx, c.Publisher, topics.MessageReported, ec.User.ID, events.MessageReported{
		ReportID:  r.ID,
		MessageID: r.MessageID,
		UserID:    r.UserID,
		Reason:    r.Reason,
		Timestamp: now.UTC().Format(time.RFC3339),
	})
	if err != nil {
		c.Logger.Error("Failed to publish message reported event", "message", r.MessageID, "error", err)
	}
	return &actions.Result{Toast: "Report_sent", Data: map[string]any{"report": r.ID}}, nil
}

func reactions(ctx context.Context, ec *actions.EvalContext) (*actions.Result, error) {
	return &actions.Result{Data: map[string]any{"reactions": ec.Message.Reactions}}, nil
}
