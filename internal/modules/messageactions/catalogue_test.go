package messageactions

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/nfrund/parley/internal/actions"
	"github.com/nfrund/parley/internal/chat"
	"github.com/nfrund/parley/internal/modules/messageactions/events"
	"github.com/nfrund/parley/internal/modules/messageactions/topics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogueVisibility(t *testing.T) {
	f := newFixture(t)
	RegisterDefaults(f.registry, f.deps)
	require.Equal(t, 8, f.registry.Len())

	tests := []struct {
		name     string
		msgID    string
		userID   string
		group    actions.Group
		settings chat.Settings
		want     []string
	}{
		{
			name: "someone else's message", msgID: "m1", userID: "u1", group: actions.GroupMenu,
			want: []string{"quote-message", "reply-directly", "permalink", "copy", "report-message"},
		},
		{
			name: "own message with reactions", msgID: "m2", userID: "u1", group: actions.GroupMenu,
			want: []string{"quote-message", "reply-directly", "permalink", "copy", "edit-message",
				"report-message", "delete-message", "reaction-list"},
		},
		{
			name: "moderator edits and deletes others", msgID: "m1", userID: "u3", group: actions.GroupMenu,
			want: []string{"quote-message", "reply-directly", "permalink", "copy", "edit-message",
				"report-message", "delete-message"},
		},
		{
			name: "not subscribed sees only reactions", msgID: "m2", userID: "u4", group: actions.GroupMenu,
			want: []string{"reaction-list"},
		},
		{
			name: "message toolbar", msgID: "m1", userID: "u1", group: actions.GroupMessage,
			want: []string{"quote-message"},
		},
		{
			name: "no reply in direct rooms", msgID: "m3", userID: "u1", group: actions.GroupMenu,
			want: []string{"quote-message", "permalink", "copy", "report-message"},
		},
		{
			name: "edit window elapsed", msgID: "m1", userID: "u3", group: actions.GroupMenu,
			settings: chat.Settings{
				chat.SettingAllowEditing: true, chat.SettingBlockEditMinutes: 5,
				chat.SettingAllowDeleting: true, chat.SettingBlockDeleteMinutes: 5,
			},
			want: []string{"quote-message", "reply-directly", "permalink", "copy", "report-message"},
		},
		{
			name: "own edits and deletes disabled", msgID: "m2", userID: "u1", group: actions.GroupMenu,
			settings: chat.Settings{chat.SettingAllowEditing: false, chat.SettingAllowDeleting: false},
			want: []string{"quote-message", "reply-directly", "permalink", "copy", "report-message", "reaction-list"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ec := f.evalContext(t, tt.msgID, tt.userID, tt.settings)
			got := f.registry.Visible(ec, actions.ContextMessage, tt.group)
			assert.Equal(t, tt.want, descriptorIDs(got))
		})
	}
}

func TestReplyDirectlyWithoutCreatePermission(t *testing.T) {
	f := newFixture(t)
	RegisterDefaults(f.registry, f.deps)
	f.store.Subscribe(chat.Subscription{RoomID: "r1", UserID: "u4", Open: true})

	visible := func() bool {
		ec := f.evalContext(t, "m1", "u4", nil)
		_, ok := f.registry.Allowed("reply-directly", ec, actions.ContextMessage)
		return ok
	}
	assert.False(t, visible(), "guest cannot open a new direct room")

	dm := chat.DirectRoomID("u4", "u2")
	f.store.PutRoom(chat.Room{ID: dm, Type: chat.RoomDirect})
	assert.False(t, visible(), "direct room exists but guest has not joined it")

	f.store.Subscribe(chat.Subscription{RoomID: dm, UserID: "u4"})
	assert.True(t, visible())
}

func TestCatalogueHandlers(t *testing.T) {
	f := newFixture(t)
	RegisterDefaults(f.registry, f.deps)
	ctx := context.Background()

	run := func(id string, ec *actions.EvalContext, inv Invocation) (*actions.Result, error) {
		d, ok := f.registry.Get(id)
		require.True(t, ok)
		return d.Action(WithInvocation(ctx, inv), ec)
	}

	t.Run("reply directly", func(t *testing.T) {
		res, err := run("reply-directly", f.evalContext(t, "m1", "u1", nil), Invocation{})
		require.NoError(t, err)
		assert.Equal(t, "/direct/bob?reply=m1", res.Redirect)
	})

	t.Run("quote", func(t *testing.T) {
		res, err := run("quote-message", f.evalContext(t, "m1", "u1", nil), Invocation{})
		require.NoError(t, err)
		assert.Equal(t, "> hello\n> world", res.Text)
		assert.Equal(t, []string{"m1"}, res.Data["reply"])
	})

	t.Run("permalink", func(t *testing.T) {
		res, err := run("permalink", f.evalContext(t, "m1", "u1", nil), Invocation{})
		require.NoError(t, err)
		assert.Equal(t, "http://parley.test/channel/general?msg=m1", res.Text)
		assert.Equal(t, "Copied", res.Toast)
	})

	t.Run("copy", func(t *testing.T) {
		res, err := run("copy", f.evalContext(t, "m1", "u1", nil), Invocation{})
		require.NoError(t, err)
		assert.Equal(t, "hello\nworld", res.Text)
	})

	t.Run("edit", func(t *testing.T) {
		res, err := run("edit-message", f.evalContext(t, "m2", "u1", nil), Invocation{})
		require.NoError(t, err)
		assert.Equal(t, "m2", res.Data["edit"])
		assert.Equal(t, "m2", res.Data["target"])
	})

	t.Run("reactions", func(t *testing.T) {
		res, err := run("reaction-list", f.evalContext(t, "m2", "u1", nil), Invocation{})
		require.NoError(t, err)
		assert.Contains(t, res.Data["reactions"], ":+1:")
	})

	t.Run("report needs a reason", func(t *testing.T) {
		_, err := run("report-message", f.evalContext(t, "m1", "u1", nil), Invocation{Reason: "   "})
		assert.True(t, errors.Is(err, chat.ErrInvalidParameter))
		assert.Empty(t, f.store.Reports())
	})

	t.Run("report", func(t *testing.T) {
		res, err := run("report-message", f.evalContext(t, "m1", "u1", nil), Invocation{Reason: "spam"})
		require.NoError(t, err)
		assert.Equal(t, "Report_sent", res.Toast)

		reports := f.store.Reports()
		require.Len(t, reports, 1)
		assert.Equal(t, "m1", reports[0].MessageID)
		assert.Equal(t, "spam", reports[0].Reason)
		assert.Equal(t, reports[0].ID, res.Data["report"])

		msg, ok := f.publisher.last(topics.MessageReported.Name())
		require.True(t, ok)
		var evt events.MessageReported
		require.NoError(t, json.Unmarshal(msg.Payload, &evt))
		assert.Equal(t, reports[0].ID, evt.ReportID)
		assert.Equal(t, "u1", msg.UserID)
	})

	t.Run("delete", func(t *testing.T) {
		ec := f.evalContext(t, "m2", "u1", nil)
		res, err := run("delete-message", ec, Invocation{})
		require.NoError(t, err)
		assert.Equal(t, "Deleted", res.Toast)

		_, err = f.store.Message(ctx, "m2")
		assert.True(t, errors.Is(err, chat.ErrMessageNotFound))

		msg, ok := f.publisher.last(topics.MessageDeleted.Name())
		require.True(t, ok)
		evt, err := topics.MessageDeleted.Decode(msg)
		require.NoError(t, err)
		assert.Equal(t, "m2", evt.MessageID)
		assert.Equal(t, "r1", evt.RoomID)
	})
}

func TestBuildEvalContext(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, err := f.store.User(ctx, "u1")
	require.NoError(t, err)
	guest, err := f.store.User(ctx, "u4")
	require.NoError(t, err)

	ec, err := BuildEvalContext(ctx, f.store, chat.DefaultSettings(), "m1", alice)
	require.NoError(t, err)
	assert.Equal(t, "m1", ec.Message.ID)
	assert.Equal(t, "general", ec.Room.Name)
	require.NotNil(t, ec.Subscription)

	ec, err = BuildEvalContext(ctx, f.store, nil, "m1", guest)
	require.NoError(t, err)
	assert.Nil(t, ec.Subscription)

	_, err = BuildEvalContext(ctx, f.store, nil, "", alice)
	assert.True(t, errors.Is(err, chat.ErrInvalidParameter))
	_, err = BuildEvalContext(ctx, f.store, nil, "nope", alice)
	assert.True(t, errors.Is(err, chat.ErrMessageNotFound))
}
