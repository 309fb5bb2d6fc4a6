package chat

import (
	"context"
	"testing"
	"time"

	"github.com/nfrund/parley/internal/config"
	"github.com/nfrund/parley/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSurrealStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	cfg := config.New()
	if cfg.GetDBUrl() == "" {
		t.Skip("SURREAL_URL not set")
	}
	ctx := context.Background()
	db, err := database.NewDB(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		for _, table := range []string{"message", "room", "user", "subscription", "report"} {
			_ = database.Execute(ctx, db, "DELETE "+table, nil)
		}
		db.Close(ctx)
	})

	require.NoError(t, database.Execute(ctx, db,
		"CREATE type::thing('room', 'r1') CONTENT { t: 'c', name: 'general' }", nil))
	require.NoError(t, database.Execute(ctx, db,
		"CREATE type::thing('user', 'u1') CONTENT { username: 'alice', roles: ['user'] }", nil))
	require.NoError(t, database.Execute(ctx, db,
		"CREATE subscription CONTENT { rid: 'r1', u: 'u1', open: true }", nil))

	s := NewSurrealStore(db)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.CreateMessage(ctx, Message{
		ID: "m1", RoomID: "r1", Text: "hello",
		User: UserRef{ID: "u1", Username: "alice"}, Timestamp: now,
	}))

	msg, err := s.Message(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Text)
	assert.True(t, msg.Timestamp.Equal(now))

	room, err := s.Room(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, RoomChannel, room.Type)

	link, err := Permalink(ctx, s, "http://parley.test", "m1")
	require.NoError(t, err)
	assert.Equal(t, "http://parley.test/channel/general?msg=m1", link)

	sub, err := s.Subscription(ctx, "r1", "u1")
	require.NoError(t, err)
	assert.NotNil(t, sub)

	msgs, err := s.MessagesBetween(ctx, now.Add(-time.Minute), now.Add(time.Minute))
	require.NoError(t, err)
	assert.Len(t, msgs, 1)

	require.NoError(t, s.DeleteMessage(ctx, "m1"))
	_, err = s.Message(ctx, "m1")
	assert.ErrorIs(t, err, ErrMessageNotFound)
}
