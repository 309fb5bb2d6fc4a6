package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermalink(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.PutRoom(Room{ID: "r1", Type: RoomChannel, Name: "general"})
	store.PutRoom(Room{ID: "alicebob", Type: RoomDirect})
	store.PutMessage(Message{ID: "m1", RoomID: "r1"})
	store.PutMessage(Message{ID: "m2", RoomID: "alicebob"})
	store.PutMessage(Message{ID: "m3", RoomID: "gone"})

	t.Run("channel message", func(t *testing.T) {
		link, err := Permalink(ctx, store, "https://chat.example.com/", "m1")
		require.NoError(t, err)
		assert.Equal(t, "https://chat.example.com/channel/general?msg=m1", link)
	})

	t.Run("direct message", func(t *testing.T) {
		link, err := Permalink(ctx, store, "https://chat.example.com", "m2")
		require.NoError(t, err)
		assert.Equal(t, "https://chat.example.com/direct/alicebob?msg=m2", link)
	})

	t.Run("empty id", func(t *testing.T) {
		_, err := Permalink(ctx, store, "", "")
		assert.ErrorIs(t, err, ErrInvalidParameter)
	})

	t.Run("unknown message", func(t *testing.T) {
		_, err := Permalink(ctx, store, "", "nope")
		assert.ErrorIs(t, err, ErrMessageNotFound)
	})

	t.Run("unknown room", func(t *testing.T) {
		_, err := Permalink(ctx, store, "", "m3")
		assert.ErrorIs(t, err, ErrRoomNotFound)
	})
}

func TestDirectRoomID(t *testing.T) {
	tests := []struct {
		a, b string
		want string
	}{
		{"bob", "alice", "alicebob"},
		{"alice", "bob", "alicebob"},
		{"u2", "u1", "u1u2"},
		{"u1", "u1", "u1u1"},
	}
	for _, tt := range tests {
		t.Run(tt.a+"+"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, DirectRoomID(tt.a, tt.b))
			assert.Equal(t, DirectRoomID(tt.b, tt.a), DirectRoomID(tt.a, tt.b))
		})
	}
}
