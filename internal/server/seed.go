package server

import (
	"time"

	"github.com/nfrund/parley/internal/chat"
)

// SeedDemo fills an empty in-memory store with a small workspace: an admin,
// a moderator, two users and a guest, the #general channel, a direct room
// between alice and bob, and a few messages around now.
func SeedDemo(store *chat.MemoryStore, now time.Time) {
	users := []chat.User{
		{ID: "admin", Username: "admin", Roles: []string{"admin"}},
		{ID: "mod", Username: "mod", Roles: []string{"moderator"}},
		{ID: "alice", Username: "alice", Roles: []string{"user"}},
		{ID: "bob", Username: "bob", Roles: []string{"user"}},
		{ID: "guest", Username: "guest", Roles: []string{"guest"}},
	}
	for _, u := range users {
		store.PutUser(u)
	}

	store.PutRoom(chat.Room{ID: "general", Type: chat.RoomChannel, Name: "general"})
	for _, u := range users[:4] {
		store.Subscribe(chat.Subscription{RoomID: "general", UserID: u.ID, Open: true})
	}
	direct := chat.DirectRoomID("alice", "bob")
	store.PutRoom(chat.Room{ID: direct, Type: chat.RoomDirect, Members: []string{"alice", "bob"}})
	store.Subscribe(chat.Subscription{RoomID: direct, UserID: "alice", Open: true})
	store.Subscribe(chat.Subscription{RoomID: direct, UserID: "bob", Open: true})

	msgs := []chat.Message{
		{ID: "welcome", RoomID: "general", Text: "Welcome to #general", User: chat.UserRef{ID: "admin", Username: "admin"}, Timestamp: now.Add(-2 * time.Hour)},
		{ID: "hello", RoomID: "general", Text: "hello everyone", User: chat.UserRef{ID: "alice", Username: "alice"}, Timestamp: now.Add(-30 * time.Minute),
			Reactions: map[string]chat.Reaction{":wave:": {Usernames: []string{"bob"}}}},
		{ID: "lunch", RoomID: "general", Text: "lunch?", User: chat.UserRef{ID: "bob", Username: "bob"}, Timestamp: now.Add(-5 * time.Minute)},
		{ID: "secret", RoomID: direct, Text: "psst", User: chat.UserRef{ID: "bob", Username: "bob"}, Timestamp: now.Add(-time.Minute)},
	}
	for _, m := range msgs {
		store.PutMessage(m)
	}
}
