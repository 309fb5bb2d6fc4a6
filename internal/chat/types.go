package chat

import (
	"errors"
	"time"
)

// RoomType is the single-letter room kind used in routes and permissions.
type RoomType string

const (
	RoomChannel RoomType = "c" // Public channel
	RoomPrivate RoomType = "p" // Private group
	RoomDirect  RoomType = "d" // Direct message
	RoomLive    RoomType = "l" // Omnichannel live chat
)

var (
	ErrInvalidParameter = errors.New("invalid-parameter")
	ErrMessageNotFound  = errors.New("message-not-found")
	ErrRoomNotFound     = errors.New("room-not-found")
	ErrUserNotFound     = errors.New("user-not-found")
)

// UserRef is the author snapshot embedded in a message.
type UserRef struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
}

// Reaction lists the usernames that reacted with one emoji.
type Reaction struct {
	Usernames []string `json:"usernames"`
}

// Message is a chat message.
type Message struct {
	ID        string              `json:"_id"`
	RoomID    string              `json:"rid"`
	ThreadID  string              `json:"tmid,omitempty"`
	Text      string              `json:"msg"`
	User      UserRef             `json:"u"`
	Timestamp time.Time           `json:"ts"`
	Reactions map[string]Reaction `json:"reactions,omitempty"`
}

// User is an account.
type User struct {
	ID       string   `json:"_id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles,omitempty"`
}

// Room is a conversation.
type Room struct {
	ID   string   `json:"_id"`
	Type RoomType `json:"t"`
	Name string   `json:"name,omitempty"`
	// Members is set for direct rooms.
	Members []string `json:"uids,omitempty"`
}

// Subscription links a user to a room they joined.
type Subscription struct {
	RoomID string `json:"rid"`
	UserID string `json:"u"`
	Open   bool   `json:"open"`
}

// Settings is the subset of workspace settings conditions read.
type Settings map[string]any

// Well-known setting keys.
const (
	SettingAllowEditing       = "Message_AllowEditing"
	SettingBlockEditMinutes   = "Message_AllowEditing_BlockEditInMinutes"
	SettingAllowDeleting      = "Message_AllowDeleting"
	SettingBlockDeleteMinutes = "Message_AllowDeleting_BlockDeleteInMinutes"
)

// DefaultSettings returns the workspace defaults: editing and deleting own
// messages allowed with no time limit.
func DefaultSettings() Settings {
	return Settings{
		SettingAllowEditing:       true,
		SettingBlockEditMinutes:   0,
		SettingAllowDeleting:      true,
		SettingBlockDeleteMinutes: 0,
	}
}

// Bool reads a boolean setting, false when missing or mistyped.
func (s Settings) Bool(key string) bool {
	v, _ := s[key].(bool)
	return v
}

// Int reads a numeric setting. JSON-decoded numbers arrive as float64.
func (s Settings) Int(key string) int {
	switch v := s[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// DirectRoomID is the id of the direct room between two users: both ids
// sorted and concatenated.
func DirectRoomID(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + b
}
