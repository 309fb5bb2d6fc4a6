package chat

import (
	"context"
	"time"
)

// Report is a user's complaint about a message.
type Report struct {
	ID        string    `json:"id"`
	MessageID string    `json:"message_id"`
	UserID    string    `json:"user_id"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is the data access the message actions need.
type Store interface {
	Message(ctx context.Context, id string) (*Message, error)
	Room(ctx context.Context, id string) (*Room, error)
	User(ctx context.Context, id string) (*User, error)
	// Subscription returns nil, nil when the user has not joined the room.
	Subscription(ctx context.Context, roomID, userID string) (*Subscription, error)
	DeleteMessage(ctx context.Context, id string) error
	ReportMessage(ctx context.Context, r Report) error
	// MessagesBetween returns messages with from <= ts < to.
	MessagesBetween(ctx context.Context, from, to time.Time) ([]Message, error)
}
