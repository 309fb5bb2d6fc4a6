package pubsub

import (
	"context"
)

// Message is what travels on the bus.
type Message struct {
	Topic string
	// UserID is the user whose request caused the message. Direct websocket
	// routes deliver only to this user.
	UserID  string
	Payload []byte // JSON
	// Metadata is carried through the bus unchanged.
	Metadata map[string]string
}

// Handler processes one delivered message. Returning an error is logged
// and the message is still acknowledged.
type Handler func(ctx context.Context, msg Message) error

// Publisher sends messages. Publishing to a topic nobody subscribed to
// drops the message.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// Subscriber delivers messages on a topic to a handler in the background
// until ctx is canceled.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, handler Handler) error
	Close() error
}
