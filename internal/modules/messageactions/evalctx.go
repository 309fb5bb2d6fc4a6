package messageactions

import (
	"context"
	"maps"

	"github.com/nfrund/parley/internal/actions"
	"github.com/nfrund/parley/internal/chat"
)

// BuildEvalContext loads the message, its room and the user's subscription
// into the record action conditions see. A user who has not joined the room
// gets a nil subscription.
func BuildEvalContext(ctx context.Context, store chat.Store, settings chat.Settings, msgID string, user *chat.User) (*actions.EvalContext, error) {
	if msgID == "" || user == nil {
		return nil, chat.ErrInvalidParameter
	}

	msg, err := store.Message(ctx, msgID)
	if err != nil {
		return nil, err
	}
	room, err := store.Room(ctx, msg.RoomID)
	if err != nil {
		return nil, err
	}
	sub, err := store.Subscription(ctx, room.ID, user.ID)
	if err != nil {
		return nil, err
	}

	return &actions.EvalContext{
		Message:      msg,
		User:         user,
		Room:         room,
		Subscription: sub,
		Settings:     maps.Clone(settings),
	}, nil
}
