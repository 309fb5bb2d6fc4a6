package chat

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// RoomPath returns the client route of a room.
func RoomPath(r *Room) string {
	switch r.Type {
	case RoomChannel:
		return "/channel/" + url.PathEscape(r.Name)
	case RoomPrivate:
		return "/group/" + url.PathEscape(r.Name)
	case RoomDirect:
		return "/direct/" + url.PathEscape(r.ID)
	case RoomLive:
		return "/live/" + url.PathEscape(r.ID)
	default:
		return "/room/" + url.PathEscape(r.ID)
	}
}

// Permalink builds the absolute link to a message inside its room.
func Permalink(ctx context.Context, store Store, baseURL, msgID string) (string, error) {
	if msgID == "" {
		return "", ErrInvalidParameter
	}

	msg, err := store.Message(ctx, msgID)
	if err != nil {
		return "", err
	}
	room, err := store.Room(ctx, msg.RoomID)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s%s?msg=%s", strings.TrimRight(baseURL, "/"), RoomPath(room), url.QueryEscape(msgID)), nil
}
