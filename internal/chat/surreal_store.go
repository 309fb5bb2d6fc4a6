package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/nfrund/parley/internal/database"
	"github.com/surrealdb/surrealdb.go"
)

// tsLayout is fixed-width so stored timestamps compare lexically in time order.
const tsLayout = "2006-01-02T15:04:05.000000000Z"

type messageRow struct {
	ID        string              `json:"_id"`
	RoomID    string              `json:"rid"`
	ThreadID  string              `json:"tmid,omitempty"`
	Text      string              `json:"msg"`
	UserID    string              `json:"user_id"`
	Username  string              `json:"username"`
	TS        string              `json:"ts"`
	Reactions map[string]Reaction `json:"reactions,omitempty"`
}

func (r messageRow) toMessage() Message {
	ts, _ := time.Parse(tsLayout, r.TS)
	return Message{
		ID:        r.ID,
		RoomID:    r.RoomID,
		ThreadID:  r.ThreadID,
		Text:      r.Text,
		User:      UserRef{ID: r.UserID, Username: r.Username},
		Timestamp: ts,
		Reactions: r.Reactions,
	}
}

// SurrealStore reads and writes chat data in SurrealDB.
type SurrealStore struct {
	db *surrealdb.DB
}

// NewSurrealStore creates a store on an already scoped connection.
func NewSurrealStore(db *surrealdb.DB) *SurrealStore {
	return &SurrealStore{db: db}
}

const messageFields = "meta::id(id) AS _id, rid, tmid, msg, user_id, username, ts, reactions"

// CreateMessage stores a message under its id.
func (s *SurrealStore) CreateMessage(ctx context.Context, m Message) error {
	query := `CREATE type::thing('message', $id) CONTENT {
		rid: $rid, tmid: $tmid, msg: $msg, user_id: $user_id,
		username: $username, ts: $ts, reactions: $reactions
	}`
	params := map[string]any{
		"id":        m.ID,
		"rid":       m.RoomID,
		"tmid":      m.ThreadID,
		"msg":       m.Text,
		"user_id":   m.User.ID,
		"username":  m.User.Username,
		"ts":        m.Timestamp.UTC().Format(tsLayout),
		"reactions": m.Reactions,
	}
	if err := database.Execute(ctx, s.db, query, params); err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (s *SurrealStore) Message(ctx context.Context, id string) (*Message, error) {
	query := "SELECT " + messageFields + " FROM type::thing('message', $id)"
	row, err := database.QueryOne[messageRow](ctx, s.db, query, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to load message: %w", err)
	}
	if row == nil {
		return nil, fmt.Errorf("message %s: %w", id, ErrMessageNotFound)
	}
	m := row.toMessage()
	return &m, nil
}

func (s *SurrealStore) Room(ctx context.Context, id string) (*Room, error) {
	query := "SELECT meta::id(id) AS _id, t, name, uids FROM type::thing('room', $id)"
	room, err := database.QueryOne[Room](ctx, s.db, query, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to load room: %w", err)
	}
	if room == nil {
		return nil, fmt.Errorf("room %s: %w", id, ErrRoomNotFound)
	}
	return room, nil
}

func (s *SurrealStore) User(ctx context.Context, id string) (*User, error) {
	query := "SELECT meta::id(id) AS _id, username, roles FROM type::thing('user', $id)"
	user, err := database.QueryOne[User](ctx, s.db, query, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", id, ErrUserNotFound)
	}
	return user, nil
}

func (s *SurrealStore) Subscription(ctx context.Context, roomID, userID string) (*Subscription, error) {
	query := "SELECT rid, u, open FROM subscription WHERE rid = $rid AND u = $uid"
	sub, err := database.QueryOne[Subscription](ctx, s.db, query, map[string]any{"rid": roomID, "uid": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	return sub, nil
}

func (s *SurrealStore) DeleteMessage(ctx context.Context, id string) error {
	if _, err := s.Message(ctx, id); err != nil {
		return err
	}
	if err := database.Execute(ctx, s.db, "DELETE type::thing('message', $id)", map[string]any{"id": id}); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

func (s *SurrealStore) ReportMessage(ctx context.Context, r Report) error {
	query := `CREATE type::thing('report', $id) CONTENT {
		message_id: $message_id, user_id: $user_id, reason: $reason, created_at: $created_at
	}`
	params := map[string]any{
		"id":         r.ID,
		"message_id": r.MessageID,
		"user_id":    r.UserID,
		"reason":     r.Reason,
		"created_at": r.CreatedAt.UTC().Format(time.RFC3339),
	}
	if err := database.Execute(ctx, s.db, query, params); err != nil {
		return fmt.Errorf("failed to store report: %w", err)
	}
	return nil
}

func (s *SurrealStore) MessagesBetween(ctx context.Context, from, to time.Time) ([]Message, error) {
	query := "SELECT " + messageFields + " FROM message WHERE ts >= $from AND ts < $to"
	params := map[string]any{
		"from": from.UTC().Format(tsLayout),
		"to":   to.UTC().Format(tsLayout),
	}
	rows, err := database.Query[messageRow](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	out := make([]Message, len(rows))
	for i, r := range rows {
		out[i] = r.toMessage()
	}
	return out, nil
}

var _ Store = (*SurrealStore)(nil)
