package chat

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore keeps chat data in process. It backs tests and runs the
// server when no database is configured.
type MemoryStore struct {
	mu            sync.RWMutex
	messages      map[string]Message
	rooms         map[string]Room
	users         map[string]User
	subscriptions map[string]Subscription // roomID/userID
	reports       []Report
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		messages:      make(map[string]Message),
		rooms:         make(map[string]Room),
		users:         make(map[string]User),
		subscriptions: make(map[string]Subscription),
	}
}

func subKey(roomID, userID string) string {
	return roomID + "/" + userID
}

// PutMessage inserts or replaces a message.
func (s *MemoryStore) PutMessage(m Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[m.ID] = m
}

// PutRoom inserts or replaces a room.
func (s *MemoryStore) PutRoom(r Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[r.ID] = r
}

// PutUser inserts or replaces a user.
func (s *MemoryStore) PutUser(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

// Subscribe joins a user to a room.
func (s *MemoryStore) Subscribe(sub Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptions[subKey(sub.RoomID, sub.UserID)] = sub
}

// Reports returns a copy of the stored reports.
func (s *MemoryStore) Reports() []Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Report, len(s.reports))
	copy(out, s.reports)
	return out
}

func (s *MemoryStore) Message(ctx context.Context, id string) (*Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.messages[id]
	if !ok {
		return nil, fmt.Errorf("message %s: %w", id, ErrMessageNotFound)
	}
	return &m, nil
}

func (s *MemoryStore) Room(ctx context.Context, id string) (*Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[id]
	if !ok {
		return nil, fmt.Errorf("room %s: %w", id, ErrRoomNotFound)
	}
	return &r, nil
}

func (s *MemoryStore) User(ctx context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, ErrUserNotFound)
	}
	return &u, nil
}

func (s *MemoryStore) Subscription(ctx context.Context, roomID, userID string) (*Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subscriptions[subKey(roomID, userID)]
	if !ok {
		return nil, nil
	}
	return &sub, nil
}

func (s *MemoryStore) DeleteMessage(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.messages[id]; !ok {
		return fmt.Errorf("message %s: %w", id, ErrMessageNotFound)
	}
	delete(s.messages, id)
	return nil
}

func (s *MemoryStore) ReportMessage(ctx context.Context, r Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, r)
	return nil
}

func (s *MemoryStore) MessagesBetween(ctx context.Context, from, to time.Time) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Message
	for _, m := range s.messages {
		if !m.Timestamp.Before(from) && m.Timestamp.Before(to) {
			out = append(out, m)
		}
	}
	return out, nil
}

var _ Store = (*MemoryStore)(nil)
