package omnichannel

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/nfrund/parley/internal/chat"
	"github.com/nfrund/parley/internal/database"
	"github.com/surrealdb/surrealdb.go"
)

// ErrNotFound is returned when removing a user who is not a manager.
var ErrNotFound = errors.New("manager-not-found")

// Manager is a user allowed to administer live chat.
type Manager struct {
	UserID   string    `json:"_id"`
	Username string    `json:"username"`
	AddedAt  time.Time `json:"added_at"`
}

// ManagerStore persists the manager set keyed by user id.
type ManagerStore interface {
	List(ctx context.Context) ([]Manager, error)
	Add(ctx context.Context, m Manager) error
	// Remove returns ErrNotFound for ids that are not managers.
	Remove(ctx context.Context, userID string) error
}

// MemoryManagerStore keeps managers in process.
type MemoryManagerStore struct {
	mu       sync.RWMutex
	managers map[string]Manager
}

// NewMemoryManagerStore creates an empty store.
func NewMemoryManagerStore() *MemoryManagerStore {
	return &MemoryManagerStore{managers: make(map[string]Manager)}
}

func (s *MemoryManagerStore) List(ctx context.Context) ([]Manager, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Manager, 0, len(s.managers))
	for _, m := range s.managers {
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b Manager) int { return strings.Compare(a.Username, b.Username) })
	return out, nil
}

func (s *MemoryManagerStore) Add(ctx context.Context, m Manager) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.managers[m.UserID] = m
	return nil
}

func (s *MemoryManagerStore) Remove(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.managers[userID]; !ok {
		return fmt.Errorf("manager %s: %w", userID, ErrNotFound)
	}
	delete(s.managers, userID)
	return nil
}

// SurrealManagerStore keeps managers in the livechat_manager table.
type SurrealManagerStore struct {
	db *surrealdb.DB
}

// NewSurrealManagerStore creates a store on an already scoped connection.
func NewSurrealManagerStore(db *surrealdb.DB) *SurrealManagerStore {
	return &SurrealManagerStore{db: db}
}

type managerRow struct {
	UserID   string `json:"_id"`
	Username string `json:"username"`
	AddedAt  string `json:"added_at"`
}

func (s *SurrealManagerStore) List(ctx context.Context) ([]Manager, error) {
	rows, err := database.Query[managerRow](ctx, s.db,
		"SELECT meta::id(id) AS _id, username, added_at FROM livechat_manager ORDER BY username", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list managers: %w", err)
	}
	out := make([]Manager, len(rows))
	for i, r := range rows {
		added, _ := time.Parse(time.RFC3339, r.AddedAt)
		out[i] = Manager{UserID: r.UserID, Username: r.Username, AddedAt: added}
	}
	return out, nil
}

func (s *SurrealManagerStore) Add(ctx context.Context, m Manager) error {
	query := "UPSERT type::thing('livechat_manager', $id) CONTENT { username: $username, added_at: $added_at }"
	params := map[string]any{
		"id":       m.UserID,
		"username": m.Username,
		"added_at": m.AddedAt.UTC().Format(time.RFC3339),
	}
	if err := database.Execute(ctx, s.db, query, params); err != nil {
		return fmt.Errorf("failed to add manager: %w", err)
	}
	return nil
}

func (s *SurrealManagerStore) Remove(ctx context.Context, userID string) error {
	rows, err := database.Query[managerRow](ctx, s.db,
		"DELETE type::thing('livechat_manager', $id) RETURN BEFORE", map[string]any{"id": userID})
	if err != nil {
		return fmt.Errorf("failed to remove manager: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("manager %s: %w", userID, ErrNotFound)
	}
	return nil
}

// Service adds and removes managers, checking users against the chat store.
type Service struct {
	managers ManagerStore
	users    chat.Store
	now      func() time.Time
}

// NewService creates a Service.
func NewService(managers ManagerStore, users chat.Store) *Service {
	return &Service{managers: managers, users: users, now: time.Now}
}

// List returns the managers ordered by username.
func (s *Service) List(ctx context.Context) ([]Manager, error) {
	return s.managers.List(ctx)
}

// Add makes an existing user a manager.
func (s *Service) Add(ctx context.Context, userID string) (Manager, error) {
	if userID == "" {
		return Manager{}, chat.ErrInvalidParameter
	}
	u, err := s.users.User(ctx, userID)
	if err != nil {
		return Manager{}, err
	}
	m := Manager{UserID: u.ID, Username: u.Username, AddedAt: s.now()}
	if err := s.managers.Add(ctx, m); err != nil {
		return Manager{}, err
	}
	return m, nil
}

// Remove revokes a manager.
func (s *Service) Remove(ctx context.Context, userID string) error {
	if userID == "" {
		return chat.ErrInvalidParameter
	}
	return s.managers.Remove(ctx, userID)
}

var (
	_ ManagerStore = (*MemoryManagerStore)(nil)
	_ ManagerStore = (*SurrealManagerStore)(nil)
)
