package messageactions

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/parley/internal/actions"
	"github.com/nfrund/parley/internal/chat"
	"github.com/nfrund/parley/internal/config"
	"github.com/nfrund/parley/internal/handlers"
	"github.com/nfrund/parley/internal/pubsub"
	"github.com/nfrund/parley/internal/registry"
	"github.com/nfrund/parley/internal/rendering"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []pubsub.Message
}

func (p *recordingPublisher) Publish(ctx context.Context, msg pubsub.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, msg)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.msgs))
	for i, m := range p.msgs {
		out[i] = m.Topic
	}
	return out
}

func (p *recordingPublisher) last(topic string) (pubsub.Message, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := len(p.msgs) - 1; i >= 0; i-- {
		if p.msgs[i].Topic == topic {
			return p.msgs[i], true
		}
	}
	return pubsub.Message{}, false
}

type fixture struct {
	store     *chat.MemoryStore
	registry  *actions.Registry
	publisher *recordingPublisher
	deps      CatalogueDeps
}

// newFixture seeds a channel with alice and bob subscribed, a guest who has
// not joined, and two messages: m1 by bob and m2 by alice with reactions.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := chat.NewMemoryStore()
	store.PutUser(chat.User{ID: "u1", Username: "alice", Roles: []string{"user"}})
	store.PutUser(chat.User{ID: "u2", Username: "bob", Roles: []string{"user"}})
	store.PutUser(chat.User{ID: "u3", Username: "mod", Roles: []string{"moderator"}})
	store.PutUser(chat.User{ID: "u4", Username: "guest", Roles: []string{"guest"}})

	store.PutRoom(chat.Room{ID: "r1", Type: chat.RoomChannel, Name: "general"})
	store.PutRoom(chat.Room{ID: "r2", Type: chat.RoomDirect, Members: []string{"u1", "u2"}})
	for _, uid := range []string{"u1", "u2", "u3"} {
		store.Subscribe(chat.Subscription{RoomID: "r1", UserID: uid, Open: true})
	}
	store.Subscribe(chat.Subscription{RoomID: "r2", UserID: "u1", Open: true})

	store.PutMessage(chat.Message{
		ID: "m1", RoomID: "r1", Text: "hello\nworld",
		User: chat.UserRef{ID: "u2", Username: "bob"}, Timestamp: fixedNow.Add(-10 * time.Minute),
	})
	store.PutMessage(chat.Message{
		ID: "m2", RoomID: "r1", Text: "mine",
		User: chat.UserRef{ID: "u1", Username: "alice"}, Timestamp: fixedNow.Add(-time.Minute),
		Reactions: map[string]chat.Reaction{":+1:": {Usernames: []string{"bob"}}},
	})
	store.PutMessage(chat.Message{
		ID: "m3", RoomID: "r2", Text: "psst",
		User: chat.UserRef{ID: "u2", Username: "bob"}, Timestamp: fixedNow,
	})

	pub := &recordingPublisher{}
	reg := actions.NewRegistry(actions.WithMemoTTL(0))
	deps := CatalogueDeps{
		Store:     store,
		Publisher: pub,
		BaseURL:   "http://parley.test/",
		Now:       func() time.Time { return fixedNow },
	}
	return &fixture{store: store, registry: reg, publisher: pub, deps: deps}
}

func (f *fixture) evalContext(t *testing.T, msgID, userID string, settings chat.Settings) *actions.EvalContext {
	t.Helper()
	user, err := f.store.User(context.Background(), userID)
	require.NoError(t, err)
	if settings == nil {
		settings = chat.DefaultSettings()
	}
	ec, err := BuildEvalContext(context.Background(), f.store, settings, msgID, user)
	require.NoError(t, err)
	return ec
}

// boot starts the module on a fresh echo instance the way the server does.
func (f *fixture) boot(t *testing.T) (*echo.Echo, *MessageActionsModule) {
	t.Helper()
	e := echo.New()
	e.Validator = handlers.NewValidator()
	e.Renderer = rendering.New()

	m := New(Dependencies{
		Registry:  f.registry,
		Store:     f.store,
		Publisher: f.publisher,
		BaseURL:   f.deps.BaseURL,
		Now:       f.deps.Now,
	})
	reg := registry.New(&config.Config{})
	require.NoError(t, m.Register(reg))
	require.NoError(t, m.Boot(context.Background(), e.Group("/api/v1"), reg))
	t.Cleanup(func() { _ = m.Shutdown(context.Background()) })
	return e, m
}

func descriptorIDs(ds []actions.Descriptor) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.ID
	}
	return out
}
