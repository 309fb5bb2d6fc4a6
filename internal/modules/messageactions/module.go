package messageactions

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/parley/internal/actions"
	"github.com/nfrund/parley/internal/chat"
	"github.com/nfrund/parley/internal/middleware"
	"github.com/nfrund/parley/internal/module"
	"github.com/nfrund/parley/internal/modules/messageactions/events"
	"github.com/nfrund/parley/internal/modules/messageactions/topics"
	"github.com/nfrund/parley/internal/pubsub"
	"github.com/nfrund/parley/internal/registry"
	"github.com/nfrund/parley/internal/script"
)

// invokesPerMinute bounds action invocations per user.
const invokesPerMinute = 60

// MessageActionsModule registers the built-in message actions, serves the
// action endpoints and keeps scripted actions loaded.
type MessageActionsModule struct {
	module.BaseModule
	deps Dependencies

	builtin     []string
	unsubscribe func()
	cancelWatch context.CancelFunc
	watchDone   sync.WaitGroup
}

// Dependencies holds the services the module requires.
type Dependencies struct {
	Registry  *actions.Registry
	Store     chat.Store
	Publisher pubsub.Publisher
	Settings  chat.Settings
	BaseURL   string
	// Scripts is optional; when set its actions are loaded at boot.
	Scripts   *script.Loader
	HotReload bool
	Now       func() time.Time
}

// New creates the module.
func New(deps Dependencies) *MessageActionsModule {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Settings == nil {
		deps.Settings = chat.DefaultSettings()
	}
	return &MessageActionsModule{deps: deps}
}

// Name returns the module name.
func (m *MessageActionsModule) Name() string {
	return "messageactions"
}

// Register shares the action registry and settings with other modules.
func (m *MessageActionsModule) Register(reg *registry.Registry) error {
	registry.Set(reg, registry.ActionsKey, m.deps.Registry)
	registry.Set(reg, registry.SettingsKey, m.deps.Settings)
	return nil
}

// Boot registers the built-in actions, loads scripted ones and mounts routes.
func (m *MessageActionsModule) Boot(ctx context.Context, g *echo.Group, reg *registry.Registry) error {
	slog.Info("Booting MessageActionsModule...")

	m.unsubscribe = m.deps.Registry.Subscribe(m.publishChanged)

	builtin := Catalogue(CatalogueDeps{
		Store:     m.deps.Store,
		Publisher: m.deps.Publisher,
		BaseURL:   m.deps.BaseURL,
		Now:       m.deps.Now,
	})
	m.builtin = m.builtin[:0]
	for _, d := range builtin {
		m.deps.Registry.Register(d)
		m.builtin = append(m.builtin, d.ID)
	}

	if m.deps.Scripts != nil {
		if _, err := m.deps.Scripts.Load(); err != nil {
			slog.Error("Failed to load scripted actions", "error", err)
		}
		if m.deps.HotReload {
			watchCtx, cancel := context.WithCancel(ctx)
			m.cancelWatch = cancel
			m.watchDone.Add(1)
			go func() {
				defer m.watchDone.Done()
				if err := m.deps.Scripts.Watch(watchCtx); err != nil {
					slog.Warn("Scripted action hot reload unavailable", "error", err)
				}
			}()
		}
	}

	h := &Handler{
		registry:  m.deps.Registry,
		store:     m.deps.Store,
		publisher: m.deps.Publisher,
		settings:  m.deps.Settings,
		baseURL:   m.deps.BaseURL,
		now:       m.deps.Now,
	}
	currentUser := middleware.CurrentUser(m.deps.Store)

	g.GET("/actions", h.ListActions)
	g.GET("/messages/:id/actions", h.MessageActions, currentUser)
	g.POST("/messages/:id/actions/:action", h.Invoke, currentUser, middleware.RateLimiter(invokesPerMinute))
	g.GET("/messages/:id/permalink", h.Permalink, currentUser)

	slog.Info("MessageActionsModule booted", "actions", m.deps.Registry.Len())
	return nil
}

// Shutdown stops the script watcher, detaches from the registry and removes
// the actions the module registered. Calling it twice is harmless.
func (m *MessageActionsModule) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down MessageActionsModule...")
	if m.cancelWatch != nil {
		m.cancelWatch()
		m.watchDone.Wait()
		m.cancelWatch = nil
	}
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
	if m.deps.Scripts != nil {
		m.deps.Scripts.Unload()
	}
	for _, id := range m.builtin {
		m.deps.Registry.Remove(id)
	}
	m.builtin = nil
	return nil
}

func (m *MessageActionsModule) publishChanged() {
	err := pubsub.Publish(context.Background(), m.deps.Publisher, topics.ActionsChanged, "system", events.ActionsChanged{
		Count:     m.deps.Registry.Len(),
		Timestamp: m.deps.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		slog.Error("Failed to publish actions changed event", "error", err)
	}
}
