package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/nfrund/parley/internal/actions"
	"github.com/nfrund/parley/internal/app"
	"github.com/nfrund/parley/internal/chat"
	"github.com/nfrund/parley/internal/config"
	"github.com/nfrund/parley/internal/database"
	"github.com/nfrund/parley/internal/handlers"
	"github.com/nfrund/parley/internal/middleware"
	"github.com/nfrund/parley/internal/module"
	"github.com/nfrund/parley/internal/modules/omnichannel"
	"github.com/nfrund/parley/internal/pubsub"
	"github.com/nfrund/parley/internal/registry"
	"github.com/nfrund/parley/internal/rendering"
	"github.com/nfrund/parley/internal/script"
	"github.com/nfrund/parley/internal/websocket"
	"github.com/spf13/afero"
	"github.com/surrealdb/surrealdb.go"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	E        *echo.Echo
	DB       *surrealdb.DB // nil when running on the in-memory store
	Cfg      config.Provider
	Registry *registry.Registry
	Actions  *actions.Registry
	Store    chat.Store

	bus         *pubsub.WatermillBridge
	ws          *websocket.Bridge
	modules     []module.Module
	stopTracing func()
	cancel      context.CancelFunc
}

// New wires the application: stores, message bus, action registry, modules
// and routes. An empty SURREAL_URL runs on a seeded in-memory store.
func New(cfg config.Provider) (*Server, error) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{Cfg: cfg, cancel: cancel}

	tracer, stopTracing, err := pubsub.SetupOTel(ctx, pubsub.TracingConfigFrom(cfg))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to set up tracing: %w", err)
	}
	s.stopTracing = stopTracing
	s.bus = pubsub.NewWatermillBridgeWithTracer(tracer)

	managers, err := s.openStores(ctx)
	if err != nil {
		s.release()
		return nil, err
	}

	s.Actions = actions.NewRegistry(
		actions.WithMemoTTL(cfg.GetActionsMemoTTL()),
		actions.WithLogger(slog.Default()),
	)
	loader := script.NewLoader(
		afero.NewOsFs(),
		cfg.GetActionsScriptDir(),
		script.NewEngine(script.DefaultSecurityLimits()),
		s.Actions,
		slog.Default(),
	)

	s.E = newEcho(cfg)

	s.Registry = registry.New(cfg)
	registry.Set(s.Registry, registry.ChatStoreKey, s.Store)
	registry.Set(s.Registry, registry.PublisherKey, pubsub.Publisher(s.bus))
	registry.Set(s.Registry, registry.SubscriberKey, pubsub.Subscriber(s.bus))

	s.modules = app.NewModules(app.Dependencies{
		Actions:   s.Actions,
		Store:     s.Store,
		Managers:  managers,
		Publisher: s.bus,
		Settings:  chat.DefaultSettings(),
		BaseURL:   cfg.GetAppBaseURL(),
		Scripts:   loader,
		HotReload: cfg.GetActionsHotReload(),
	})
	if err := s.bootModules(ctx); err != nil {
		s.release()
		return nil, err
	}

	s.ws = websocket.NewBridge(s.bus, s.websocketRoutes()...)
	if err := s.ws.Start(ctx); err != nil {
		s.release()
		return nil, fmt.Errorf("failed to start websocket bridge: %w", err)
	}

	s.RegisterRoutes()
	return s, nil
}

func newEcho(cfg config.Provider) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewValidator()
	e.Renderer = rendering.New()
	setupErrorHandling(e)

	e.Use(echomw.RequestID())
	e.Use(middleware.Logger)
	e.Use(echomw.Recover())

	store := sessions.NewCookieStore([]byte(cfg.GetSessionSecret()))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
	}
	e.Use(session.Middleware(store))
	return e
}

func (s *Server) openStores(ctx context.Context) (omnichannel.ManagerStore, error) {
	if s.Cfg.GetDBUrl() == "" {
		mem := chat.NewMemoryStore()
		SeedDemo(mem, time.Now())
		s.Store = mem
		slog.Info("SURREAL_URL not set, using seeded in-memory chat store")
		return omnichannel.NewMemoryManagerStore(), nil
	}

	db, err := database.NewDB(ctx, s.Cfg)
	if err != nil {
		return nil, err
	}
	s.DB = db
	s.Store = chat.NewSurrealStore(db)
	return omnichannel.NewSurrealManagerStore(db), nil
}

func (s *Server) bootModules(ctx context.Context) error {
	for _, m := range s.modules {
		if err := m.Register(s.Registry); err != nil {
			return fmt.Errorf("failed to register module %s: %w", m.Name(), err)
		}
	}
	api := s.E.Group("/api/v1")
	for _, m := range s.modules {
		if err := m.Boot(ctx, api, s.Registry); err != nil {
			return fmt.Errorf("failed to boot module %s: %w", m.Name(), err)
		}
	}
	return nil
}

// release frees what New acquired before failing.
func (s *Server) release() {
	s.cancel()
	if s.bus != nil {
		_ = s.bus.Close()
	}
	if s.DB != nil {
		s.DB.Close(context.Background())
	}
	if s.stopTracing != nil {
		s.stopTracing()
	}
}

// Shutdown stops the HTTP server, the modules in reverse boot order and the
// message bus.
func (s *Server) Shutdown(ctx context.Context) error {
	var firstErr error
	if err := s.E.Shutdown(ctx); err != nil {
		firstErr = err
	}
	for i := len(s.modules) - 1; i >= 0; i-- {
		if err := s.modules[i].Shutdown(ctx); err != nil {
			slog.Error("Module shutdown failed", "module", s.modules[i].Name(), "error", err)
		}
	}
	s.Registry.Shutdown()
	s.release()
	return firstErr
}
