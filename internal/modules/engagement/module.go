package engagement

import (
	"context"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/parley/internal/chat"
	"github.com/nfrund/parley/internal/middleware"
	"github.com/nfrund/parley/internal/module"
	"github.com/nfrund/parley/internal/registry"
)

// EngagementModule serves the engagement dashboard data.
type EngagementModule struct {
	module.BaseModule
	store chat.Store
	now   func() time.Time
}

// Dependencies holds the services the module requires.
type Dependencies struct {
	Store chat.Store
	// Now defaults to time.Now.
	Now func() time.Time
}

// New creates the module.
func New(deps Dependencies) *EngagementModule {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &EngagementModule{store: deps.Store, now: now}
}

// Name returns the module name.
func (m *EngagementModule) Name() string {
	return "engagement"
}

// Boot mounts GET /engagement/users/chat-busier/hourly-data.
func (m *EngagementModule) Boot(ctx context.Context, g *echo.Group, reg *registry.Registry) error {
	slog.Info("Booting EngagementModule: Setting up routes...")
	h := &Handler{store: m.store, now: m.now}
	g.GET("/engagement/users/chat-busier/hourly-data", h.HourlyData, middleware.CurrentUser(m.store))
	return nil
}
