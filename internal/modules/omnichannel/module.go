package omnichannel

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/parley/internal/chat"
	"github.com/nfrund/parley/internal/middleware"
	"github.com/nfrund/parley/internal/module"
	"github.com/nfrund/parley/internal/registry"
)

// OmnichannelModule serves live chat manager administration.
type OmnichannelModule struct {
	module.BaseModule
	service *Service
	users   chat.Store
}

// Dependencies holds the services the module requires.
type Dependencies struct {
	Managers ManagerStore
	Users    chat.Store
}

// New creates the module.
func New(deps Dependencies) *OmnichannelModule {
	return &OmnichannelModule{service: NewService(deps.Managers, deps.Users), users: deps.Users}
}

// Name returns the module name.
func (m *OmnichannelModule) Name() string {
	return "omnichannel"
}

// Boot mounts the manager routes under /livechat/users/manager.
func (m *OmnichannelModule) Boot(ctx context.Context, g *echo.Group, reg *registry.Registry) error {
	slog.Info("Booting OmnichannelModule: Setting up routes...")
	h := &Handler{service: m.service}

	managers := g.Group("/livechat/users/manager",
		middleware.CurrentUser(m.users),
		RequirePermission(chat.PermManageOmnichannel),
	)
	managers.GET("", h.List)
	managers.POST("", h.Add)
	managers.DELETE("/:id", h.Remove)
	return nil
}
