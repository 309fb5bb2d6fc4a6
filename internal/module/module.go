package module

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/parley/internal/registry"
)

// Module is a feature the server mounts at startup. The server calls
// Register on every module before it calls Boot on any, so Boot may resolve
// services another module registered.
type Module interface {
	// Name identifies the module in logs. Names must be unique.
	Name() string

	// Register adds the module's services to reg.
	Register(reg *registry.Registry) error

	// Boot mounts routes on router, which is rooted at /api/v1, and starts
	// any background work.
	Boot(ctx context.Context, router *echo.Group, reg *registry.Registry) error

	// Shutdown stops background work. Modules shut down in reverse order.
	Shutdown(ctx context.Context) error
}

// BaseModule supplies no-op lifecycle methods for embedding.
type BaseModule struct{}

func (m *BaseModule) Register(*registry.Registry) error { return nil }

func (m *BaseModule) Boot(context.Context, *echo.Group, *registry.Registry) error { return nil }

func (m *BaseModule) Shutdown(context.Context) error { return nil }
