package app

import (
	"time"

	"github.com/nfrund/parley/internal/actions"
	"github.com/nfrund/parley/internal/chat"
	"github.com/nfrund/parley/internal/modules/engagement"
	"github.com/nfrund/parley/internal/modules/messageactions"
	"github.com/nfrund/parley/internal/modules/omnichannel"
	"github.com/nfrund/parley/internal/pubsub"
	"github.com/nfrund/parley/internal/script"
)

// Dependencies holds the core services that are required by the application's modules.
// This struct is passed from the main application entrypoint to wire up the modules.
type Dependencies struct {
	Actions   *actions.Registry
	Store     chat.Store
	Managers  omnichannel.ManagerStore
	Publisher pubsub.Publisher
	Settings  chat.Settings
	BaseURL   string
	Scripts   *script.Loader
	HotReload bool
	Now       func() time.Time
}

// messageActionsDeps creates the dependency struct for the message actions module.
func messageActionsDeps(deps Dependencies) messageactions.Dependencies {
	return messageactions.Dependencies{
		Registry:  deps.Actions,
		Store:     deps.Store,
		Publisher: deps.Publisher,
		Settings:  deps.Settings,
		BaseURL:   deps.BaseURL,
		Scripts:   deps.Scripts,
		HotReload: deps.HotReload,
		Now:       deps.Now,
	}
}

// omnichannelDeps creates the dependency struct for the omnichannel module.
func omnichannelDeps(deps Dependencies) omnichannel.Dependencies {
	return omnichannel.Dependencies{
		Managers: deps.Managers,
		Users:    deps.Store,
	}
}

// engagementDeps creates the dependency struct for the engagement module.
func engagementDeps(deps Dependencies) engagement.Dependencies {
	return engagement.Dependencies{
		Store: deps.Store,
		Now:   deps.Now,
	}
}
