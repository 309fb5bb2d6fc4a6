package app

import (
	"github.com/nfrund/parley/internal/module"
	"github.com/nfrund/parley/internal/modules/engagement"
	"github.com/nfrund/parley/internal/modules/messageactions"
	"github.com/nfrund/parley/internal/modules/omnichannel"
)

// NewModules creates and returns the list of all active modules for the application.
// This is the single source of truth for which features are enabled.
func NewModules(deps Dependencies) []module.Module {
	return []module.Module{
		messageactions.New(messageActionsDeps(deps)),
		omnichannel.New(omnichannelDeps(deps)),
		engagement.New(engagementDeps(deps)),
	}
}
