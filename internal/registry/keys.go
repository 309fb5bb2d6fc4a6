package registry

import (
	"github.com/nfrund/parley/internal/actions"
	"github.com/nfrund/parley/internal/chat"
	"github.com/nfrund/parley/internal/pubsub"
)

// Service keys shared across modules. Using constants prevents typos.
const (
	ActionsKey    Key[*actions.Registry] = "actions.registry"
	ChatStoreKey  Key[chat.Store]        = "chat.store"
	PublisherKey  Key[pubsub.Publisher]  = "pubsub.publisher"
	SubscriberKey Key[pubsub.Subscriber] = "pubsub.subscriber"
	SettingsKey   Key[chat.Settings]     = "chat.settings"
)
