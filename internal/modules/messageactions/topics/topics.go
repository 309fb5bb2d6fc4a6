package topics

import (
	"github.com/nfrund/parley/internal/modules/messageactions/events"
	"github.com/nfrund/parley/internal/pubsub"
)

// Topics published by the message actions module.
var (
	ActionsChanged = pubsub.NewEvent[events.ActionsChanged](
		"actions.changed",
		"The message action catalogue changed; clients should refetch visible actions",
	)

	ActionInvoked = pubsub.NewEvent[events.ActionInvoked](
		"actions.invoked",
		"A message action handler ran for a user",
	)

	MessageReported = pubsub.NewEvent[events.MessageReported](
		"message.reported",
		"A user reported a message with a reason",
	)

	MessageDeleted = pubsub.NewEvent[events.MessageDeleted](
		"message.deleted",
		"A message was deleted through the delete action",
	)
)
