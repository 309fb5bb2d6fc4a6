package events

// ActionsChanged is published after the action catalogue changes.
type ActionsChanged struct {
	Count     int    `json:"count"`
	Timestamp string `json:"timestamp"`
}

// ActionInvoked is published after a handler ran successfully.
type ActionInvoked struct {
	ActionID  string `json:"actionID"`
	MessageID string `json:"messageID"`
	UserID    string `json:"userID"`
	Context   string `json:"context,omitempty"`
	Timestamp string `json:"timestamp"`
}

// MessageReported is published when a user reports a message.
type MessageReported struct {
	ReportID  string `json:"reportID"`
	MessageID string `json:"messageID"`
	UserID    string `json:"userID"`
	Reason    string `json:"reason"`
	Timestamp string `json:"timestamp"`
}

// MessageDeleted is published when a message is deleted through its action.
type MessageDeleted struct {
	MessageID string `json:"messageID"`
	RoomID    string `json:"roomID"`
	UserID    string `json:"userID"`
	Timestamp string `json:"timestamp"`
}
