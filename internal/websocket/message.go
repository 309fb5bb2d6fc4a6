package websocket

import "encoding/json"

// Message is the envelope sent to data clients.
type Message struct {
	Type    string `json:"type"` // "data" or "command"
	Target  string `json:"target,omitempty"`
	Payload any    `json:"payload"`
}

// MarshalJSON sends raw JSON payloads inline and other byte payloads as strings.
func (m Message) MarshalJSON() ([]byte, error) {
	type Alias Message
	msg := struct {
		*Alias
		Payload any `json:"payload"`
	}{
		Alias: (*Alias)(&m),
	}

	switch p := m.Payload.(type) {
	case json.RawMessage:
		msg.Payload = p
	case []byte:
		if json.Valid(p) {
			msg.Payload = json.RawMessage(p)
		} else {
			msg.Payload = string(p)
		}
	default:
		msg.Payload = m.Payload
	}

	return json.Marshal(msg)
}

// Command asks the client to do something, like showing a notification.
type Command struct {
	Name    string `json:"name"`
	Payload any    `json:"payload,omitempty"`
}

// NewDataMessage wraps data for target.
func NewDataMessage(target string, data any) *Message {
	return &Message{Type: "data", Target: target, Payload: data}
}

// NewCommand creates a command message.
func NewCommand(name string, payload any) *Message {
	return &Message{Type: "command", Payload: Command{Name: name, Payload: payload}}
}

// Common command names
const (
	CmdReload           = "reload"
	CmdShowNotification = "show_notification"
)
