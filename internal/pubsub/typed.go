package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// Event pairs a topic name with the payload type published on it.
type Event[T any] struct {
	name        string
	description string
}

// EventInfo describes a declared event for listings.
type EventInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

var (
	catalogMu sync.RWMutex
	catalog   = make(map[string]EventInfo)
)

// NewEvent declares a typed event and records it in the event catalog.
func NewEvent[T any](name, description string) Event[T] {
	catalogMu.Lock()
	catalog[name] = EventInfo{Name: name, Description: description}
	catalogMu.Unlock()
	return Event[T]{name: name, description: description}
}

// Name returns the topic name.
func (e Event[T]) Name() string {
	return e.name
}

// Description returns the human-readable description.
func (e Event[T]) Description() string {
	return e.description
}

// Decode unmarshals a message payload published for this event.
func (e Event[T]) Decode(msg Message) (T, error) {
	var v T
	if err := json.Unmarshal(msg.Payload, &v); err != nil {
		return v, fmt.Errorf("decode %s payload: %w", e.name, err)
	}
	return v, nil
}

// Publish marshals the payload as JSON and publishes it on the event's topic.
func Publish[T any](ctx context.Context, p Publisher, event Event[T], userID string, payload T) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", event.name, err)
	}
	return p.Publish(ctx, Message{
		Topic:   event.name,
		UserID:  userID,
		Payload: data,
	})
}

// Events lists the declared events sorted by name.
func Events() []EventInfo {
	catalogMu.RLock()
	defer catalogMu.RUnlock()
	out := make([]EventInfo, 0, len(catalog))
	for _, info := range catalog {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
