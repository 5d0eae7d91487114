// Package transport carries the combat event contract over websockets.
//
// Every frame in both directions is a JSON Envelope. Clients send "login"
// first, then "command" and "combat-result" frames; the server sends
// "message" frames for narration plus the structured combat events.
package transport

import (
	"encoding/json"
	"fmt"

	"github.com/cory-johannsen/mud-combat/internal/gameserver"
)

// Client-to-server event names.
const (
	EventLogin   = "login"
	EventCommand = "command"
	// EventCombatResult shares its name with gameserver.EventCombatResult.
	EventCombatResult = gameserver.EventCombatResult
)

// Server-to-client event names not owned by gameserver.
const (
	EventMessage      = "message"
	EventWelcome      = "welcome"
	EventError        = "error"
	EventDisconnected = "disconnected"
)

// Envelope is one websocket frame.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// LoginPayload names the player to join as.
type LoginPayload struct {
	Name string `json:"name"`
}

// CommandPayload is one typed command line.
type CommandPayload struct {
	Text string `json:"text"`
}

// MessagePayload is one line of narration.
type MessagePayload struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// WelcomePayload acknowledges a login.
type WelcomePayload struct {
	EntityID string `json:"entityId"`
	Name     string `json:"name"`
}

// ErrorPayload reports a rejected frame.
type ErrorPayload struct {
	Message string `json:"message"`
}

// encode builds a frame for event with payload marshalled as its data.
func encode(event string, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding %s payload: %w", event, err)
		}
		raw = b
	}
	b, err := json.Marshal(Envelope{Event: event, Data: raw})
	if err != nil {
		return nil, fmt.Errorf("encoding %s envelope: %w", event, err)
	}
	return b, nil
}

// decode unmarshals an envelope's data into v.
func decode(env Envelope, v any) error {
	if len(env.Data) == 0 {
		return fmt.Errorf("%s: missing data", env.Event)
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("%s: %w", env.Event, err)
	}
	return nil
}
