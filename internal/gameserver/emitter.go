package gameserver

import "github.com/cory-johannsen/mud-combat/internal/game/combat"

// Emitter delivers server output to whoever controls an entity. Messages for
// entities without a connection (NPCs) are dropped by the implementation.
//
// Implementations must not call back into the Service.
type Emitter interface {
	// SendText delivers one line of narration or feedback.
	SendText(id combat.EntityID, kind MessageKind, text string)
	// SendEvent delivers a structured event; payload is JSON-encoded.
	SendEvent(id combat.EntityID, event string, payload any)
	// Disconnect ends the entity's session after sending reason.
	Disconnect(id combat.EntityID, reason string)
}

// NopEmitter discards everything.
type NopEmitter struct{}

func (NopEmitter) SendText(combat.EntityID, MessageKind, string) {}
func (NopEmitter) SendEvent(combat.EntityID, string, any)       {}
func (NopEmitter) Disconnect(combat.EntityID, string)           {}
