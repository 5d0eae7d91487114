package gameserver

import (
	"encoding/json"

	"github.com/cory-johannsen/mud-combat/internal/game/combat"
)

// Websocket event names shared with the client.
const (
	EventCombatSync   = "combat-sync"
	EventCombatResult = "combat-result"
	EventBufferUpdate = "buffer-update"
	EventCombatState  = "combat-state"
)

// MessageKind classifies a line of text sent to a client.
type MessageKind string

const (
	MessageInfo   MessageKind = "info"
	MessageError  MessageKind = "error"
	MessageCombat MessageKind = "combat"
	MessageRoom   MessageKind = "room"
)

// CombatSyncPayload opens a sync-bar challenge on the client.
type CombatSyncPayload struct {
	TargetID   combat.EntityID `json:"targetId"`
	TargetName string          `json:"targetName"`
	WeaponName string          `json:"weaponName"`
	SyncBar    combat.SyncBar  `json:"syncBar"`
	Token      string          `json:"token"`
	// ExpiresAt is unix milliseconds.
	ExpiresAt int64 `json:"expiresAt"`
}

// CombatResultPayload is the client's answer to a challenge.
type CombatResultPayload struct {
	TargetID combat.EntityID     `json:"targetId"`
	HitType  combat.ClientResult `json:"hitType"`
	Token    string              `json:"token"`
}

// BufferUpdatePayload mirrors an entity's combat buffer.
type BufferUpdatePayload struct {
	Actions       []combat.QueuedAction `json:"actions"`
	MaxSlots      int                   `json:"maxSlots"`
	IsExecuting   bool                  `json:"isExecuting"`
	IsBuilding    bool                  `json:"isBuilding"`
	Flow          int                   `json:"flow"`
	Malware       []string              `json:"malware"`
	CurrentAction *combat.QueuedAction  `json:"currentAction,omitempty"`
	Combo         string                `json:"combo,omitempty"`
}

// PlayerState is the player's own row of the combat HUD.
type PlayerState struct {
	HP             int         `json:"hp"`
	MaxHP          int         `json:"maxHp"`
	Balance        float64     `json:"balance"`
	BalanceDesc    string      `json:"balanceDesc"`
	Fatigue        int         `json:"fatigue"`
	MaxFatigue     int         `json:"maxFatigue"`
	EngagementTier combat.Tier `json:"engagementTier"`
	Roundtime      int         `json:"roundtime"`
	Stance         string      `json:"stance"`
	Momentum       float64     `json:"momentum"`
	MomentumState  string      `json:"momentumState"`
}

// TargetState describes the locked target.
type TargetState struct {
	ID          combat.EntityID `json:"id"`
	Name        string          `json:"name"`
	HP          int             `json:"hp"`
	MaxHP       int             `json:"maxHp"`
	Status      string          `json:"status"`
	Balance     float64         `json:"balance"`
	BalanceDesc string          `json:"balanceDesc"`
	Range       combat.Tier     `json:"range"`
}

// NearbyState is one other combatant sharing the room.
type NearbyState struct {
	ID          combat.EntityID `json:"id"`
	Name        string          `json:"name"`
	IsHostile   bool            `json:"isHostile"`
	BalanceDesc string          `json:"balanceDesc"`
	Range       combat.Tier     `json:"range"`
	Status      string          `json:"status"`
}

// CombatStatePayload is the combat HUD. Out of combat it encodes as
// {"inCombat":false} only.
type CombatStatePayload struct {
	InCombat bool
	Player   *PlayerState
	Target   *TargetState
	Nearby   []NearbyState
}

// MarshalJSON drops every field but inCombat when not fighting and always
// writes target, null when nothing is locked.
func (p CombatStatePayload) MarshalJSON() ([]byte, error) {
	if !p.InCombat {
		return []byte(`{"inCombat":false}`), nil
	}
	nearby := p.Nearby
	if nearby == nil {
		nearby = []NearbyState{}
	}
	return json.Marshal(struct {
		InCombat bool          `json:"inCombat"`
		Player   *PlayerState  `json:"player"`
		Target   *TargetState  `json:"target"`
		Nearby   []NearbyState `json:"nearby"`
	}{true, p.Player, p.Target, nearby})
}

// bufferPayload snapshots b for the client.
func bufferPayload(b *combat.Buffer, combo *combat.Combo) BufferUpdatePayload {
	p := BufferUpdatePayload{
		Actions:     b.Snapshot(),
		MaxSlots:    b.MaxSlots,
		IsExecuting: b.Executing,
		IsBuilding:  b.Building,
		Flow:        b.Flow,
		Malware:     make([]string, 0, len(b.Malware)),
	}
	for _, m := range b.Malware {
		p.Malware = append(p.Malware, m.String())
	}
	if b.Current != nil {
		cur := *b.Current
		p.CurrentAction = &cur
	}
	if combo != nil && b.Executing {
		p.Combo = combo.Name
	}
	return p
}
