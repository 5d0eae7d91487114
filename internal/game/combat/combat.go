// Package combat implements the sync-bar combat model: engagement ranges,
// hit resolution, wounds, momentum and the action buffer sequencer.
//
// Everything in this package is pure data and arithmetic. Mutation of shared
// state is serialised by the caller (see gameserver.Service).
package combat

// EntityID identifies an entity in the arena. Cross-entity references are
// always ids, resolved through the arena at use time.
type EntityID string

// Kind distinguishes player entities from NPC entities.
type Kind int

const (
	KindPlayer Kind = iota
	KindNPC
)

// String returns "player" or "npc".
func (k Kind) String() string {
	if k == KindNPC {
		return "npc"
	}
	return "player"
}

// Identity names an entity and lists the keywords it answers to when targeted.
type Identity struct {
	ID       EntityID
	Name     string
	Kind     Kind
	Keywords []string
}

// Position places an entity in a room.
type Position struct {
	RoomID string
	ZoneID string
}

// Attributes are the raw physical scores used by the calculator.
type Attributes struct {
	Agility  int
	Strength int
}

// Persona marks an entity with a digital form. InCyberspace maps body parts
// to their digital analogues and permits fighting from stasis.
type Persona struct {
	InCyberspace bool
}

// NPCBrain drives autonomous combat for NPCs.
type NPCBrain struct {
	TemplateID string
	Aggressive bool
	// Stalking holds flavor lines emitted while the NPC circles out of range.
	Stalking []string
}

// AutomationKind selects the repeated maneuver of an AutomatedAction.
type AutomationKind int

const (
	AutoAdvance AutomationKind = iota
	AutoRetreat
)

// String returns "advance" or "retreat".
func (k AutomationKind) String() string {
	if k == AutoRetreat {
		return "retreat"
	}
	return "advance"
}

// AutomatedAction marks an entity as repeating a maneuver each tick until it
// reaches a boundary, fails, or loses its target.
type AutomatedAction struct {
	Kind     AutomationKind
	TargetID EntityID
}

// Direction returns the ladder direction the automation moves in.
func (a AutomatedAction) Direction() Direction {
	if a.Kind == AutoRetreat {
		return Withdraw
	}
	return Close
}
