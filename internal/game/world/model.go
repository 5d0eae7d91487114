// Package world holds the rooms combat happens in: zones, rooms, exits and
// the NPC spawns that populate them.
package world

import (
	"fmt"
	"strings"
)

// Direction is a compass direction or a named exit.
type Direction string

const (
	North     Direction = "north"
	South     Direction = "south"
	East      Direction = "east"
	West      Direction = "west"
	Northeast Direction = "northeast"
	Northwest Direction = "northwest"
	Southeast Direction = "southeast"
	Southwest Direction = "southwest"
	Up        Direction = "up"
	Down      Direction = "down"
)

var directionAliases = map[string]Direction{
	"n": North, "s": South, "e": East, "w": West,
	"ne": Northeast, "nw": Northwest, "se": Southeast, "sw": Southwest,
	"u": Up, "d": Down,
}

// ParseDirection expands the one- and two-letter shorthands; anything else
// is taken as a named exit.
func ParseDirection(s string) Direction {
	norm := strings.ToLower(strings.TrimSpace(s))
	if d, ok := directionAliases[norm]; ok {
		return d
	}
	return Direction(norm)
}

// Exit is a passage to another room.
type Exit struct {
	Direction  Direction
	TargetRoom string
	Locked     bool
}

// Spawn asks for Count live instances of an NPC template in a room.
type Spawn struct {
	Template string
	Count    int
}

// Room is one location. Entities in the same room can see and fight each other.
type Room struct {
	ID          string
	ZoneID      string
	Title       string
	Description string
	Exits       []Exit
	Spawns      []Spawn
	// Cyberspace rooms put personas in their digital form.
	Cyberspace bool
}

// ExitForDirection returns the exit in dir.
//
// Postcondition: Returns (exit, true) if found, or (Exit{}, false) otherwise.
func (r *Room) ExitForDirection(dir Direction) (Exit, bool) {
	for _, e := range r.Exits {
		if e.Direction == dir {
			return e, true
		}
	}
	return Exit{}, false
}

// OpenExits returns every unlocked exit, in declaration order.
func (r *Room) OpenExits() []Exit {
	var open []Exit
	for _, e := range r.Exits {
		if !e.Locked {
			open = append(open, e)
		}
	}
	return open
}

// Zone groups rooms that share scripts.
type Zone struct {
	ID        string
	Name      string
	StartRoom string
	Rooms     map[string]*Room
	// ScriptDir holds the zone's Lua hooks. Empty means the global scripts apply.
	ScriptDir string
}

// Validate checks zone invariants.
//
// Postcondition: Returns nil if valid, or an error describing the first violation.
func (z *Zone) Validate() error {
	if z.ID == "" {
		return fmt.Errorf("zone ID must not be empty")
	}
	if len(z.Rooms) == 0 {
		return fmt.Errorf("zone %q: must contain at least one room", z.ID)
	}
	if _, ok := z.Rooms[z.StartRoom]; !ok {
		return fmt.Errorf("zone %q: start_room %q not found in rooms", z.ID, z.StartRoom)
	}
	for id, room := range z.Rooms {
		if room.Title == "" {
			return fmt.Errorf("zone %q: room %q: title must not be empty", z.ID, id)
		}
		for _, exit := range room.Exits {
			if exit.Direction == "" || exit.TargetRoom == "" {
				return fmt.Errorf("zone %q: room %q: exit needs a direction and a target", z.ID, id)
			}
		}
		for _, sp := range room.Spawns {
			if sp.Template == "" || sp.Count <= 0 {
				return fmt.Errorf("zone %q: room %q: spawn needs a template and a positive count", z.ID, id)
			}
		}
	}
	return nil
}
