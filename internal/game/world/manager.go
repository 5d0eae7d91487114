package world

import (
	"fmt"
	"sort"
	"sync"
)

// Manager indexes every room across all zones by ID.
type Manager struct {
	mu        sync.RWMutex
	zones     map[string]*Zone
	rooms     map[string]*Room
	startRoom string
}

// NewManager creates a Manager from the given zones.
//
// Precondition: the first zone's start room is the global start room.
// Postcondition: Returns an error on duplicate zone or room IDs, or on an
// exit that targets a room no zone defines.
func NewManager(zones []*Zone) (*Manager, error) {
	m := &Manager{
		zones: make(map[string]*Zone, len(zones)),
		rooms: make(map[string]*Room),
	}
	for _, z := range zones {
		if _, exists := m.zones[z.ID]; exists {
			return nil, fmt.Errorf("duplicate zone ID: %q", z.ID)
		}
		m.zones[z.ID] = z
		for id, room := range z.Rooms {
			if existing, exists := m.rooms[id]; exists {
				return nil, fmt.Errorf("duplicate room ID %q: in zone %q and %q", id, existing.ZoneID, z.ID)
			}
			m.rooms[id] = room
		}
	}
	for _, room := range m.rooms {
		for _, exit := range room.Exits {
			if _, ok := m.rooms[exit.TargetRoom]; !ok {
				return nil, fmt.Errorf("room %q: exit %q targets unknown room %q", room.ID, exit.Direction, exit.TargetRoom)
			}
		}
	}
	if len(zones) > 0 {
		m.startRoom = zones[0].StartRoom
	}
	return m, nil
}

// GetRoom returns the room with the given ID.
func (m *Manager) GetRoom(id string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	return r, ok
}

// Zone returns the zone with the given ID.
func (m *Manager) Zone(id string) (*Zone, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	z, ok := m.zones[id]
	return z, ok
}

// Navigate resolves movement from a room in a direction.
//
// Postcondition: Returns the destination room, or an error if the exit
// doesn't exist or is locked.
func (m *Manager) Navigate(fromRoomID string, dir Direction) (*Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	from, ok := m.rooms[fromRoomID]
	if !ok {
		return nil, fmt.Errorf("room %q not found", fromRoomID)
	}
	exit, ok := from.ExitForDirection(dir)
	if !ok {
		return nil, fmt.Errorf("there is no way %s", dir)
	}
	if exit.Locked {
		return nil, fmt.Errorf("the way %s is locked", dir)
	}
	return m.rooms[exit.TargetRoom], nil
}

// StartRoom returns the global start room, or nil for an empty world.
func (m *Manager) StartRoom() *Room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rooms[m.startRoom]
}

// Rooms returns every room sorted by ID.
func (m *Manager) Rooms() []*Room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AllZones returns every zone sorted by ID.
func (m *Manager) AllZones() []*Zone {
	m.mu.RLock()
	defer m.mu.RUnlock()
	zones := make([]*Zone, 0, len(m.zones))
	for _, z := range m.zones {
		zones = append(zones, z)
	}
	sort.Slice(zones, func(i, j int) bool { return zones[i].ID < zones[j].ID })
	return zones
}
