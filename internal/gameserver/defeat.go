package gameserver

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/mud-combat/internal/game/entity"
)

// RoomClearTracker remembers which rooms were populated with hostiles and
// fires onClear once the last of them falls.
type RoomClearTracker struct {
	tracked map[string]bool
	onClear func(roomID string)
}

// NewRoomClearTracker creates a tracker calling onClear for each cleared room.
func NewRoomClearTracker(onClear func(roomID string)) *RoomClearTracker {
	return &RoomClearTracker{tracked: make(map[string]bool), onClear: onClear}
}

// Track marks roomID as holding hostiles.
func (t *RoomClearTracker) Track(roomID string) {
	t.tracked[roomID] = true
}

// Defeated records a kill in roomID with remaining NPCs still standing.
//
// Postcondition: Returns true, and fires onClear, the first time a tracked
// room reaches zero.
func (t *RoomClearTracker) Defeated(roomID string, remaining int) bool {
	if remaining > 0 || !t.tracked[roomID] {
		return false
	}
	delete(t.tracked, roomID)
	if t.onClear != nil {
		t.onClear(roomID)
	}
	return true
}

// defeat removes victim from the world after killer's blow.
func (s *Service) defeat(killer, victim *entity.Entity) {
	room := victim.Position().RoomID
	s.log.Narrate(killer, victim, "combat-crit",
		fmt.Sprintf("You have slain %s!", object(victim)),
		fmt.Sprintf("%s has slain you.", subject(killer)),
		fmt.Sprintf("%s has slain %s!", subject(killer), object(victim)),
	)
	if s.scripts != nil {
		s.scripts.DefeatHook(victim.Position().ZoneID, combatantInfo(killer), combatantInfo(victim), room)
	}
	s.logger.Info("entity defeated",
		zap.String("killer", string(killer.ID)),
		zap.String("victim", string(victim.ID)),
		zap.String("room", room),
	)

	if killer.Stats().TargetID == victim.ID {
		killer.Stats().Disengage()
	}
	wasNPC := victim.IsNPC()
	victimID := victim.ID
	if !wasNPC {
		s.emit.SendEvent(victimID, EventCombatState, CombatStatePayload{})
		if p := s.captureProfileLocked(victim); p != nil {
			p.CaptureWounds(nil)
			go func() {
				if err := s.saveProfile(context.Background(), p); err != nil {
					s.logger.Warn("saving profile after death", zap.Error(err))
				}
			}()
		}
	}
	s.removeLocked(victim)
	if !wasNPC {
		s.emit.Disconnect(victimID, "You have died.")
	}
	s.pushCombatState(killer)

	if wasNPC {
		remaining := 0
		for _, e := range s.arena.InRoom(room) {
			if e.IsNPC() {
				remaining++
			}
		}
		s.clears.Defeated(room, remaining)
	}
}
