package gameserver

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cory-johannsen/mud-combat/internal/game/combat"
	"github.com/cory-johannsen/mud-combat/internal/game/entity"
	"github.com/cory-johannsen/mud-combat/internal/game/inventory"
	"github.com/cory-johannsen/mud-combat/internal/scripting"
)

// checkRoundtime reports whether e is locked. Unless silent, the player is
// told how long remains.
func (s *Service) checkRoundtime(e *entity.Entity, silent bool) bool {
	rt := e.Roundtime()
	if !rt.Active() {
		return false
	}
	if !silent {
		s.log.Error(e.ID, fmt.Sprintf("You must wait %d more seconds.", rt.Seconds()))
	}
	return true
}

// applyRoundtime locks e for seconds unless it is already locked for longer.
func (s *Service) applyRoundtime(e *entity.Entity, seconds float64) {
	if e.Roundtime().Apply(seconds) && !e.IsNPC() {
		s.log.Info(e.ID, fmt.Sprintf("Roundtime: %d sec.", e.Roundtime().Seconds()))
	}
}

// canFight reports whether e's stance allows attacking: standing, or a
// persona fighting from stasis in cyberspace.
func canFight(e *entity.Entity) bool {
	switch e.Stats().Stance {
	case combat.Standing:
		return true
	case combat.Stasis:
		return e.InCyberspace()
	}
	return false
}

// parseTargetName splits "thug 2" or "2.thug" into a keyword and a 1-based ordinal.
func parseTargetName(arg string) (string, int) {
	arg = strings.TrimSpace(arg)
	if n, name, ok := strings.Cut(arg, "."); ok {
		if i, err := strconv.Atoi(n); err == nil && i > 0 && name != "" {
			return strings.TrimSpace(name), i
		}
	}
	fields := strings.Fields(arg)
	if len(fields) >= 2 {
		if i, err := strconv.Atoi(fields[len(fields)-1]); err == nil && i > 0 {
			return strings.Join(fields[:len(fields)-1], " "), i
		}
	}
	return arg, 1
}

// findInRoom returns the ordinal-th entity in actor's room matching name.
func (s *Service) findInRoom(actor *entity.Entity, name string, ordinal int) (*entity.Entity, bool) {
	seen := 0
	for _, e := range s.arena.InRoom(actor.Position().RoomID) {
		if e.ID == actor.ID || !e.Matches(name) {
			continue
		}
		seen++
		if seen == ordinal {
			return e, true
		}
	}
	return nil, false
}

// resolveTarget resolves arg, or with no arg falls back to the current lock,
// then to whoever is hunting the actor, then to the room's only NPC.
func (s *Service) resolveTarget(actor *entity.Entity, arg string) (*entity.Entity, bool) {
	if strings.TrimSpace(arg) != "" {
		name, ordinal := parseTargetName(arg)
		return s.findInRoom(actor, name, ordinal)
	}
	room := actor.Position().RoomID
	if id := actor.Stats().TargetID; id != "" {
		if t, ok := s.arena.Get(id); ok && t.Position().RoomID == room {
			return t, true
		}
	}
	var npcs []*entity.Entity
	for _, e := range s.arena.InRoom(room) {
		if e.ID == actor.ID {
			continue
		}
		if st := e.Stats(); st.Hostile && st.TargetID == actor.ID {
			return e, true
		}
		if e.IsNPC() {
			npcs = append(npcs, e)
		}
	}
	if len(npcs) == 1 {
		return npcs[0], true
	}
	return nil, false
}

// enemiesOf lists the entities in e's room fighting e.
func (s *Service) enemiesOf(e *entity.Entity) []*entity.Entity {
	var out []*entity.Entity
	lock := e.Stats().TargetID
	for _, o := range s.arena.InRoom(e.Position().RoomID) {
		if o.ID == e.ID {
			continue
		}
		if st := o.Stats(); (st.Hostile && st.TargetID == e.ID) || o.ID == lock {
			out = append(out, o)
		}
	}
	return out
}

// lockTarget points actor at target. An NPC that is struck without a target
// of its own turns on its attacker.
func (s *Service) lockTarget(actor, target *entity.Entity) {
	st := actor.Stats()
	st.TargetID = target.ID
	st.Hostile = true
	ts := target.Stats()
	if target.IsNPC() && ts.TargetID == "" {
		ts.TargetID = actor.ID
		ts.Hostile = true
	}
}

// weaponFor is the profile e strikes with for move.
func (s *Service) weaponFor(e *entity.Entity, move combat.Move) *inventory.WeaponDef {
	if move.IsBrawling() {
		return inventory.Brawling(move)
	}
	if w := e.Equipment().Weapon(); w != nil {
		return w
	}
	return inventory.Brawling(combat.MovePunch)
}

// gainFlow credits e's buffer with one flow and tells the player when it grows.
func (s *Service) gainFlow(e *entity.Entity) {
	b := e.Buffer()
	if b == nil {
		return
	}
	if b.GainFlow() {
		s.log.Combat(e.ID, fmt.Sprintf("<combat-hit>Your flow deepens. Buffer capacity: %d.</combat-hit>", b.MaxSlots))
	}
	s.pushBuffer(e)
}

// pushBuffer sends e its buffer state.
func (s *Service) pushBuffer(e *entity.Entity) {
	b := e.Buffer()
	if b == nil || e.IsNPC() {
		return
	}
	s.emit.SendEvent(e.ID, EventBufferUpdate, bufferPayload(b, s.seq.Combo(e.ID)))
}

// pushCombatState sends e its combat HUD.
func (s *Service) pushCombatState(e *entity.Entity) {
	if e.IsNPC() {
		return
	}
	s.emit.SendEvent(e.ID, EventCombatState, s.combatState(e))
}

func (s *Service) combatState(e *entity.Entity) CombatStatePayload {
	st := e.Stats()
	enemies := s.enemiesOf(e)
	if !st.Hostile && st.TargetID == "" && len(enemies) == 0 {
		return CombatStatePayload{}
	}
	p := CombatStatePayload{
		InCombat: true,
		Player: &PlayerState{
			HP:             st.HP,
			MaxHP:          st.MaxHP,
			Balance:        st.Balance,
			BalanceDesc:    combat.BalanceDescription(st.Balance),
			Fatigue:        st.Fatigue,
			MaxFatigue:     st.MaxFatigue,
			EngagementTier: st.Tier,
			Roundtime:      e.Roundtime().Seconds(),
			Stance:         st.Stance.String(),
			MomentumState:  combat.MomentumEmpty.String(),
		},
	}
	if m := e.Momentum(); m != nil {
		p.Player.Momentum = m.Current
		p.Player.MomentumState = m.State().String()
	}
	for _, o := range s.arena.InRoom(e.Position().RoomID) {
		if o.ID == e.ID {
			continue
		}
		ost := o.Stats()
		if o.ID == st.TargetID {
			p.Target = &TargetState{
				ID:          o.ID,
				Name:        o.Name(),
				HP:          ost.HP,
				MaxHP:       ost.MaxHP,
				Status:      combat.HealthStatus(ost.HP, ost.MaxHP),
				Balance:     ost.Balance,
				BalanceDesc: combat.BalanceDescription(ost.Balance),
				Range:       combat.MaxTier(st.Tier, ost.Tier),
			}
		}
		p.Nearby = append(p.Nearby, NearbyState{
			ID:          o.ID,
			Name:        o.Name(),
			IsHostile:   ost.Hostile && ost.TargetID == e.ID,
			BalanceDesc: combat.BalanceDescription(ost.Balance),
			Range:       ost.Tier,
			Status:      combat.HealthStatus(ost.HP, ost.MaxHP),
		})
	}
	return p
}

// combatantInfo describes e to the script hooks.
func combatantInfo(e *entity.Entity) scripting.CombatantInfo {
	st := e.Stats()
	return scripting.CombatantInfo{ID: string(e.ID), Name: e.Name(), HP: st.HP, MaxHP: st.MaxHP, NPC: e.IsNPC()}
}
