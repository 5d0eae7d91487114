package gameserver

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/mud-combat/internal/game/combat"
	"github.com/cory-johannsen/mud-combat/internal/game/entity"
)

// tickLocked advances every entity by dt seconds: roundtime, regeneration,
// momentum decay, expired challenges, automated maneuvers and then NPCs.
//
// Precondition: s.mu is held.
func (s *Service) tickLocked(dt float64) {
	for _, e := range s.arena.All() {
		s.regenerate(e, dt)
	}
	for _, e := range s.arena.WithMomentum() {
		e.Momentum().Decay(dt, s.cfg.MomentumDecay)
	}
	for _, c := range s.challenges.Sweep(s.now()) {
		if e, ok := s.arena.Get(c.AttackerID); ok {
			e.Stats().PendingMove = combat.MoveNone
			s.log.Info(e.ID, "Your opening passes.")
		}
		s.logger.Debug("challenge expired",
			zap.String("attacker", string(c.AttackerID)),
			zap.String("token", c.Token),
			zap.Int("still_open", s.challenges.Len()),
		)
	}
	for _, e := range s.arena.Automated() {
		if e.Valid() {
			s.continueAutomation(e)
		}
	}
	s.npcCombatTick()

	for _, e := range s.arena.All() {
		if !e.IsNPC() && e.Stats().Hostile {
			s.pushCombatState(e)
		}
	}
}

// regenerate counts roundtime down and restores balance and fatigue.
// Fatigue only recovers outside roundtime; fractional recovery carries over
// between ticks.
func (s *Service) regenerate(e *entity.Entity, dt float64) {
	st := e.Stats()
	rt := e.Roundtime()
	wasLocked := rt.Active()
	rt.Tick(dt)
	if wasLocked && !rt.Active() && !e.IsNPC() && e.Stats().Hostile {
		s.log.Info(e.ID, "You are ready.")
	}

	st.AdjustBalance(s.cfg.BalanceRegen * dt)

	if rt.Active() || st.Fatigue >= st.MaxFatigue {
		delete(s.fatigueCarry, e.ID)
		return
	}
	carry := s.fatigueCarry[e.ID] + s.cfg.FatigueRegen*dt
	if n := int(carry); n > 0 {
		st.RecoverFatigue(n)
		carry -= float64(n)
	}
	s.fatigueCarry[e.ID] = carry
}

// continueAutomation repeats e's advance or retreat once. The automation
// ends at the ladder's boundary, on a failed roll or when the target is gone.
func (s *Service) continueAutomation(e *entity.Entity) {
	a := e.Automation()
	if a == nil || s.checkRoundtime(e, true) {
		return
	}
	target, ok := s.arena.Get(a.TargetID)
	if !ok || target.Position().RoomID != e.Position().RoomID {
		e.ClearAutomation()
		s.log.Info(e.ID, "You have lost your target.")
		return
	}
	if e.Stats().Stance != combat.Standing {
		e.ClearAutomation()
		s.log.Info(e.ID, "You stop moving.")
		return
	}

	dir := a.Direction()
	switch s.maneuver(e, dir, target) {
	case ManeuverSuccess:
		tier := e.Stats().Tier
		if dir == combat.Close && tier >= combat.Melee {
			e.ClearAutomation()
			s.log.Info(e.ID, fmt.Sprintf("You are at %s range with %s.", rangeTag(tier), object(target)))
			return
		}
		if _, more := tier.Step(dir); !more {
			e.ClearAutomation()
			s.log.Info(e.ID, maxRangeMessage(dir))
		}
	case ManeuverMaxRange:
		e.ClearAutomation()
		s.log.Info(e.ID, maxRangeMessage(dir))
	case ManeuverFailure:
		e.ClearAutomation()
		if dir == combat.Close {
			s.log.Info(e.ID, "Your advance stalls.")
		} else {
			s.log.Info(e.ID, "Your retreat is cut off.")
		}
	case ManeuverRefused:
		e.ClearAutomation()
	}
}
