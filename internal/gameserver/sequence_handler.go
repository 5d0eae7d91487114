package gameserver

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/mud-combat/internal/game/combat"
	"github.com/cory-johannsen/mud-combat/internal/game/entity"
)

const (
	// rebootStunSeconds is the lock a REBOOT imposes when it fires.
	rebootStunSeconds = 5.0
	// stumbleBalanceLoss is the poise a STUMBLE costs.
	stumbleBalanceLoss = -0.1
)

// handleSequence runs "sequence" (toggle building) and "sequence clear".
func (s *Service) handleSequence(actor *entity.Entity, arg string) {
	b := actor.Buffer()
	if b == nil {
		s.log.Error(actor.ID, "You have no combat buffer.")
		return
	}
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "":
		b.Building = !b.Building
		if b.Building {
			s.log.Info(actor.ID, fmt.Sprintf("You begin building a sequence (%d slots). Type upload to run it.", b.MaxSlots))
		} else {
			s.log.Info(actor.ID, "You stop building. Actions will run immediately.")
		}
	case "clear":
		if b.Executing {
			s.log.Error(actor.ID, "You can't clear a sequence while it is running.")
			return
		}
		b.Clear()
		s.log.Info(actor.ID, "Buffer cleared.")
	default:
		s.log.Error(actor.ID, "Usage: sequence [clear]")
		return
	}
	s.pushBuffer(actor)
}

// handleBufferAction queues kind while building, or performs it at once.
func (s *Service) handleBufferAction(actor *entity.Entity, kind combat.ActionKind, arg string) {
	b := actor.Buffer()
	if b == nil {
		s.log.Error(actor.ID, "You have no combat buffer.")
		return
	}
	a := combat.QueuedAction{Kind: kind}
	if arg != "" {
		t, ok := s.resolveTarget(actor, arg)
		if !ok {
			s.log.Error(actor.ID, fmt.Sprintf("You don't see %q here.", arg))
			return
		}
		a.TargetID = t.ID
	}

	if b.Building {
		if b.Executing {
			s.log.Error(actor.ID, "Your sequence is already running.")
			return
		}
		if err := b.Enqueue(a); err != nil {
			if errors.Is(err, combat.ErrBufferFull) {
				s.log.Error(actor.ID, fmt.Sprintf("Your buffer is full (%d/%d).", len(b.Actions), b.MaxSlots))
			}
			return
		}
		s.log.Info(actor.ID, fmt.Sprintf("Queued %s (%d/%d).", kind, len(b.Actions), b.MaxSlots))
		s.pushBuffer(actor)
		return
	}

	if b.Executing {
		s.log.Error(actor.ID, "Your sequence is already running.")
		return
	}
	if s.checkRoundtime(actor, false) {
		return
	}
	if !canFight(actor) {
		s.log.Error(actor.ID, fmt.Sprintf("You can't fight while %s.", actor.Stats().Stance))
		return
	}
	s.runAction(actor, a, 1.0)
	if actor.Valid() {
		s.applyRoundtime(actor, s.delay(kind).Seconds())
	}
}

// handleUpload starts executing the queued buffer.
//
// Postcondition: A combo is detected against the whole queue once, here, and
// its multiplier applies to every action drawn from it.
func (s *Service) handleUpload(actor *entity.Entity) {
	b := actor.Buffer()
	if b == nil {
		s.log.Error(actor.ID, "You have no combat buffer.")
		return
	}
	if b.Executing {
		s.log.Error(actor.ID, "Your sequence is already running.")
		return
	}
	if len(b.Actions) == 0 {
		s.log.Error(actor.ID, "Your buffer is empty.")
		return
	}
	if s.checkRoundtime(actor, false) {
		return
	}

	var combo *combat.Combo
	if c, ok := combat.DetectCombo(b.Actions); ok {
		combo = &c
	}
	if err := s.seq.Begin(actor.ID, combo); err != nil {
		s.logger.Warn("beginning sequence", zap.String("id", string(actor.ID)), zap.Error(err))
		return
	}
	b.Executing = true

	s.log.Combat(actor.ID, wrap("combat", fmt.Sprintf("You upload a %d-action sequence.", len(b.Actions))))
	if combo != nil {
		s.log.Combat(actor.ID, fmt.Sprintf("<combat-crit>COMBO: %s (x%.1f)!</combat-crit>", combo.Name, combo.Multiplier))
	}
	s.log.Room(actor.Position().RoomID, []combat.EntityID{actor.ID}, fmt.Sprintf("%s's movements blur into a practiced sequence.", subject(actor)))
	s.processNext(actor.ID)
}

// processNext resolves the head of id's buffer and schedules the next step.
// It runs with s.mu held, either from handleUpload or from the sequencer's
// timer through s.locked.
func (s *Service) processNext(id combat.EntityID) {
	e, ok := s.arena.Get(id)
	if !ok {
		s.seq.Forget(id)
		return
	}
	b := e.Buffer()
	if b == nil || !b.Executing || s.seq.State(id) != combat.StateExecuting {
		return
	}

	if b.HasMalware(combat.ActionReboot) {
		b.Clear()
		b.ClearMalware()
		b.Executing = false
		s.seq.Finish(id)
		e.Roundtime().Apply(rebootStunSeconds)
		s.log.Narrate(e, nil, "combat-crit",
			"REBOOT. Your systems crash and the sequence is lost!",
			"",
			fmt.Sprintf("%s locks up, rebooting.", subject(e)),
		)
		s.pushBuffer(e)
		s.pushCombatState(e)
		return
	}

	a, ok := b.Dequeue()
	if !ok {
		s.finishSequence(e, "Sequence complete.")
		return
	}
	b.Current = &a
	s.pushBuffer(e)

	s.runAction(e, a, s.seq.Multiplier(id))
	if !e.Valid() {
		return
	}
	scheduled := s.seq.Schedule(id, s.delay(a.Kind), func() {
		s.locked(func() { s.processNext(id) })
	})
	if !scheduled {
		s.finishSequence(e, "Your sequence is interrupted.")
	}
}

// finishSequence returns e's buffer to idle.
func (s *Service) finishSequence(e *entity.Entity, msg string) {
	b := e.Buffer()
	b.Executing = false
	b.Current = nil
	s.seq.Finish(e.ID)
	s.log.Info(e.ID, msg)
	s.pushBuffer(e)
}

// delay is how long kind occupies the buffer.
func (s *Service) delay(kind combat.ActionKind) time.Duration {
	if d, ok := s.delays[kind]; ok && d > 0 {
		return d
	}
	if d, ok := combat.DefaultDelays[kind]; ok {
		return d
	}
	return time.Second
}

// runAction resolves one buffer action. A slot with no resolvable target
// fails silently; the rest of the queue carries on.
func (s *Service) runAction(actor *entity.Entity, a combat.QueuedAction, multiplier float64) {
	st := actor.Stats()
	if a.Kind.IsMalware() {
		st.AdjustBalance(stumbleBalanceLoss)
		s.log.Narrate(actor, nil, "combat",
			"You stumble, your corrupted routine misfiring.",
			"",
			fmt.Sprintf("%s stumbles.", subject(actor)),
		)
		return
	}

	var target *entity.Entity
	if a.TargetID != "" {
		if t, ok := s.arena.Get(a.TargetID); ok && t.Position().RoomID == actor.Position().RoomID {
			target = t
		}
	}
	if target == nil {
		t, ok := s.resolveTarget(actor, "")
		if !ok {
			s.logger.Debug("buffer action has no target", zap.String("id", string(actor.ID)), zap.String("action", a.Kind.String()))
			return
		}
		target = t
	}
	ts := target.Stats()

	if ts.Telegraph != nil && a.Kind.Counters(*ts.Telegraph) {
		s.log.Narrate(actor, target, "combat-hit",
			fmt.Sprintf("Perfect sync! Your %s answers %s's %s.", a.Kind, object(target), *ts.Telegraph),
			fmt.Sprintf("%s reads your %s perfectly.", subject(actor), strings.ToLower(ts.Telegraph.String())),
			fmt.Sprintf("%s reads %s's move perfectly.", subject(actor), object(target)),
		)
		ts.Telegraph = nil
		s.gainFlow(actor)
	}

	switch a.Kind {
	case combat.ActionParry:
		st.Parrying = true
		s.log.Narrate(actor, target, "combat",
			fmt.Sprintf("You raise your guard against %s.", object(target)),
			fmt.Sprintf("%s raises a guard against you.", subject(actor)),
			fmt.Sprintf("%s raises a guard.", subject(actor)),
		)
	case combat.ActionDash:
		s.lockTarget(actor, target)
		next, ok := combat.MaxTier(st.Tier, ts.Tier).Step(combat.Close)
		if !ok {
			s.log.Combat(actor.ID, wrap("combat", "You dash, but there is no closer to get."))
			break
		}
		st.Tier, ts.Tier = next, next
		s.log.Narrate(actor, target, "combat",
			fmt.Sprintf("You dash to %s range with %s.", rangeTag(next), object(target)),
			fmt.Sprintf("%s dashes to %s range with you!", subject(actor), rangeTag(next)),
			fmt.Sprintf("%s dashes at %s.", subject(actor), object(target)),
		)
		s.pushCombatState(target)
		s.pushCombatState(actor)
	}
	if !a.Kind.IsStrike() {
		return
	}

	move := combat.MoveForAction(a.Kind)
	w, reason := s.strikeWeapon(actor, move)
	if reason != "" {
		s.log.Error(actor.ID, reason)
		return
	}
	if !w.InRange(combat.MaxTier(st.Tier, ts.Tier)) {
		s.log.Error(actor.ID, fmt.Sprintf("Your %s falls short of %s.", strings.ToLower(a.Kind.String()), object(target)))
		return
	}
	s.lockTarget(actor, target)
	s.strike(blow{attacker: actor, target: target, move: move, weapon: w, multiplier: multiplier})
}
