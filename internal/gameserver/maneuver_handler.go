package gameserver

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/mud-combat/internal/game/combat"
	"github.com/cory-johannsen/mud-combat/internal/game/entity"
	"github.com/cory-johannsen/mud-combat/internal/game/world"
)

// ManeuverResult is the outcome of one step along the engagement ladder.
type ManeuverResult int

const (
	ManeuverSuccess ManeuverResult = iota
	ManeuverFailure
	// ManeuverMaxRange means the actor was already at the end of the ladder.
	ManeuverMaxRange
	// ManeuverRefused means a precondition failed and nothing was rolled.
	ManeuverRefused
)

const (
	maneuverRoundtime   = 1.0
	maneuverFatigue     = 1
	perExtraEnemy       = 15
	// hangbackRollPenalty comes off a closer's roll against a target hanging
	// back. Two d100 rolls differ by more than 55 about a tenth of the time, so
	// at even agility it cuts the closer's odds from one half to one tenth.
	hangbackRollPenalty = 55
	fleeFatigue         = 1
	fleeFailRoundtime   = 3.0
)

// maneuver rolls actor's step in dir. target, when non-nil, is the opponent
// whose agility opposes the roll and whose tier follows on success.
//
// Postcondition: MaxRange and Refused leave every stat untouched. Success and
// failure both cost a second of roundtime.
func (s *Service) maneuver(actor *entity.Entity, dir combat.Direction, target *entity.Entity) ManeuverResult {
	st := actor.Stats()
	from := st.Tier
	if target != nil {
		from = combat.MaxTier(st.Tier, target.Stats().Tier)
	}
	next, ok := from.Step(dir)
	if !ok {
		return ManeuverMaxRange
	}
	if !st.SpendFatigue(maneuverFatigue) {
		s.log.Error(actor.ID, "You are too exhausted to maneuver.")
		return ManeuverRefused
	}

	enemies := len(s.enemiesOf(actor))
	if enemies < 1 {
		enemies = 1
	}
	roll := actor.Attributes().Agility + s.roller.Percentile("maneuver") - perExtraEnemy*(enemies-1)
	opposed := s.roller.Percentile("maneuver-opposed")
	if target != nil {
		opposed += target.Attributes().Agility
		if dir == combat.Close && target.Stats().HangingBack {
			roll -= hangbackRollPenalty
		}
	}
	s.applyRoundtime(actor, maneuverRoundtime)

	if roll <= opposed {
		verb := "close the distance"
		if dir == combat.Withdraw {
			verb = "break away"
		}
		s.log.Narrate(actor, target, "combat",
			fmt.Sprintf("You try to %s but fail.", verb),
			fmt.Sprintf("%s tries to %s but you hold your ground.", subject(actor), verb),
			fmt.Sprintf("%s tries to %s but fails.", subject(actor), verb),
		)
		return ManeuverFailure
	}

	st.Tier = next
	if target != nil {
		target.Stats().Tier = next
		verb := "close to"
		if dir == combat.Withdraw {
			verb = "fall back to"
		}
		s.log.Narrate(actor, target, "combat",
			fmt.Sprintf("You %s %s range with %s.", verb, rangeTag(next), object(target)),
			fmt.Sprintf("%s moves to %s range with you.", subject(actor), rangeTag(next)),
			fmt.Sprintf("%s moves to %s range with %s.", subject(actor), rangeTag(next), object(target)),
		)
		s.pushCombatState(target)
	} else {
		s.log.Combat(actor.ID, wrap("combat", fmt.Sprintf("You move to %s range.", rangeTag(next))))
	}
	s.pushCombatState(actor)
	return ManeuverSuccess
}

// maneuverTarget resolves an optional maneuver opponent.
func (s *Service) maneuverTarget(actor *entity.Entity, arg string) (*entity.Entity, bool) {
	if arg == "" {
		t, _ := s.resolveTarget(actor, "")
		return t, true
	}
	t, ok := s.resolveTarget(actor, arg)
	if !ok {
		s.log.Error(actor.ID, fmt.Sprintf("You don't see %q here.", arg))
	}
	return t, ok
}

func (s *Service) canManeuver(actor *entity.Entity) bool {
	if s.checkRoundtime(actor, false) {
		return false
	}
	if actor.Stats().Stance != combat.Standing {
		s.log.Error(actor.ID, "You need to be standing.")
		return false
	}
	return true
}

func maxRangeMessage(dir combat.Direction) string {
	if dir == combat.Withdraw {
		return "You are already as far away as you can get."
	}
	return "You are already as close as you can get."
}

// handleManeuver runs "maneuver <close|withdraw> [target]".
func (s *Service) handleManeuver(actor *entity.Entity, args []string) {
	if len(args) == 0 {
		s.log.Error(actor.ID, "Maneuver how? (close or withdraw)")
		return
	}
	dir, ok := combat.ParseDirection(args[0])
	if !ok {
		s.log.Error(actor.ID, fmt.Sprintf("Unknown maneuver %q. Use close or withdraw.", args[0]))
		return
	}
	if !s.canManeuver(actor) {
		return
	}
	target, ok := s.maneuverTarget(actor, strings.Join(args[1:], " "))
	if !ok {
		return
	}
	if s.maneuver(actor, dir, target) == ManeuverMaxRange {
		s.log.Info(actor.ID, maxRangeMessage(dir))
	}
}

// handleAutomate starts an advance or retreat that repeats every tick.
func (s *Service) handleAutomate(actor *entity.Entity, kind combat.AutomationKind, arg string) {
	target, ok := s.resolveTarget(actor, arg)
	if !ok {
		if arg == "" {
			s.log.Error(actor.ID, fmt.Sprintf("%s from whom?", capitalize(kind.String())))
		} else {
			s.log.Error(actor.ID, fmt.Sprintf("You don't see %q here.", arg))
		}
		return
	}
	a := combat.AutomatedAction{Kind: kind, TargetID: target.ID}
	from := combat.MaxTier(actor.Stats().Tier, target.Stats().Tier)
	if _, ok := from.Step(a.Direction()); !ok {
		s.log.Info(actor.ID, maxRangeMessage(a.Direction()))
		return
	}
	actor.SetAutomation(a)
	if kind == combat.AutoAdvance {
		s.log.Info(actor.ID, fmt.Sprintf("You begin advancing on %s.", object(target)))
	} else {
		s.log.Info(actor.ID, fmt.Sprintf("You begin backing away from %s.", object(target)))
	}
}

func (s *Service) handleStop(actor *entity.Entity) {
	if actor.ClearAutomation() {
		s.log.Info(actor.ID, "You stop.")
		return
	}
	s.log.Info(actor.ID, "You aren't advancing or retreating.")
}

func (s *Service) handleHangback(actor *entity.Entity) {
	st := actor.Stats()
	st.HangingBack = !st.HangingBack
	if st.HangingBack {
		s.log.Info(actor.ID, "You hang back, keeping your distance.")
		s.log.Room(actor.Position().RoomID, []combat.EntityID{actor.ID}, fmt.Sprintf("%s hangs back warily.", actor.Name()))
		return
	}
	s.log.Info(actor.ID, "You stop hanging back.")
}

// handleFlee runs "flee [direction]": an agility contest against the
// strongest enemy; success carries the actor out through an exit.
func (s *Service) handleFlee(actor *entity.Entity, arg string) {
	if s.checkRoundtime(actor, false) {
		return
	}
	if actor.Stats().Stance != combat.Standing {
		s.log.Error(actor.ID, "You need to be standing.")
		return
	}
	room, ok := s.world.GetRoom(actor.Position().RoomID)
	if !ok {
		return
	}
	exits := room.OpenExits()
	if len(exits) == 0 {
		s.log.Error(actor.ID, "There is nowhere to run!")
		return
	}
	var exit world.Exit
	if arg != "" {
		exit, ok = room.ExitForDirection(world.ParseDirection(arg))
		if !ok || exit.Locked {
			s.log.Error(actor.ID, "You can't flee that way.")
			return
		}
	} else {
		exit = exits[s.roller.Pick("flee-exit", len(exits))]
	}
	if !actor.Stats().SpendFatigue(fleeFatigue) {
		s.log.Error(actor.ID, "You are too exhausted to run.")
		return
	}

	enemies := s.enemiesOf(actor)
	if len(enemies) > 0 {
		strongest := enemies[0]
		for _, e := range enemies[1:] {
			if e.Attributes().Agility > strongest.Attributes().Agility {
				strongest = e
			}
		}
		roll := actor.Attributes().Agility + s.roller.Percentile("flee")
		opposed := strongest.Attributes().Agility + s.roller.Percentile("flee-opposed")
		if roll <= opposed {
			s.applyRoundtime(actor, fleeFailRoundtime)
			s.log.Narrate(actor, strongest, "combat",
				"You try to flee but can't break away!",
				fmt.Sprintf("%s tries to flee but you cut off the escape.", subject(actor)),
				fmt.Sprintf("%s tries to flee but fails.", subject(actor)),
			)
			return
		}
	}

	dest, ok := s.world.GetRoom(exit.TargetRoom)
	if !ok {
		return
	}
	s.relocate(actor, dest, string(exit.Direction))
	s.log.Info(actor.ID, fmt.Sprintf("You flee %s!", exit.Direction))
	s.look(actor)
}

// relocate moves e to dest and severs every combat link it had. Flow built
// up in the fight is lost with it.
func (s *Service) relocate(e *entity.Entity, dest *world.Room, via string) {
	from := e.Position().RoomID
	e.ClearAutomation()
	e.Stats().Disengage()
	s.challenges.Drop(e.ID)
	if b := e.Buffer(); b != nil {
		b.ResetCapacity()
		s.pushBuffer(e)
	}
	for _, o := range s.arena.InRoom(from) {
		if o.ID != e.ID && o.Stats().TargetID == e.ID {
			o.Stats().Disengage()
			if a := o.Automation(); a != nil {
				o.ClearAutomation()
			}
			s.pushCombatState(o)
		}
	}
	s.log.Room(from, []combat.EntityID{e.ID}, wrap("combat", fmt.Sprintf("%s flees %s!", subject(e), via)))
	pos := e.Position()
	pos.RoomID, pos.ZoneID = dest.ID, dest.ZoneID
	if p := e.Persona(); p != nil {
		p.InCyberspace = dest.Cyberspace
		if !p.InCyberspace && e.Stats().Stance == combat.Stasis {
			e.Stats().Stance = combat.Standing
		}
	}
	s.log.Room(dest.ID, []combat.EntityID{e.ID}, fmt.Sprintf("%s arrives, breathing hard.", subject(e)))
	s.pushCombatState(e)
}

// handleStance runs "stance <stand|sit|lie|stasis>".
func (s *Service) handleStance(actor *entity.Entity, arg string) {
	st := actor.Stats()
	if arg == "" {
		s.log.Info(actor.ID, fmt.Sprintf("You are %s.", st.Stance))
		return
	}
	stance, ok := combat.ParseStance(arg)
	if !ok {
		s.log.Error(actor.ID, "Stance must be stand, sit, lie or stasis.")
		return
	}
	if stance == combat.Stasis && !actor.InCyberspace() {
		s.log.Error(actor.ID, "Only a persona in cyberspace can enter stasis.")
		return
	}
	if s.checkRoundtime(actor, false) {
		return
	}
	st.Stance = stance
	s.log.Info(actor.ID, fmt.Sprintf("You are now %s.", stance))
	s.log.Room(actor.Position().RoomID, []combat.EntityID{actor.ID}, fmt.Sprintf("%s is now %s.", actor.Name(), stance))
	s.pushCombatState(actor)
}

// handleTarget runs "target <body part|none>".
func (s *Service) handleTarget(actor *entity.Entity, arg string) {
	st := actor.Stats()
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "":
		if st.TargetLimb == "" {
			s.log.Info(actor.ID, "You are not aiming anywhere in particular.")
		} else {
			s.log.Info(actor.ID, fmt.Sprintf("You are aiming for the %s.", st.TargetLimb))
		}
		return
	case "none", "clear":
		st.TargetLimb = ""
		s.log.Info(actor.ID, "You stop aiming.")
		return
	}
	part, ok := combat.ParseBodyPart(arg)
	if !ok {
		s.log.Error(actor.ID, fmt.Sprintf("%q is not a body part.", arg))
		return
	}
	st.TargetLimb = part
	s.log.Info(actor.ID, fmt.Sprintf("You will aim for the %s.", part))
}
