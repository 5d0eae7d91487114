package gameserver

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/mud-combat/internal/game/combat"
	"github.com/cory-johannsen/mud-combat/internal/game/entity"
)

// NPC decision odds and costs.
const (
	npcAdvanceChance    = 0.15
	npcAdvanceBase      = 0.5
	npcAdvancePerAGI    = 0.05
	npcHangbackPenalty  = 0.4
	npcAdvanceRoundtime = 4.0
	npcStalkRoundtime   = 3.0
	npcStalkChance      = 0.5
	npcTelegraphChance  = 0.5
)

var telegraphMoves = []combat.ActionKind{combat.ActionSlash, combat.ActionThrust, combat.ActionDash}

// npcCombatTick gives every NPC one decision, in spawn order.
func (s *Service) npcCombatTick() {
	for _, npc := range s.arena.WithBrain() {
		if !npc.Valid() {
			continue
		}
		s.npcDecide(npc)
	}
}

// npcDecide acquires or drops a target, closes distance when out of range,
// and otherwise attacks. Acquiring a target takes the whole decision; the
// approach starts on the next tick.
func (s *Service) npcDecide(npc *entity.Entity) {
	st := npc.Stats()
	brain := npc.Brain()
	room := npc.Position().RoomID

	if st.TargetID == "" {
		if !brain.Aggressive {
			return
		}
		var prey []*entity.Entity
		for _, e := range s.arena.InRoom(room) {
			if !e.IsNPC() && !e.Stats().IsDead() {
				prey = append(prey, e)
			}
		}
		if len(prey) == 0 {
			return
		}
		target := prey[s.roller.Pick("npc-target", len(prey))]
		st.TargetID = target.ID
		st.Hostile = true
		st.Tier = combat.Disengaged
		s.log.Narrate(npc, target, "combat",
			"",
			fmt.Sprintf("%s turns on you!", subject(npc)),
			fmt.Sprintf("%s turns on %s!", subject(npc), object(target)),
		)
		s.pushCombatState(target)
		s.logger.Debug("npc acquired target", zap.String("npc", string(npc.ID)), zap.String("target", string(target.ID)))
		return
	}

	target, ok := s.arena.Get(st.TargetID)
	if !ok || target.Position().RoomID != room {
		st.Disengage()
		return
	}
	if s.checkRoundtime(npc, true) {
		return
	}

	w := s.weaponFor(npc, combat.MoveAttack)
	ts := target.Stats()
	tier := combat.MaxTier(st.Tier, ts.Tier)
	if tier < w.MinTier {
		if s.roller.Chance("npc-advance", npcAdvanceChance) {
			s.npcAdvance(npc, target)
		}
		return
	}

	if st.Telegraph == nil && s.roller.Chance("npc-telegraph", npcTelegraphChance) {
		kind := telegraphMoves[s.roller.Pick("npc-telegraph-move", len(telegraphMoves))]
		st.Telegraph = &kind
		s.log.Narrate(npc, target, "combat",
			"",
			fmt.Sprintf("%s shifts its weight, readying a %s.", subject(npc), strings.ToLower(kind.String())),
			"",
		)
	}
	s.npcAttack(npc, target)
}

// npcAdvance rolls the NPC's approach: success closes one rung and drags the
// target along from polearm range inward.
func (s *Service) npcAdvance(npc, target *entity.Entity) {
	st, ts := npc.Stats(), target.Stats()
	p := npcAdvanceBase + npcAdvancePerAGI*float64(npc.Attributes().Agility-target.Attributes().Agility)
	if ts.HangingBack {
		p -= npcHangbackPenalty
	}
	next, ok := combat.MaxTier(st.Tier, ts.Tier).Step(combat.Close)
	if !ok || !s.roller.Chance("npc-advance-roll", p) {
		s.applyRoundtime(npc, npcStalkRoundtime)
		if len(npc.Brain().Stalking) > 0 && s.roller.Chance("npc-stalk", npcStalkChance) {
			line := npc.Brain().Stalking[s.roller.Pick("npc-stalk-line", len(npc.Brain().Stalking))]
			if strings.Contains(line, "%s") {
				line = fmt.Sprintf(line, subject(npc))
			}
			s.log.Room(npc.Position().RoomID, nil, wrap("combat", line))
		}
		return
	}
	st.Tier = next
	if next >= combat.Polearm {
		ts.Tier = next
	}
	s.applyRoundtime(npc, npcAdvanceRoundtime)
	s.log.Narrate(npc, target, "combat",
		"",
		fmt.Sprintf("%s closes to %s range with you!", subject(npc), rangeTag(next)),
		fmt.Sprintf("%s closes on %s.", subject(npc), object(target)),
	)
	s.pushCombatState(target)
}
