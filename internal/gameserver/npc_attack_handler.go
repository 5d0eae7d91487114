package gameserver

import (
	"fmt"

	"github.com/cory-johannsen/mud-combat/internal/game/combat"
	"github.com/cory-johannsen/mud-combat/internal/game/entity"
)

const (
	// npcAttackRoundtime follows every NPC attack.
	npcAttackRoundtime = 4.0
	// mitigationShare is the allocation share above which a defense style
	// can turn a blow.
	mitigationShare = 50
	// shieldScale is the damage kept by a partial shield block.
	shieldScale = 0.5
)

// Scramble odds for a sequence caught mid-execution.
const (
	scrambleOnCrushing = 0.7
	scrambleOnSolid    = 0.3
)

// npcAttack resolves one NPC blow on target with no sync-bar challenge.
func (s *Service) npcAttack(npc, target *entity.Entity) {
	ns, ts := npc.Stats(), target.Stats()
	w := s.weaponFor(npc, combat.MoveAttack)

	if ts.Tier == combat.Disengaged {
		tier := w.MinTier
		if tier == combat.Disengaged {
			tier = combat.Melee
		}
		ns.Tier, ts.Tier = tier, tier
	}
	if w.IsRanged() {
		mh := npc.Equipment().MainHand
		if mh != nil && mh.Magazine != nil && mh.Magazine.IsEmpty() {
			if npc.Equipment().Reload() > 0 {
				s.log.Room(npc.Position().RoomID, nil, fmt.Sprintf("%s slaps a fresh magazine into %s.", subject(npc), w.Name))
			}
			s.applyRoundtime(npc, npcAttackRoundtime)
			return
		}
	}

	m := s.margin(npc, target, w)
	hit := combat.DetermineHitType(m)
	scale := 1.0

	if ts.Parrying {
		ts.Parrying = false
		if hit != combat.HitMiss {
			hit = hit.Downgrade()
			s.log.Narrate(target, npc, "combat-hit",
				fmt.Sprintf("You parry %s, turning the blow!", object(npc)),
				"",
				fmt.Sprintf("%s parries %s.", subject(target), object(npc)),
			)
			s.gainFlow(target)
		}
	} else {
		scale = s.mitigate(npc, target, w.IsMelee(), &hit)
	}

	out := s.land(blow{attacker: npc, target: target, move: combat.MoveAttack, weapon: w, multiplier: 1}, hit, m, scale)
	if out.Killed {
		s.applyRoundtime(npc, npcAttackRoundtime)
		return
	}
	s.disrupt(target, hit)
	s.applyRoundtime(npc, npcAttackRoundtime)
	s.pushCombatState(target)
}

// mitigate lets a strong defensive allocation turn a weak blow: parry voids a
// marginal melee hit, a shield halves one, and evasion turns a miss into a
// narrated dodge. Each success feeds the defender's momentum and flow.
//
// Postcondition: Returns the damage scale to apply; hit may be lowered.
func (s *Service) mitigate(npc, target *entity.Entity, melee bool, hit *combat.HitType) float64 {
	alloc := target.Stats().Allocation
	var toTarget, toRoom string
	scale := 1.0
	switch {
	case *hit == combat.HitMarginal && melee && alloc.Parry > mitigationShare:
		*hit = combat.HitMiss
		toTarget = fmt.Sprintf("You turn %s's blow aside with your %s.", object(npc), target.Equipment().WeaponName())
		toRoom = fmt.Sprintf("%s turns %s's blow aside.", subject(target), object(npc))
	case *hit == combat.HitMarginal && alloc.Shield > mitigationShare:
		scale = shieldScale
		toTarget = fmt.Sprintf("You catch part of %s's blow on your guard.", object(npc))
		toRoom = fmt.Sprintf("%s blocks part of %s's blow.", subject(target), object(npc))
	case *hit == combat.HitMiss && alloc.Evasion > mitigationShare:
		toTarget = fmt.Sprintf("You slip away from %s's attack.", object(npc))
		toRoom = fmt.Sprintf("%s slips away from %s.", subject(target), object(npc))
	default:
		return scale
	}
	s.log.Narrate(target, npc, "combat-hit", toTarget, "", toRoom)
	if w := target.Equipment().Weapon(); w != nil && w.IsKatana() {
		target.EnsureMomentum().Gain(combat.MomentumPerAction)
	}
	s.gainFlow(target)
	return scale
}

// disrupt corrupts a sequence the target is executing when a hard blow lands.
// A crushing blow to a persona jacked into cyberspace also plants a REBOOT.
func (s *Service) disrupt(target *entity.Entity, hit combat.HitType) {
	b := target.Buffer()
	if b == nil || !b.Executing {
		return
	}
	if hit == combat.HitCrushing && target.InCyberspace() && !b.HasMalware(combat.ActionReboot) {
		b.InjectMalware(combat.ActionReboot)
		s.log.Combat(target.ID, "<combat-crit>Malware floods your buffer: REBOOT pending.</combat-crit>")
	}
	var p float64
	switch hit {
	case combat.HitCrushing:
		p = scrambleOnCrushing
	case combat.HitSolid:
		p = scrambleOnSolid
	default:
		s.pushBuffer(target)
		return
	}
	if len(b.Actions) > 0 && s.roller.Chance("scramble", p) {
		n := b.Scramble()
		s.log.Combat(target.ID, fmt.Sprintf("<combat-crit>The blow scrambles your sequence! %d actions corrupted.</combat-crit>", n))
	}
	s.pushBuffer(target)
}
