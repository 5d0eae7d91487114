package gameserver

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/mud-combat/internal/game/combat"
	"github.com/cory-johannsen/mud-combat/internal/game/entity"
	"github.com/cory-johannsen/mud-combat/internal/game/inventory"
)

const (
	// attackFatigue is spent when a challenge opens.
	attackFatigue = 2
	// stunSeconds is the roundtime a stunning head wound imposes.
	stunSeconds = 3.0
)

// iaijutsuMultiplier is the damage multiplier iaijutsu draws from momentum.
func iaijutsuMultiplier(state combat.MomentumState) float64 {
	switch state {
	case combat.MomentumPeak:
		return 3.0
	case combat.MomentumFlowing:
		return 2.0
	default:
		return 1.0
	}
}

// strikeWeapon picks the profile for move, or explains why e cannot use it.
func (s *Service) strikeWeapon(e *entity.Entity, move combat.Move) (*inventory.WeaponDef, string) {
	eq := e.Equipment()
	switch {
	case move.IsBrawling():
		if !eq.EmptyHanded() {
			return nil, fmt.Sprintf("You need empty hands to %s.", move)
		}
	case move.RequiresKatana():
		if w := eq.Weapon(); w == nil || !w.IsKatana() {
			return nil, "Iaijutsu requires a katana."
		}
	case move.RequiresBlade():
		if w := eq.Weapon(); w == nil || !w.IsBlade() {
			return nil, fmt.Sprintf("You need a blade to %s.", move)
		}
	}
	return s.weaponFor(e, move), ""
}

// openChallenge validates an attack and, when every precondition holds,
// opens a sync-bar challenge against the target.
//
// Postcondition: On any refusal the actor is told why and nothing changes.
func (s *Service) openChallenge(actor *entity.Entity, move combat.Move, arg string) {
	st := actor.Stats()
	if s.checkRoundtime(actor, false) {
		return
	}
	if st.Fatigue < attackFatigue {
		s.log.Error(actor.ID, "You are too exhausted to attack.")
		return
	}
	if !canFight(actor) {
		s.log.Error(actor.ID, fmt.Sprintf("You can't fight while %s.", st.Stance))
		return
	}
	target, ok := s.resolveTarget(actor, arg)
	if !ok {
		if arg == "" {
			s.log.Error(actor.ID, fmt.Sprintf("%s whom?", capitalize(move.String())))
		} else {
			s.log.Error(actor.ID, fmt.Sprintf("You don't see %q here.", arg))
		}
		return
	}
	w, reason := s.strikeWeapon(actor, move)
	if reason != "" {
		s.log.Error(actor.ID, reason)
		return
	}

	state := combat.MomentumEmpty
	if m := actor.Momentum(); m != nil {
		state = m.State()
	}
	if move == combat.MoveIaijutsu && state < combat.MomentumFlowing {
		s.log.Error(actor.ID, fmt.Sprintf("Your momentum is too weak to draw (%s).", state))
		return
	}
	if w.IsRanged() {
		if mh := actor.Equipment().MainHand; mh == nil || mh.Magazine == nil || mh.Magazine.IsEmpty() {
			s.log.Error(actor.ID, fmt.Sprintf("Click. Your %s is empty.", w.Name))
			return
		}
	}
	tier := combat.MaxTier(st.Tier, target.Stats().Tier)
	if !w.InRange(tier) {
		s.log.Error(actor.ID, fmt.Sprintf("%s is out of reach for your %s at %s range.", subject(target), w.Name, rangeTag(tier)))
		return
	}

	multiplier := 1.0
	if move == combat.MoveIaijutsu {
		multiplier = iaijutsuMultiplier(actor.Momentum().Spend())
	}
	st.SpendFatigue(attackFatigue)
	s.lockTarget(actor, target)
	st.PendingMove = move

	ch := s.challenges.Open(Challenge{
		AttackerID: actor.ID,
		TargetID:   target.ID,
		Move:       move,
		Weapon:     w,
		Multiplier: multiplier,
		ExpiresAt:  s.now().Add(s.cfg.ChallengeTimeout),
	})
	s.emit.SendEvent(actor.ID, EventCombatSync, CombatSyncPayload{
		TargetID:   target.ID,
		TargetName: target.Name(),
		WeaponName: w.Name,
		SyncBar:    combat.ComputeSyncBar(w.Sync, actor.Skills().Level(w.SkillName()), actor.Attributes().Agility),
		Token:      ch.Token,
		ExpiresAt:  ch.ExpiresAt.UnixMilli(),
	})
	s.applyRoundtime(actor, w.Roundtime)
	s.log.Narrate(actor, target, "combat",
		"",
		fmt.Sprintf("%s moves to %s you!", subject(actor), move.String()),
		fmt.Sprintf("%s moves against %s.", subject(actor), object(target)),
	)
	s.pushCombatState(actor)
	s.pushCombatState(target)
	s.logger.Debug("challenge opened",
		zap.String("attacker", string(actor.ID)),
		zap.String("target", string(target.ID)),
		zap.String("move", move.String()),
		zap.Float64("multiplier", multiplier),
	)
}

// resolveChallenge applies the client's answer to the actor's open challenge.
// Stale, mismatched or orphaned results are dropped without a message.
func (s *Service) resolveChallenge(actor *entity.Entity, res CombatResultPayload) {
	if !res.HitType.Valid() {
		s.logger.Debug("invalid combat result", zap.String("id", string(actor.ID)), zap.String("hitType", string(res.HitType)))
		return
	}
	ch, err := s.challenges.Take(actor.ID, res.Token, s.now())
	if err != nil {
		if errors.Is(err, ErrChallengeExpired) {
			actor.Stats().PendingMove = combat.MoveNone
		}
		s.logger.Debug("combat result dropped", zap.String("id", string(actor.ID)), zap.Error(err))
		return
	}
	actor.Stats().PendingMove = combat.MoveNone
	if res.TargetID != "" && res.TargetID != ch.TargetID {
		s.logger.Debug("combat result target mismatch", zap.String("id", string(actor.ID)))
		return
	}
	target, ok := s.arena.Get(ch.TargetID)
	if !ok || target.Position().RoomID != actor.Position().RoomID {
		return
	}
	s.strike(blow{
		attacker:   actor,
		target:     target,
		move:       ch.Move,
		weapon:     ch.Weapon,
		client:     res.HitType,
		multiplier: ch.Multiplier,
	})
}

// blow is one strike to resolve.
type blow struct {
	attacker, target *entity.Entity
	move             combat.Move
	weapon           *inventory.WeaponDef
	// client is the sync-bar outcome; empty for blows with no challenge.
	client     combat.ClientResult
	multiplier float64
}

// strikeOutcome reports what a resolved blow did.
type strikeOutcome struct {
	Hit    combat.HitType
	Damage int
	Margin float64
	Killed bool
}

// margin is attacker power less defender power for a blow with w.
func (s *Service) margin(atk, tgt *entity.Entity, w *inventory.WeaponDef) float64 {
	ast, tst := atk.Stats(), tgt.Stats()
	tw := s.weaponFor(tgt, combat.MoveAttack)
	armor, penalty := tgt.Equipment().ArmorValues()
	ap := combat.AttackerPower(combat.AttackProfile{
		Skill:      atk.Skills().Level(w.SkillName()),
		Agility:    atk.Attributes().Agility,
		Balance:    ast.Balance,
		ArmPenalty: atk.ArmPenalty(),
	})
	dp := combat.DefenderPower(combat.DefenseProfile{
		Skill:        tgt.Skills().Level(tw.SkillName()),
		Agility:      tgt.Attributes().Agility,
		Balance:      tst.Balance,
		Allocation:   tst.Allocation,
		BaseDefense:  tst.Defense,
		ArmorDefense: armor,
		ArmorPenalty: penalty,
		Stance:       tst.Stance,
	}, w.IsMelee())
	return ap - dp
}

// strike computes the hit for b and lands it.
func (s *Service) strike(b blow) strikeOutcome {
	m := s.margin(b.attacker, b.target, b.weapon)
	hit := combat.DetermineHitType(m)
	if b.client != "" {
		hit = combat.ApplyClientResult(hit, b.client)
	}
	return s.land(b, hit, m, 1.0)
}

// land applies every consequence of a resolved hit: damage, ammunition,
// balance, experience, momentum, wounds, narration and death. scale shrinks
// damage for partially blocked blows.
func (s *Service) land(b blow, hit combat.HitType, margin, scale float64) strikeOutcome {
	atk, tgt, w := b.attacker, b.target, b.weapon
	out := strikeOutcome{Hit: hit, Margin: margin}

	dmg := combat.Damage(w.Damage, hit, margin, b.multiplier)
	if hit != combat.HitMiss && scale < 1 {
		dmg = int(float64(dmg) * scale)
		if dmg < 1 {
			dmg = 1
		}
	}
	if hit != combat.HitMiss && s.scripts != nil {
		dmg = s.scripts.DamageHook(atk.Position().ZoneID, combatantInfo(atk), combatantInfo(tgt), hit.String(), dmg)
	}
	out.Damage = dmg

	if w.IsRanged() {
		if mh := atk.Equipment().MainHand; mh != nil && mh.Magazine != nil {
			_ = mh.Magazine.Consume()
		}
	}
	da, dt := combat.BalanceShift(hit)
	atk.Stats().AdjustBalance(da)
	tgt.Stats().AdjustBalance(dt)

	if xp := combat.ExperienceFor(hit); xp > 0 {
		if lvl, up := atk.Skills().Gain(w.SkillName(), xp); up && !atk.IsNPC() {
			s.log.Info(atk.ID, fmt.Sprintf("Your %s skill rises to %d.", w.SkillName(), lvl))
		}
	}
	if b.move == combat.MoveSlice && w.IsKatana() && hit != combat.HitMiss {
		atk.EnsureMomentum().Gain(combat.MomentumPerAction)
	}

	s.log.NarrateStrike(atk, tgt, b.move, w, hit, dmg)
	if hit == combat.HitCrushing && dmg > 0 {
		s.wound(atk, tgt, dmg)
	}

	s.logger.Debug("strike resolved",
		zap.String("attacker", string(atk.ID)),
		zap.String("target", string(tgt.ID)),
		zap.String("hit", hit.String()),
		zap.Float64("margin", margin),
		zap.Int("damage", dmg),
	)
	if tgt.Stats().ApplyDamage(dmg) {
		out.Killed = true
		s.defeat(atk, tgt)
		return out
	}
	s.pushCombatState(atk)
	s.pushCombatState(tgt)
	return out
}

// wound lands a crushing blow on a body part: the aimed part half the time
// when the attacker is aiming, otherwise a random one.
func (s *Service) wound(atk, tgt *entity.Entity, dmg int) {
	var part combat.BodyPart
	if aim := atk.Stats().TargetLimb; aim != "" && s.roller.Chance("wound-aim", 0.5) {
		part = aim
	} else {
		part = combat.PhysicalParts[s.roller.Pick("wound-location", len(combat.PhysicalParts))]
	}
	res := tgt.EnsureWounds().ApplyWound(part, combat.WoundSeverity(dmg), tgt.InCyberspace())
	level := combat.DescribeWound(res.Level)
	s.log.Narrate(atk, tgt, "combat-crit",
		fmt.Sprintf("You leave %s's %s %s.", object(tgt), res.Part, level),
		fmt.Sprintf("Your %s is %s!", res.Part, level),
		"",
	)
	if res.Penalty != "" && !tgt.IsNPC() {
		s.log.Combat(tgt.ID, res.Penalty)
	}
	if res.Stunned {
		tgt.Roundtime().Apply(stunSeconds)
		s.log.Room(tgt.Position().RoomID, []combat.EntityID{tgt.ID}, fmt.Sprintf("%s staggers, stunned.", subject(tgt)))
	}
}
