package gameserver

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cory-johannsen/mud-combat/internal/game/combat"
	"github.com/cory-johannsen/mud-combat/internal/game/entity"
	"github.com/cory-johannsen/mud-combat/internal/game/inventory"
)

// CombatLogger routes narration to the actor, the target and the room.
type CombatLogger struct {
	arena *entity.Arena
	emit  Emitter
}

// NewCombatLogger creates a CombatLogger.
//
// Precondition: arena and emit must be non-nil.
func NewCombatLogger(arena *entity.Arena, emit Emitter) *CombatLogger {
	return &CombatLogger{arena: arena, emit: emit}
}

// Info sends a plain line to id.
func (l *CombatLogger) Info(id combat.EntityID, text string) {
	l.emit.SendText(id, MessageInfo, text)
}

// Error reports a refused command to id.
func (l *CombatLogger) Error(id combat.EntityID, text string) {
	l.emit.SendText(id, MessageError, text)
}

// Combat sends a marked-up combat line to id.
func (l *CombatLogger) Combat(id combat.EntityID, text string) {
	l.emit.SendText(id, MessageCombat, text)
}

// Room sends text to every player in roomID not listed in exclude.
func (l *CombatLogger) Room(roomID string, exclude []combat.EntityID, text string) {
	for _, e := range l.arena.InRoom(roomID) {
		if e.IsNPC() || excluded(e.ID, exclude) {
			continue
		}
		l.emit.SendText(e.ID, MessageRoom, text)
	}
}

func excluded(id combat.EntityID, list []combat.EntityID) bool {
	for _, x := range list {
		if x == id {
			return true
		}
	}
	return false
}

// Narrate delivers the three views of one event, each wrapped in tag. target
// may be nil; empty lines are skipped.
func (l *CombatLogger) Narrate(actor, target *entity.Entity, tag, toActor, toTarget, toRoom string) {
	exclude := []combat.EntityID{actor.ID}
	if toActor != "" && !actor.IsNPC() {
		l.Combat(actor.ID, wrap(tag, toActor))
	}
	if target != nil {
		exclude = append(exclude, target.ID)
		if toTarget != "" && !target.IsNPC() {
			l.Combat(target.ID, wrap(tag, toTarget))
		}
	}
	if toRoom != "" {
		l.Room(actor.Position().RoomID, exclude, wrap(tag, toRoom))
	}
}

// NarrateStrike describes a resolved strike from all three points of view.
func (l *CombatLogger) NarrateStrike(actor, target *entity.Entity, move combat.Move, w *inventory.WeaponDef, hit combat.HitType, dmg int) {
	verb := combat.VerbFor(move, string(w.Category))
	actorName := subject(actor)
	if hit == combat.HitMiss {
		what := move.String()
		if move == combat.MoveAttack || move == combat.MoveNone {
			what = "attack"
		}
		l.Narrate(actor, target, combat.MarkupTag(hit),
			fmt.Sprintf("Your %s misses %s.", what, object(target)),
			fmt.Sprintf("%s's %s misses you.", actorName, what),
			fmt.Sprintf("%s's %s misses %s.", actorName, what, object(target)),
		)
		return
	}
	word := combat.DamageDescriptor(dmg)
	sev := combat.Severity(hit)
	toActor := fmt.Sprintf("You %s %s %s with your %s, a %s blow.", verb.You, object(target), sev, w.Name, word)
	if q := combat.FatigueQualifier(actor.Stats().Fatigue, actor.Stats().MaxFatigue); q != "" {
		toActor += fmt.Sprintf(" [%s]", q)
	}
	l.Narrate(actor, target, combat.MarkupTag(hit),
		toActor,
		fmt.Sprintf("%s %s you %s, a %s blow.", actorName, verb.They, sev, word),
		fmt.Sprintf("%s %s %s %s.", actorName, verb.They, object(target), sev),
	)
}

// subject names e at the start of a sentence, tagging NPCs as enemies.
func subject(e *entity.Entity) string {
	name := capitalize(e.Name())
	if e.IsNPC() {
		return "<enemy>" + name + "</enemy>"
	}
	return name
}

// object names e mid-sentence.
func object(e *entity.Entity) string {
	if e.IsNPC() {
		return "<enemy>" + e.Name() + "</enemy>"
	}
	return e.Name()
}

func rangeTag(t combat.Tier) string {
	return "<range>" + t.Label() + "</range>"
}

func wrap(tag, text string) string {
	return "<" + tag + ">" + text + "</" + tag + ">"
}

func capitalize(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}

// assessText describes the actor's poise and the range of everyone nearby.
func (s *Service) assessText(e *entity.Entity) string {
	st := e.Stats()
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, %s, at %s range.", combat.BalanceDescription(st.Balance), st.Stance, rangeTag(st.Tier))
	if m := e.Momentum(); m != nil && m.Current > 0 {
		fmt.Fprintf(&b, " Your momentum is %s.", m.State())
	}
	if q := combat.FatigueQualifier(st.Fatigue, st.MaxFatigue); q != "" {
		fmt.Fprintf(&b, " You feel %s.", strings.ToLower(q))
	}
	for _, o := range s.arena.InRoom(e.Position().RoomID) {
		if o.ID == e.ID {
			continue
		}
		ost := o.Stats()
		line := fmt.Sprintf("\n%s is %s at %s range", subject(o), combat.BalanceDescription(ost.Balance), rangeTag(combat.MaxTier(st.Tier, ost.Tier)))
		switch {
		case ost.Hostile && ost.TargetID == e.ID:
			line += ", fighting you"
		case st.TargetID == o.ID:
			line += ", your target"
		}
		if ost.HangingBack {
			line += ", hanging back"
		}
		b.WriteString(line + ".")
	}
	return b.String()
}

// appraiseText describes target's condition, weapon and wounds.
func (s *Service) appraiseText(e, target *entity.Entity) string {
	ts := target.Stats()
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s, wielding %s, %s.",
		subject(target),
		combat.HealthStatus(ts.HP, ts.MaxHP),
		target.Equipment().WeaponName(),
		ts.Stance,
	)
	fmt.Fprintf(&b, " Range: %s.", rangeTag(combat.MaxTier(e.Stats().Tier, ts.Tier)))
	if q := combat.FatigueQualifier(ts.Fatigue, ts.MaxFatigue); q != "" {
		fmt.Fprintf(&b, " Looks %s.", strings.ToLower(q))
	}
	if w := target.Wounds(); w != nil {
		var parts []string
		for _, p := range w.Wounded() {
			desc := fmt.Sprintf("%s (%s", p, combat.DescribeWound(w.Level(p)))
			if w.Parts[p].Bleeding {
				desc += ", bleeding"
			}
			parts = append(parts, desc+")")
		}
		if len(parts) > 0 {
			fmt.Fprintf(&b, " Wounds: %s.", strings.Join(parts, ", "))
		}
	}
	if ts.Telegraph != nil {
		fmt.Fprintf(&b, " It is readying a %s.", strings.ToLower(ts.Telegraph.String()))
	}
	return b.String()
}
