package gameserver

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/mud-combat/internal/game/combat"
	"github.com/cory-johannsen/mud-combat/internal/game/command"
	"github.com/cory-johannsen/mud-combat/internal/game/entity"
)

// ErrUnknownCommand is returned by HandleCommand for a verb no command claims.
var ErrUnknownCommand = errors.New("gameserver: unknown command")

// reloadRoundtime is the lock a reload costs.
const reloadRoundtime = 2.0

var brawlMoves = map[string]combat.Move{
	"punch":    combat.MovePunch,
	"jab":      combat.MoveJab,
	"headbutt": combat.MoveHeadbutt,
	"uppercut": combat.MoveUppercut,
}

// dispatch routes a parsed line to its handler.
//
// Precondition: s.mu is held and e is in the arena.
func (s *Service) dispatch(e *entity.Entity, in command.Input) error {
	cmd, ok := s.commands.Resolve(in.Verb)
	if !ok {
		s.log.Error(e.ID, fmt.Sprintf("Unknown command %q. Type help for a list.", in.Verb))
		return fmt.Errorf("%w: %s", ErrUnknownCommand, in.Verb)
	}
	s.logger.Debug("command", zap.String("id", string(e.ID)), zap.String("command", cmd.Name), zap.String("args", in.Rest))

	switch cmd.Handler {
	case command.HandlerAttack:
		s.openChallenge(e, combat.MoveAttack, in.Rest)
	case command.HandlerBrawl:
		s.openChallenge(e, brawlMoves[cmd.Name], in.Rest)
	case command.HandlerSlice:
		s.openChallenge(e, combat.MoveSlice, in.Rest)
	case command.HandlerIaijutsu:
		s.openChallenge(e, combat.MoveIaijutsu, in.Rest)
	case command.HandlerReload:
		s.handleReload(e)
	case command.HandlerAmmo:
		s.handleAmmo(e)
	case command.HandlerSequence:
		s.handleSequence(e, in.Rest)
	case command.HandlerBufferAction:
		kind, _ := combat.ParseActionKind(cmd.Name)
		s.handleBufferAction(e, kind, in.Rest)
	case command.HandlerUpload:
		s.handleUpload(e)
	case command.HandlerManeuver:
		s.handleManeuver(e, in.Args)
	case command.HandlerAdvance:
		s.handleAutomate(e, combat.AutoAdvance, in.Rest)
	case command.HandlerRetreat:
		s.handleAutomate(e, combat.AutoRetreat, in.Rest)
	case command.HandlerStop:
		s.handleStop(e)
	case command.HandlerHangback:
		s.handleHangback(e)
	case command.HandlerFlee:
		s.handleFlee(e, in.Rest)
	case command.HandlerAssess:
		s.log.Info(e.ID, s.assessText(e))
	case command.HandlerTarget:
		s.handleTarget(e, in.Rest)
	case command.HandlerStance:
		s.handleStance(e, in.Rest)
	case command.HandlerAppraise:
		s.handleAppraise(e, in.Rest)
	case command.HandlerLook:
		s.look(e)
	case command.HandlerHelp:
		s.handleHelp(e)
	default:
		s.logger.Warn("command has no handler", zap.String("command", cmd.Name))
	}
	return nil
}

func (s *Service) handleReload(e *entity.Entity) {
	eq := e.Equipment()
	w := eq.Weapon()
	if w == nil || !w.IsRanged() {
		s.log.Error(e.ID, "You have nothing to reload.")
		return
	}
	if s.checkRoundtime(e, false) {
		return
	}
	mag := eq.MainHand.Magazine
	if mag.Loaded == mag.Capacity {
		s.log.Info(e.ID, fmt.Sprintf("Your %s is already full.", w.Name))
		return
	}
	if eq.Reserve <= 0 {
		s.log.Error(e.ID, "You are out of ammunition.")
		return
	}
	n := eq.Reload()
	s.log.Info(e.ID, fmt.Sprintf("You load %d rounds into your %s (%d/%d).", n, w.Name, mag.Loaded, mag.Capacity))
	s.log.Room(e.Position().RoomID, []combat.EntityID{e.ID}, fmt.Sprintf("%s reloads %s.", subject(e), w.Name))
	s.applyRoundtime(e, reloadRoundtime)
}

func (s *Service) handleAmmo(e *entity.Entity) {
	eq := e.Equipment()
	w := eq.Weapon()
	if w == nil || !w.IsRanged() {
		s.log.Info(e.ID, "Your weapon takes no ammunition.")
		return
	}
	mag := eq.MainHand.Magazine
	s.log.Info(e.ID, fmt.Sprintf("%s: %d/%d loaded, %d in reserve.", w.Name, mag.Loaded, mag.Capacity, eq.Reserve))
}

func (s *Service) handleAppraise(e *entity.Entity, arg string) {
	if arg == "" {
		s.log.Error(e.ID, "Appraise whom?")
		return
	}
	name, ordinal := parseTargetName(arg)
	t, ok := s.findInRoom(e, name, ordinal)
	if !ok {
		s.log.Error(e.ID, fmt.Sprintf("You don't see %q here.", arg))
		return
	}
	s.log.Info(e.ID, s.appraiseText(e, t))
}

// look describes e's room and who is in it.
func (s *Service) look(e *entity.Entity) {
	room, ok := s.world.GetRoom(e.Position().RoomID)
	if !ok {
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s", room.Title, room.Description)
	if exits := room.OpenExits(); len(exits) > 0 {
		names := make([]string, 0, len(exits))
		for _, x := range exits {
			names = append(names, string(x.Direction))
		}
		fmt.Fprintf(&b, "\nExits: %s.", strings.Join(names, ", "))
	}
	for _, o := range s.arena.InRoom(room.ID) {
		if o.ID == e.ID {
			continue
		}
		st := o.Stats()
		fmt.Fprintf(&b, "\n  %s (%s)", object(o), strings.ToLower(combat.HealthStatus(st.HP, st.MaxHP)))
		if st.TargetID == e.ID && st.Hostile {
			b.WriteString(" is fighting you")
		}
	}
	s.emit.SendText(e.ID, MessageRoom, b.String())
}

func (s *Service) handleHelp(e *entity.Entity) {
	var b strings.Builder
	b.WriteString("Commands:")
	category := ""
	for _, c := range s.commands.Commands() {
		if c.Category != category {
			category = c.Category
			fmt.Fprintf(&b, "\n[%s]", category)
		}
		fmt.Fprintf(&b, "\n  %-36s %s", c.Usage, c.Help)
	}
	s.log.Info(e.ID, b.String())
}
