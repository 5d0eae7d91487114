package gameserver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/mud-combat/internal/config"
	"github.com/cory-johannsen/mud-combat/internal/game/character"
	"github.com/cory-johannsen/mud-combat/internal/game/combat"
	"github.com/cory-johannsen/mud-combat/internal/game/command"
	"github.com/cory-johannsen/mud-combat/internal/game/dice"
	"github.com/cory-johannsen/mud-combat/internal/game/entity"
	"github.com/cory-johannsen/mud-combat/internal/game/inventory"
	"github.com/cory-johannsen/mud-combat/internal/game/npc"
	"github.com/cory-johannsen/mud-combat/internal/game/world"
	"github.com/cory-johannsen/mud-combat/internal/scripting"
	"github.com/cory-johannsen/mud-combat/internal/storage/postgres"
)

// ErrUnknownEntity is returned when a request names an entity that is not in the arena.
var ErrUnknownEntity = errors.New("gameserver: unknown entity")

// ErrAlreadyConnected is returned by Join when the name is already playing.
var ErrAlreadyConnected = errors.New("gameserver: already connected")

// NewPlayerID mints a unique player entity id.
func NewPlayerID() combat.EntityID {
	return combat.EntityID("player-" + uuid.NewString())
}

// ProfileStore loads and saves player combat profiles.
type ProfileStore interface {
	LoadProfile(ctx context.Context, name string) (*character.Profile, error)
	SaveProfile(ctx context.Context, p *character.Profile) error
}

// Deps are the collaborators of a Service.
type Deps struct {
	Arena    *entity.Arena
	World    *world.Manager
	Items    *inventory.Registry
	Spawner  *npc.Spawner
	Roller   *dice.Roller
	Emitter  Emitter
	Commands *command.Registry
	// Scheduler runs sequencer steps; defaults to combat.WallClock.
	Scheduler combat.Scheduler
	// Scripts and Profiles may be nil.
	Scripts  *scripting.Manager
	Profiles ProfileStore
	Config   config.CombatConfig
	Logger   *zap.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Service is the authoritative combat simulation. Every mutation of combat
// state, whether from a command, a challenge result, a tick or a sequencer
// step, happens while holding mu.
type Service struct {
	mu sync.Mutex

	arena    *entity.Arena
	world    *world.Manager
	items    *inventory.Registry
	spawner  *npc.Spawner
	roller   *dice.Roller
	emit     Emitter
	commands *command.Registry
	scripts  *scripting.Manager
	profiles ProfileStore
	cfg      config.CombatConfig
	logger   *zap.Logger
	now      func() time.Time

	seq        *combat.Sequencer
	challenges *ChallengeBook
	clears     *RoomClearTracker
	log        *CombatLogger
	delays     map[combat.ActionKind]time.Duration
	// profileOf maps connected players to the profile they were built from.
	profileOf map[combat.EntityID]*character.Profile
	// fatigueCarry holds fractional fatigue recovery between ticks.
	fatigueCarry map[combat.EntityID]float64
}

// NewService wires a Service from deps.
//
// Precondition: Arena, World, Items, Roller, Emitter and Logger must be non-nil.
// Postcondition: Returns a Service with no connected players.
func NewService(deps Deps) (*Service, error) {
	if deps.Arena == nil || deps.World == nil || deps.Items == nil || deps.Roller == nil || deps.Emitter == nil || deps.Logger == nil {
		return nil, errors.New("gameserver: arena, world, items, roller, emitter and logger are required")
	}
	if deps.Commands == nil {
		deps.Commands = command.DefaultRegistry()
	}
	if deps.Scheduler == nil {
		deps.Scheduler = combat.WallClock{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Config.ChallengeTimeout <= 0 {
		deps.Config.ChallengeTimeout = 10 * time.Second
	}
	if deps.Config.MomentumDecay <= 0 {
		deps.Config.MomentumDecay = combat.MomentumDecayPerSecond
	}
	delays, err := actionDelays(deps.Config.ActionDelays)
	if err != nil {
		return nil, err
	}

	s := &Service{
		arena:        deps.Arena,
		world:        deps.World,
		items:        deps.Items,
		spawner:      deps.Spawner,
		roller:       deps.Roller,
		emit:         deps.Emitter,
		commands:     deps.Commands,
		scripts:      deps.Scripts,
		profiles:     deps.Profiles,
		cfg:          deps.Config,
		logger:       deps.Logger,
		now:          deps.Now,
		seq:          combat.NewSequencer(deps.Scheduler),
		challenges:   NewChallengeBook(),
		delays:       delays,
		profileOf:    make(map[combat.EntityID]*character.Profile),
		fatigueCarry: make(map[combat.EntityID]float64),
	}
	s.log = NewCombatLogger(s.arena, s.emit)
	s.clears = NewRoomClearTracker(func(roomID string) {
		s.log.Room(roomID, nil, "<combat>The room falls quiet. Nothing hostile remains.</combat>")
		s.logger.Info("room cleared", zap.String("room", roomID))
	})
	if s.scripts != nil && s.scripts.Broadcast == nil {
		s.scripts.Broadcast = func(roomID, msg string) { s.log.Room(roomID, nil, msg) }
	}
	return s, nil
}

func actionDelays(overrides map[string]time.Duration) (map[combat.ActionKind]time.Duration, error) {
	out := make(map[combat.ActionKind]time.Duration, len(combat.DefaultDelays))
	for k, d := range combat.DefaultDelays {
		out[k] = d
	}
	for name, d := range overrides {
		kind, ok := combat.ParseActionKind(name)
		if !ok && strings.EqualFold(strings.TrimSpace(name), "STUMBLE") {
			kind, ok = combat.ActionStumble, true
		}
		if !ok {
			return nil, fmt.Errorf("gameserver: unknown action delay %q", name)
		}
		out[kind] = d
	}
	return out, nil
}

// Populate spawns every room's NPCs.
//
// Postcondition: Returns the number of NPCs spawned.
func (s *Service) Populate() (int, error) {
	if s.spawner == nil {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ids, err := s.spawner.Populate(s.world.Rooms())
	for _, id := range ids {
		if e, ok := s.arena.Get(id); ok {
			s.clears.Track(e.Position().RoomID)
		}
	}
	return len(ids), err
}

// Join loads (or creates) name's profile and places a player entity in the
// start room under id. The caller registers id with the Emitter first so the
// welcome output reaches the client; an empty id is minted here.
//
// Precondition: name must be non-empty.
// Postcondition: Returns the entity id, or ErrAlreadyConnected.
func (s *Service) Join(ctx context.Context, id combat.EntityID, name string) (combat.EntityID, error) {
	profile, err := s.loadProfile(ctx, name)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.arena.All() {
		if !e.IsNPC() && e.Name() == name {
			return "", fmt.Errorf("%w: %s", ErrAlreadyConnected, name)
		}
	}

	room := s.world.StartRoom()
	if s.cfg.StartRoom != "" {
		if r, ok := s.world.GetRoom(s.cfg.StartRoom); ok {
			room = r
		}
	}
	eq, err := s.items.Equip(s.cfg.StartingWeapon, "", 0)
	if err != nil {
		return "", fmt.Errorf("equipping %s: %w", name, err)
	}
	if w := eq.Weapon(); w != nil && w.IsRanged() {
		eq.Reserve = w.MagazineCapacity * 2
	}

	stats := combat.NewCombatStats(profile.MaxHP, profile.MaxFatigue)
	stats.Allocation = profile.Allocation
	skills := combat.Skills{}
	for k, v := range profile.Skills {
		skills[k] = v
	}

	if id == "" {
		id = NewPlayerID()
	}
	e, err := s.arena.Spawn(entity.Spec{
		Identity:   combat.Identity{ID: id, Name: name, Kind: combat.KindPlayer},
		Position:   combat.Position{RoomID: room.ID, ZoneID: room.ZoneID},
		Stats:      stats,
		Attributes: combat.Attributes{Agility: profile.Agility, Strength: profile.Strength},
		Skills:     skills,
		Equipment:  eq,
		Persona:    &combat.Persona{InCyberspace: room.Cyberspace},
		Wounds:     profile.WoundTable(),
		Sequenced:  true,
	})
	if err != nil {
		return "", err
	}
	s.profileOf[e.ID] = profile
	s.logger.Info("player joined", zap.String("name", name), zap.String("id", string(e.ID)), zap.String("room", room.ID))

	s.log.Info(e.ID, fmt.Sprintf("Welcome, %s.", name))
	s.log.Room(room.ID, []combat.EntityID{e.ID}, fmt.Sprintf("%s arrives.", name))
	s.look(e)
	s.pushBuffer(e)
	return e.ID, nil
}

func (s *Service) loadProfile(ctx context.Context, name string) (*character.Profile, error) {
	if name == "" {
		return nil, errors.New("gameserver: name must not be empty")
	}
	if s.profiles != nil {
		p, err := s.profiles.LoadProfile(ctx, name)
		switch {
		case err == nil:
			return p, nil
		case errors.Is(err, postgres.ErrProfileNotFound):
			s.logger.Debug("no stored profile", zap.String("name", name))
		default:
			return nil, fmt.Errorf("loading profile %s: %w", name, err)
		}
	}
	return character.New(name)
}

// Leave saves and removes a player.
//
// Postcondition: The entity is gone from the arena; returns ErrUnknownEntity
// when it already was.
func (s *Service) Leave(ctx context.Context, id combat.EntityID) error {
	s.mu.Lock()
	e, ok := s.arena.Get(id)
	if !ok {
		s.mu.Unlock()
		return ErrUnknownEntity
	}
	profile := s.captureProfileLocked(e)
	room := e.Position().RoomID
	name := e.Name()
	s.removeLocked(e)
	s.log.Room(room, nil, fmt.Sprintf("%s leaves.", name))
	s.mu.Unlock()

	s.logger.Info("player left", zap.String("name", name), zap.String("id", string(id)))
	return s.saveProfile(ctx, profile)
}

// captureProfileLocked snapshots the live state of a player into its profile.
func (s *Service) captureProfileLocked(e *entity.Entity) *character.Profile {
	p, ok := s.profileOf[e.ID]
	if !ok {
		return nil
	}
	out := *p
	out.CaptureSkills(e.Skills())
	out.CaptureWounds(e.Wounds())
	out.Allocation = e.Stats().Allocation
	return &out
}

func (s *Service) saveProfile(ctx context.Context, p *character.Profile) error {
	if s.profiles == nil || p == nil {
		return nil
	}
	if err := s.profiles.SaveProfile(ctx, p); err != nil {
		return fmt.Errorf("saving profile %s: %w", p.Name, err)
	}
	return nil
}

// removeLocked takes e out of the arena and unhooks everything pointing at it.
func (s *Service) removeLocked(e *entity.Entity) {
	id := e.ID
	s.seq.Forget(id)
	s.challenges.Drop(id)
	for _, other := range s.arena.All() {
		if other.ID == id {
			continue
		}
		st := other.Stats()
		if st.TargetID == id {
			st.Disengage()
			s.pushCombatState(other)
		}
		if a := other.Automation(); a != nil && a.TargetID == id {
			other.ClearAutomation()
		}
	}
	delete(s.profileOf, id)
	delete(s.fatigueCarry, id)
	s.arena.Remove(id)
}

// HandleCommand parses and runs one line typed by id.
//
// Postcondition: Returns ErrUnknownEntity when id is not in the arena and
// ErrUnknownCommand for an unrecognised verb. Game-rule failures are reported
// to the player, never returned.
func (s *Service) HandleCommand(id combat.EntityID, line string) error {
	in := command.Parse(line)
	if in.Verb == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.arena.Get(id)
	if !ok {
		return ErrUnknownEntity
	}
	return s.dispatch(e, in)
}

// HandleCombatResult resolves the challenge the client answered.
func (s *Service) HandleCombatResult(id combat.EntityID, res CombatResultPayload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.arena.Get(id)
	if !ok {
		return ErrUnknownEntity
	}
	s.resolveChallenge(e, res)
	return nil
}

// Tick advances the simulation by dt.
func (s *Service) Tick(dt time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickLocked(dt.Seconds())
}

// EntityView is a read-only summary for the debug endpoint.
type EntityView struct {
	ID        combat.EntityID `json:"id"`
	Name      string          `json:"name"`
	Kind      string          `json:"kind"`
	Room      string          `json:"room"`
	HP        int             `json:"hp"`
	MaxHP     int             `json:"maxHp"`
	Tier      combat.Tier     `json:"tier"`
	Balance   float64         `json:"balance"`
	Fatigue   int             `json:"fatigue"`
	TargetID  combat.EntityID `json:"targetId,omitempty"`
	Hostile   bool            `json:"hostile"`
	Roundtime float64         `json:"roundtime"`
	Momentum  float64         `json:"momentum"`
	Executing bool            `json:"executing"`
	// Challenge is the move of an open sync-bar challenge.
	Challenge string `json:"challenge,omitempty"`
}

// Snapshot lists every entity in spawn order.
func (s *Service) Snapshot() []EntityView {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.arena.All()
	out := make([]EntityView, 0, len(all))
	for _, e := range all {
		st := e.Stats()
		v := EntityView{
			ID:        e.ID,
			Name:      e.Name(),
			Kind:      e.Identity().Kind.String(),
			Room:      e.Position().RoomID,
			HP:        st.HP,
			MaxHP:     st.MaxHP,
			Tier:      st.Tier,
			Balance:   st.Balance,
			Fatigue:   st.Fatigue,
			TargetID:  st.TargetID,
			Hostile:   st.Hostile,
			Roundtime: e.Roundtime().Remaining,
		}
		if m := e.Momentum(); m != nil {
			v.Momentum = m.Current
		}
		if b := e.Buffer(); b != nil {
			v.Executing = b.Executing
		}
		if ch, ok := s.challenges.Pending(e.ID); ok {
			v.Challenge = ch.Move.String()
		}
		out = append(out, v)
	}
	return out
}

// SaveAll persists every connected player's profile.
func (s *Service) SaveAll(ctx context.Context) error {
	s.mu.Lock()
	var profiles []*character.Profile
	for _, e := range s.arena.All() {
		if p := s.captureProfileLocked(e); p != nil {
			profiles = append(profiles, p)
		}
	}
	s.mu.Unlock()

	var errs []error
	for _, p := range profiles {
		if err := s.saveProfile(ctx, p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// locked runs fn while holding the service lock; used by sequencer timers.
func (s *Service) locked(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}
