// Package command defines the combat command surface: names, aliases, and
// the handler each one routes to.
package command

// Categories for organizing help output.
const (
	CategoryOffense   = "offense"
	CategorySequence  = "sequence"
	CategoryRange     = "range"
	CategoryAwareness = "awareness"
	CategorySystem    = "system"
)

// Handler identifies the game handler a command routes to.
type Handler int

const (
	HandlerUnknown Handler = iota
	HandlerAttack
	HandlerBrawl
	HandlerSlice
	HandlerIaijutsu
	HandlerReload
	HandlerAmmo
	HandlerSequence
	HandlerBufferAction
	HandlerUpload
	HandlerManeuver
	HandlerAdvance
	HandlerRetreat
	HandlerStop
	HandlerHangback
	HandlerFlee
	HandlerAssess
	HandlerTarget
	HandlerStance
	HandlerAppraise
	HandlerLook
	HandlerHelp
)

// Command defines a player-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name    string
	Aliases []string
	// Usage is shown when arguments are wrong and in help output.
	Usage    string
	Help     string
	Category string
	Handler  Handler
}

// BuiltinCommands returns every combat command.
func BuiltinCommands() []Command {
	return []Command{
		{Name: "attack", Aliases: []string{"kill", "fight"}, Usage: "attack [target]", Help: "Strike with your wielded weapon", Category: CategoryOffense, Handler: HandlerAttack},
		{Name: "punch", Usage: "punch [target]", Help: "Throw a punch (empty hands)", Category: CategoryOffense, Handler: HandlerBrawl},
		{Name: "jab", Usage: "jab [target]", Help: "A quick, light jab (empty hands)", Category: CategoryOffense, Handler: HandlerBrawl},
		{Name: "headbutt", Usage: "headbutt [target]", Help: "Headbutt at close quarters (empty hands)", Category: CategoryOffense, Handler: HandlerBrawl},
		{Name: "uppercut", Usage: "uppercut [target]", Help: "A heavy uppercut (empty hands)", Category: CategoryOffense, Handler: HandlerBrawl},
		{Name: "slice", Usage: "slice [target]", Help: "Slice with a blade; katanas build momentum", Category: CategoryOffense, Handler: HandlerSlice},
		{Name: "iaijutsu", Aliases: []string{"iai"}, Usage: "iaijutsu [target]", Help: "Spend momentum on a katana finishing draw", Category: CategoryOffense, Handler: HandlerIaijutsu},
		{Name: "reload", Usage: "reload", Help: "Reload your firearm from reserve ammunition", Category: CategoryOffense, Handler: HandlerReload},
		{Name: "ammo", Usage: "ammo", Help: "Count loaded and reserve rounds", Category: CategoryOffense, Handler: HandlerAmmo},

		{Name: "sequence", Aliases: []string{"seq", "buffer"}, Usage: "sequence [clear]", Help: "Toggle building mode or clear the buffer", Category: CategorySequence, Handler: HandlerSequence},
		{Name: "dash", Usage: "dash [target]", Help: "Queue or perform a dash", Category: CategorySequence, Handler: HandlerBufferAction},
		{Name: "slash", Usage: "slash [target]", Help: "Queue or perform a slash", Category: CategorySequence, Handler: HandlerBufferAction},
		{Name: "parry", Usage: "parry", Help: "Queue or perform a parry", Category: CategorySequence, Handler: HandlerBufferAction},
		{Name: "thrust", Usage: "thrust [target]", Help: "Queue or perform a thrust", Category: CategorySequence, Handler: HandlerBufferAction},
		{Name: "upload", Aliases: []string{"execute", "run"}, Usage: "upload", Help: "Execute the queued buffer", Category: CategorySequence, Handler: HandlerUpload},

		{Name: "maneuver", Aliases: []string{"man"}, Usage: "maneuver <close|withdraw> [target]", Help: "Close or open the distance one step", Category: CategoryRange, Handler: HandlerManeuver},
		{Name: "advance", Aliases: []string{"approach"}, Usage: "advance [target]", Help: "Keep closing until melee", Category: CategoryRange, Handler: HandlerAdvance},
		{Name: "retreat", Usage: "retreat [target]", Help: "Keep withdrawing until out of reach", Category: CategoryRange, Handler: HandlerRetreat},
		{Name: "stop", Usage: "stop", Help: "Stop advancing or retreating", Category: CategoryRange, Handler: HandlerStop},
		{Name: "hangback", Usage: "hangback", Help: "Toggle hanging back to resist being closed on", Category: CategoryRange, Handler: HandlerHangback},
		{Name: "flee", Usage: "flee [direction]", Help: "Break off and run", Category: CategoryRange, Handler: HandlerFlee},

		{Name: "assess", Usage: "assess", Help: "Read your balance and everyone's range", Category: CategoryAwareness, Handler: HandlerAssess},
		{Name: "target", Usage: "target <body part|none>", Help: "Aim crushing blows at a body part", Category: CategoryAwareness, Handler: HandlerTarget},
		{Name: "stance", Usage: "stance <stand|sit|lie|stasis>", Help: "Change posture", Category: CategoryAwareness, Handler: HandlerStance},
		{Name: "appraise", Aliases: []string{"app"}, Usage: "appraise <target>", Help: "Size up an opponent", Category: CategoryAwareness, Handler: HandlerAppraise},
		{Name: "look", Aliases: []string{"l"}, Usage: "look", Help: "See who shares the room", Category: CategoryAwareness, Handler: HandlerLook},

		{Name: "help", Aliases: []string{"?"}, Usage: "help", Help: "List commands", Category: CategorySystem, Handler: HandlerHelp},
	}
}
