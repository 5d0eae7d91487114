package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDefaultRegistry_CoversCombatSurface(t *testing.T) {
	r := DefaultRegistry()
	cases := map[string]Handler{
		"attack": HandlerAttack, "kill": HandlerAttack, "fight": HandlerAttack,
		"punch": HandlerBrawl, "jab": HandlerBrawl, "headbutt": HandlerBrawl, "uppercut": HandlerBrawl,
		"slice": HandlerSlice, "iaijutsu": HandlerIaijutsu, "iai": HandlerIaijutsu,
		"reload": HandlerReload, "ammo": HandlerAmmo,
		"sequence": HandlerSequence, "seq": HandlerSequence, "buffer": HandlerSequence,
		"dash": HandlerBufferAction, "slash": HandlerBufferAction, "parry": HandlerBufferAction, "thrust": HandlerBufferAction,
		"upload": HandlerUpload, "execute": HandlerUpload, "run": HandlerUpload,
		"maneuver": HandlerManeuver, "man": HandlerManeuver,
		"advance": HandlerAdvance, "approach": HandlerAdvance,
		"retreat": HandlerRetreat, "stop": HandlerStop, "hangback": HandlerHangback, "flee": HandlerFlee,
		"assess": HandlerAssess, "target": HandlerTarget, "stance": HandlerStance,
		"appraise": HandlerAppraise, "app": HandlerAppraise,
	}
	for verb, want := range cases {
		cmd, ok := r.Resolve(verb)
		require.True(t, ok, verb)
		assert.Equal(t, want, cmd.Handler, verb)
	}
	_, ok := r.Resolve("teleport")
	assert.False(t, ok)
}

func TestNewRegistry_Collisions(t *testing.T) {
	_, err := NewRegistry([]Command{
		{Name: "a", Handler: HandlerLook},
		{Name: "b", Aliases: []string{"a"}, Handler: HandlerLook},
	})
	assert.Error(t, err)

	_, err = NewRegistry([]Command{
		{Name: "a", Aliases: []string{"x"}, Handler: HandlerLook},
		{Name: "b", Aliases: []string{"x"}, Handler: HandlerLook},
	})
	assert.Error(t, err)

	_, err = NewRegistry([]Command{{Name: "a"}})
	assert.Error(t, err)
}

func TestCommands_Sorted(t *testing.T) {
	cmds := DefaultRegistry().Commands()
	require.NotEmpty(t, cmds)
	for i := 1; i < len(cmds); i++ {
		prev, cur := cmds[i-1], cmds[i]
		assert.True(t, prev.Category < cur.Category || (prev.Category == cur.Category && prev.Name < cur.Name))
	}
}

func TestParse(t *testing.T) {
	in := Parse("  MANEUVER close   yakuza 2 ")
	assert.Equal(t, "maneuver", in.Verb)
	assert.Equal(t, []string{"close", "yakuza", "2"}, in.Args)
	assert.Equal(t, "close   yakuza 2", in.Rest)

	assert.Equal(t, Input{}, Parse("   "))
	assert.Equal(t, Input{Verb: "look"}, Parse("LOOK"))
}

func TestParse_VerbIsFirstWordLowercased(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		verb := rapid.StringMatching(`[A-Za-z]{1,8}`).Draw(rt, "verb")
		args := rapid.SliceOfN(rapid.StringMatching(`[a-z0-9]{1,6}`), 0, 4).Draw(rt, "args")
		line := verb
		for _, a := range args {
			line += " " + a
		}
		in := Parse(line)
		if in.Verb == "" || len(in.Args) != len(args) {
			rt.Fatalf("parse %q gave %+v", line, in)
		}
	})
}
