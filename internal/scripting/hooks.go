package scripting

import lua "github.com/yuin/gopher-lua"

// Hook names zone scripts may define.
const (
	HookDamage = "on_damage"
	HookDefeat = "on_defeat"
)

// CombatantInfo is the snapshot of an entity passed to Lua.
type CombatantInfo struct {
	ID    string
	Name  string
	HP    int
	MaxHP int
	NPC   bool
}

func combatantTable(L *lua.LState, c CombatantInfo) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("id", lua.LString(c.ID))
	t.RawSetString("name", lua.LString(c.Name))
	t.RawSetString("hp", lua.LNumber(c.HP))
	t.RawSetString("max_hp", lua.LNumber(c.MaxHP))
	t.RawSetString("npc", lua.LBool(c.NPC))
	return t
}

// DamageHook lets on_damage(attacker, target, hit, damage) rewrite damage.
//
// Postcondition: Returns damage unchanged when no hook runs or the hook does
// not return a number; never returns a negative value.
func (m *Manager) DamageHook(zoneID string, attacker, target CombatantInfo, hit string, damage int) int {
	ret := m.call(zoneID, HookDamage, func(L *lua.LState) []lua.LValue {
		return []lua.LValue{
			combatantTable(L, attacker),
			combatantTable(L, target),
			lua.LString(hit),
			lua.LNumber(damage),
		}
	})
	n, ok := ret.(lua.LNumber)
	if !ok {
		return damage
	}
	if n < 0 {
		return 0
	}
	return int(n)
}

// DefeatHook runs on_defeat(killer, victim, room).
func (m *Manager) DefeatHook(zoneID string, killer, victim CombatantInfo, roomID string) {
	m.call(zoneID, HookDefeat, func(L *lua.LState) []lua.LValue {
		return []lua.LValue{
			combatantTable(L, killer),
			combatantTable(L, victim),
			lua.LString(roomID),
		}
	})
}
