package scripting

import lua "github.com/yuin/gopher-lua"

// registerModules installs the engine table: engine.log(msg),
// engine.roll(sides), engine.chance(p) and engine.broadcast(room, msg).
func (m *Manager) registerModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetFuncs(engine, map[string]lua.LGFunction{
		"log": func(L *lua.LState) int {
			m.logger.Info("lua: " + L.CheckString(1))
			return 0
		},
		"roll": func(L *lua.LState) int {
			sides := L.CheckInt(1)
			if sides < 1 {
				L.ArgError(1, "sides must be >= 1")
				return 0
			}
			L.Push(lua.LNumber(m.roller.Intn("lua", sides) + 1))
			return 1
		},
		"chance": func(L *lua.LState) int {
			L.Push(lua.LBool(m.roller.Chance("lua", float64(L.CheckNumber(1)))))
			return 1
		},
		"broadcast": func(L *lua.LState) int {
			room, msg := L.CheckString(1), L.CheckString(2)
			if m.Broadcast != nil {
				m.Broadcast(room, msg)
			}
			return 0
		},
	})
	L.SetGlobal("engine", engine)
}
