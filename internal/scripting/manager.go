package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/mud-combat/internal/game/dice"
)

// globalZoneID is the reserved key for shared scripts loaded via LoadGlobal.
// CallHook falls back to this VM when the zone has none.
const globalZoneID = "__global__"

type zoneVM struct {
	mu    sync.Mutex
	L     *lua.LState
	limit int
}

// Manager owns one sandboxed LState per zone and dispatches hooks to it.
// Calls into one zone are serialised; different zones may run concurrently.
type Manager struct {
	mu     sync.RWMutex
	vms    map[string]*zoneVM
	roller *dice.Roller
	logger *zap.Logger

	// Broadcast sends text to a room; nil makes engine.broadcast a no-op.
	Broadcast func(roomID, msg string)
}

// NewManager creates a Manager.
//
// Precondition: roller and logger must be non-nil.
func NewManager(roller *dice.Roller, logger *zap.Logger) *Manager {
	return &Manager{
		vms:    make(map[string]*zoneVM),
		roller: roller,
		logger: logger,
	}
}

// LoadZone creates a VM for zoneID and executes every *.lua file in
// scriptDir in lexicographic order.
//
// Precondition: zoneID must be non-empty; scriptDir must be a readable directory.
// Postcondition: Any previous VM for zoneID is closed and replaced.
func (m *Manager) LoadZone(zoneID, scriptDir string, instLimit int) error {
	return m.loadInto(zoneID, scriptDir, instLimit)
}

// LoadGlobal loads the fallback VM used by zones without their own scripts.
func (m *Manager) LoadGlobal(scriptDir string, instLimit int) error {
	return m.loadInto(globalZoneID, scriptDir, instLimit)
}

func (m *Manager) loadInto(key, scriptDir string, instLimit int) error {
	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, key, err)
	}
	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	L := NewSandboxedState()
	m.registerModules(L)
	for _, path := range luaFiles {
		if err := runBudgeted(L, instLimit, func() error { return L.DoFile(path) }); err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, key, err)
		}
	}

	m.mu.Lock()
	if old, ok := m.vms[key]; ok {
		old.mu.Lock()
		old.L.Close()
		old.mu.Unlock()
	}
	m.vms[key] = &zoneVM{L: L, limit: instLimit}
	m.mu.Unlock()
	m.logger.Info("scripts loaded",
		zap.String("zone", key),
		zap.Int("files", len(luaFiles)),
	)
	return nil
}

// CallHook calls the named global function in zoneID's VM, falling back to
// the global VM. Lua runtime errors are logged at Warn and never propagated.
//
// Postcondition: Returns the hook's first return value, or LNil when the hook
// is undefined, no VM exists, or the hook failed.
func (m *Manager) CallHook(zoneID, hook string, args ...lua.LValue) lua.LValue {
	return m.call(zoneID, hook, func(*lua.LState) []lua.LValue { return args })
}

// call resolves the VM, then builds the arguments and runs the hook under
// the VM's lock.
func (m *Manager) call(zoneID, hook string, build func(L *lua.LState) []lua.LValue) lua.LValue {
	m.mu.RLock()
	vm, ok := m.vms[zoneID]
	if !ok {
		vm = m.vms[globalZoneID]
	}
	m.mu.RUnlock()
	if vm == nil {
		return lua.LNil
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	fn := vm.L.GetGlobal(hook)
	if fn.Type() != lua.LTFunction {
		return lua.LNil
	}
	args := build(vm.L)
	err := runBudgeted(vm.L, vm.limit, func() error {
		return vm.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...)
	})
	if err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("zone", zoneID),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil
	}
	ret := vm.L.Get(-1)
	vm.L.Pop(1)
	return ret
}

// Close releases every VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, vm := range m.vms {
		vm.mu.Lock()
		vm.L.Close()
		vm.mu.Unlock()
		delete(m.vms, key)
	}
}
