// Package scripting hosts the gopher-lua VM that content commands are
// written in. Scripts under data/commands register commands with patterns
// and handlers; the engine bridges their execution onto the game loop.
package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// ScriptCommand is one command registered by a Lua script.
type ScriptCommand struct {
	Name       string
	Pattern    string
	Aliases    []string
	CooldownMs int
	Priority   int // 0 normal, 1 high

	fn *lua.LFunction
}

// CallContext is what the engine exposes to a script's execute function.
type CallContext struct {
	ActorName string
	ActorRoom string
	Args      map[string]string

	// Respond delivers a command-response line to the actor.
	Respond func(line string)
	// Act narrates to the actor's room: first the actor line, then the
	// bystander line.
	Act func(userLine, roomLine string)
}

// Engine wraps a single gopher-lua VM for content commands.
// Single-goroutine access only (game loop); hot reload swaps the whole VM.
type Engine struct {
	vm       *lua.LState
	dir      string
	commands []*ScriptCommand
	log      *zap.Logger
}

// NewEngine creates an engine and loads every command script in dir.
func NewEngine(dir string, log *zap.Logger) (*Engine, error) {
	e := &Engine{dir: dir, log: log}
	if err := e.load(); err != nil {
		return nil, err
	}
	return e, nil
}

// load builds a fresh VM and runs every script, collecting registrations.
func (e *Engine) load() error {
	vm := lua.NewState(lua.Options{SkipOpenLibs: false})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	var commands []*ScriptCommand
	vm.SetGlobal("register_command", vm.NewFunction(func(L *lua.LState) int {
		t := L.CheckTable(1)
		sc := &ScriptCommand{
			Name:       lStr(t, "name"),
			Pattern:    lStr(t, "pattern"),
			CooldownMs: lInt(t, "cooldown_ms"),
			Priority:   lInt(t, "priority"),
		}
		if fn, ok := t.RawGetString("execute").(*lua.LFunction); ok {
			sc.fn = fn
		}
		if aliases, ok := t.RawGetString("aliases").(*lua.LTable); ok {
			aliases.ForEach(func(_, v lua.LValue) {
				sc.Aliases = append(sc.Aliases, lua.LVAsString(v))
			})
		}
		if sc.Name == "" || sc.Pattern == "" || sc.fn == nil {
			L.RaiseError("register_command requires name, pattern, and execute")
			return 0
		}
		commands = append(commands, sc)
		return 0
	}))

	entries, err := os.ReadDir(e.dir)
	if err != nil {
		if os.IsNotExist(err) {
			e.swap(vm, commands)
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(e.dir, entry.Name())
		if err := vm.DoFile(path); err != nil {
			vm.Close()
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded command script", zap.String("file", path))
	}
	e.swap(vm, commands)
	return nil
}

func (e *Engine) swap(vm *lua.LState, commands []*ScriptCommand) {
	if e.vm != nil {
		e.vm.Close()
	}
	e.vm = vm
	e.commands = commands
}

// Reload rebuilds the VM from the current script files. On failure the old
// VM and command set stay active.
func (e *Engine) Reload() error {
	old, oldCmds := e.vm, e.commands
	e.vm = nil
	if err := e.load(); err != nil {
		e.vm, e.commands = old, oldCmds
		return err
	}
	return nil
}

// Commands returns the registered script commands in load order.
func (e *Engine) Commands() []*ScriptCommand {
	return e.commands
}

// Execute calls a script command's handler with the call context bridged
// into a Lua table.
func (e *Engine) Execute(sc *ScriptCommand, ctx *CallContext) error {
	t := e.vm.NewTable()
	t.RawSetString("actor", lua.LString(ctx.ActorName))
	t.RawSetString("room", lua.LString(ctx.ActorRoom))

	args := e.vm.NewTable()
	for name, val := range ctx.Args {
		args.RawSetString(name, lua.LString(val))
	}
	t.RawSetString("args", args)

	t.RawSetString("respond", e.vm.NewFunction(func(L *lua.LState) int {
		ctx.Respond(L.CheckString(1))
		return 0
	}))
	t.RawSetString("act", e.vm.NewFunction(func(L *lua.LState) int {
		ctx.Act(L.CheckString(1), L.OptString(2, ""))
		return 0
	}))

	if err := e.vm.CallByParam(lua.P{
		Fn:      sc.fn,
		NRet:    0,
		Protect: true,
	}, t); err != nil {
		e.log.Error("script command failed",
			zap.String("command", sc.Name), zap.Error(err))
		return err
	}
	return nil
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	if e.vm != nil {
		e.vm.Close()
	}
}

// lInt reads an integer field from a Lua table.
func lInt(t *lua.LTable, key string) int {
	return int(lua.LVAsNumber(t.RawGetString(key)))
}

// lStr reads a string field from a Lua table.
func lStr(t *lua.LTable, key string) string {
	return lua.LVAsString(t.RawGetString(key))
}
