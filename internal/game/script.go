package game

import (
	"time"

	"github.com/jackindisguise/mud3-sub004/internal/command"
	"github.com/jackindisguise/mud3-sub004/internal/scripting"
	"github.com/jackindisguise/mud3-sub004/internal/world"
)

// registerScriptCommands bridges every Lua-registered command into the
// registry. Script commands queue and cool down exactly like built-ins.
func (g *Game) registerScriptCommands() error {
	for _, sc := range g.Engine.Commands() {
		sc := sc
		cmd := &command.Command{
			Name:     sc.Name,
			Pattern:  sc.Pattern,
			Aliases:  sc.Aliases,
			Priority: command.Priority(clamp(sc.Priority, 0, 1)),
			Execute: func(ctx *command.Context, args command.Args) error {
				return g.Engine.Execute(sc, g.scriptContext(ctx, args))
			},
		}
		if sc.CooldownMs > 0 {
			cd := time.Duration(sc.CooldownMs) * time.Millisecond
			cmd.Cooldown = func(*command.Context, command.Args) time.Duration { return cd }
		}
		if err := g.Registry.Register(cmd); err != nil {
			return err
		}
		g.scriptNames = append(g.scriptNames, sc.Name)
	}
	return nil
}

// scriptContext flattens the resolved arguments into the string map the
// Lua side sees and wires the narration callbacks back onto the actor.
func (g *Game) scriptContext(ctx *command.Context, args command.Args) *scripting.CallContext {
	flat := make(map[string]string, len(args))
	for name, a := range args {
		flat[name] = a.Raw
	}
	room := ""
	if r := ctx.Actor.Room(); r != nil {
		room = r.Ref()
	}
	return &scripting.CallContext{
		ActorName: ctx.Actor.Display(),
		ActorRoom: room,
		Args:      flat,
		Respond:   ctx.Respond,
		Act: func(userLine, roomLine string) {
			world.Act(ctx.Actor, nil, userLine, "", roomLine, world.ActOptions{})
		},
	}
}

// reloadScripts hot-swaps the Lua VM. On a load failure the old command
// set keeps serving; on success the bridged registrations are replaced.
func (g *Game) reloadScripts() error {
	if g.Engine == nil {
		return nil
	}
	if err := g.Engine.Reload(); err != nil {
		return err
	}
	for _, name := range g.scriptNames {
		g.Registry.Unregister(name)
	}
	g.scriptNames = g.scriptNames[:0]
	return g.registerScriptCommands()
}
