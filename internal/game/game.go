// Package game owns the world lane: the single goroutine that drains
// session input, dispatches commands through per-actor queues, runs the
// periodic ticks, and flushes output. Sessions do their socket I/O on
// their own goroutines; everything here is single-threaded.
package game

import (
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jackindisguise/mud3-sub004/internal/board"
	"github.com/jackindisguise/mud3-sub004/internal/command"
	"github.com/jackindisguise/mud3-sub004/internal/config"
	"github.com/jackindisguise/mud3-sub004/internal/core/event"
	"github.com/jackindisguise/mud3-sub004/internal/core/system"
	"github.com/jackindisguise/mud3-sub004/internal/data"
	"github.com/jackindisguise/mud3-sub004/internal/path"
	"github.com/jackindisguise/mud3-sub004/internal/persist"
	"github.com/jackindisguise/mud3-sub004/internal/scripting"
	"github.com/jackindisguise/mud3-sub004/internal/telnet"
	"github.com/jackindisguise/mud3-sub004/internal/world"
)

// ExitShutdown is the process exit code for an intentional in-game
// shutdown; supervisors must not restart on it.
const ExitShutdown = 2

// Deps is everything the game loop needs, built at boot.
type Deps struct {
	Cfg        *config.Config
	Log        *zap.Logger
	World      *world.World
	Registry   *command.Registry
	Engine     *scripting.Engine // nil when data/commands is absent
	Templates  *data.TemplateTable
	Races      *data.ArchetypeTable
	Jobs       *data.ArchetypeTable
	Abilities  *data.AbilityTable
	Help       *data.HelpTable
	Boards     map[string]*board.Board
	BoardStore *board.Store
	Characters *persist.CharacterRepo
	Reserved   *data.ReservedNames
	Server     *telnet.Server
	Paths      *path.Cache
	Bus        *event.Bus
}

// Game is the world-lane scheduler.
type Game struct {
	Deps

	clients map[uint64]*Client
	byName  map[string]*Client // lowercase username → playing client

	// Dead spawned mobs counting down to respawn.
	deadMobs []*world.Mob

	// Names of commands registered from Lua, replaced on reload.
	scriptNames []string

	clock calendar
	rng   *rand.Rand

	runner *system.Runner

	// Tick accumulators.
	regenAcc   time.Duration
	combatAcc  time.Duration
	restockAcc time.Duration

	stop     chan struct{}
	exitCode int
}

// New wires the game loop. Commands (built-in plus scripted) are
// registered here.
func New(deps Deps) (*Game, error) {
	g := &Game{
		Deps:    deps,
		clients: make(map[uint64]*Client),
		byName:  make(map[string]*Client),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		runner:  system.NewRunner(),
		stop:    make(chan struct{}),
	}
	g.clock = newCalendar(deps.Cfg.Game.Calendar)
	if g.Bus == nil {
		g.Bus = event.NewBus()
	}
	if err := g.registerCoreCommands(); err != nil {
		return nil, err
	}
	if g.Engine != nil {
		if err := g.registerScriptCommands(); err != nil {
			return nil, err
		}
	}
	g.subscribeEvents()

	g.runner.Register(sysFunc{system.PhaseInput, g.inputPhase})
	g.runner.Register(sysFunc{system.PhasePreUpdate, g.preUpdatePhase})
	g.runner.Register(sysFunc{system.PhaseUpdate, g.updatePhase})
	g.runner.Register(sysFunc{system.PhaseOutput, g.outputPhase})
	g.runner.Register(sysFunc{system.PhasePersist, g.persistPhase})
	g.runner.Register(sysFunc{system.PhaseCleanup, g.cleanupPhase})
	return g, nil
}

// sysFunc adapts a method to the system interface.
type sysFunc struct {
	phase system.Phase
	fn    func(dt time.Duration)
}

func (s sysFunc) Phase() system.Phase     { return s.phase }
func (s sysFunc) Update(dt time.Duration) { s.fn(dt) }

// Run drives the loop until Shutdown. Returns the process exit code.
func (g *Game) Run() int {
	tick := g.Cfg.Server.TickRate.Std()
	if tick <= 0 {
		tick = 100 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-g.stop:
			g.shutdownSessions()
			return g.exitCode
		case <-ticker.C:
			now := time.Now()
			g.runner.Tick(now.Sub(last))
			last = now
		}
	}
}

// Shutdown stops the loop after the current tick.
func (g *Game) Shutdown(code int) {
	g.exitCode = code
	select {
	case <-g.stop:
	default:
		close(g.stop)
	}
}

// shutdownSessions sends the warning line and closes every session;
// compression streams tear down inside Close.
func (g *Game) shutdownSessions() {
	for _, c := range g.clients {
		c.sendStyled("{RThe server is shutting down.{x")
		c.conn.FlushOutput()
		g.saveClient(c)
		c.conn.Close()
	}
	if g.Server != nil {
		g.Server.Shutdown()
	}
	g.persistBoards(true)
}

// --- Phases ---

// inputPhase accepts new sessions and drains every session's line queue.
func (g *Game) inputPhase(time.Duration) {
accept:
	for {
		select {
		case sess := <-g.Server.NewSessions():
			g.clients[sess.ID] = newClient(sess.ID, sess)
		default:
			break accept
		}
	}
	for _, c := range g.clients {
		sess, ok := c.conn.(*telnet.Session)
		if !ok {
			continue
		}
		if c.state == stateConnecting {
			select {
			case <-c.conn.Ready():
				g.greet(c)
			default:
				continue
			}
		}
	drain:
		for {
			select {
			case line := <-sess.InQueue:
				g.handleLine(c, line)
			default:
				break drain
			}
		}
	}
}

// preUpdatePhase delivers last tick's events and runs due queued actions.
func (g *Game) preUpdatePhase(time.Duration) {
	g.Bus.Dispatch()
	now := time.Now()
	for _, c := range g.clients {
		c.queue.Update(now)
	}
}

// updatePhase runs the world ticks; see tick.go.
func (g *Game) updatePhase(dt time.Duration) {
	g.runTicks(dt)
}

// outputPhase renders pending prompts and flushes every session buffer.
func (g *Game) outputPhase(time.Duration) {
	for _, c := range g.clients {
		if c.promptPending && c.state == statePlaying {
			c.sendPrompt(g.Cfg.Game.Combat)
		}
		c.conn.FlushOutput()
	}
}

// persistPhase writes dirty boards.
func (g *Game) persistPhase(time.Duration) {
	g.persistBoards(false)
}

func (g *Game) persistBoards(force bool) {
	if g.BoardStore == nil {
		return
	}
	for _, b := range g.Boards {
		if !b.Dirty() && !force {
			continue
		}
		if err := g.BoardStore.Save(b); err != nil {
			g.Log.Error("board save failed", zap.String("board", b.Name), zap.Error(err))
		}
	}
}

// cleanupPhase reaps closed sessions and enforces the idle window.
func (g *Game) cleanupPhase(time.Duration) {
	idle := g.Cfg.Server.IdleWindow()
	now := time.Now()
	for id, c := range g.clients {
		if !c.conn.IsClosed() && idle > time.Minute && !c.warnedIdle &&
			now.Sub(c.conn.IdleSince()) > idle-time.Minute {
			c.warnedIdle = true
			c.sendStyled("You will be disconnected for inactivity soon.")
		}
		if !c.conn.IsClosed() && idle > 0 && now.Sub(c.conn.IdleSince()) > idle {
			c.sendStyled("You have been idle too long. Goodbye.")
			c.conn.FlushOutput()
			c.conn.Close()
		}
		if c.conn.IsClosed() {
			g.dropClient(id, c)
		}
	}
}

// dropClient detaches a dead session's character from the world.
func (g *Game) dropClient(id uint64, c *Client) {
	delete(g.clients, id)
	if c.state == statePlaying && c.char != nil {
		delete(g.byName, strings.ToLower(c.char.Username))
		g.saveClient(c)
		m := c.char.Mob
		if m != nil {
			world.Act(m, nil, "", "", "{user} fades from existence.", world.ActOptions{Group: world.GroupInfo})
			g.World.ClearTargetsOn(m)
			if r := m.Room(); r != nil {
				r.Remove(m)
			}
			m.AttachSink(nil)
		}
		event.Emit(g.Bus, event.PlayerLeft{Username: c.char.Username, SessionID: id})
	}
	c.state = stateDisconnected
	c.queue.Clear()
	if g.Server != nil {
		g.Server.NotifyDead(id)
	}
	g.Log.Info("session closed", zap.Uint64("session", id), zap.String("user", c.Username()))
}

// saveClient persists the character, including the mob graph.
func (g *Game) saveClient(c *Client) {
	if c.char == nil || g.Characters == nil {
		return
	}
	if err := g.Characters.Save(c.char); err != nil {
		g.Log.Error("character save failed",
			zap.String("user", c.char.Username), zap.Error(err))
	}
}

// handleLine routes one inbound line: pending ask first, then the login
// machine, then the command pipeline.
func (g *Game) handleLine(c *Client, line string) {
	line = strings.TrimRight(line, " \t")
	c.warnedIdle = false
	if c.state == statePlaying && c.settings().EchoMode == world.EchoServer {
		c.sendStyled(line)
	}
	if ask := c.ask; ask != nil {
		c.ask = nil
		ask(line)
		return
	}
	if c.state != statePlaying {
		g.handleLogin(c, line)
		return
	}
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		c.promptPending = true
		return
	}
	g.dispatch(c, trimmed)
}

// dispatch matches the line against the registry and pushes the winning
// command onto the actor's queue.
func (g *Game) dispatch(c *Client, line string) {
	ctx := &command.Context{Actor: c.char.Mob, World: g.World}
	match, err := g.Registry.Dispatch(ctx, line)
	if err != nil {
		// Typed parse/resolution errors have already been surfaced to the
		// actor by the registry.
		c.promptPending = true
		return
	}
	// Cancel runs immediately: queueing it behind the actions it is meant
	// to drain would defeat it.
	if match.Command.Name == "cancel" {
		if err := match.Command.Execute(ctx, match.Args); err != nil {
			ctx.Respond(err.Error())
		}
		c.promptPending = true
		return
	}
	var cooldown time.Duration
	if match.Command.Cooldown != nil {
		cooldown = match.Command.Cooldown(ctx, match.Args)
	}
	c.queue.Push(time.Now(), &command.Action{
		Label:    match.Command.Name,
		Priority: match.Command.Priority,
		Cooldown: cooldown,
		Run: func() {
			if c.state != statePlaying {
				return
			}
			if err := match.Command.Execute(ctx, match.Args); err != nil {
				ctx.Respond(err.Error())
			}
			c.promptPending = true
		},
	})
}

// subscribeEvents wires the announcement handlers.
func (g *Game) subscribeEvents() {
	event.Subscribe(g.Bus, func(ev event.PlayerEntered) {
		g.broadcastInfo(ev.Username+" has entered the game.", ev.Username)
	})
	event.Subscribe(g.Bus, func(ev event.PlayerLeft) {
		g.broadcastInfo(ev.Username+" has left the game.", ev.Username)
	})
	event.Subscribe(g.Bus, func(ev event.MobDied) {
		if ev.Killer != "" {
			g.Log.Info("kill", zap.String("victim", ev.Victim), zap.String("killer", ev.Killer))
		}
	})
}

// broadcastInfo sends an info line to every playing character except one.
func (g *Game) broadcastInfo(line, except string) {
	for _, c := range g.clients {
		if c.state != statePlaying || strings.EqualFold(c.Username(), except) {
			continue
		}
		c.Deliver(world.GroupInfo, line)
	}
}
