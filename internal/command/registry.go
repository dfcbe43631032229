package command

import (
	"fmt"
	"time"

	"github.com/jackindisguise/mud3-sub004/internal/world"
)

// Priority orders command matching and drives queue preemption.
type Priority int

const (
	PriorityNormal Priority = iota
	PriorityHigh
)

// Context carries everything a handler needs: the acting mob plus the
// world it lives in. Handlers run on the game loop only.
type Context struct {
	Actor *world.Mob
	World *world.World
}

// Respond sends a command-response line to the actor.
func (c *Context) Respond(line string) {
	c.Actor.Deliver(world.GroupResponse, line)
}

// Command binds a pattern (plus aliases) to an execute handler.
type Command struct {
	Name     string
	Pattern  string
	Aliases  []string
	Priority Priority

	// Cooldown derives the actor's busy window after execution, possibly
	// from context (zero when there is no target, say). Nil means none.
	Cooldown func(ctx *Context, args Args) time.Duration

	Execute func(ctx *Context, args Args) error

	// OnError fires instead of Execute when the shape matched but a
	// required argument failed to resolve. Nil falls back to surfacing
	// the error text to the actor.
	OnError func(ctx *Context, err error)

	compiled []*Pattern // primary first, then aliases
}

// compile builds the primary pattern and every alias.
func (c *Command) compile() error {
	patterns := append([]string{c.Pattern}, c.Aliases...)
	c.compiled = c.compiled[:0]
	for _, src := range patterns {
		p, err := Compile(src)
		if err != nil {
			return fmt.Errorf("command %s: %w", c.Name, err)
		}
		c.compiled = append(c.compiled, p)
	}
	return nil
}

// Registry holds registered commands in matching order: high priority before
// normal, registration order within a priority.
type Registry struct {
	commands []*Command
	byName   map[string]*Command
}

// NewRegistry creates an empty command registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Command)}
}

// Register compiles and adds a command. Duplicate names are an error.
func (r *Registry) Register(c *Command) error {
	if _, ok := r.byName[c.Name]; ok {
		return fmt.Errorf("duplicate command %q", c.Name)
	}
	if err := c.compile(); err != nil {
		return err
	}
	r.byName[c.Name] = c

	// Insert before the first lower-priority command.
	at := len(r.commands)
	for i, existing := range r.commands {
		if existing.Priority < c.Priority {
			at = i
			break
		}
	}
	r.commands = append(r.commands, nil)
	copy(r.commands[at+1:], r.commands[at:])
	r.commands[at] = c
	return nil
}

// Unregister removes a command by name. Used by hot reload.
func (r *Registry) Unregister(name string) {
	c, ok := r.byName[name]
	if !ok {
		return
	}
	delete(r.byName, name)
	for i, existing := range r.commands {
		if existing == c {
			r.commands = append(r.commands[:i], r.commands[i+1:]...)
			return
		}
	}
}

// Lookup returns a registered command by name, or nil.
func (r *Registry) Lookup(name string) *Command { return r.byName[name] }

// Each visits commands in matching order.
func (r *Registry) Each(fn func(*Command)) {
	for _, c := range r.commands {
		fn(c)
	}
}

// Match is one successful dispatch: the command and its resolved arguments.
type Match struct {
	Command *Command
	Args    Args
}

// Dispatch finds the first command whose pattern binds the line. When the
// shape matches but a required argument fails to resolve, the command's
// OnError fires and the typed error is returned; the search does not
// continue past it. Every error path responds to the actor before
// returning, including a line that matches no shape at all.
func (r *Registry) Dispatch(ctx *Context, line string) (*Match, error) {
	for _, c := range r.commands {
		for _, p := range c.compiled {
			args, err := p.Match(ctx.Actor, line)
			if err != nil {
				if c.OnError != nil {
					c.OnError(ctx, err)
				} else {
					ctx.Respond(err.Error())
				}
				return nil, err
			}
			if args != nil {
				return &Match{Command: c, Args: args}, nil
			}
		}
	}
	perr := &ParseError{Message: "Huh?"}
	ctx.Respond(perr.Message)
	return nil, perr
}
