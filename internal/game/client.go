package game

import (
	"strconv"
	"strings"
	"time"

	"github.com/jackindisguise/mud3-sub004/internal/command"
	"github.com/jackindisguise/mud3-sub004/internal/telnet"
	"github.com/jackindisguise/mud3-sub004/internal/world"
)

// conn is the slice of telnet.Session the game layer needs. Tests plug in
// a recording fake.
type conn interface {
	SendLine(text string)
	Send(data []byte)
	FlushOutput()
	SuppressEcho(on bool)
	Close()
	IsClosed() bool
	IdleSince() time.Time
	Ready() <-chan struct{}
}

// clientState is the login state machine.
type clientState int

const (
	stateConnecting clientState = iota
	stateGreeting
	stateUsername
	statePassword
	stateNewPassword
	stateConfirmPassword
	stateApproval
	statePlaying
	stateDisconnected
)

// Client pairs one session with its login state and, once playing, its
// character. Owned by the game loop.
type Client struct {
	id    uint64
	conn  conn
	state clientState
	char  *world.Character
	queue *command.Queue

	// ask routes the next inbound line to a single-shot callback instead
	// of the command pipeline. Not reentrant.
	ask func(line string)

	// Login scratch space.
	pendingName string
	pendingHash string
	badLogins   int

	promptPending bool
	warnedIdle    bool
}

func newClient(id uint64, c conn) *Client {
	return &Client{id: id, conn: c, state: stateConnecting, queue: command.NewQueue()}
}

// Username returns the logged-in name, or "".
func (c *Client) Username() string {
	if c.char == nil {
		return ""
	}
	return c.char.Username
}

// Ask registers the single-shot line callback. A pending ask must resolve
// first.
func (c *Client) Ask(fn func(line string)) bool {
	if c.ask != nil {
		return false
	}
	c.ask = fn
	return true
}

// Deliver implements world.Sink: style, render per settings, and buffer the
// line. The prompt re-renders after any delivery.
func (c *Client) Deliver(group world.MessageGroup, line string) {
	c.sendStyled(line)
	c.promptPending = true
}

// sendStyled applies the default sticky color and the character's color
// setting before buffering.
func (c *Client) sendStyled(line string) {
	settings := c.settings()
	if settings.DefaultColor != "" {
		line = telnet.Sticky(line, settings.DefaultColor[0])
	}
	if settings.ColorEnabled {
		line = telnet.Render(line)
	} else {
		line = telnet.Strip(line)
	}
	c.conn.SendLine(line)
}

// sendRaw buffers an unstyled line (login flow, before settings exist).
func (c *Client) sendRaw(line string) {
	c.conn.SendLine(telnet.Strip(line))
}

func (c *Client) settings() world.Settings {
	if c.char != nil {
		return c.char.Settings
	}
	return world.DefaultSettings()
}

func itoa(n int) string { return strconv.Itoa(n) }

// promptVars substitutes the prompt template placeholders from the mob's
// current and derived state.
func promptVars(m *world.Mob, f world.Factors) *strings.Replacer {
	caps := m.Caps(f)
	next := world.ExperienceToLevel(m.Level + 1)
	return strings.NewReplacer(
		"%hh", itoa(m.Health),
		"%HH", itoa(caps.MaxHealth),
		"%mm", itoa(m.Mana),
		"%MM", itoa(caps.MaxMana),
		"%ee", itoa(m.Exhaustion),
		"%xp", itoa(m.Experience-world.ExperienceToLevel(m.Level)),
		"%XX", itoa(next-world.ExperienceToLevel(m.Level)),
	)
}

// sendPrompt renders and buffers the prompt without a line ending.
func (c *Client) sendPrompt(f world.Factors) {
	if c.state != statePlaying || c.char == nil || c.char.Mob == nil {
		return
	}
	settings := c.settings()
	text := promptVars(c.char.Mob, f).Replace(settings.Prompt)
	if settings.ColorEnabled {
		text = telnet.Render(text)
	} else {
		text = telnet.Strip(text)
	}
	c.conn.Send([]byte("\r\n" + text))
	c.promptPending = false
}
