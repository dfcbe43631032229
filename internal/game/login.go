package game

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/jackindisguise/mud3-sub004/internal/core/event"
	"github.com/jackindisguise/mud3-sub004/internal/world"
)

const maxBadLogins = 3

var namePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z'-]{2,11}$`)

// greet runs once the session's negotiation settles: compression, if it
// will be on, is already active, so the banner bytes render correctly.
func (g *Game) greet(c *Client) {
	c.state = stateGreeting
	c.sendRaw("")
	c.sendRaw("Welcome to " + g.Cfg.Game.Name + ".")
	c.sendRaw("Brought into being by " + g.Cfg.Game.Creator + ".")
	c.sendRaw("")
	c.conn.Send([]byte("By what name do you wish to be known? "))
	c.state = stateUsername
}

func (g *Game) handleLogin(c *Client, line string) {
	input := strings.TrimSpace(line)
	switch c.state {
	case stateUsername:
		g.loginUsername(c, input)
	case statePassword:
		g.loginPassword(c, input)
	case stateApproval:
		g.loginApproval(c, input)
	case stateNewPassword:
		g.loginNewPassword(c, input)
	case stateConfirmPassword:
		g.loginConfirmPassword(c, input)
	default:
		// Lines before the greeting are dropped.
	}
}

func (g *Game) loginUsername(c *Client, name string) {
	if !namePattern.MatchString(name) {
		c.sendRaw("Names are 3 to 12 letters. Try again.")
		c.conn.Send([]byte("By what name do you wish to be known? "))
		return
	}
	if g.Reserved != nil && g.Reserved.Contains(name) {
		c.sendRaw("That name is reserved.")
		c.conn.Send([]byte("By what name do you wish to be known? "))
		return
	}
	c.pendingName = name
	if g.Characters.Exists(name) {
		c.conn.Send([]byte("Password: "))
		c.conn.SuppressEcho(true)
		c.state = statePassword
		return
	}
	c.conn.Send([]byte(fmt.Sprintf("Create a new character named %s? (y/n) ", name)))
	c.state = stateApproval
}

func (g *Game) loginApproval(c *Client, answer string) {
	switch strings.ToLower(answer) {
	case "y", "yes":
		c.conn.Send([]byte("Choose a password: "))
		c.conn.SuppressEcho(true)
		c.state = stateNewPassword
	case "n", "no":
		c.pendingName = ""
		c.conn.Send([]byte("By what name do you wish to be known? "))
		c.state = stateUsername
	default:
		c.conn.Send([]byte("Please answer yes or no: "))
	}
}

func (g *Game) loginNewPassword(c *Client, password string) {
	if len(password) < 6 {
		c.sendRaw("")
		c.sendRaw("Passwords need at least 6 characters.")
		c.conn.Send([]byte("Choose a password: "))
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		g.Log.Error("password hash failed", zap.Error(err))
		c.conn.Close()
		return
	}
	c.pendingHash = string(hash)
	c.sendRaw("")
	c.conn.Send([]byte("Confirm password: "))
	c.state = stateConfirmPassword
}

func (g *Game) loginConfirmPassword(c *Client, password string) {
	if bcrypt.CompareHashAndPassword([]byte(c.pendingHash), []byte(password)) != nil {
		c.pendingHash = ""
		c.sendRaw("")
		c.sendRaw("Passwords do not match.")
		c.conn.Send([]byte("Choose a password: "))
		c.state = stateNewPassword
		return
	}
	c.conn.SuppressEcho(false)
	c.sendRaw("")
	char, err := g.createCharacter(c.pendingName, c.pendingHash)
	if err != nil {
		g.Log.Error("character creation failed",
			zap.String("user", c.pendingName), zap.Error(err))
		c.sendRaw("Something went wrong creating your character.")
		c.conn.Close()
		return
	}
	g.enterWorld(c, char)
}

func (g *Game) loginPassword(c *Client, password string) {
	char, err := g.Characters.Load(c.pendingName)
	if err != nil {
		g.Log.Error("character load failed", zap.String("user", c.pendingName), zap.Error(err))
		c.sendRaw("")
		c.sendRaw("That character cannot be loaded.")
		c.conn.Close()
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(char.PasswordHash), []byte(password)) != nil {
		c.badLogins++
		if c.badLogins >= maxBadLogins {
			c.sendRaw("")
			c.sendRaw("Too many failed attempts.")
			c.conn.Close()
			return
		}
		c.sendRaw("")
		c.conn.Send([]byte("Wrong password. Try again: "))
		return
	}
	c.conn.SuppressEcho(false)
	c.sendRaw("")
	// A second login for the same character displaces the first.
	if prev, ok := g.byName[strings.ToLower(char.Username)]; ok {
		prev.sendStyled("Your body has been claimed from elsewhere.")
		prev.conn.FlushOutput()
		prev.conn.Close()
		g.dropClient(prev.id, prev)
	}
	g.enterWorld(c, char)
}

// createCharacter builds a fresh character with the configured default
// race and job, resources at their caps.
func (g *Game) createCharacter(name, hash string) (*world.Character, error) {
	race := g.Races.Get(g.Cfg.Game.DefaultRace)
	if race == nil {
		return nil, fmt.Errorf("default race %q not loaded", g.Cfg.Game.DefaultRace)
	}
	job := g.Jobs.Get(g.Cfg.Game.DefaultJob)
	if job == nil {
		return nil, fmt.Errorf("default job %q not loaded", g.Cfg.Game.DefaultJob)
	}
	m := world.NewMob(strings.ToLower(name), name)
	m.Race, m.Job = race, job
	for _, a := range []*world.Archetype{race, job} {
		for _, id := range a.GrantsAt(m.Level) {
			m.LearnAbility(id)
		}
	}
	f := g.Cfg.Game.Combat
	m.Health = m.MaxHealth(f)
	m.Mana = m.MaxMana(f)

	char := &world.Character{
		Username:     name,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
		Settings:     world.DefaultSettings(),
		Mob:          m,
	}
	if err := g.Characters.Save(char); err != nil {
		return nil, err
	}
	return char, nil
}

// enterWorld places the character's mob in the start room and flips the
// client to playing.
func (g *Game) enterWorld(c *Client, char *world.Character) {
	start, err := g.World.StartRoom()
	if err != nil {
		g.Log.Error("no start room", zap.Error(err))
		c.sendRaw("The world has no beginning. Try again later.")
		c.conn.Close()
		return
	}
	char.LastLogin = time.Now()
	c.char = char
	c.state = statePlaying
	c.badLogins = 0
	g.byName[strings.ToLower(char.Username)] = c

	m := char.Mob
	m.AttachSink(c)
	if err := start.Add(m); err != nil {
		g.Log.Error("cannot place mob", zap.Error(err))
		c.conn.Close()
		return
	}
	c.sendStyled("")
	c.Deliver(world.GroupInfo, "Welcome, "+char.Username+".")
	world.Act(m, nil, "", "", "{User} appears in a shimmer of light.",
		world.ActOptions{Group: world.GroupInfo})
	event.Emit(g.Bus, event.PlayerEntered{Username: char.Username, SessionID: c.id})
	g.saveClient(c)

	if char.Settings.AutoLook {
		g.lookRoom(c.char.Mob)
	}
	if char.Settings.EchoMode == world.EchoOff {
		c.conn.SuppressEcho(true)
	}
}
