package game

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jackindisguise/mud3-sub004/internal/board"
	"github.com/jackindisguise/mud3-sub004/internal/command"
	"github.com/jackindisguise/mud3-sub004/internal/config"
	"github.com/jackindisguise/mud3-sub004/internal/data"
	"github.com/jackindisguise/mud3-sub004/internal/path"
	"github.com/jackindisguise/mud3-sub004/internal/persist"
	"github.com/jackindisguise/mud3-sub004/internal/world"
)

// fakeConn records everything the game sends without a socket.
type fakeConn struct {
	lines   []string
	raw     []byte
	closed  bool
	echoOff bool
	idle    time.Time
	ready   chan struct{}
}

func newFakeConn() *fakeConn {
	ready := make(chan struct{})
	close(ready)
	return &fakeConn{idle: time.Now(), ready: ready}
}

func (f *fakeConn) SendLine(text string)      { f.lines = append(f.lines, text) }
func (f *fakeConn) Send(data []byte)          { f.raw = append(f.raw, data...) }
func (f *fakeConn) FlushOutput()              {}
func (f *fakeConn) SuppressEcho(on bool)      { f.echoOff = on }
func (f *fakeConn) Close()                    { f.closed = true }
func (f *fakeConn) IsClosed() bool            { return f.closed }
func (f *fakeConn) IdleSince() time.Time      { return f.idle }
func (f *fakeConn) Ready() <-chan struct{}    { return f.ready }
func (f *fakeConn) lastLine() string {
	if len(f.lines) == 0 {
		return ""
	}
	return f.lines[len(f.lines)-1]
}

var (
	testRace = &world.Archetype{
		Kind: world.ArchetypeRace, ID: "human", Name: "Human",
		Start:     world.PrimaryAttribs{Strength: 10, Agility: 10, Intelligence: 10},
		Growth:    world.PrimaryAttribs{Strength: 1, Agility: 1, Intelligence: 1},
		StartCaps: world.ResourceCaps{MaxHealth: 50, MaxMana: 20},
		CapGrowth: world.ResourceCaps{MaxHealth: 10, MaxMana: 5},
	}
	testJob = &world.Archetype{
		Kind: world.ArchetypeJob, ID: "adventurer", Name: "Adventurer",
		Start:     world.PrimaryAttribs{Strength: 5},
		Growth:    world.PrimaryAttribs{Strength: 2},
		StartCaps: world.ResourceCaps{MaxHealth: 30},
		CapGrowth: world.ResourceCaps{MaxHealth: 5},
	}
)

// testWorld builds a one-dungeon world: start at (0,1,0) with a room to
// its north at (0,0,0), all exits open.
func testWorld(t *testing.T) (*world.World, *world.Room, *world.Room) {
	t.Helper()
	w := world.New()
	d, err := world.NewDungeon("town", "Town", 1, 2, 1)
	require.NoError(t, err)
	north, err := d.CreateRoom(0, 0, 0, "square", "The Town Square")
	require.NoError(t, err)
	start, err := d.CreateRoom(0, 1, 0, "gate", "The Town Gate")
	require.NoError(t, err)
	north.AllowedExits = world.AllExits
	start.AllowedExits = world.AllExits
	require.NoError(t, w.AddDungeon(d))
	w.Locations = world.Locations{
		Start:     start.Ref(),
		Recall:    north.Ref(),
		Graveyard: north.Ref(),
	}
	return w, start, north
}

func testGame(t *testing.T) (*Game, *world.Room, *world.Room) {
	t.Helper()
	w, start, north := testWorld(t)
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	g, err := New(Deps{
		Cfg:       cfg,
		Log:       zap.NewNop(),
		World:     w,
		Registry:  command.NewRegistry(),
		Abilities: &data.AbilityTable{},
		Boards:    map[string]*board.Board{},
		Paths:     path.NewCache(w),
	})
	require.NoError(t, err)
	return g, start, north
}

// addPlayer wires a playing client directly, bypassing the login machine.
func addPlayer(t *testing.T, g *Game, room *world.Room, name string) (*Client, *fakeConn) {
	t.Helper()
	fc := newFakeConn()
	c := newClient(uint64(len(g.clients)+1), fc)
	m := world.NewMob(strings.ToLower(name), name)
	m.Race, m.Job = testRace, testJob
	f := g.Cfg.Game.Combat
	m.Health = m.MaxHealth(f)
	m.Mana = m.MaxMana(f)
	c.char = &world.Character{Username: name, Settings: world.DefaultSettings(), Mob: m}
	c.char.Settings.ColorEnabled = false
	c.char.Settings.AutoLook = false
	c.state = statePlaying
	g.clients[c.id] = c
	g.byName[strings.ToLower(name)] = c
	m.AttachSink(c)
	require.NoError(t, room.Add(m))
	return c, fc
}

func spawnGoblin(t *testing.T, room *world.Room) *world.Mob {
	t.Helper()
	m := world.NewMob("goblin", "a goblin")
	m.Race, m.Job = testRace, testJob
	m.Health = 5
	require.NoError(t, room.Add(m))
	return m
}

func TestSayFansOutInOrder(t *testing.T) {
	g, start, _ := testGame(t)
	_, fa := addPlayer(t, g, start, "Alice")
	alice := g.byName["alice"]
	_, fb := addPlayer(t, g, start, "Bob")

	g.handleLine(alice, "say hello")

	assert.Contains(t, fa.lines, `You say, "hello"`)
	assert.Contains(t, fb.lines, `Alice says, "hello"`)
	// The speaker's prompt renders after delivery, not before.
	assert.True(t, alice.promptPending)
}

func TestGetMissingItemMutatesNothing(t *testing.T) {
	g, start, _ := testGame(t)
	c, fc := addPlayer(t, g, start, "Alice")
	before := len(start.Contents())

	g.handleLine(c, "get sword")

	assert.Equal(t, "You don't see that here.", fc.lastLine())
	assert.Len(t, start.Contents(), before)
	assert.True(t, c.queue.Idle(time.Now()), "no cooldown may be consumed")
}

func TestGetAndDrop(t *testing.T) {
	g, start, _ := testGame(t)
	c, fc := addPlayer(t, g, start, "Alice")
	sword := world.NewItem("steel sword", "a steel sword")
	require.NoError(t, start.Add(sword))

	g.handleLine(c, "get sword")
	assert.Contains(t, fc.lines, "You pick up a steel sword.")
	assert.Same(t, world.Entity(c.char.Mob), sword.Location())

	g.handleLine(c, "drop sword")
	assert.Contains(t, fc.lines, "You drop a steel sword.")
	assert.Same(t, world.Entity(start), sword.Location())
}

func TestPutInContainer(t *testing.T) {
	g, start, _ := testGame(t)
	c, fc := addPlayer(t, g, start, "Alice")
	sack := world.NewItem("sack", "a burlap sack")
	sack.Container = true
	coin := world.NewItem("coin", "a copper coin")
	require.NoError(t, c.char.Mob.Add(sack))
	require.NoError(t, c.char.Mob.Add(coin))

	g.handleLine(c, "put coin in sack")

	assert.Contains(t, fc.lines, "You put a copper coin in a burlap sack.")
	assert.Same(t, world.Entity(sack), coin.Location())
}

func TestCancelAllReportsCount(t *testing.T) {
	g, start, _ := testGame(t)
	c, fc := addPlayer(t, g, start, "Alice")
	now := time.Now()
	c.queue.Push(now, &command.Action{Label: "busy", Cooldown: time.Minute, Run: func() {}})
	c.queue.Push(now, &command.Action{Label: "one", Run: func() { t.Fatal("cancelled action ran") }})
	c.queue.Push(now, &command.Action{Label: "two", Run: func() { t.Fatal("cancelled action ran") }})

	g.handleLine(c, "cancel all")

	assert.Equal(t, "Cancelled 2 queued actions.", fc.lastLine())
	assert.Equal(t, 0, c.queue.Len())
}

func TestCancelSingularMessage(t *testing.T) {
	g, start, _ := testGame(t)
	c, fc := addPlayer(t, g, start, "Alice")
	now := time.Now()
	c.queue.Push(now, &command.Action{Label: "busy", Cooldown: time.Minute, Run: func() {}})
	c.queue.Push(now, &command.Action{Label: "one", Run: func() {}})

	g.handleLine(c, "cancel")

	assert.Equal(t, "Cancelled 1 queued action.", fc.lastLine())
}

func TestBareDirectionWithoutExit(t *testing.T) {
	g, _, north := testGame(t)
	// The north room's only neighbor is south; north of it is out of bounds.
	c, fc := addPlayer(t, g, north, "Alice")

	g.handleLine(c, "n")

	assert.Equal(t, "There is no exit in that direction.", fc.lastLine())
	assert.Same(t, north, c.char.Mob.Room())
}

func TestBareDirectionMovesAndNarrates(t *testing.T) {
	g, start, north := testGame(t)
	c, fa := addPlayer(t, g, start, "Alice")
	_, fb := addPlayer(t, g, start, "Bob")
	_, fw := addPlayer(t, g, north, "Wendy")

	g.handleLine(c, "n")

	assert.Same(t, north, c.char.Mob.Room())
	assert.Contains(t, fa.lines, "You leave north.")
	assert.Contains(t, fb.lines, "Alice leaves north.")
	assert.Contains(t, fw.lines, "Alice arrives from the south.")
}

func TestUnknownCommandSaysHuh(t *testing.T) {
	g, start, _ := testGame(t)
	c, fc := addPlayer(t, g, start, "Alice")

	g.handleLine(c, "frobnicate")
	assert.Equal(t, "Huh?", fc.lastLine())

	// Multi-word garbage matches no command shape at all; it still answers.
	g.handleLine(c, "frobnicate the thing")
	assert.Len(t, fc.lines, 2)
	assert.Equal(t, "Huh?", fc.lastLine())
}

func TestKillResolvesCombatUntilDeath(t *testing.T) {
	g, start, _ := testGame(t)
	c, fc := addPlayer(t, g, start, "Alice")
	goblin := spawnGoblin(t, start)

	g.handleLine(c, "kill goblin")
	require.Same(t, goblin, c.char.Mob.Target)
	assert.Contains(t, fc.lines, "You attack a goblin!")

	for i := 0; i < 200 && !goblin.Dead; i++ {
		g.combatTick()
	}
	require.True(t, goblin.Dead)
	assert.Nil(t, c.char.Mob.Target, "targets on the victim clear at death")
	assert.NotContains(t, start.Contents(), world.Entity(goblin))
	assert.Contains(t, fc.lines, "A goblin is DEAD!")
	assert.Greater(t, c.char.Mob.Experience, 0)
}

func TestPlayerDeathWakesAtGraveyard(t *testing.T) {
	g, start, north := testGame(t)
	c, fc := addPlayer(t, g, start, "Alice")
	goblin := spawnGoblin(t, start)
	f := g.Cfg.Game.Combat

	g.kill(goblin, c.char.Mob)

	assert.False(t, c.char.Mob.Dead)
	assert.Same(t, north, c.char.Mob.Room())
	assert.Equal(t, max(1, c.char.Mob.MaxHealth(f)/2), c.char.Mob.Health)
	assert.Contains(t, fc.lines, "You awaken among the headstones.")
}

func TestFleeRequiresAFight(t *testing.T) {
	g, start, _ := testGame(t)
	c, fc := addPlayer(t, g, start, "Alice")

	g.handleLine(c, "flee")

	assert.Equal(t, "You aren't fighting anyone.", fc.lastLine())
}

func TestPromptPlaceholders(t *testing.T) {
	g, start, _ := testGame(t)
	c, _ := addPlayer(t, g, start, "Alice")
	m := c.char.Mob
	f := g.Cfg.Game.Combat
	m.Health, m.Mana, m.Exhaustion = 12, 7, 3

	got := promptVars(m, f).Replace("%hh/%HH hp %mm/%MM mp %ee ex %xp/%XX xp")

	caps := m.Caps(f)
	want := "12/" + itoa(caps.MaxHealth) + " hp 7/" + itoa(caps.MaxMana) + " mp 3 ex 0/100 xp"
	assert.Equal(t, want, got)
}

func TestPromptRendersAfterDelivery(t *testing.T) {
	g, start, _ := testGame(t)
	c, fc := addPlayer(t, g, start, "Alice")

	g.handleLine(c, "time")
	require.True(t, c.promptPending)
	g.outputPhase(0)

	assert.False(t, c.promptPending)
	assert.Contains(t, string(fc.raw), "\r\n")
	assert.Contains(t, string(fc.raw), "hp")
}

func TestIdleClientsAreDisconnected(t *testing.T) {
	g, start, _ := testGame(t)
	g.Cfg.Server.InactivityTimeout = 1
	c, fc := addPlayer(t, g, start, "Alice")
	fc.idle = time.Now().Add(-2 * time.Second)

	g.cleanupPhase(0)

	assert.True(t, fc.closed)
	assert.Contains(t, fc.lines, "You have been idle too long. Goodbye.")
	assert.NotContains(t, g.clients, c.id)
	assert.NotContains(t, g.byName, "alice")
}

func TestBoardPostCollectsBodyViaAsk(t *testing.T) {
	g, start, _ := testGame(t)
	b := board.New("general", board.WriteAll)
	g.Boards["general"] = b
	c, fc := addPlayer(t, g, start, "Alice")

	g.handleLine(c, "board general post Lost sword")
	require.NotNil(t, c.ask, "post collects the body through ask")
	g.handleLine(c, "Left it at the gate.")
	g.handleLine(c, ".")

	require.Len(t, b.Messages(), 1)
	msg := b.Messages()[0]
	assert.Equal(t, "Lost sword", msg.Subject)
	assert.Equal(t, "Left it at the gate.", msg.Body)
	assert.Equal(t, "Alice", msg.Author)
	assert.Contains(t, fc.lines, "Posted message 1 to general.")

	g.handleLine(c, "board general read 1")
	assert.Contains(t, fc.lines, "Left it at the gate.")
}

func TestTrackFollowsTheRoute(t *testing.T) {
	g, start, north := testGame(t)
	c, fc := addPlayer(t, g, start, "Alice")
	addPlayer(t, g, north, "Bob")

	g.handleLine(c, "track bob")

	assert.Equal(t, "The trail leads north (n).", fc.lastLine())
}

func TestConfigTogglesSettings(t *testing.T) {
	g, start, _ := testGame(t)
	c, fc := addPlayer(t, g, start, "Alice")

	g.handleLine(c, "config brief on")
	assert.True(t, c.char.Settings.BriefMode)

	g.handleLine(c, "config echo off")
	assert.Equal(t, world.EchoOff, c.char.Settings.EchoMode)
	assert.True(t, fc.echoOff)

	g.handleLine(c, "config echo client")
	assert.Equal(t, world.EchoClient, c.char.Settings.EchoMode)
	assert.False(t, fc.echoOff)
}

func TestShopListBuySell(t *testing.T) {
	g, start, _ := testGame(t)
	c, fc := addPlayer(t, g, start, "Alice")
	keeper := world.NewMob("vendor shopkeeper", "the shopkeeper")
	keeper.Race, keeper.Job = testRace, testJob
	keeper.RestockRules = []world.RestockRule{{TemplateID: "stick", MinCount: 1}}
	require.NoError(t, start.Add(keeper))
	stick := world.NewItem("stick", "a stout stick")
	stick.Value = 10
	require.NoError(t, keeper.Add(stick))

	g.handleLine(c, "buy stick")
	assert.Equal(t, "You can't afford it.", fc.lastLine())

	c.char.Mob.Gold = 25
	g.handleLine(c, "buy stick")
	assert.Contains(t, fc.lines, "You buy a stout stick for 10 gold.")
	assert.Equal(t, 15, c.char.Mob.Gold)
	assert.Same(t, world.Entity(c.char.Mob), stick.Location())

	g.handleLine(c, "sell stick")
	assert.Contains(t, fc.lines, "You sell a stout stick for 5 gold.")
	assert.Equal(t, 20, c.char.Mob.Gold)
	assert.Same(t, world.Entity(keeper), stick.Location())
}

// --- Login machine ---

func loginFixtures(t *testing.T, g *Game) {
	t.Helper()
	dir := t.TempDir()
	races := filepath.Join(dir, "archetypes", "races")
	jobs := filepath.Join(dir, "archetypes", "jobs")
	require.NoError(t, os.MkdirAll(races, 0o755))
	require.NoError(t, os.MkdirAll(jobs, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(races, "human.yaml"), []byte(`
archetypes:
  - id: human
    name: Human
    start: {strength: 10, agility: 10, intelligence: 10}
    start_caps: {max_health: 50, max_mana: 20}
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(jobs, "adventurer.yaml"), []byte(`
archetypes:
  - id: adventurer
    name: Adventurer
    start: {strength: 5}
    start_caps: {max_health: 30}
`), 0o644))
	rt, err := data.LoadArchetypeTable(races, world.ArchetypeRace)
	require.NoError(t, err)
	jt, err := data.LoadArchetypeTable(jobs, world.ArchetypeJob)
	require.NoError(t, err)
	g.Races, g.Jobs = rt, jt
	g.Characters = persist.NewCharacterRepo(filepath.Join(dir, "characters"),
		&persist.Hydrator{Races: rt, Jobs: jt, Log: zap.NewNop()}, zap.NewNop())
}

func connectClient(g *Game, id uint64) (*Client, *fakeConn) {
	fc := newFakeConn()
	c := newClient(id, fc)
	g.clients[id] = c
	g.greet(c)
	return c, fc
}

func TestLoginCreatesNewCharacter(t *testing.T) {
	g, start, _ := testGame(t)
	loginFixtures(t, g)
	c, fc := connectClient(g, 1)

	g.handleLine(c, "Alice")
	assert.Equal(t, stateApproval, c.state)
	g.handleLine(c, "y")
	assert.Equal(t, stateNewPassword, c.state)
	assert.True(t, fc.echoOff)
	g.handleLine(c, "secret123")
	assert.Equal(t, stateConfirmPassword, c.state)
	g.handleLine(c, "secret123")

	require.Equal(t, statePlaying, c.state)
	assert.False(t, fc.echoOff)
	assert.Same(t, start, c.char.Mob.Room())
	assert.True(t, g.Characters.Exists("Alice"))
	assert.Contains(t, g.byName, "alice")
	assert.Contains(t, fc.lines, "Welcome, Alice.")
}

func TestLoginRejectsBadNames(t *testing.T) {
	g, _, _ := testGame(t)
	loginFixtures(t, g)
	c, fc := connectClient(g, 1)

	g.handleLine(c, "x")
	assert.Contains(t, fc.lines, "Names are 3 to 12 letters. Try again.")
	assert.Equal(t, stateUsername, c.state)
}

func TestLoginExistingCharacterWrongPassword(t *testing.T) {
	g, _, _ := testGame(t)
	loginFixtures(t, g)
	c, _ := connectClient(g, 1)
	g.handleLine(c, "Alice")
	g.handleLine(c, "y")
	g.handleLine(c, "secret123")
	g.handleLine(c, "secret123")
	require.Equal(t, statePlaying, c.state)

	c2, fc2 := connectClient(g, 2)
	g.handleLine(c2, "Alice")
	assert.Equal(t, statePassword, c2.state)
	g.handleLine(c2, "wrong")
	g.handleLine(c2, "wronger")
	g.handleLine(c2, "wrongest")

	assert.True(t, fc2.closed)
	assert.Contains(t, fc2.lines, "Too many failed attempts.")
}

func TestLoginDisplacesPriorSession(t *testing.T) {
	g, start, _ := testGame(t)
	loginFixtures(t, g)
	c, fc := connectClient(g, 1)
	g.handleLine(c, "Alice")
	g.handleLine(c, "y")
	g.handleLine(c, "secret123")
	g.handleLine(c, "secret123")
	require.Equal(t, statePlaying, c.state)

	c2, _ := connectClient(g, 2)
	g.handleLine(c2, "Alice")
	g.handleLine(c2, "secret123")

	require.Equal(t, statePlaying, c2.state)
	assert.True(t, fc.closed)
	assert.Contains(t, fc.lines, "Your body has been claimed from elsewhere.")
	assert.Same(t, c2, g.byName["alice"])
	assert.Same(t, start, c2.char.Mob.Room())
}

func TestRegenTickRestoresResources(t *testing.T) {
	g, start, _ := testGame(t)
	c, _ := addPlayer(t, g, start, "Alice")
	m := c.char.Mob
	f := g.Cfg.Game.Combat
	m.Health, m.Mana, m.Exhaustion = 1, 1, 5

	g.regenTick()

	assert.Greater(t, m.Health, 1)
	assert.Greater(t, m.Mana, 1)
	assert.Equal(t, 4, m.Exhaustion)
	for i := 0; i < 1000; i++ {
		g.regenTick()
	}
	assert.Equal(t, m.MaxHealth(f), m.Health)
	assert.Equal(t, m.MaxMana(f), m.Mana)
}

func TestCalendarStampAdvances(t *testing.T) {
	cal := newCalendar(config.CalendarConfig{
		HoursPerDay: 24, DaysPerWeek: 7, DaysPerMonth: 28, MonthsPerYear: 12,
	})
	assert.Equal(t, "Year 1, Month 1, Day 1, 00:00", cal.Stamp())
	// One real second is one game minute.
	cal.advance(90 * time.Second)
	assert.Equal(t, "Year 1, Month 1, Day 1, 01:30", cal.Stamp())
	cal.advance(24 * 60 * time.Second)
	assert.Equal(t, "Year 1, Month 1, Day 2, 01:30", cal.Stamp())
}
