package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackindisguise/mud3-sub004/internal/world"
)

func testActor(t *testing.T) *world.Mob {
	t.Helper()
	w := world.New()
	d, err := world.NewDungeon("arena", "Arena", 3, 3, 1)
	require.NoError(t, err)
	require.NoError(t, w.AddDungeon(d))
	room, err := d.CreateRoom(1, 1, 0, "arena", "The Arena")
	require.NoError(t, err)

	actor := world.NewMob("hero", "the hero")
	require.NoError(t, room.Add(actor))
	return actor
}

func TestCompileAutocomplete(t *testing.T) {
	p, err := Compile("conf~ig")
	require.NoError(t, err)

	for _, line := range []string{"conf", "confi", "config", "CONFIG"} {
		args, err := p.Match(nil, line)
		require.NoError(t, err, line)
		assert.NotNil(t, args, line)
	}
	for _, line := range []string{"con", "configs", "confg"} {
		args, err := p.Match(nil, line)
		require.NoError(t, err, line)
		assert.Nil(t, args, line)
	}
}

func TestCompileQuotedLiteral(t *testing.T) {
	p, err := Compile("'mournful wail'")
	require.NoError(t, err)
	args, err := p.Match(nil, "mournful wail")
	require.NoError(t, err)
	assert.NotNil(t, args)
	args, err = p.Match(nil, "mournful")
	require.NoError(t, err)
	assert.Nil(t, args)
}

func TestCompileScalarHoles(t *testing.T) {
	p, err := Compile("roll <count:number> <label:word>")
	require.NoError(t, err)
	args, err := p.Match(nil, "roll 3 dice")
	require.NoError(t, err)
	require.NotNil(t, args)
	assert.Equal(t, 3, args["count"].Number)
	assert.Equal(t, "dice", args["label"].Raw)

	_, err = p.Match(nil, "roll many dice")
	assert.NoError(t, err) // regex refuses non-numbers, so no bind
}

func TestCompileTextHole(t *testing.T) {
	p, err := Compile("say <message:text>")
	require.NoError(t, err)
	args, err := p.Match(nil, "say hello there world")
	require.NoError(t, err)
	require.NotNil(t, args)
	assert.Equal(t, "hello there world", args["message"].Raw)
}

func TestCompileOptionalHole(t *testing.T) {
	p, err := Compile("look <dir:direction?>")
	require.NoError(t, err)

	args, err := p.Match(nil, "look")
	require.NoError(t, err)
	require.NotNil(t, args)
	_, bound := args["dir"]
	assert.False(t, bound)

	args, err = p.Match(nil, "look n")
	require.NoError(t, err)
	require.NotNil(t, args)
	assert.Equal(t, world.North, args["dir"].Direction)
}

func TestDirectionHoleAbbreviations(t *testing.T) {
	p, err := Compile("<dir:direction>")
	require.NoError(t, err)
	args, err := p.Match(nil, "SW")
	require.NoError(t, err)
	require.NotNil(t, args)
	assert.Equal(t, world.Southwest, args["dir"].Direction)

	_, err = p.Match(nil, "sideways")
	var perr *ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestMobResolution(t *testing.T) {
	actor := testActor(t)
	goblin := world.NewMob("goblin", "a goblin")
	require.NoError(t, actor.Room().Add(goblin))

	p, err := Compile("kill <target:mob>")
	require.NoError(t, err)
	args, err := p.Match(actor, "kill gob")
	require.NoError(t, err)
	require.NotNil(t, args)
	assert.Same(t, goblin, args["target"].Mob)

	_, err = p.Match(actor, "kill dragon")
	var rerr *ResolutionError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "You don't see them here.", rerr.Message)
}

func TestObjectResolutionContexts(t *testing.T) {
	actor := testActor(t)
	carried := world.NewItem("torch", "a torch")
	require.NoError(t, actor.Add(carried))
	ground := world.NewItem("sword", "a sword")
	require.NoError(t, actor.Room().Add(ground))

	get, err := Compile("get <what:object@room>")
	require.NoError(t, err)
	args, err := get.Match(actor, "get sword")
	require.NoError(t, err)
	require.NotNil(t, args)
	assert.Same(t, world.Entity(ground), args["what"].Entity)

	// Room context does not see the inventory.
	_, err = get.Match(actor, "get torch")
	var rerr *ResolutionError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "You don't see that here.", rerr.Message)

	drop, err := Compile("drop <what:item>")
	require.NoError(t, err)
	args, err = drop.Match(actor, "drop torch")
	require.NoError(t, err)
	require.NotNil(t, args)
	assert.Same(t, world.Entity(carried), args["what"].Entity)

	// The bare object kind searches inventory before the room.
	both, err := Compile("examine <what:object>")
	require.NoError(t, err)
	args, err = both.Match(actor, "examine torch")
	require.NoError(t, err)
	require.NotNil(t, args)
	assert.Same(t, world.Entity(carried), args["what"].Entity)
}

func TestCompileRejectsBadInput(t *testing.T) {
	_, err := Compile("")
	assert.Error(t, err)
	_, err = Compile("get <what:banana>")
	assert.Error(t, err)
	_, err = Compile("'unterminated")
	assert.Error(t, err)
}
