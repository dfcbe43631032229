package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeScript(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestEngineLoadsAndExecutes(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "wave.lua", `
register_command{
  name = "wave",
  pattern = "wave <target:word?>",
  aliases = {"greet"},
  cooldown_ms = 500,
  priority = 0,
  execute = function(ctx)
    local target = ctx.args.target
    if target == nil or target == "" then
      ctx.act("You wave.", ctx.actor .. " waves.")
    else
      ctx.respond("You wave at " .. target .. ".")
    end
  end,
}
`)
	e, err := NewEngine(dir, zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	cmds := e.Commands()
	require.Len(t, cmds, 1)
	wave := cmds[0]
	assert.Equal(t, "wave", wave.Name)
	assert.Equal(t, "wave <target:word?>", wave.Pattern)
	assert.Equal(t, []string{"greet"}, wave.Aliases)
	assert.Equal(t, 500, wave.CooldownMs)

	var responded, userLine, roomLine string
	ctx := &CallContext{
		ActorName: "Alice",
		Args:      map[string]string{"target": "bob"},
		Respond:   func(line string) { responded = line },
		Act:       func(u, r string) { userLine, roomLine = u, r },
	}
	require.NoError(t, e.Execute(wave, ctx))
	assert.Equal(t, "You wave at bob.", responded)

	ctx.Args = map[string]string{}
	require.NoError(t, e.Execute(wave, ctx))
	assert.Equal(t, "You wave.", userLine)
	assert.Equal(t, "Alice waves.", roomLine)
}

func TestEngineRejectsIncompleteRegistration(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "bad.lua", `register_command{name = "broken"}`)
	_, err := NewEngine(dir, zap.NewNop())
	assert.Error(t, err)
}

func TestEngineMissingDirectoryIsEmpty(t *testing.T) {
	e, err := NewEngine(filepath.Join(t.TempDir(), "absent"), zap.NewNop())
	require.NoError(t, err)
	defer e.Close()
	assert.Empty(t, e.Commands())
}

func TestEngineReloadKeepsOldSetOnFailure(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "ok.lua", `
register_command{
  name = "nod",
  pattern = "nod",
  execute = function(ctx) ctx.respond("You nod.") end,
}
`)
	e, err := NewEngine(dir, zap.NewNop())
	require.NoError(t, err)
	defer e.Close()
	require.Len(t, e.Commands(), 1)

	writeScript(t, dir, "broken.lua", `this is not lua`)
	assert.Error(t, e.Reload())
	require.Len(t, e.Commands(), 1)

	var got string
	require.NoError(t, e.Execute(e.Commands()[0], &CallContext{
		Respond: func(line string) { got = line },
		Act:     func(string, string) {},
	}))
	assert.Equal(t, "You nod.", got)

	require.NoError(t, os.Remove(filepath.Join(dir, "broken.lua")))
	writeScript(t, dir, "second.lua", `
register_command{
  name = "smile",
  pattern = "smile",
  execute = function(ctx) ctx.respond("You smile.") end,
}
`)
	require.NoError(t, e.Reload())
	assert.Len(t, e.Commands(), 2)
}
