package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loadContent must read archetypes from data/archetypes/{races,jobs}.
func TestLoadContentArchetypeLayout(t *testing.T) {
	dir := t.TempDir()
	races := filepath.Join(dir, "archetypes", "races")
	jobs := filepath.Join(dir, "archetypes", "jobs")
	require.NoError(t, os.MkdirAll(races, 0o755))
	require.NoError(t, os.MkdirAll(jobs, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(races, "human.yaml"), []byte(`
archetypes:
  - id: human
    name: Human
    start: {strength: 10}
    start_caps: {max_health: 50}
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(jobs, "adventurer.yaml"), []byte(`
archetypes:
  - id: adventurer
    name: Adventurer
    start: {strength: 5}
    start_caps: {max_health: 30}
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "locations.yaml"), []byte(`
locations:
  start: "@town{0,0,0}"
  recall: "@town{0,0,0}"
  graveyard: "@town{0,0,0}"
`), 0o644))

	c, err := loadContent(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Races.Count())
	assert.Equal(t, 1, c.Jobs.Count())
	require.NotNil(t, c.Races.Get("human"))
	require.NotNil(t, c.Jobs.Get("adventurer"))
}
