package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackindisguise/mud3-sub004/internal/world"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadAbilityTable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "combat.yaml", `
abilities:
  - id: slash
    name: Slash
    description: A basic slash.
    curve: [10, 30, 60, 100]
`)
	tbl, err := LoadAbilityTable(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Count())
	a := tbl.Get("slash")
	require.NotNil(t, a)
	assert.Equal(t, 25, a.ProficiencyAt(10))
	assert.Nil(t, tbl.Get("missing"))
}

func TestLoadAbilityTableRejectsDuplicates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "abilities:\n  - id: slash\n    curve: [1, 2, 3, 4]\n")
	writeFile(t, dir, "b.yaml", "abilities:\n  - id: slash\n    curve: [1, 2, 3, 4]\n")
	_, err := LoadAbilityTable(dir)
	assert.ErrorContains(t, err, "duplicate id")
}

func TestLoadArchetypeTable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "human.yaml", `
archetypes:
  - id: human
    name: Human
    start: {strength: 10, agility: 10, intelligence: 10}
    growth: {strength: 1, agility: 1, intelligence: 1}
    start_caps: {max_health: 50, max_mana: 20}
    cap_growth: {max_health: 10, max_mana: 5}
    abilities:
      - {ability: slash, level: 2}
    relations:
      fire: resist
`)
	tbl, err := LoadArchetypeTable(dir, world.ArchetypeRace)
	require.NoError(t, err)
	human := tbl.Get("human")
	require.NotNil(t, human)
	assert.Equal(t, world.ArchetypeRace, human.Kind)
	assert.Equal(t, 11, human.AttribsAt(2).Strength)
	assert.Equal(t, world.RelationResist, human.Relation("fire"))
	assert.Empty(t, human.GrantsAt(1))
	assert.Equal(t, []string{"slash"}, human.GrantsAt(2))
}

func TestLoadHelpTable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "basics.yaml", `
helpfiles:
  - id: movement
    title: Moving Around
    aliases: [move, walk]
    topics: [basics]
    body: Use the direction commands to move.
  - id: combat
    title: Fighting
    topics: [basics]
    body: Kill things with kill.
`)
	tbl, err := LoadHelpTable(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Count())
	assert.NotNil(t, tbl.Get("movement"))
	assert.NotNil(t, tbl.Get("WALK"))
	assert.Nil(t, tbl.Get("nothing"))

	hits := tbl.Search("basics")
	require.Len(t, hits, 2)
	assert.Equal(t, "combat", hits[0].ID)

	hits = tbl.Search("direction")
	require.Len(t, hits, 1)
	assert.Equal(t, "movement", hits[0].ID)
}

func TestLoadLocations(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "locations.yaml", `
locations:
  start: "@town{1,1,0}"
  recall: "@town{1,1,0}"
  graveyard: "@town{0,0,0}"
`)
	loc, err := LoadLocations(filepath.Join(dir, "locations.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "@town{1,1,0}", loc.Start)
	assert.Equal(t, "@town{0,0,0}", loc.Graveyard)
}

func TestLoadReservedNames(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "reserved.yaml", "reserved: [Admin, System]\n")
	r, err := LoadReservedNames(filepath.Join(dir, "reserved.yaml"))
	require.NoError(t, err)
	assert.True(t, r.Contains("admin"))
	assert.True(t, r.Contains("SYSTEM"))
	assert.False(t, r.Contains("alice"))

	empty, err := LoadReservedNames(filepath.Join(dir, "absent.yaml"))
	require.NoError(t, err)
	assert.Zero(t, empty.Count())
}

func templateFixture(t *testing.T) (*TemplateTable, *ArchetypeTable, *ArchetypeTable) {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "templates"), "core.yaml", `
items:
  - id: steel-sword
    kind: weapon
    keywords: steel sword
    display: a steel sword
    slot: main-hand
    hit_type: slash
    damage_type: physical
    value: 100
    weight: 5
    bonus:
      secondary: {attack_power: 4}
  - id: sack
    keywords: sack
    display: a burlap sack
    container: true
    cap_count: 5
mobs:
  - id: goblin
    keywords: goblin
    display: a goblin
    level: 2
    race: human
    job: warrior
    gold: 10
    respawn_delay: 30
    equipment:
      main-hand: steel-sword
    inventory: [sack]
`)
	writeFile(t, filepath.Join(dir, "races"), "human.yaml", `
archetypes:
  - id: human
    name: Human
    start: {strength: 10, agility: 10, intelligence: 10}
    growth: {strength: 1, agility: 1, intelligence: 1}
    start_caps: {max_health: 50, max_mana: 20}
    cap_growth: {max_health: 10, max_mana: 5}
    abilities:
      - {ability: slash, level: 1}
`)
	writeFile(t, filepath.Join(dir, "jobs"), "warrior.yaml", `
archetypes:
  - id: warrior
    name: Warrior
    start: {strength: 5}
    growth: {strength: 2}
    start_caps: {max_health: 30}
    cap_growth: {max_health: 5}
`)
	templates, err := LoadTemplateTable(filepath.Join(dir, "templates"))
	require.NoError(t, err)
	races, err := LoadArchetypeTable(filepath.Join(dir, "races"), world.ArchetypeRace)
	require.NoError(t, err)
	jobs, err := LoadArchetypeTable(filepath.Join(dir, "jobs"), world.ArchetypeJob)
	require.NoError(t, err)
	return templates, races, jobs
}

func TestSpawnItem(t *testing.T) {
	templates, _, _ := templateFixture(t)

	e, err := templates.SpawnItem("steel-sword")
	require.NoError(t, err)
	sword, ok := e.(*world.Weapon)
	require.True(t, ok)
	assert.Equal(t, "slash", sword.HitType)
	assert.Equal(t, world.SlotMainHand, sword.Slot())
	assert.Equal(t, 4, sword.Bonuses().Secondary.AttackPower)
	assert.Equal(t, "steel-sword", sword.TemplateID())

	_, err = templates.SpawnItem("missing")
	assert.Error(t, err)
}

func TestSpawnMobFullyWired(t *testing.T) {
	templates, races, jobs := templateFixture(t)

	m, err := templates.SpawnMob("goblin", races, jobs, world.DefaultFactors)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Level)
	assert.Equal(t, 10, m.Gold)
	assert.Equal(t, 30, m.RespawnDelay)

	// Equipment slotted, not in inventory.
	require.NotNil(t, m.Weapon())
	assert.Equal(t, "steel-sword", m.Weapon().TemplateID())
	require.Len(t, m.Contents(), 1)
	assert.Equal(t, "sack", m.Contents()[0].TemplateID())

	// Default ability set learned from the race grant.
	assert.NotNil(t, m.Learned("slash"))

	// Resources filled to derived caps.
	assert.Equal(t, m.MaxHealth(world.DefaultFactors), m.Health)
	assert.Equal(t, m.MaxMana(world.DefaultFactors), m.Mana)
}
