package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMobDerivedAttributes(t *testing.T) {
	race, job := testArchetypes()
	m := NewMob("hero", "the hero")
	m.Race, m.Job = race, job
	m.Level = 3

	// Level 3: race 10+2=12 str each, job 5+4=9 str.
	p := m.Primaries()
	assert.Equal(t, 21, p.Strength)
	assert.Equal(t, 12, p.Agility)
	assert.Equal(t, 12, p.Intelligence)

	f := DefaultFactors
	sec := m.Secondaries(f)
	assert.Equal(t, 21*f.AttackPerStrength, sec.AttackPower)
	assert.Equal(t, 12*f.AccuracyPerAgi, sec.Accuracy)
	assert.Equal(t, 12*f.WisdomPerInt, sec.Wisdom)

	// Caps: race (50+20) + job (30+10) + vitality*10.
	caps := m.Caps(f)
	wantHealth := 70 + 40 + sec.Vitality*f.HealthPerVitality
	assert.Equal(t, wantHealth, caps.MaxHealth)
	assert.Equal(t, 30+sec.Wisdom*f.ManaPerWisdom, caps.MaxMana)
}

func TestMobEquipSwapsSlot(t *testing.T) {
	race, job := testArchetypes()
	m := NewMob("hero", "the hero")
	m.Race, m.Job = race, job

	sword := NewWeapon("sword", "a sword")
	axe := NewWeapon("axe", "an axe")
	require.NoError(t, m.Add(sword))
	require.NoError(t, m.Add(axe))

	require.NoError(t, m.Equip(sword, SlotMainHand))
	assert.Same(t, Wearable(sword), m.Equipped(SlotMainHand))
	assert.Nil(t, sword.Location(), "equipped items leave the inventory")

	// Equipping the axe returns the sword to inventory.
	require.NoError(t, m.Equip(axe, SlotMainHand))
	assert.Same(t, Wearable(axe), m.Equipped(SlotMainHand))
	assert.Same(t, m, sword.Location().(*Mob))

	// Wrong slot refused.
	err := m.Equip(axe, SlotHead)
	assert.ErrorIs(t, err, ErrWrongSlot)

	rock := NewItem("rock", "a rock")
	assert.ErrorIs(t, m.Equip(rock, SlotMainHand), ErrNotEquipment)
}

func TestMobEquipmentBonuses(t *testing.T) {
	race, job := testArchetypes()
	m := NewMob("hero", "the hero")
	m.Race, m.Job = race, job

	helm := NewArmor("helm", "an iron helm", SlotHead)
	helm.Bonus.Primary.Strength = 3
	helm.Bonus.Caps.MaxHealth = 25
	require.NoError(t, m.Equip(helm, SlotHead))

	m.Effects = append(m.Effects, &Effect{
		Name:        "blessing",
		SecondsLeft: 10,
		Bonus:       Bonuses{Primary: PrimaryAttribs{Strength: 2}},
	})

	b := m.EquipmentBonuses()
	assert.Equal(t, 5, b.Primary.Strength)
	assert.Equal(t, 25, b.Caps.MaxHealth)

	// Bonuses flow into primaries: base 15 + 5.
	assert.Equal(t, 20, m.Primaries().Strength)
}

func TestMobRelationStrongestWins(t *testing.T) {
	race, job := testArchetypes()
	race.Relations = map[DamageType]Relation{"fire": RelationResist}
	job.Relations = map[DamageType]Relation{"fire": RelationVulnerable, "ice": RelationImmune}

	m := NewMob("hero", "the hero")
	m.Race, m.Job = race, job

	assert.Equal(t, RelationVulnerable, m.Relation("fire"))
	assert.Equal(t, RelationImmune, m.Relation("ice"))
	assert.Equal(t, Relation(""), m.Relation("acid"))
}

func TestApplyRelation(t *testing.T) {
	assert.Equal(t, 5, ApplyRelation(10, RelationResist))
	assert.Equal(t, 20, ApplyRelation(10, RelationVulnerable))
	assert.Equal(t, 0, ApplyRelation(10, RelationImmune))
	assert.Equal(t, 10, ApplyRelation(10, ""))
}

func TestAbilityProficiencyCurve(t *testing.T) {
	a := NewAbility("slash", "Slash", "A basic slash.", [4]int{10, 30, 60, 100})

	assert.Equal(t, 0, a.ProficiencyAt(0))
	assert.Equal(t, 25, a.ProficiencyAt(10))
	assert.Equal(t, 50, a.ProficiencyAt(30))
	assert.Equal(t, 75, a.ProficiencyAt(60))
	assert.Equal(t, 100, a.ProficiencyAt(100))
	assert.Equal(t, 100, a.ProficiencyAt(5000))
	assert.Equal(t, 0, a.ProficiencyAt(-3))

	prev := 0
	for uses := 0; uses <= a.MaxUses(); uses++ {
		pct := a.ProficiencyAt(uses)
		assert.GreaterOrEqual(t, pct, prev, "monotone at %d uses", uses)
		prev = pct
	}
}

func TestMobAbilityUse(t *testing.T) {
	a := NewAbility("slash", "Slash", "", [4]int{10, 30, 60, 100})
	m := NewMob("hero", "the hero")

	m.UseAbility(a, 5) // not learned: ignored
	assert.Nil(t, m.Learned("slash"))

	m.LearnAbility("slash")
	m.LearnAbility("slash") // idempotent
	m.UseAbility(a, 10)
	la := m.Learned("slash")
	require.NotNil(t, la)
	assert.Equal(t, 10, la.Uses)
	assert.Equal(t, 25, la.Percent)

	m.RemoveAbility("slash")
	assert.Nil(t, m.Learned("slash"))
}

func TestMobDeathAndRespawn(t *testing.T) {
	w, d := testDungeon(t)
	room, err := d.CreateRoom(0, 0, 0, "void", "The Void")
	require.NoError(t, err)

	victim := NewMob("goblin", "a goblin")
	victim.RespawnDelay = 2
	killer := NewMob("hero", "the hero")
	killer.Target = victim
	require.NoError(t, room.Add(victim))
	require.NoError(t, room.Add(killer))

	victim.Die()
	w.ClearTargetsOn(victim)
	assert.True(t, victim.Dead)
	assert.Nil(t, killer.Target)

	assert.False(t, victim.TickRespawn())
	assert.True(t, victim.TickRespawn())
	assert.False(t, victim.TickRespawn(), "timer does not refire")
}

func TestExperienceToLevel(t *testing.T) {
	assert.Equal(t, 0, ExperienceToLevel(1))
	assert.Equal(t, 100, ExperienceToLevel(2))
	assert.Equal(t, 400, ExperienceToLevel(3))
	assert.Equal(t, 900, ExperienceToLevel(4))
}

func TestStepFiresRoomHooks(t *testing.T) {
	_, d := testDungeon(t)
	a, err := d.CreateRoom(0, 1, 0, "south", "South Room")
	require.NoError(t, err)
	b, err := d.CreateRoom(0, 0, 0, "north", "North Room")
	require.NoError(t, err)
	a.AllowedExits = a.AllowedExits.With(North)
	b.AllowedExits = b.AllowedExits.With(South)

	var fired []string
	a.OnExit = func(m *Mob, dir Direction) {
		fired = append(fired, "exit:"+dir.String())
	}
	b.OnEnter = func(m *Mob, from Direction) {
		fired = append(fired, "enter:"+from.String())
	}

	m := NewMob("hero", "the hero")
	require.NoError(t, a.Add(m))
	require.NoError(t, Step(m, North))
	assert.Same(t, b, m.Room())
	assert.Equal(t, []string{"exit:north", "enter:south"}, fired)

	m.Rooted = true
	assert.ErrorIs(t, Step(m, South), ErrCannotMove)
	m.Rooted = false
	assert.ErrorIs(t, Step(m, East), ErrNoExit)
}

func TestStepRespectsEntryPermission(t *testing.T) {
	_, d := testDungeon(t)
	a, err := d.CreateRoom(0, 1, 0, "south", "South Room")
	require.NoError(t, err)
	_, err = d.CreateRoom(0, 0, 0, "north", "North Room")
	require.NoError(t, err)
	a.AllowedExits = a.AllowedExits.With(North)
	// North room lacks a south exit, so entry from the south is refused.

	m := NewMob("hero", "the hero")
	require.NoError(t, a.Add(m))
	assert.ErrorIs(t, Step(m, North), ErrNoExit)
}
