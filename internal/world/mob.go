package world

import (
	"errors"
	"fmt"
)

// MessageGroup tags delivered lines for client-side filtering and theming.
type MessageGroup string

const (
	GroupCombat   MessageGroup = "combat"
	GroupChannels MessageGroup = "channels"
	GroupResponse MessageGroup = "command-response"
	GroupAction   MessageGroup = "action"
	GroupInfo     MessageGroup = "info"
)

// Sink receives narration lines for one recipient. Player mobs carry the
// session's sink; NPC mobs have none. Delivery is in order per recipient.
type Sink interface {
	Deliver(group MessageGroup, line string)
}

var (
	// ErrWrongSlot is returned when equipping an item into a slot its
	// declared slot does not match.
	ErrWrongSlot = errors.New("wrong equipment slot")
	// ErrNotEquipment is returned when equipping a non-equipment entity.
	ErrNotEquipment = errors.New("not equipment")
)

// Mob is a living entity: a player's avatar or a non-player creature.
type Mob struct {
	Base

	Level      int
	Experience int

	Race *Archetype
	Job  *Archetype

	Health     int
	Mana       int
	Exhaustion int

	Gold int

	equipped map[Slot]Wearable
	learned  map[string]*LearnedAbility

	// Target is a weak combat reference, cleared on death or removal.
	Target *Mob

	Dead    bool
	Rooted  bool
	Stunned bool

	// RestockRules marks a shopkeeper; nil for everything else.
	RestockRules []RestockRule

	// Effects are timed buffs/debuffs expired by the regeneration tick.
	Effects []*Effect

	// Spawn bookkeeping for world reset: where this mob respawns and how
	// long after death, in seconds. Zero RespawnDelay means no respawn.
	SpawnRoom    *Room
	RespawnDelay int
	respawnLeft  int

	sink Sink
}

// RestockRule declares shopkeeper stock maintenance for one item template.
// MinCount < 0 means infinite supply.
type RestockRule struct {
	TemplateID string `yaml:"template"`
	MinCount   int    `yaml:"min_count"`
	CycleDelay int    `yaml:"cycle_delay"`
	delayLeft  int
}

// Effect is a timed attribute modifier on a mob.
type Effect struct {
	Name        string
	SecondsLeft int
	Bonus       Bonuses
}

// NewMob creates a living entity at level 1 with empty slots.
func NewMob(keywords, display string) *Mob {
	return &Mob{
		Base:     NewBase(KindMob, keywords, display),
		Level:    1,
		equipped: make(map[Slot]Wearable),
		learned:  make(map[string]*LearnedAbility),
	}
}

func (m *Mob) Add(child Entity) error { return addChild(m, child) }
func (m *Mob) Remove(child Entity)    { removeChild(m, child) }

// AttachSink wires the mob to a session's output sink; nil detaches.
func (m *Mob) AttachSink(s Sink) { m.sink = s }

// Deliver sends a line to the mob's sink, if any.
func (m *Mob) Deliver(group MessageGroup, line string) {
	if m.sink != nil {
		m.sink.Deliver(group, line)
	}
}

// HasSink reports whether a session is attached (i.e. this is a player).
func (m *Mob) HasSink() bool { return m.sink != nil }

// Room returns the room the mob stands in, or nil when not placed.
func (m *Mob) Room() *Room {
	r, _ := m.Location().(*Room)
	return r
}

// --- Equipment ---

// Equip places the item in the given slot. The entity must be equipment and
// its declared slot must match; a previously equipped item in that slot is
// moved back into the mob's inventory.
func (m *Mob) Equip(e Entity, slot Slot) error {
	w, ok := e.(Wearable)
	if !ok {
		return ErrNotEquipment
	}
	if w.Slot() != slot {
		return fmt.Errorf("%w: %s goes on %s", ErrWrongSlot, e.Display(), w.Slot())
	}
	if prev := m.equipped[slot]; prev != nil {
		if err := m.Add(prev); err != nil {
			return err
		}
	}
	if e.Location() != nil {
		e.Location().Remove(e)
	}
	m.equipped[slot] = w
	return nil
}

// Unequip removes the item in slot back into inventory, if any.
func (m *Mob) Unequip(slot Slot) (Wearable, error) {
	w := m.equipped[slot]
	if w == nil {
		return nil, nil
	}
	if err := m.Add(w); err != nil {
		return nil, err
	}
	delete(m.equipped, slot)
	return w, nil
}

// Equipped returns the item in a slot, or nil.
func (m *Mob) Equipped(slot Slot) Wearable { return m.equipped[slot] }

// EachEquipped visits every occupied slot in slot order.
func (m *Mob) EachEquipped(fn func(Slot, Wearable)) {
	for _, s := range Slots {
		if w := m.equipped[s]; w != nil {
			fn(s, w)
		}
	}
}

// Weapon returns the equipped main-hand weapon, or nil.
func (m *Mob) Weapon() *Weapon {
	w, _ := m.equipped[SlotMainHand].(*Weapon)
	return w
}

// EquipmentBonuses sums the bonuses of all equipped items plus active
// effects. Computed on demand, never cached.
func (m *Mob) EquipmentBonuses() Bonuses {
	var sum Bonuses
	for _, s := range Slots {
		if w := m.equipped[s]; w != nil {
			sum = sum.Add(w.Bonuses())
		}
	}
	for _, ef := range m.Effects {
		sum = sum.Add(ef.Bonus)
	}
	return sum
}

// --- Derived attributes ---

// Primaries is race + job contributions at the mob's level plus equipment.
func (m *Mob) Primaries() PrimaryAttribs {
	p := m.Race.AttribsAt(m.Level).Add(m.Job.AttribsAt(m.Level))
	return p.Add(m.EquipmentBonuses().Primary)
}

// Secondaries derives the combat attributes from primaries via the
// conversion factors, plus direct equipment contributions.
func (m *Mob) Secondaries(f Factors) SecondaryAttribs {
	sec := f.Derive(m.Primaries())
	return sec.Add(m.EquipmentBonuses().Secondary)
}

// Caps returns max health and mana: archetype caps plus equipment caps plus
// vitality/wisdom conversion.
func (m *Mob) Caps(f Factors) ResourceCaps {
	caps := m.Race.CapsAt(m.Level).Add(m.Job.CapsAt(m.Level))
	caps = caps.Add(m.EquipmentBonuses().Caps)
	sec := m.Secondaries(f)
	caps.MaxHealth += sec.Vitality * f.HealthPerVitality
	caps.MaxMana += sec.Wisdom * f.ManaPerWisdom
	return caps
}

// MaxHealth is the derived health cap.
func (m *Mob) MaxHealth(f Factors) int { return m.Caps(f).MaxHealth }

// MaxMana is the derived mana cap.
func (m *Mob) MaxMana(f Factors) int { return m.Caps(f).MaxMana }

// Relation consults both archetypes; the stronger relationship wins
// (immune > vulnerable > resist).
func (m *Mob) Relation(dt DamageType) Relation {
	a, b := m.Race.Relation(dt), m.Job.Relation(dt)
	for _, rel := range []Relation{RelationImmune, RelationVulnerable, RelationResist} {
		if a == rel || b == rel {
			return rel
		}
	}
	return ""
}

// --- Abilities ---

// LearnAbility registers an ability with zero uses. Learning an already
// known ability is a no-op.
func (m *Mob) LearnAbility(id string) {
	if _, ok := m.learned[id]; ok {
		return
	}
	m.learned[id] = &LearnedAbility{AbilityID: id}
}

// UseAbility increments the use counter by n and refreshes the proficiency
// snapshot from the ability's table. Unknown abilities are ignored.
func (m *Mob) UseAbility(a *Ability, n int) {
	la := m.learned[a.ID]
	if la == nil {
		return
	}
	la.Uses += n
	la.Percent = a.ProficiencyAt(la.Uses)
}

// RemoveAbility clears both the use count and the snapshot.
func (m *Mob) RemoveAbility(id string) { delete(m.learned, id) }

// Learned returns the mob's state for an ability id, or nil.
func (m *Mob) Learned(id string) *LearnedAbility { return m.learned[id] }

// EachLearned visits all learned abilities in unspecified order.
func (m *Mob) EachLearned(fn func(*LearnedAbility)) {
	for _, la := range m.learned {
		fn(la)
	}
}

// --- Combat & lifecycle ---

// CanAct reports whether the mob may take deliberate actions.
func (m *Mob) CanAct() bool { return !m.Dead && !m.Stunned }

// CanMove reports whether the mob may leave its room.
func (m *Mob) CanMove() bool { return m.CanAct() && !m.Rooted }

// Die marks the mob dead, clears its own target, and arms the respawn timer
// when the mob was spawned with one. Callers clear inbound target references.
func (m *Mob) Die() {
	m.Dead = true
	m.Target = nil
	if m.RespawnDelay > 0 {
		m.respawnLeft = m.RespawnDelay
	}
}

// TickRespawn counts down a dead spawned mob's respawn timer by one second
// and reports whether the mob is due to respawn now.
func (m *Mob) TickRespawn() bool {
	if !m.Dead || m.respawnLeft <= 0 {
		return false
	}
	m.respawnLeft--
	return m.respawnLeft == 0
}

// TickRestock runs one shopkeeper restock cycle. Each rule waits out its
// cycle delay, then tops the mob's stock of the rule's template up to
// MinCount; a negative MinCount supplies one unconditionally. Returns the
// number of items added.
func (m *Mob) TickRestock(spawnItem func(templateID string) (Entity, error)) int {
	added := 0
	for i := range m.RestockRules {
		rule := &m.RestockRules[i]
		if rule.delayLeft > 0 {
			rule.delayLeft--
			continue
		}
		rule.delayLeft = rule.CycleDelay
		want := 1
		if rule.MinCount >= 0 {
			have := 0
			for _, e := range m.contents {
				if e.TemplateID() == rule.TemplateID {
					have++
				}
			}
			want = rule.MinCount - have
		}
		for ; want > 0; want-- {
			it, err := spawnItem(rule.TemplateID)
			if err != nil {
				break
			}
			if err := m.Add(it); err != nil {
				break
			}
			added++
		}
	}
	return added
}

// ExperienceToLevel is the cumulative experience required to reach a level.
func ExperienceToLevel(level int) int {
	if level <= 1 {
		return 0
	}
	n := level - 1
	return 100 * n * n
}
