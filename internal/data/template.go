package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jackindisguise/mud3-sub004/internal/world"
)

// ItemTemplate is the on-disk shape of one item, equipment, weapon, armor,
// or prop definition.
type ItemTemplate struct {
	ID          string `yaml:"id"`
	Kind        string `yaml:"kind"` // item, equipment, weapon, armor, prop
	Keywords    string `yaml:"keywords"`
	Display     string `yaml:"display"`
	Description string `yaml:"description,omitempty"`

	Value  int `yaml:"value,omitempty"`
	Weight int `yaml:"weight,omitempty"`

	Container bool `yaml:"container,omitempty"`
	CapWeight int  `yaml:"cap_weight,omitempty"`
	CapCount  int  `yaml:"cap_count,omitempty"`

	Slot       string           `yaml:"slot,omitempty"`
	Bonus      world.Bonuses    `yaml:"bonus,omitempty"`
	HitType    string           `yaml:"hit_type,omitempty"`
	DamageType world.DamageType `yaml:"damage_type,omitempty"`
}

// MobTemplate is the on-disk shape of one mob definition.
type MobTemplate struct {
	ID          string `yaml:"id"`
	Keywords    string `yaml:"keywords"`
	Display     string `yaml:"display"`
	Description string `yaml:"description,omitempty"`

	Level int    `yaml:"level"`
	Race  string `yaml:"race"`
	Job   string `yaml:"job"`
	Gold  int    `yaml:"gold,omitempty"`

	Equipment map[string]string `yaml:"equipment,omitempty"` // slot → item template id
	Inventory []string          `yaml:"inventory,omitempty"` // item template ids

	RespawnDelay int                 `yaml:"respawn_delay,omitempty"` // seconds
	Restock      []world.RestockRule `yaml:"restock,omitempty"`
}

type templateListFile struct {
	Items []ItemTemplate `yaml:"items,omitempty"`
	Mobs  []MobTemplate  `yaml:"mobs,omitempty"`
}

// TemplateTable holds item and mob templates indexed by id, and spawns
// instances from them.
type TemplateTable struct {
	items map[string]*ItemTemplate
	mobs  map[string]*MobTemplate
}

// Item returns an item template by id, or nil.
func (t *TemplateTable) Item(id string) *ItemTemplate { return t.items[id] }

// Mob returns a mob template by id, or nil.
func (t *TemplateTable) Mob(id string) *MobTemplate { return t.mobs[id] }

// Count returns the number of loaded templates of both families.
func (t *TemplateTable) Count() int { return len(t.items) + len(t.mobs) }

// LoadTemplateTable loads every template file in a directory.
func LoadTemplateTable(dir string) (*TemplateTable, error) {
	t := &TemplateTable{
		items: make(map[string]*ItemTemplate),
		mobs:  make(map[string]*MobTemplate),
	}
	err := eachYAMLFile(dir, func(path string) error {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("template: read %s: %w", path, err)
		}
		var f templateListFile
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return fmt.Errorf("template: parse %s: %w", path, err)
		}
		for i := range f.Items {
			def := &f.Items[i]
			if def.ID == "" {
				return fmt.Errorf("template: %s: item missing id", path)
			}
			if _, dup := t.items[def.ID]; dup {
				return fmt.Errorf("template: duplicate item id %q in %s", def.ID, path)
			}
			t.items[def.ID] = def
		}
		for i := range f.Mobs {
			def := &f.Mobs[i]
			if def.ID == "" {
				return fmt.Errorf("template: %s: mob missing id", path)
			}
			if _, dup := t.mobs[def.ID]; dup {
				return fmt.Errorf("template: duplicate mob id %q in %s", def.ID, path)
			}
			t.mobs[def.ID] = def
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// SpawnItem instantiates an item template as a fully wired entity.
func (t *TemplateTable) SpawnItem(id string) (world.Entity, error) {
	def := t.items[id]
	if def == nil {
		return nil, fmt.Errorf("unknown item template %q", id)
	}
	var e world.Entity
	switch def.Kind {
	case "", "item":
		it := world.NewItem(def.Keywords, def.Display)
		it.Value, it.Weight = def.Value, def.Weight
		it.Container, it.CapWeight, it.CapCount = def.Container, def.CapWeight, def.CapCount
		e = it
	case "prop":
		e = world.NewProp(def.Keywords, def.Display)
	case "equipment", "weapon", "armor":
		slot, err := world.ParseSlot(def.Slot)
		if err != nil {
			return nil, fmt.Errorf("item template %q: %w", id, err)
		}
		switch def.Kind {
		case "weapon":
			w := world.NewWeapon(def.Keywords, def.Display)
			if slot != world.SlotMainHand {
				return nil, fmt.Errorf("item template %q: weapons go in the main hand", id)
			}
			if def.HitType != "" {
				w.HitType = def.HitType
			}
			w.DamageType = def.DamageType
			w.Bonus = def.Bonus
			w.Value, w.Weight = def.Value, def.Weight
			e = w
		case "armor":
			a := world.NewArmor(def.Keywords, def.Display, slot)
			a.Bonus = def.Bonus
			a.Value, a.Weight = def.Value, def.Weight
			e = a
		default:
			eq := world.NewEquipment(def.Keywords, def.Display, slot)
			eq.Bonus = def.Bonus
			eq.Value, eq.Weight = def.Value, def.Weight
			e = eq
		}
	default:
		return nil, fmt.Errorf("item template %q: unknown kind %q", id, def.Kind)
	}
	e.SetDescription(def.Description)
	e.SetTemplateID(def.ID)
	return e, nil
}

// SpawnMob instantiates a mob template: archetypes bound, equipment slotted,
// granted abilities learned, resources filled to their caps.
func (t *TemplateTable) SpawnMob(id string, races, jobs *ArchetypeTable, f world.Factors) (*world.Mob, error) {
	def := t.mobs[id]
	if def == nil {
		return nil, fmt.Errorf("unknown mob template %q", id)
	}
	m := world.NewMob(def.Keywords, def.Display)
	m.SetDescription(def.Description)
	m.SetTemplateID(def.ID)
	if def.Level > 0 {
		m.Level = def.Level
	}
	m.Gold = def.Gold
	m.RespawnDelay = def.RespawnDelay
	m.RestockRules = def.Restock

	if def.Race != "" {
		m.Race = races.Get(def.Race)
		if m.Race == nil {
			return nil, fmt.Errorf("mob template %q: unknown race %q", id, def.Race)
		}
	}
	if def.Job != "" {
		m.Job = jobs.Get(def.Job)
		if m.Job == nil {
			return nil, fmt.Errorf("mob template %q: unknown job %q", id, def.Job)
		}
	}

	for slotName, itemID := range def.Equipment {
		slot, err := world.ParseSlot(slotName)
		if err != nil {
			return nil, fmt.Errorf("mob template %q: %w", id, err)
		}
		e, err := t.SpawnItem(itemID)
		if err != nil {
			return nil, fmt.Errorf("mob template %q: %w", id, err)
		}
		if err := m.Equip(e, slot); err != nil {
			return nil, fmt.Errorf("mob template %q: equip %s: %w", id, itemID, err)
		}
	}
	for _, itemID := range def.Inventory {
		e, err := t.SpawnItem(itemID)
		if err != nil {
			return nil, fmt.Errorf("mob template %q: %w", id, err)
		}
		if err := m.Add(e); err != nil {
			return nil, fmt.Errorf("mob template %q: carry %s: %w", id, itemID, err)
		}
	}

	// Archetype grants at or below the spawn level are learned by default.
	for _, a := range []*world.Archetype{m.Race, m.Job} {
		for _, abilityID := range a.GrantsAt(m.Level) {
			m.LearnAbility(abilityID)
		}
	}

	m.Health = m.MaxHealth(f)
	m.Mana = m.MaxMana(f)
	return m, nil
}
