package persist

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/jackindisguise/mud3-sub004/internal/data"
	"github.com/jackindisguise/mud3-sub004/internal/world"
)

// Node is the type-tagged on-disk form of one entity. The tag selects the
// deserializer; location is never recorded, the parent restores it on load.
type Node struct {
	Tag         string `yaml:"tag"`
	Keywords    string `yaml:"keywords,omitempty"`
	Display     string `yaml:"display,omitempty"`
	Description string `yaml:"description,omitempty"`
	Template    string `yaml:"template,omitempty"`

	Value     int  `yaml:"value,omitempty"`
	Weight    int  `yaml:"weight,omitempty"`
	Container bool `yaml:"container,omitempty"`
	CapWeight int  `yaml:"cap_weight,omitempty"`
	CapCount  int  `yaml:"cap_count,omitempty"`

	Slot       string           `yaml:"slot,omitempty"`
	Bonus      world.Bonuses    `yaml:"bonus,omitempty"`
	HitType    string           `yaml:"hit_type,omitempty"`
	DamageType world.DamageType `yaml:"damage_type,omitempty"`

	Level      int    `yaml:"level,omitempty"`
	Experience int    `yaml:"experience,omitempty"`
	Race       string `yaml:"race,omitempty"`
	Job        string `yaml:"job,omitempty"`
	Health     int    `yaml:"health,omitempty"`
	Mana       int    `yaml:"mana,omitempty"`
	Exhaustion int    `yaml:"exhaustion,omitempty"`
	Gold       int    `yaml:"gold,omitempty"`

	Equipped map[string]*Node `yaml:"equipped,omitempty"` // slot → node
	Learned  []LearnedNode    `yaml:"learned,omitempty"`

	RespawnDelay int                 `yaml:"respawn_delay,omitempty"`
	Restock      []world.RestockRule `yaml:"restock,omitempty"`

	Contents []*Node `yaml:"contents,omitempty"`
}

// LearnedNode is one learned-ability record.
type LearnedNode struct {
	Ability string `yaml:"ability"`
	Uses    int    `yaml:"uses"`
	Percent int    `yaml:"percent"`
}

// Serialize walks an entity's containment tree into a node tree.
func Serialize(e world.Entity) *Node {
	n := &Node{
		Tag:         string(e.Kind()),
		Keywords:    e.KeywordString(),
		Display:     e.Display(),
		Description: e.Description(),
		Template:    e.TemplateID(),
	}
	switch v := e.(type) {
	case *world.Item:
		serializeItem(n, v)
	case *world.Equipment:
		serializeItem(n, &v.Item)
		serializeWearable(n, v.EquipSlot, v.Bonus)
	case *world.Weapon:
		serializeItem(n, &v.Item)
		serializeWearable(n, v.EquipSlot, v.Bonus)
		n.HitType = v.HitType
		n.DamageType = v.DamageType
	case *world.Armor:
		serializeItem(n, &v.Item)
		serializeWearable(n, v.EquipSlot, v.Bonus)
	case *world.Mob:
		serializeMob(n, v)
	}
	for _, child := range e.Contents() {
		n.Contents = append(n.Contents, Serialize(child))
	}
	return n
}

func serializeItem(n *Node, it *world.Item) {
	n.Value, n.Weight = it.Value, it.Weight
	n.Container, n.CapWeight, n.CapCount = it.Container, it.CapWeight, it.CapCount
}

func serializeWearable(n *Node, slot world.Slot, bonus world.Bonuses) {
	n.Slot = string(slot)
	n.Bonus = bonus
}

func serializeMob(n *Node, m *world.Mob) {
	n.Level, n.Experience = m.Level, m.Experience
	n.Health, n.Mana, n.Exhaustion = m.Health, m.Mana, m.Exhaustion
	n.Gold = m.Gold
	if m.Race != nil {
		n.Race = m.Race.ID
	}
	if m.Job != nil {
		n.Job = m.Job.ID
	}
	m.EachEquipped(func(s world.Slot, w world.Wearable) {
		if n.Equipped == nil {
			n.Equipped = make(map[string]*Node)
		}
		n.Equipped[string(s)] = Serialize(w)
	})
	m.EachLearned(func(la *world.LearnedAbility) {
		n.Learned = append(n.Learned, LearnedNode{
			Ability: la.AbilityID,
			Uses:    la.Uses,
			Percent: la.Percent,
		})
	})
	n.RespawnDelay = m.RespawnDelay
	n.Restock = m.RestockRules
}

// Hydrator rebuilds entities from node trees. Archetype tables rebind
// race/job references on mobs.
type Hydrator struct {
	Races *data.ArchetypeTable
	Jobs  *data.ArchetypeTable
	Log   *zap.Logger
}

// Deserialize rebuilds one entity from its node. Children hydrate first;
// a child with an unknown tag is logged and skipped, its siblings survive.
func (h *Hydrator) Deserialize(n *Node) (world.Entity, error) {
	var e world.Entity
	switch world.Kind(n.Tag) {
	case world.KindItem:
		it := world.NewItem(n.Keywords, n.Display)
		hydrateItem(it, n)
		e = it
	case world.KindProp:
		e = world.NewProp(n.Keywords, n.Display)
	case world.KindEquipment:
		eq := world.NewEquipment(n.Keywords, n.Display, world.Slot(n.Slot))
		hydrateItem(&eq.Item, n)
		eq.Bonus = n.Bonus
		e = eq
	case world.KindWeapon:
		w := world.NewWeapon(n.Keywords, n.Display)
		hydrateItem(&w.Item, n)
		w.Bonus = n.Bonus
		if n.HitType != "" {
			w.HitType = n.HitType
		}
		w.DamageType = n.DamageType
		e = w
	case world.KindArmor:
		a := world.NewArmor(n.Keywords, n.Display, world.Slot(n.Slot))
		hydrateItem(&a.Item, n)
		a.Bonus = n.Bonus
		e = a
	case world.KindMob:
		m, err := h.hydrateMob(n)
		if err != nil {
			return nil, err
		}
		e = m
	default:
		return nil, fmt.Errorf("unknown entity tag %q", n.Tag)
	}
	e.SetDescription(n.Description)
	e.SetTemplateID(n.Template)
	h.attachChildren(e, n)
	return e, nil
}

func hydrateItem(it *world.Item, n *Node) {
	it.Value, it.Weight = n.Value, n.Weight
	it.Container, it.CapWeight, it.CapCount = n.Container, n.CapWeight, n.CapCount
}

func (h *Hydrator) hydrateMob(n *Node) (*world.Mob, error) {
	m := world.NewMob(n.Keywords, n.Display)
	m.Level, m.Experience = n.Level, n.Experience
	m.Health, m.Mana, m.Exhaustion = n.Health, n.Mana, n.Exhaustion
	m.Gold = n.Gold
	m.RespawnDelay = n.RespawnDelay
	m.RestockRules = n.Restock
	if n.Race != "" {
		m.Race = h.Races.Get(n.Race)
		if m.Race == nil {
			return nil, fmt.Errorf("mob %q: unknown race %q", n.Display, n.Race)
		}
	}
	if n.Job != "" {
		m.Job = h.Jobs.Get(n.Job)
		if m.Job == nil {
			return nil, fmt.Errorf("mob %q: unknown job %q", n.Display, n.Job)
		}
	}
	for slotName, en := range n.Equipped {
		item, err := h.Deserialize(en)
		if err != nil {
			h.Log.Error("dropping equipped item", zap.String("slot", slotName), zap.Error(err))
			continue
		}
		if err := m.Equip(item, world.Slot(slotName)); err != nil {
			h.Log.Error("dropping equipped item", zap.String("slot", slotName), zap.Error(err))
		}
	}
	for _, ln := range n.Learned {
		m.LearnAbility(ln.Ability)
		la := m.Learned(ln.Ability)
		la.Uses, la.Percent = ln.Uses, ln.Percent
	}
	return m, nil
}

// attachChildren hydrates and re-parents each child node; a faulty child is
// logged and skipped.
func (h *Hydrator) attachChildren(parent world.Entity, n *Node) {
	for _, cn := range n.Contents {
		child, err := h.Deserialize(cn)
		if err != nil {
			h.Log.Error("dropping entity", zap.String("parent", parent.Display()), zap.Error(err))
			continue
		}
		if err := parent.Add(child); err != nil {
			h.Log.Error("dropping entity", zap.String("parent", parent.Display()), zap.Error(err))
		}
	}
}
