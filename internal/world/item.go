package world

import "fmt"

// Slot is an equipment slot.
type Slot string

const (
	SlotHead      Slot = "head"
	SlotNeck      Slot = "neck"
	SlotShoulders Slot = "shoulders"
	SlotChest     Slot = "chest"
	SlotHands     Slot = "hands"
	SlotFinger    Slot = "finger"
	SlotWaist     Slot = "waist"
	SlotLegs      Slot = "legs"
	SlotFeet      Slot = "feet"
	SlotMainHand  Slot = "main-hand"
	SlotOffHand   Slot = "off-hand"
)

// Slots lists the eleven equipment slots in display order.
var Slots = []Slot{
	SlotHead, SlotNeck, SlotShoulders, SlotChest, SlotHands, SlotFinger,
	SlotWaist, SlotLegs, SlotFeet, SlotMainHand, SlotOffHand,
}

// ParseSlot validates a slot name.
func ParseSlot(s string) (Slot, error) {
	for _, sl := range Slots {
		if string(sl) == s {
			return sl, nil
		}
	}
	return "", fmt.Errorf("unknown equipment slot %q", s)
}

// Item is a movable entity with monetary value and weight. An item flagged as
// container may hold other entities up to its weight/count capacity.
type Item struct {
	Base
	Value  int
	Weight int

	Container bool
	CapWeight int // 0 = unlimited
	CapCount  int // 0 = unlimited
}

// NewItem creates a bare item.
func NewItem(keywords, display string) *Item {
	return &Item{Base: NewBase(KindItem, keywords, display)}
}

func (i *Item) Add(child Entity) error { return addChild(i, child) }
func (i *Item) Remove(child Entity)    { removeChild(i, child) }

// TotalWeight is the item's own weight plus the weight of all contents.
func (i *Item) TotalWeight() int {
	w := i.Weight
	for _, c := range i.contents {
		if ci, ok := c.(interface{ TotalWeight() int }); ok {
			w += ci.TotalWeight()
		}
	}
	return w
}

// containerCheck gates adds on the container flag, then capacity. The method
// is promoted to every type embedding Item, so equipment containers gate
// identically to plain ones.
func (i *Item) containerCheck(child Entity) error {
	if !i.Container {
		return ErrNotContainer
	}
	return i.checkCapacity(child)
}

// checkCapacity rejects an add that would exceed the container's limits.
func (i *Item) checkCapacity(child Entity) error {
	if i.CapCount > 0 && len(i.contents)+1 > i.CapCount {
		return ErrContainerFull
	}
	if i.CapWeight > 0 {
		w := 0
		for _, c := range i.contents {
			if ci, ok := c.(interface{ TotalWeight() int }); ok {
				w += ci.TotalWeight()
			}
		}
		cw := 0
		if ci, ok := child.(interface{ TotalWeight() int }); ok {
			cw = ci.TotalWeight()
		}
		if w+cw > i.CapWeight {
			return ErrContainerFull
		}
	}
	return nil
}

// Prop is fixed decor: visible in a room but never takeable.
type Prop struct {
	Base
}

// NewProp creates a prop.
func NewProp(keywords, display string) *Prop {
	return &Prop{Base: NewBase(KindProp, keywords, display)}
}

func (p *Prop) Add(child Entity) error { return addChild(p, child) }
func (p *Prop) Remove(child Entity)    { removeChild(p, child) }

// Wearable is anything that can occupy an equipment slot.
type Wearable interface {
	Entity
	Slot() Slot
	Bonuses() Bonuses
}

// Equipment occupies one of the eleven slots and carries additive attribute
// bonuses. Bonus recomputation is on demand; nothing is cached on the mob.
type Equipment struct {
	Item
	EquipSlot Slot
	Bonus     Bonuses
}

// NewEquipment creates an equipment piece for the given slot.
func NewEquipment(keywords, display string, slot Slot) *Equipment {
	e := &Equipment{Item: Item{Base: NewBase(KindEquipment, keywords, display)}, EquipSlot: slot}
	return e
}

func (e *Equipment) Slot() Slot       { return e.EquipSlot }
func (e *Equipment) Bonuses() Bonuses { return e.Bonus }

// Weapon is equipment that adds attack power and carries a named hit type
// ("slash", "pierce", ...) used for combat narration and damage routing.
type Weapon struct {
	Equipment
	HitType    string
	DamageType DamageType
}

// NewWeapon creates a main-hand weapon.
func NewWeapon(keywords, display string) *Weapon {
	w := &Weapon{Equipment: Equipment{
		Item:      Item{Base: NewBase(KindWeapon, keywords, display)},
		EquipSlot: SlotMainHand,
	}}
	w.HitType = "hit"
	return w
}

// Armor is equipment that adds defense.
type Armor struct {
	Equipment
}

// NewArmor creates an armor piece for the given slot.
func NewArmor(keywords, display string, slot Slot) *Armor {
	return &Armor{Equipment: Equipment{
		Item:      Item{Base: NewBase(KindArmor, keywords, display)},
		EquipSlot: slot,
	}}
}
