package world

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Kind tags the concrete type of an entity.
type Kind string

const (
	KindRoom      Kind = "Room"
	KindMob       Kind = "Mob"
	KindItem      Kind = "Item"
	KindProp      Kind = "Prop"
	KindEquipment Kind = "Equipment"
	KindWeapon    Kind = "Weapon"
	KindArmor     Kind = "Armor"
)

var (
	// ErrContainmentCycle is returned when adding a child would make an
	// entity its own ancestor.
	ErrContainmentCycle = errors.New("containment cycle")
	// ErrNotContainer is returned when adding an item to an item that is
	// not flagged as a container.
	ErrNotContainer = errors.New("not a container")
	// ErrContainerFull is returned when a container's weight or count
	// capacity would be exceeded.
	ErrContainerFull = errors.New("container full")
)

// Entity is the polymorphic base of every world object. Containment is the
// only ownership graph: Contents of parent P holds child C iff C.Location()
// == P, and re-parenting through Add keeps both sides in step.
type Entity interface {
	ID() uuid.UUID
	Kind() Kind
	Keywords() []string
	KeywordString() string
	Display() string
	Description() string
	SetDescription(string)
	TemplateID() string
	SetTemplateID(string)

	Location() Entity
	Contents() []Entity
	Add(child Entity) error
	Remove(child Entity)

	// MatchKeyword reports whether any keyword has the given prefix,
	// case-insensitive.
	MatchKeyword(prefix string) bool

	base() *Base
}

// Base carries the fields shared by every entity. Concrete entity types embed
// it. Accessed only from the world lane.
type Base struct {
	id         uuid.UUID
	kind       Kind
	keywords   []string
	display    string
	desc       string
	templateID string

	location Entity
	contents []Entity
}

// NewBase initializes the shared entity fields. keywords is the
// whitespace-separated keyword list used for input matching.
func NewBase(kind Kind, keywords, display string) Base {
	return Base{
		id:       uuid.New(),
		kind:     kind,
		keywords: strings.Fields(strings.ToLower(keywords)),
		display:  display,
	}
}

func (b *Base) ID() uuid.UUID       { return b.id }
func (b *Base) Kind() Kind          { return b.kind }
func (b *Base) Keywords() []string  { return b.keywords }
func (b *Base) Display() string     { return b.display }
func (b *Base) Description() string { return b.desc }
func (b *Base) TemplateID() string  { return b.templateID }
func (b *Base) Location() Entity    { return b.location }
func (b *Base) Contents() []Entity  { return b.contents }
func (b *Base) base() *Base         { return b }

// SetDisplay updates the display name.
func (b *Base) SetDisplay(s string) { b.display = s }

// SetDescription updates the long description.
func (b *Base) SetDescription(s string) { b.desc = s }

// SetKeywords replaces the keyword list from a whitespace-separated string.
func (b *Base) SetKeywords(s string) { b.keywords = strings.Fields(strings.ToLower(s)) }

// SetTemplateID records the template this instance was created from.
func (b *Base) SetTemplateID(id string) { b.templateID = id }

// KeywordString returns the keyword list joined by spaces, for serialization.
func (b *Base) KeywordString() string { return strings.Join(b.keywords, " ") }

func (b *Base) MatchKeyword(prefix string) bool {
	p := strings.ToLower(prefix)
	if p == "" {
		return false
	}
	for _, kw := range b.keywords {
		if strings.HasPrefix(kw, p) {
			return true
		}
	}
	return false
}

// self returns the Entity this Base belongs to. Add must mutate the concrete
// entity's contents but set the child's location to the concrete parent, so
// every Base records its owner once at construction of the concrete type.
// Rather than store a back-pointer, Add is invoked through the interface and
// receives the parent implicitly; see addChild below.

// addChild implements the containment invariant for a concrete parent entity.
// It refuses cycles, enforces container capacity, detaches the child from any
// prior parent, then links both sides.
func addChild(parent, child Entity) error {
	if parent == nil || child == nil || parent == child {
		return ErrContainmentCycle
	}
	// Refuse if parent is reachable from child downward (child would become
	// its own ancestor).
	for p := parent; p != nil; p = p.Location() {
		if p == child {
			return ErrContainmentCycle
		}
	}
	// Matched by interface, not concrete type, so anything embedding Item
	// (equipment included) carries the container invariant with it.
	if it, ok := parent.(interface{ containerCheck(Entity) error }); ok {
		if err := it.containerCheck(child); err != nil {
			return err
		}
	}
	if old := child.Location(); old != nil {
		old.Remove(child)
	}
	pb := parent.base()
	pb.contents = append(pb.contents, child)
	child.base().location = parent
	return nil
}

// removeChild detaches child from parent, clearing both sides.
func removeChild(parent, child Entity) {
	pb := parent.base()
	for i, c := range pb.contents {
		if c == child {
			pb.contents = append(pb.contents[:i], pb.contents[i+1:]...)
			child.base().location = nil
			return
		}
	}
}

// FindByKeyword searches an entity list for the first keyword-prefix match,
// most recently added first (last added wins ties). filter may be nil.
func FindByKeyword(contents []Entity, prefix string, filter func(Entity) bool) Entity {
	for i := len(contents) - 1; i >= 0; i-- {
		e := contents[i]
		if filter != nil && !filter(e) {
			continue
		}
		if e.MatchKeyword(prefix) {
			return e
		}
	}
	return nil
}
