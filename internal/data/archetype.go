package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jackindisguise/mud3-sub004/internal/world"
)

// ArchetypeDef is the on-disk shape of one race or job.
type ArchetypeDef struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`

	Start     world.PrimaryAttribs `yaml:"start"`
	Growth    world.PrimaryAttribs `yaml:"growth"`
	StartCaps world.ResourceCaps   `yaml:"start_caps"`
	CapGrowth world.ResourceCaps   `yaml:"cap_growth"`

	Abilities []world.AbilityGrant `yaml:"abilities,omitempty"`
	Passives  []string             `yaml:"passives,omitempty"`

	Relations map[world.DamageType]world.Relation `yaml:"relations,omitempty"`
}

type archetypeListFile struct {
	Archetypes []ArchetypeDef `yaml:"archetypes"`
}

// ArchetypeTable holds races or jobs indexed by id.
type ArchetypeTable struct {
	kind world.ArchetypeKind
	byID map[string]*world.Archetype
}

// Get returns an archetype by id, or nil if not found.
func (t *ArchetypeTable) Get(id string) *world.Archetype {
	return t.byID[id]
}

// Count returns the number of loaded archetypes.
func (t *ArchetypeTable) Count() int {
	return len(t.byID)
}

// Each visits archetypes in unspecified order.
func (t *ArchetypeTable) Each(fn func(*world.Archetype)) {
	for _, a := range t.byID {
		fn(a)
	}
}

// LoadArchetypeTable loads every archetype file in a directory as the given
// kind (races and jobs live in separate subdirectories).
func LoadArchetypeTable(dir string, kind world.ArchetypeKind) (*ArchetypeTable, error) {
	t := &ArchetypeTable{kind: kind, byID: make(map[string]*world.Archetype)}
	err := eachYAMLFile(dir, func(path string) error {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("archetype: read %s: %w", path, err)
		}
		var f archetypeListFile
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return fmt.Errorf("archetype: parse %s: %w", path, err)
		}
		for _, def := range f.Archetypes {
			if def.ID == "" {
				return fmt.Errorf("archetype: %s: missing id", path)
			}
			if _, dup := t.byID[def.ID]; dup {
				return fmt.Errorf("archetype: duplicate id %q in %s", def.ID, path)
			}
			t.byID[def.ID] = &world.Archetype{
				Kind:      kind,
				ID:        def.ID,
				Name:      def.Name,
				Start:     def.Start,
				Growth:    def.Growth,
				StartCaps: def.StartCaps,
				CapGrowth: def.CapGrowth,
				Abilities: def.Abilities,
				Passives:  def.Passives,
				Relations: def.Relations,
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}
