// Package data loads the YAML content tables: abilities, archetypes,
// helpfiles, templates, locations, and the reserved-name set. Tables are
// populated once at boot and treated as read-only afterwards.
package data

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jackindisguise/mud3-sub004/internal/world"
)

// AbilityDef is the on-disk shape of one ability.
type AbilityDef struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Curve       [4]int `yaml:"curve"` // use counts at 25/50/75/100 percent
}

type abilityListFile struct {
	Abilities []AbilityDef `yaml:"abilities"`
}

// AbilityTable holds all abilities indexed by id.
type AbilityTable struct {
	byID map[string]*world.Ability
}

// Get returns an ability by id, or nil if not found.
func (t *AbilityTable) Get(id string) *world.Ability {
	return t.byID[id]
}

// Count returns the number of loaded abilities.
func (t *AbilityTable) Count() int {
	return len(t.byID)
}

// Each visits abilities in unspecified order.
func (t *AbilityTable) Each(fn func(*world.Ability)) {
	for _, a := range t.byID {
		fn(a)
	}
}

// LoadAbilityTable loads every abilities file in a directory. Duplicate ids
// across files are an error.
func LoadAbilityTable(dir string) (*AbilityTable, error) {
	t := &AbilityTable{byID: make(map[string]*world.Ability)}
	err := eachYAMLFile(dir, func(path string) error {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("ability: read %s: %w", path, err)
		}
		var f abilityListFile
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return fmt.Errorf("ability: parse %s: %w", path, err)
		}
		for _, def := range f.Abilities {
			if def.ID == "" {
				return fmt.Errorf("ability: %s: missing id", path)
			}
			if _, dup := t.byID[def.ID]; dup {
				return fmt.Errorf("ability: duplicate id %q in %s", def.ID, path)
			}
			t.byID[def.ID] = world.NewAbility(def.ID, def.Name, def.Description, def.Curve)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// eachYAMLFile visits *.yaml files in a directory in name order. A missing
// directory is treated as empty.
func eachYAMLFile(dir string, fn func(path string) error) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		if err := fn(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
