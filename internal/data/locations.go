package data

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jackindisguise/mud3-sub004/internal/world"
)

type locationsFile struct {
	Locations world.Locations `yaml:"locations"`
}

// LoadLocations reads the well-known room references.
func LoadLocations(path string) (world.Locations, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return world.Locations{}, fmt.Errorf("locations: read %s: %w", path, err)
	}
	var f locationsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return world.Locations{}, fmt.Errorf("locations: parse %s: %w", path, err)
	}
	return f.Locations, nil
}

type reservedFile struct {
	Names []string `yaml:"reserved"`
}

// ReservedNames is the set of usernames registration refuses.
type ReservedNames struct {
	names map[string]bool
}

// Contains checks a name case-insensitively.
func (r *ReservedNames) Contains(name string) bool {
	return r.names[strings.ToLower(name)]
}

// Count returns the number of reserved names.
func (r *ReservedNames) Count() int { return len(r.names) }

// LoadReservedNames reads the reserved-name set. A missing file yields an
// empty set.
func LoadReservedNames(path string) (*ReservedNames, error) {
	r := &ReservedNames{names: make(map[string]bool)}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reserved: read %s: %w", path, err)
	}
	var f reservedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("reserved: parse %s: %w", path, err)
	}
	for _, n := range f.Names {
		r.names[strings.ToLower(n)] = true
	}
	return r, nil
}
