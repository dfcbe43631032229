package persist

import (
	"fmt"

	"github.com/jackindisguise/mud3-sub004/internal/world"
)

// DungeonFile is one dungeon package under data/dungeons. Requires names
// the dungeon ids this one links into through gateways; the loader orders
// packages so every requirement loads first.
type DungeonFile struct {
	Dungeon  DungeonHeader `yaml:"dungeon"`
	Requires []string      `yaml:"requires,omitempty"`
	Rooms    []RoomDef     `yaml:"rooms"`
	Spawns   []SpawnDef    `yaml:"spawns,omitempty"`
}

type DungeonHeader struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Layers int    `yaml:"layers"`
}

type RoomDef struct {
	At          [3]int            `yaml:"at"` // x, y, z
	Keywords    string            `yaml:"keywords"`
	Display     string            `yaml:"display"`
	Description string            `yaml:"description,omitempty"`
	Exits       []string          `yaml:"exits,omitempty"`    // names; absent = all
	Gateways    map[string]string `yaml:"gateways,omitempty"` // direction → room ref
}

// SpawnDef places templated entities in a room at load time.
type SpawnDef struct {
	Room  [3]int   `yaml:"room"` // x, y, z
	Mob   string   `yaml:"mob,omitempty"`
	Items []string `yaml:"items,omitempty"`
}

// BuildDungeon realizes the grid and rooms of a dungeon file. Gateways and
// spawns are applied later, after every dungeon is registered.
func BuildDungeon(f *DungeonFile) (*world.Dungeon, error) {
	h := f.Dungeon
	d, err := world.NewDungeon(h.ID, h.Name, h.Width, h.Height, h.Layers)
	if err != nil {
		return nil, err
	}
	for i := range f.Rooms {
		def := &f.Rooms[i]
		r, err := d.CreateRoom(def.At[0], def.At[1], def.At[2], def.Keywords, def.Display)
		if err != nil {
			return nil, err
		}
		r.SetDescription(def.Description)
		if def.Exits == nil {
			r.AllowedExits = world.AllExits
		} else {
			for _, name := range def.Exits {
				dir, ok := world.ParseDirection(name)
				if !ok {
					return nil, fmt.Errorf("dungeon %s: room %v: unknown exit %q", h.ID, def.At, name)
				}
				r.AllowedExits = r.AllowedExits.With(dir)
			}
		}
	}
	return d, nil
}

// ApplyGateways resolves and installs the gateway links of a dungeon file.
// Every target dungeon must already be registered with the world.
func ApplyGateways(w *world.World, f *DungeonFile) error {
	d := w.Dungeon(f.Dungeon.ID)
	if d == nil {
		return fmt.Errorf("dungeon %s not registered", f.Dungeon.ID)
	}
	for i := range f.Rooms {
		def := &f.Rooms[i]
		if len(def.Gateways) == 0 {
			continue
		}
		r := d.RoomAt(def.At[0], def.At[1], def.At[2])
		for name, ref := range def.Gateways {
			dir, ok := world.ParseDirection(name)
			if !ok {
				return fmt.Errorf("dungeon %s: room %v: unknown gateway direction %q", f.Dungeon.ID, def.At, name)
			}
			target, err := w.Resolve(ref)
			if err != nil {
				return fmt.Errorf("dungeon %s: room %v: gateway %s: %w", f.Dungeon.ID, def.At, name, err)
			}
			r.SetGateway(dir, target)
		}
	}
	return nil
}
