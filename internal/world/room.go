package world

import (
	"fmt"
	"regexp"
	"strconv"
)

// Room is an entity positioned on a dungeon grid. AllowedExits is the
// bitmask of directions a mob may leave through; gateways override grid
// adjacency per direction and may cross dungeons.
type Room struct {
	Base

	dungeon *Dungeon
	X, Y, Z int

	AllowedExits ExitMask
	gateways     map[Direction]*Room

	// Movement hooks, fired by Step. Either may be nil.
	OnExit  func(m *Mob, d Direction)
	OnEnter func(m *Mob, d Direction)
}

func (r *Room) Add(child Entity) error { return addChild(r, child) }
func (r *Room) Remove(child Entity)    { removeChild(r, child) }

// Dungeon returns the owning dungeon.
func (r *Room) Dungeon() *Dungeon { return r.dungeon }

// Ref is the globally unique room reference "@<dungeonId>{x,y,z}".
func (r *Room) Ref() string {
	return fmt.Sprintf("@%s{%d,%d,%d}", r.dungeon.ID, r.X, r.Y, r.Z)
}

// SetGateway installs an inter-dungeon gateway link on a direction.
// A nil target removes the link.
func (r *Room) SetGateway(d Direction, target *Room) {
	if target == nil {
		delete(r.gateways, d)
	} else {
		if r.gateways == nil {
			r.gateways = make(map[Direction]*Room)
		}
		r.gateways[d] = target
	}
	if r.dungeon != nil && r.dungeon.world != nil {
		r.dungeon.world.topologyChanged()
	}
}

// Gateway returns the gateway target on a direction, or nil.
func (r *Room) Gateway(d Direction) *Room { return r.gateways[d] }

// Gateways returns the gateway map; callers must not mutate it.
func (r *Room) Gateways() map[Direction]*Room { return r.gateways }

// Neighbor resolves the room one step in a direction: the gateway target if
// one exists, else the adjacent grid cell when the exit mask permits the
// direction and a room exists there, else nil.
func (r *Room) Neighbor(d Direction) *Room {
	if gw := r.gateways[d]; gw != nil {
		return gw
	}
	if !r.AllowedExits.Has(d) {
		return nil
	}
	dx, dy, dz := d.Delta()
	return r.dungeon.RoomAt(r.X+dx, r.Y+dy, r.Z+dz)
}

// PermitsEntry reports whether a mob arriving from direction d (i.e. moving
// d from the neighbor) may enter. Entry is permitted unless the room forbids
// the reverse exit and no gateway points back; gateway arrivals are always
// permitted.
func (r *Room) PermitsEntry(from *Room, d Direction) bool {
	if from != nil && from.Gateway(d) == r {
		return true
	}
	return r.AllowedExits.Has(d.Reverse())
}

// Mobs returns the mobs standing in the room.
func (r *Room) Mobs() []*Mob {
	var out []*Mob
	for _, e := range r.contents {
		if m, ok := e.(*Mob); ok {
			out = append(out, m)
		}
	}
	return out
}

// Exits lists directions with a resolvable neighbor, in direction order.
func (r *Room) Exits() []Direction {
	var out []Direction
	for _, d := range Directions() {
		if r.Neighbor(d) != nil {
			out = append(out, d)
		}
	}
	return out
}

var refPattern = regexp.MustCompile(`^@([a-z0-9_-]+)\{(-?\d+),(-?\d+),(-?\d+)\}$`)

// ParseRef splits a room reference into dungeon id and coordinates.
func ParseRef(ref string) (dungeonID string, x, y, z int, err error) {
	m := refPattern.FindStringSubmatch(ref)
	if m == nil {
		return "", 0, 0, 0, fmt.Errorf("malformed room reference %q", ref)
	}
	x, _ = strconv.Atoi(m[2])
	y, _ = strconv.Atoi(m[3])
	z, _ = strconv.Atoi(m[4])
	return m[1], x, y, z, nil
}

// FormatRef builds a room reference string.
func FormatRef(dungeonID string, x, y, z int) string {
	return fmt.Sprintf("@%s{%d,%d,%d}", dungeonID, x, y, z)
}
