package world

import "fmt"

// Dungeon is a rectangular volume of rooms addressable by coordinates.
// Coordinates run 0..Width-1, 0..Height-1, 0..Layers-1; not every cell
// holds a room.
type Dungeon struct {
	ID     string
	Name   string
	Width  int
	Height int
	Layers int

	world *World
	rooms []*Room // index = (z*Height+y)*Width + x; nil = no room
}

// NewDungeon allocates an empty dungeon volume.
func NewDungeon(id, name string, width, height, layers int) (*Dungeon, error) {
	if width < 1 || height < 1 || layers < 1 {
		return nil, fmt.Errorf("dungeon %s: invalid size %dx%dx%d", id, width, height, layers)
	}
	return &Dungeon{
		ID:     id,
		Name:   name,
		Width:  width,
		Height: height,
		Layers: layers,
		rooms:  make([]*Room, width*height*layers),
	}, nil
}

// World returns the owning world, or nil before registration.
func (d *Dungeon) World() *World { return d.world }

func (d *Dungeon) index(x, y, z int) (int, bool) {
	if x < 0 || x >= d.Width || y < 0 || y >= d.Height || z < 0 || z >= d.Layers {
		return 0, false
	}
	return (z*d.Height+y)*d.Width + x, true
}

// RoomAt returns the room at grid coordinates, or nil.
func (d *Dungeon) RoomAt(x, y, z int) *Room {
	i, ok := d.index(x, y, z)
	if !ok {
		return nil
	}
	return d.rooms[i]
}

// CreateRoom places a new room at the coordinates. Creating over an existing
// room is an error; room creation happens when the dungeon loads.
func (d *Dungeon) CreateRoom(x, y, z int, keywords, display string) (*Room, error) {
	i, ok := d.index(x, y, z)
	if !ok {
		return nil, fmt.Errorf("dungeon %s: coordinates (%d,%d,%d) out of bounds", d.ID, x, y, z)
	}
	if d.rooms[i] != nil {
		return nil, fmt.Errorf("dungeon %s: room already exists at (%d,%d,%d)", d.ID, x, y, z)
	}
	r := &Room{
		Base:    NewBase(KindRoom, keywords, display),
		dungeon: d,
		X:       x, Y: y, Z: z,
	}
	d.rooms[i] = r
	if d.world != nil {
		d.world.indexRoom(r)
		d.world.topologyChanged()
	}
	return r, nil
}

// RemoveRoom deletes the room at the coordinates, if any.
func (d *Dungeon) RemoveRoom(x, y, z int) {
	i, ok := d.index(x, y, z)
	if !ok || d.rooms[i] == nil {
		return
	}
	r := d.rooms[i]
	d.rooms[i] = nil
	if d.world != nil {
		d.world.unindexRoom(r)
		d.world.topologyChanged()
	}
}

// EachRoom visits every room in the dungeon in layer-major order.
func (d *Dungeon) EachRoom(fn func(*Room)) {
	for _, r := range d.rooms {
		if r != nil {
			fn(r)
		}
	}
}

// RoomCount returns the number of placed rooms.
func (d *Dungeon) RoomCount() int {
	n := 0
	for _, r := range d.rooms {
		if r != nil {
			n++
		}
	}
	return n
}

// GatewayRooms lists rooms carrying at least one gateway link, with the
// dungeons they lead to. Used by cross-dungeon path-finding.
func (d *Dungeon) GatewayRooms() []*Room {
	var out []*Room
	for _, r := range d.rooms {
		if r != nil && len(r.gateways) > 0 {
			out = append(out, r)
		}
	}
	return out
}
