package world

import (
	"fmt"
	"sync/atomic"
)

// Locations names the well-known rooms every world carries.
type Locations struct {
	Start     string `yaml:"start"`
	Recall    string `yaml:"recall"`
	Graveyard string `yaml:"graveyard"`
}

// World owns all dungeons and the room index. A single logical scheduler
// (the game loop) performs all mutations; readers in other goroutines only
// observe the topology version counter.
type World struct {
	dungeons map[string]*Dungeon
	order    []string // dungeon ids in load order
	roomsRef map[string]*Room

	Locations Locations
	Factors   Factors

	topoVersion atomic.Uint64
}

// New creates an empty world with default conversion factors.
func New() *World {
	return &World{
		dungeons: make(map[string]*Dungeon),
		roomsRef: make(map[string]*Room),
		Factors:  DefaultFactors,
	}
}

// AddDungeon registers a dungeon and indexes its rooms. Duplicate ids are an
// error; registries enforce uniqueness.
func (w *World) AddDungeon(d *Dungeon) error {
	if _, ok := w.dungeons[d.ID]; ok {
		return fmt.Errorf("duplicate dungeon id %q", d.ID)
	}
	d.world = w
	w.dungeons[d.ID] = d
	w.order = append(w.order, d.ID)
	d.EachRoom(w.indexRoom)
	w.topologyChanged()
	return nil
}

// RemoveDungeon unloads a dungeon and drops its rooms from the index.
func (w *World) RemoveDungeon(id string) {
	d, ok := w.dungeons[id]
	if !ok {
		return
	}
	d.EachRoom(w.unindexRoom)
	d.world = nil
	delete(w.dungeons, id)
	for i, oid := range w.order {
		if oid == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	w.topologyChanged()
}

// Dungeon returns a dungeon by id, or nil.
func (w *World) Dungeon(id string) *Dungeon { return w.dungeons[id] }

// EachDungeon visits dungeons in load order.
func (w *World) EachDungeon(fn func(*Dungeon)) {
	for _, id := range w.order {
		fn(w.dungeons[id])
	}
}

// DungeonCount returns the number of loaded dungeons.
func (w *World) DungeonCount() int { return len(w.dungeons) }

// Resolve looks a room up by its "@<dungeonId>{x,y,z}" reference.
func (w *World) Resolve(ref string) (*Room, error) {
	if r, ok := w.roomsRef[ref]; ok {
		return r, nil
	}
	// Validate the shape so the caller can tell "malformed" from "absent".
	if _, _, _, _, err := ParseRef(ref); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("no room at reference %s", ref)
}

// StartRoom resolves the configured start location.
func (w *World) StartRoom() (*Room, error) { return w.Resolve(w.Locations.Start) }

// RecallRoom resolves the configured recall location.
func (w *World) RecallRoom() (*Room, error) { return w.Resolve(w.Locations.Recall) }

// GraveyardRoom resolves the configured graveyard location.
func (w *World) GraveyardRoom() (*Room, error) { return w.Resolve(w.Locations.Graveyard) }

// TopologyVersion increments on any room/gateway/dungeon change. The path
// cache compares it to invalidate lazily.
func (w *World) TopologyVersion() uint64 { return w.topoVersion.Load() }

func (w *World) topologyChanged() { w.topoVersion.Add(1) }

func (w *World) indexRoom(r *Room)   { w.roomsRef[r.Ref()] = r }
func (w *World) unindexRoom(r *Room) { delete(w.roomsRef, r.Ref()) }

// AllMobs visits every mob placed in any room.
func (w *World) AllMobs(fn func(*Mob)) {
	for _, id := range w.order {
		w.dungeons[id].EachRoom(func(r *Room) {
			for _, m := range r.Mobs() {
				fn(m)
			}
		})
	}
}

// ClearTargetsOn removes every combat-target reference pointing at the mob.
// Called when a mob dies or leaves the world so no referrer keeps a stale
// weak reference.
func (w *World) ClearTargetsOn(dead *Mob) {
	w.AllMobs(func(m *Mob) {
		if m.Target == dead {
			m.Target = nil
		}
	})
}
