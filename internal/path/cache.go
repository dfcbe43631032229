package path

import "github.com/jackindisguise/mud3-sub004/internal/world"

// Cache memoizes default-cost, default-filter routes keyed by
// (source reference, goal reference). Storing a path also stores every
// suffix, so later requests from any intermediate room hit. Any topology
// change invalidates the whole cache lazily via the world's version counter.
type Cache struct {
	world   *world.World
	version uint64
	entries map[cacheKey]*Path
}

type cacheKey struct {
	src string
	dst string
}

// NewCache creates a cache bound to one world.
func NewCache(w *world.World) *Cache {
	return &Cache{
		world:   w,
		version: w.TopologyVersion(),
		entries: make(map[cacheKey]*Path),
	}
}

// Find returns the route from start to goal, consulting the cache first.
// Custom cost or filter functions bypass the cache entirely.
func (c *Cache) Find(start, goal *world.Room, cost CostFunc, filter FilterFunc) *Path {
	if cost != nil || filter != nil {
		return FindPathAcross(c.world, start, goal, cost, filter, nil)
	}
	c.checkVersion()

	key := cacheKey{src: start.Ref(), dst: goal.Ref()}
	if p, ok := c.entries[key]; ok {
		return p
	}
	p := FindPathAcross(c.world, start, goal, nil, nil, nil)
	if p != nil {
		c.store(p)
	}
	return p
}

// store records the path and all of its suffixes.
func (c *Cache) store(p *Path) {
	dst := p.Rooms[len(p.Rooms)-1].Ref()
	for i := range p.Rooms {
		suffix := &Path{
			Rooms:      p.Rooms[i:],
			Directions: p.Directions[i:],
			Cost:       len(p.Directions[i:]),
		}
		c.entries[cacheKey{src: p.Rooms[i].Ref(), dst: dst}] = suffix
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.checkVersion()
	return len(c.entries)
}

func (c *Cache) checkVersion() {
	if v := c.world.TopologyVersion(); v != c.version {
		c.entries = make(map[cacheKey]*Path)
		c.version = v
	}
}
