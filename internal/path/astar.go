// Package path implements room-graph path-finding: A* within a dungeon,
// meta-graph stitching across gateway links, and a suffix cache invalidated
// by world topology changes.
package path

import (
	"container/heap"

	"github.com/jackindisguise/mud3-sub004/internal/world"
)

// CostFunc weights one edge. The default is uniform cost 1.
type CostFunc func(from, to *world.Room) int

// FilterFunc vetoes rooms from consideration. The default admits everything.
type FilterFunc func(r *world.Room) bool

// Path is one found route. Directions[i] leads from Rooms[i] to Rooms[i+1];
// Cost is the summed edge cost.
type Path struct {
	Rooms      []*world.Room
	Directions []world.Direction
	Cost       int
}

// Len returns the number of steps.
func (p *Path) Len() int { return len(p.Directions) }

func defaultCost(from, to *world.Room) int { return 1 }

// heuristic is 3-D Manhattan distance within one dungeon; rooms in different
// dungeons get 0, keeping the estimate admissible across gateways.
func heuristic(a, b *world.Room) int {
	if a.Dungeon() != b.Dungeon() {
		return 0
	}
	return abs(a.X-b.X) + abs(a.Y-b.Y) + abs(a.Z-b.Z)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

type searchNode struct {
	room  *world.Room
	g     int // cost from start
	f     int // g + heuristic
	index int
}

type nodeHeap []*searchNode

func (h nodeHeap) Len() int            { return len(h) }
func (h nodeHeap) Less(i, j int) bool  { return h[i].f < h[j].f }
func (h nodeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *nodeHeap) Push(x any)         { n := x.(*searchNode); n.index = len(*h); *h = append(*h, n) }
func (h *nodeHeap) Pop() any           { old := *h; n := old[len(old)-1]; *h = old[:len(old)-1]; return n }

type cameFrom struct {
	room *world.Room
	dir  world.Direction
}

// FindPath runs A* from start to goal over the room graph. Neighbor discovery
// goes through Room.Neighbor, so gateway links count as single-step edges.
// Nil cost and filter select the defaults. Returns nil when unreachable.
func FindPath(start, goal *world.Room, cost CostFunc, filter FilterFunc) *Path {
	if start == nil || goal == nil {
		return nil
	}
	if start == goal {
		return &Path{Rooms: []*world.Room{start}}
	}
	if cost == nil {
		cost = defaultCost
	}

	open := &nodeHeap{}
	heap.Init(open)
	nodes := map[*world.Room]*searchNode{}
	prev := map[*world.Room]cameFrom{}
	closed := map[*world.Room]bool{}

	startNode := &searchNode{room: start, g: 0, f: heuristic(start, goal)}
	nodes[start] = startNode
	heap.Push(open, startNode)

	for open.Len() > 0 {
		cur := heap.Pop(open).(*searchNode)
		if cur.room == goal {
			return reconstruct(start, goal, prev, cur.g)
		}
		closed[cur.room] = true

		for _, d := range world.Directions() {
			next := cur.room.Neighbor(d)
			if next == nil || closed[next] {
				continue
			}
			if !next.PermitsEntry(cur.room, d) {
				continue
			}
			if filter != nil && !filter(next) {
				continue
			}
			g := cur.g + cost(cur.room, next)
			n, seen := nodes[next]
			if seen && g >= n.g {
				continue
			}
			prev[next] = cameFrom{room: cur.room, dir: d}
			if seen {
				n.g = g
				n.f = g + heuristic(next, goal)
				heap.Fix(open, n.index)
			} else {
				n = &searchNode{room: next, g: g, f: g + heuristic(next, goal)}
				nodes[next] = n
				heap.Push(open, n)
			}
		}
	}
	return nil
}

func reconstruct(start, goal *world.Room, prev map[*world.Room]cameFrom, cost int) *Path {
	var rooms []*world.Room
	var dirs []world.Direction
	for at := goal; at != start; {
		cf := prev[at]
		rooms = append(rooms, at)
		dirs = append(dirs, cf.dir)
		at = cf.room
	}
	rooms = append(rooms, start)

	// Reverse into start→goal order.
	for i, j := 0, len(rooms)-1; i < j; i, j = i+1, j-1 {
		rooms[i], rooms[j] = rooms[j], rooms[i]
	}
	for i, j := 0, len(dirs)-1; i < j; i, j = i+1, j-1 {
		dirs[i], dirs[j] = dirs[j], dirs[i]
	}
	return &Path{Rooms: rooms, Directions: dirs, Cost: cost}
}
