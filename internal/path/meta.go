package path

import "github.com/jackindisguise/mud3-sub004/internal/world"

// gatewayPair is one directed crossing between dungeons: leave `from`
// through `dir` and arrive at `to` in the next dungeon.
type gatewayPair struct {
	from *world.Room
	dir  world.Direction
	to   *world.Room
}

// GatewaySelector picks the crossing to use between two dungeons. The
// default takes the first available pair.
type GatewaySelector func(pairs []gatewayPair) gatewayPair

func firstGateway(pairs []gatewayPair) gatewayPair { return pairs[0] }

// metaGraph maps dungeon id → next dungeon id → crossing pairs.
func buildMetaGraph(w *world.World) map[string]map[string][]gatewayPair {
	graph := map[string]map[string][]gatewayPair{}
	w.EachDungeon(func(d *world.Dungeon) {
		for _, r := range d.GatewayRooms() {
			for dir, target := range r.Gateways() {
				dst := target.Dungeon().ID
				if dst == d.ID {
					continue
				}
				if graph[d.ID] == nil {
					graph[d.ID] = map[string][]gatewayPair{}
				}
				graph[d.ID][dst] = append(graph[d.ID][dst], gatewayPair{from: r, dir: dir, to: target})
			}
		}
	})
	return graph
}

// dungeonSequence finds the shortest dungeon-id chain via BFS on the
// meta-graph, or nil when the goal dungeon is unreachable.
func dungeonSequence(graph map[string]map[string][]gatewayPair, from, to string) []string {
	if from == to {
		return []string{from}
	}
	prev := map[string]string{from: ""}
	queue := []string{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for next := range graph[cur] {
			if _, seen := prev[next]; seen {
				continue
			}
			prev[next] = cur
			if next == to {
				var seq []string
				for at := to; at != ""; at = prev[at] {
					seq = append(seq, at)
				}
				for i, j := 0, len(seq)-1; i < j; i, j = i+1, j-1 {
					seq[i], seq[j] = seq[j], seq[i]
				}
				return seq
			}
			queue = append(queue, next)
		}
	}
	return nil
}

// FindPathAcross routes between any two rooms. Same-dungeon requests go
// straight to A*. Cross-dungeon requests BFS the dungeon meta-graph, pick a
// gateway pair per hop, and stitch the intra-dungeon legs end to end,
// collapsing the duplicate join room between legs.
func FindPathAcross(w *world.World, start, goal *world.Room, cost CostFunc, filter FilterFunc, pick GatewaySelector) *Path {
	if start == nil || goal == nil {
		return nil
	}
	if start.Dungeon() == goal.Dungeon() {
		return FindPath(start, goal, cost, filter)
	}
	if pick == nil {
		pick = firstGateway
	}

	graph := buildMetaGraph(w)
	seq := dungeonSequence(graph, start.Dungeon().ID, goal.Dungeon().ID)
	if seq == nil {
		return nil
	}

	total := &Path{Rooms: []*world.Room{start}}
	at := start
	for i := 0; i+1 < len(seq); i++ {
		pairs := graph[seq[i]][seq[i+1]]
		if len(pairs) == 0 {
			return nil
		}
		gw := pick(pairs)

		leg := FindPath(at, gw.from, cost, filter)
		if leg == nil {
			return nil
		}
		appendLeg(total, leg)

		// Cross the gateway as a single step.
		total.Rooms = append(total.Rooms, gw.to)
		total.Directions = append(total.Directions, gw.dir)
		if cost != nil {
			total.Cost += cost(gw.from, gw.to)
		} else {
			total.Cost++
		}
		at = gw.to
	}

	final := FindPath(at, goal, cost, filter)
	if final == nil {
		return nil
	}
	appendLeg(total, final)
	return total
}

// appendLeg joins a leg onto the accumulated path, dropping the leg's first
// room, which duplicates the current tail.
func appendLeg(total, leg *Path) {
	total.Rooms = append(total.Rooms, leg.Rooms[1:]...)
	total.Directions = append(total.Directions, leg.Directions...)
	total.Cost += leg.Cost
}
