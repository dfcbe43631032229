package world

import "strings"

// Direction is one of the ten movement directions on the dungeon grid.
type Direction int

const (
	North Direction = iota
	South
	East
	West
	Northeast
	Northwest
	Southeast
	Southwest
	Up
	Down

	directionCount = 10
)

var directionNames = [directionCount]string{
	"north", "south", "east", "west",
	"northeast", "northwest", "southeast", "southwest",
	"up", "down",
}

var directionAbbrevs = [directionCount]string{
	"n", "s", "e", "w", "ne", "nw", "se", "sw", "u", "d",
}

var directionReverse = [directionCount]Direction{
	South, North, West, East,
	Southwest, Southeast, Northwest, Northeast,
	Down, Up,
}

// Grid deltas. North is -y, east is +x, up is +z.
var directionDX = [directionCount]int{0, 0, 1, -1, 1, -1, 1, -1, 0, 0}
var directionDY = [directionCount]int{-1, 1, 0, 0, -1, -1, 1, 1, 0, 0}
var directionDZ = [directionCount]int{0, 0, 0, 0, 0, 0, 0, 0, 1, -1}

// Directions returns all ten directions in declaration order.
func Directions() []Direction {
	ds := make([]Direction, directionCount)
	for i := range ds {
		ds[i] = Direction(i)
	}
	return ds
}

func (d Direction) String() string {
	if d < 0 || d >= directionCount {
		return "unknown"
	}
	return directionNames[d]
}

// Abbrev returns the short form of the direction (n, sw, u, ...).
func (d Direction) Abbrev() string {
	if d < 0 || d >= directionCount {
		return "?"
	}
	return directionAbbrevs[d]
}

// Reverse returns the opposite direction.
func (d Direction) Reverse() Direction {
	if d < 0 || d >= directionCount {
		return d
	}
	return directionReverse[d]
}

// Delta returns the grid offset one step in this direction.
func (d Direction) Delta() (dx, dy, dz int) {
	return directionDX[d], directionDY[d], directionDZ[d]
}

// ParseDirection resolves a full or abbreviated direction name,
// case-insensitive. Returns false when the token names no direction.
func ParseDirection(token string) (Direction, bool) {
	t := strings.ToLower(strings.TrimSpace(token))
	if t == "" {
		return 0, false
	}
	for i := 0; i < directionCount; i++ {
		if t == directionNames[i] || t == directionAbbrevs[i] {
			return Direction(i), true
		}
	}
	return 0, false
}

// ExitMask is a bitmask over the ten directions, one bit per direction.
type ExitMask uint16

// AllExits permits every direction.
const AllExits ExitMask = 1<<directionCount - 1

// Has reports whether the mask permits the direction.
func (m ExitMask) Has(d Direction) bool {
	return m&(1<<uint(d)) != 0
}

// With returns the mask with the direction permitted.
func (m ExitMask) With(d Direction) ExitMask {
	return m | 1<<uint(d)
}

// Without returns the mask with the direction forbidden.
func (m ExitMask) Without(d Direction) ExitMask {
	return m &^ (1 << uint(d))
}
