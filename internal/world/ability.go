package world

// Ability is an immutable descriptor of a learnable action. The proficiency
// curve gives the use counts at which proficiency reaches 25/50/75/100
// percent; the full table is generated once by linear interpolation.
type Ability struct {
	ID          string
	Name        string
	Description string
	Curve       [4]int // use counts at 25%, 50%, 75%, 100%

	table []int // use count → percent, len Curve[3]+1
}

// NewAbility builds an ability and its proficiency table.
func NewAbility(id, name, description string, curve [4]int) *Ability {
	a := &Ability{ID: id, Name: name, Description: description, Curve: curve}
	a.buildTable()
	return a
}

// buildTable interpolates use-count → percent across the breakpoints,
// clamped to [0, 100] and monotone non-decreasing.
func (a *Ability) buildTable() {
	maxUses := a.Curve[3]
	if maxUses < 1 {
		maxUses = 1
	}
	a.table = make([]int, maxUses+1)
	points := [][2]int{
		{0, 0},
		{a.Curve[0], 25},
		{a.Curve[1], 50},
		{a.Curve[2], 75},
		{a.Curve[3], 100},
	}
	seg := 0
	for uses := 0; uses <= maxUses; uses++ {
		for seg < len(points)-2 && uses >= points[seg+1][0] {
			seg++
		}
		x0, y0 := points[seg][0], points[seg][1]
		x1, y1 := points[seg+1][0], points[seg+1][1]
		var pct int
		if uses >= x1 {
			pct = y1
		} else if x1 == x0 {
			pct = y1
		} else {
			pct = y0 + (y1-y0)*(uses-x0)/(x1-x0)
		}
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
		if uses > 0 && pct < a.table[uses-1] {
			pct = a.table[uses-1]
		}
		a.table[uses] = pct
	}
}

// MaxUses is the use count at which proficiency reaches 100 percent.
func (a *Ability) MaxUses() int { return len(a.table) - 1 }

// ProficiencyAt returns the proficiency percent for a use count, clamping
// counts past the end of the curve to 100.
func (a *Ability) ProficiencyAt(uses int) int {
	if uses < 0 {
		uses = 0
	}
	if uses >= len(a.table) {
		uses = len(a.table) - 1
	}
	return a.table[uses]
}

// LearnedAbility is a mob's per-ability state: a use counter plus a snapshot
// of the derived proficiency percent.
type LearnedAbility struct {
	AbilityID string
	Uses      int
	Percent   int
}
