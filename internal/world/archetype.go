package world

// ArchetypeKind distinguishes races from jobs.
type ArchetypeKind string

const (
	ArchetypeRace ArchetypeKind = "race"
	ArchetypeJob  ArchetypeKind = "job"
)

// AbilityGrant pairs an ability with the level it is learned at.
type AbilityGrant struct {
	AbilityID  string `yaml:"ability"`
	LearnLevel int    `yaml:"level"`
}

// Archetype is an immutable Race or Job descriptor. Archetypes are loaded
// once at boot and hot-reloaded by replacement, never mutated in place.
type Archetype struct {
	Kind ArchetypeKind
	ID   string
	Name string

	Start     PrimaryAttribs
	Growth    PrimaryAttribs // per level past the first
	StartCaps ResourceCaps
	CapGrowth ResourceCaps

	Abilities []AbilityGrant
	Passives  []string

	Relations map[DamageType]Relation
}

// AttribsAt returns the archetype's primary contribution at a level:
// start + growth × (level − 1).
func (a *Archetype) AttribsAt(level int) PrimaryAttribs {
	if a == nil {
		return PrimaryAttribs{}
	}
	if level < 1 {
		level = 1
	}
	return a.Start.Add(a.Growth.Scale(level - 1))
}

// CapsAt returns the archetype's resource-cap contribution at a level.
func (a *Archetype) CapsAt(level int) ResourceCaps {
	if a == nil {
		return ResourceCaps{}
	}
	if level < 1 {
		level = 1
	}
	return a.StartCaps.Add(a.CapGrowth.Scale(level - 1))
}

// Relation returns the archetype's relationship to a damage type, or the
// empty relation when none is declared.
func (a *Archetype) Relation(dt DamageType) Relation {
	if a == nil || a.Relations == nil {
		return ""
	}
	return a.Relations[dt]
}

// GrantsAt lists the ability ids learnable at or below the given level.
func (a *Archetype) GrantsAt(level int) []string {
	if a == nil {
		return nil
	}
	var ids []string
	for _, g := range a.Abilities {
		if g.LearnLevel <= level {
			ids = append(ids, g.AbilityID)
		}
	}
	return ids
}
