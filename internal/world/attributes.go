package world

// PrimaryAttribs are the three primary attributes.
type PrimaryAttribs struct {
	Strength     int `yaml:"strength"`
	Agility      int `yaml:"agility"`
	Intelligence int `yaml:"intelligence"`
}

// Add returns the element-wise sum.
func (a PrimaryAttribs) Add(b PrimaryAttribs) PrimaryAttribs {
	return PrimaryAttribs{
		Strength:     a.Strength + b.Strength,
		Agility:      a.Agility + b.Agility,
		Intelligence: a.Intelligence + b.Intelligence,
	}
}

// Scale returns the attributes multiplied by n.
func (a PrimaryAttribs) Scale(n int) PrimaryAttribs {
	return PrimaryAttribs{
		Strength:     a.Strength * n,
		Agility:      a.Agility * n,
		Intelligence: a.Intelligence * n,
	}
}

// SecondaryAttribs are the derived combat attributes.
type SecondaryAttribs struct {
	AttackPower int `yaml:"attack_power"`
	Vitality    int `yaml:"vitality"`
	Defense     int `yaml:"defense"`
	CritRate    int `yaml:"crit_rate"`
	Avoidance   int `yaml:"avoidance"`
	Accuracy    int `yaml:"accuracy"`
	Endurance   int `yaml:"endurance"`
	SpellPower  int `yaml:"spell_power"`
	Wisdom      int `yaml:"wisdom"`
	Resilience  int `yaml:"resilience"`
	Spirit      int `yaml:"spirit"`
}

// Add returns the element-wise sum.
func (a SecondaryAttribs) Add(b SecondaryAttribs) SecondaryAttribs {
	return SecondaryAttribs{
		AttackPower: a.AttackPower + b.AttackPower,
		Vitality:    a.Vitality + b.Vitality,
		Defense:     a.Defense + b.Defense,
		CritRate:    a.CritRate + b.CritRate,
		Avoidance:   a.Avoidance + b.Avoidance,
		Accuracy:    a.Accuracy + b.Accuracy,
		Endurance:   a.Endurance + b.Endurance,
		SpellPower:  a.SpellPower + b.SpellPower,
		Wisdom:      a.Wisdom + b.Wisdom,
		Resilience:  a.Resilience + b.Resilience,
		Spirit:      a.Spirit + b.Spirit,
	}
}

// ResourceCaps are the resource pool maximums.
type ResourceCaps struct {
	MaxHealth int `yaml:"max_health"`
	MaxMana   int `yaml:"max_mana"`
}

// Add returns the element-wise sum.
func (c ResourceCaps) Add(d ResourceCaps) ResourceCaps {
	return ResourceCaps{MaxHealth: c.MaxHealth + d.MaxHealth, MaxMana: c.MaxMana + d.MaxMana}
}

// Scale returns the caps multiplied by n.
func (c ResourceCaps) Scale(n int) ResourceCaps {
	return ResourceCaps{MaxHealth: c.MaxHealth * n, MaxMana: c.MaxMana * n}
}

// Bonuses are the additive contributions an equipment piece grants.
type Bonuses struct {
	Primary   PrimaryAttribs   `yaml:"primary,omitempty"`
	Secondary SecondaryAttribs `yaml:"secondary,omitempty"`
	Caps      ResourceCaps     `yaml:"caps,omitempty"`
}

// Add returns the element-wise sum.
func (b Bonuses) Add(o Bonuses) Bonuses {
	return Bonuses{
		Primary:   b.Primary.Add(o.Primary),
		Secondary: b.Secondary.Add(o.Secondary),
		Caps:      b.Caps.Add(o.Caps),
	}
}

// Factors convert primary attributes into secondary attributes and resource
// caps. The numeric tuning lives in content config, not code.
type Factors struct {
	AttackPerStrength  int `yaml:"attack_per_strength"`
	VitalityPerStr     int `yaml:"vitality_per_strength"`
	AvoidancePerAgi    int `yaml:"avoidance_per_agility"`
	AccuracyPerAgi     int `yaml:"accuracy_per_agility"`
	CritPerAgi         int `yaml:"crit_per_agility"`
	SpellPowerPerInt   int `yaml:"spell_power_per_intelligence"`
	WisdomPerInt       int `yaml:"wisdom_per_intelligence"`
	HealthPerVitality  int `yaml:"health_per_vitality"`
	ManaPerWisdom      int `yaml:"mana_per_wisdom"`
	HealthRegenPerEnd  int `yaml:"health_regen_per_endurance"`
	ManaRegenPerWisdom int `yaml:"mana_regen_per_wisdom"`
}

// DefaultFactors is the qualitative baseline; content config overrides it.
var DefaultFactors = Factors{
	AttackPerStrength:  2,
	VitalityPerStr:     1,
	AvoidancePerAgi:    1,
	AccuracyPerAgi:     2,
	CritPerAgi:         1,
	SpellPowerPerInt:   2,
	WisdomPerInt:       1,
	HealthPerVitality:  10,
	ManaPerWisdom:      10,
	HealthRegenPerEnd:  1,
	ManaRegenPerWisdom: 1,
}

// Derive converts a primary attribute block into its secondary contribution.
func (f Factors) Derive(p PrimaryAttribs) SecondaryAttribs {
	return SecondaryAttribs{
		AttackPower: p.Strength * f.AttackPerStrength,
		Vitality:    p.Strength * f.VitalityPerStr,
		Avoidance:   p.Agility * f.AvoidancePerAgi,
		Accuracy:    p.Agility * f.AccuracyPerAgi,
		CritRate:    p.Agility * f.CritPerAgi,
		SpellPower:  p.Intelligence * f.SpellPowerPerInt,
		Wisdom:      p.Intelligence * f.WisdomPerInt,
	}
}

// DamageType names an elemental or physical damage school.
type DamageType string

// Relation is a damage-type relationship on an archetype.
type Relation string

const (
	RelationResist     Relation = "resist"
	RelationImmune     Relation = "immune"
	RelationVulnerable Relation = "vulnerable"
)

// ApplyRelation routes damage through a relationship table:
// resist halves, vulnerable doubles, immune zeroes, absent passes through.
func ApplyRelation(damage int, rel Relation) int {
	switch rel {
	case RelationResist:
		return damage / 2
	case RelationVulnerable:
		return damage * 2
	case RelationImmune:
		return 0
	default:
		return damage
	}
}
