package game

import (
	"fmt"
	"time"

	"github.com/jackindisguise/mud3-sub004/internal/config"
	"github.com/jackindisguise/mud3-sub004/internal/core/event"
	"github.com/jackindisguise/mud3-sub004/internal/world"
)

const (
	regenInterval   = time.Second
	combatInterval  = 2 * time.Second
	restockInterval = time.Minute
)

// calendar converts elapsed wall-clock into game time: one real second is
// one game minute.
type calendar struct {
	cfg config.CalendarConfig
	acc time.Duration

	Minutes int // total game minutes since boot
}

func newCalendar(cfg config.CalendarConfig) calendar {
	if cfg.HoursPerDay <= 0 {
		cfg.HoursPerDay = 24
	}
	if cfg.DaysPerWeek <= 0 {
		cfg.DaysPerWeek = 7
	}
	if cfg.DaysPerMonth <= 0 {
		cfg.DaysPerMonth = 28
	}
	if cfg.MonthsPerYear <= 0 {
		cfg.MonthsPerYear = 12
	}
	return calendar{cfg: cfg}
}

// advance accumulates wall time and returns how many game minutes passed.
func (c *calendar) advance(dt time.Duration) int {
	c.acc += dt
	n := int(c.acc / time.Second)
	c.acc -= time.Duration(n) * time.Second
	c.Minutes += n
	return n
}

// Stamp renders the current game date and time.
func (c *calendar) Stamp() string {
	minutesPerDay := 60 * c.cfg.HoursPerDay
	day := c.Minutes / minutesPerDay
	minute := c.Minutes % minutesPerDay
	month := day / c.cfg.DaysPerMonth
	year := month / c.cfg.MonthsPerYear
	return fmt.Sprintf("Year %d, Month %d, Day %d, %02d:%02d",
		year+1,
		month%c.cfg.MonthsPerYear+1,
		day%c.cfg.DaysPerMonth+1,
		minute/60, minute%60)
}

// runTicks drives the periodic jobs off the loop's delta time.
func (g *Game) runTicks(dt time.Duration) {
	g.clock.advance(dt)

	g.regenAcc += dt
	for g.regenAcc >= regenInterval {
		g.regenAcc -= regenInterval
		g.regenTick()
		g.respawnTick()
	}

	g.combatAcc += dt
	for g.combatAcc >= combatInterval {
		g.combatAcc -= combatInterval
		g.combatTick()
	}

	g.restockAcc += dt
	for g.restockAcc >= restockInterval {
		g.restockAcc -= restockInterval
		g.restockTick()
	}
}

// regenTick moves every living mob's resources toward their caps, decays
// exhaustion, and expires effects.
func (g *Game) regenTick() {
	f := g.Cfg.Game.Combat
	g.World.AllMobs(func(m *world.Mob) {
		if m.Dead {
			return
		}
		sec := m.Secondaries(f)
		caps := m.Caps(f)

		hr := sec.Endurance * f.HealthRegenPerEnd
		if hr < 1 {
			hr = 1
		}
		mr := sec.Wisdom * f.ManaRegenPerWisdom
		if mr < 1 {
			mr = 1
		}
		m.Health = min(caps.MaxHealth, m.Health+hr)
		m.Mana = min(caps.MaxMana, m.Mana+mr)
		if m.Exhaustion > 0 {
			m.Exhaustion--
		}

		if len(m.Effects) > 0 {
			kept := m.Effects[:0]
			for _, ef := range m.Effects {
				ef.SecondsLeft--
				if ef.SecondsLeft > 0 {
					kept = append(kept, ef)
					continue
				}
				m.Deliver(world.GroupInfo, "The "+ef.Name+" effect fades.")
			}
			m.Effects = kept
		}
	})
}

// respawnTick counts down dead spawned mobs and returns the due ones to
// their spawn rooms at full resources.
func (g *Game) respawnTick() {
	f := g.Cfg.Game.Combat
	kept := g.deadMobs[:0]
	for _, m := range g.deadMobs {
		if !m.TickRespawn() {
			if m.Dead {
				kept = append(kept, m)
			}
			continue
		}
		m.Dead = false
		m.Health = m.MaxHealth(f)
		m.Mana = m.MaxMana(f)
		if m.SpawnRoom != nil && m.SpawnRoom.Add(m) == nil {
			for _, other := range m.SpawnRoom.Mobs() {
				if other != m {
					other.Deliver(world.GroupInfo, world.Title(m.Display())+" arrives.")
				}
			}
		}
	}
	g.deadMobs = kept
}

// combatTick resolves one attack for every mob with a live target.
func (g *Game) combatTick() {
	f := g.Cfg.Game.Combat
	var fighters []*world.Mob
	g.World.AllMobs(func(m *world.Mob) {
		if m.Target != nil {
			fighters = append(fighters, m)
		}
	})
	for _, m := range fighters {
		t := m.Target
		if t == nil || m.Dead {
			continue
		}
		if t.Dead || t.Room() != m.Room() {
			m.Target = nil
			continue
		}
		g.resolveAttack(m, t, f)
	}
}

// resolveAttack runs one attacker-versus-defender exchange: accuracy
// against avoidance, crit doubling, defense soak, then the defender's
// damage-type relation.
func (g *Game) resolveAttack(att, def *world.Mob, f world.Factors) {
	atk := att.Secondaries(f)
	dfn := def.Secondaries(f)

	hitType := "hit"
	var dt world.DamageType = "physical"
	if w := att.Weapon(); w != nil {
		hitType = w.HitType
		if w.DamageType != "" {
			dt = w.DamageType
		}
	}

	chance := 70 + atk.Accuracy - dfn.Avoidance
	chance = clamp(chance, 5, 95)
	if g.rng.Intn(100) >= chance {
		world.Act(att, def,
			"Your "+hitType+" misses {target}.",
			"{User}'s "+hitType+" misses you.",
			"{User}'s "+hitType+" misses {target}.",
			world.ActOptions{Group: world.GroupCombat})
		return
	}

	damage := atk.AttackPower - dfn.Defense/2
	if damage < 1 {
		damage = 1
	}
	crit := g.rng.Intn(100) < clamp(atk.CritRate, 0, 50)
	if crit {
		damage *= 2
	}
	damage = world.ApplyRelation(damage, def.Relation(dt))

	if damage <= 0 {
		world.Act(att, def,
			"{Target} shrugs off your "+hitType+".",
			"You shrug off {user}'s "+hitType+".",
			"{Target} shrugs off {user}'s "+hitType+".",
			world.ActOptions{Group: world.GroupCombat})
		return
	}

	amount := itoa(damage)
	if crit {
		world.Act(att, def,
			"{RYour "+hitType+" CRITICALLY strikes {target} for "+amount+" damage!{x",
			"{R{User}'s "+hitType+" CRITICALLY strikes you for "+amount+" damage!{x",
			"{User}'s "+hitType+" critically strikes {target}.",
			world.ActOptions{Group: world.GroupCombat})
	} else {
		world.Act(att, def,
			"Your "+hitType+" hits {target} for "+amount+" damage.",
			"{User}'s "+hitType+" hits you for "+amount+" damage.",
			"{User}'s "+hitType+" hits {target}.",
			world.ActOptions{Group: world.GroupCombat})
	}

	if w := att.Weapon(); w == nil {
		// Unarmed combat trains nothing.
	} else if la := att.Learned(hitType); la != nil {
		if a := g.Abilities.Get(hitType); a != nil {
			att.UseAbility(a, 1)
		}
	}

	def.Health -= damage
	if def.Health > 0 {
		return
	}
	g.kill(att, def)
}

// kill handles lethal damage: announcements, experience, target clearing,
// and either respawn scheduling (spawned mobs) or the graveyard (players).
func (g *Game) kill(killer, victim *world.Mob) {
	world.Act(killer, victim,
		"{Target} is DEAD!",
		"You have been KILLED!",
		"{Target} is DEAD!",
		world.ActOptions{Group: world.GroupCombat})

	victim.Die()
	g.World.ClearTargetsOn(victim)
	event.Emit(g.Bus, event.MobDied{Victim: victim.Display(), Killer: killer.Display()})

	if !victim.HasSink() {
		g.awardExperience(killer, victim)
		if r := victim.Room(); r != nil {
			r.Remove(victim)
		}
		if victim.RespawnDelay > 0 && victim.SpawnRoom != nil {
			g.deadMobs = append(g.deadMobs, victim)
		}
		return
	}

	// Players wake at the graveyard, wounded but alive.
	f := g.Cfg.Game.Combat
	victim.Dead = false
	victim.Health = max(1, victim.MaxHealth(f)/2)
	victim.Mana = victim.MaxMana(f) / 2
	if grave, err := g.World.GraveyardRoom(); err == nil {
		if err := grave.Add(victim); err == nil {
			victim.Deliver(world.GroupInfo, "You awaken among the headstones.")
		}
	}
}

// awardExperience grants kill experience and applies any level gains.
func (g *Game) awardExperience(killer, victim *world.Mob) {
	if !killer.HasSink() {
		return
	}
	gain := victim.Level * 25
	killer.Experience += gain
	killer.Deliver(world.GroupInfo, "You gain "+itoa(gain)+" experience.")
	f := g.Cfg.Game.Combat
	for killer.Experience >= world.ExperienceToLevel(killer.Level+1) {
		killer.Level++
		killer.Health = killer.MaxHealth(f)
		killer.Mana = killer.MaxMana(f)
		killer.Deliver(world.GroupInfo, "{YYou have reached level "+itoa(killer.Level)+"!{x")
		for _, a := range []*world.Archetype{killer.Race, killer.Job} {
			for _, id := range a.GrantsAt(killer.Level) {
				if killer.Learned(id) == nil {
					killer.LearnAbility(id)
					killer.Deliver(world.GroupInfo, "You have learned "+id+".")
				}
			}
		}
	}
}

// restockTick runs every shopkeeper's stock rules.
func (g *Game) restockTick() {
	g.World.AllMobs(func(m *world.Mob) {
		if len(m.RestockRules) == 0 || m.Dead {
			return
		}
		m.TickRestock(g.Templates.SpawnItem)
	})
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
