package game

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jackindisguise/mud3-sub004/internal/board"
	"github.com/jackindisguise/mud3-sub004/internal/command"
	"github.com/jackindisguise/mud3-sub004/internal/core/event"
	"github.com/jackindisguise/mud3-sub004/internal/world"
)

const fleeCooldown = 2 * time.Second

// clientFor finds the playing client whose character owns the mob.
func (g *Game) clientFor(m *world.Mob) *Client {
	for _, c := range g.clients {
		if c.char != nil && c.char.Mob == m {
			return c
		}
	}
	return nil
}

// privileged reports whether the acting mob belongs to a privileged
// character.
func (g *Game) privileged(m *world.Mob) bool {
	c := g.clientFor(m)
	return c != nil && c.char.Privileged
}

// itemValue extracts the monetary value of anything item-shaped.
func itemValue(e world.Entity) (int, bool) {
	switch it := e.(type) {
	case *world.Item:
		return it.Value, true
	case *world.Equipment:
		return it.Value, true
	case *world.Weapon:
		return it.Value, true
	case *world.Armor:
		return it.Value, true
	}
	return 0, false
}

// shopkeeper returns the room's vendor, if any. A mob with restock rules
// is a vendor.
func shopkeeper(r *world.Room) *world.Mob {
	if r == nil {
		return nil
	}
	for _, m := range r.Mobs() {
		if len(m.RestockRules) > 0 && !m.Dead {
			return m
		}
	}
	return nil
}

// lookRoom renders the room the mob stands in: name, description, exits,
// then everything else present.
func (g *Game) lookRoom(m *world.Mob) {
	r := m.Room()
	if r == nil {
		m.Deliver(world.GroupInfo, "You float in a formless void.")
		return
	}
	settings := world.DefaultSettings()
	if c := g.clientFor(m); c != nil {
		settings = c.char.Settings
	}

	m.Deliver(world.GroupInfo, "{Y"+r.Display()+"{x")
	if !settings.BriefMode && r.Description() != "" {
		m.Deliver(world.GroupInfo, r.Description())
	}

	exits := r.Exits()
	if len(exits) == 0 {
		m.Deliver(world.GroupInfo, "{c[Exits: none]{x")
	} else {
		names := make([]string, len(exits))
		for i, d := range exits {
			names[i] = d.String()
		}
		m.Deliver(world.GroupInfo, "{c[Exits: "+strings.Join(names, " ")+"]{x")
	}

	for _, e := range r.Contents() {
		if e == world.Entity(m) {
			continue
		}
		switch o := e.(type) {
		case *world.Mob:
			if o.Dead {
				continue
			}
			m.Deliver(world.GroupInfo, world.Title(o.Display())+" is here.")
		case *world.Prop:
			m.Deliver(world.GroupInfo, world.Title(o.Display())+" stands here.")
		default:
			m.Deliver(world.GroupInfo, world.Title(e.Display())+" lies here.")
		}
	}
}

// lookTarget handles "look <something>": a direction peeks at the neighbor,
// anything else is examined by keyword in the room and inventory.
func (g *Game) lookTarget(ctx *command.Context, raw string) {
	m := ctx.Actor
	if d, ok := world.ParseDirection(raw); ok {
		r := m.Room()
		if r == nil {
			ctx.Respond("There is no exit in that direction.")
			return
		}
		n := r.Neighbor(d)
		if n == nil || !n.PermitsEntry(r, d) {
			ctx.Respond("There is no exit in that direction.")
			return
		}
		ctx.Respond("Looking " + d.String() + " you see " + n.Display() + ".")
		return
	}
	var e world.Entity
	if r := m.Room(); r != nil {
		e = world.FindByKeyword(r.Contents(), raw, func(o world.Entity) bool {
			return o != world.Entity(m)
		})
	}
	if e == nil {
		e = world.FindByKeyword(m.Contents(), raw, nil)
	}
	if e == nil {
		ctx.Respond("You don't see that here.")
		return
	}
	if e.Description() != "" {
		ctx.Respond(e.Description())
	} else {
		ctx.Respond("You see nothing special about " + e.Display() + ".")
	}
	if e.Kind() == world.KindItem && len(e.Contents()) > 0 {
		ctx.Respond(world.Title(e.Display()) + " contains:")
		for _, c := range e.Contents() {
			ctx.Respond("  " + c.Display())
		}
	}
}

// step moves the actor one room over with the standard narration.
func (g *Game) step(ctx *command.Context, d world.Direction) error {
	m := ctx.Actor
	if !m.CanMove() {
		ctx.Respond("You can't move right now.")
		return nil
	}
	if !world.CanStep(m, d) {
		ctx.Respond("There is no exit in that direction.")
		return nil
	}
	world.Act(m, nil, "You leave "+d.String()+".", "",
		"{User} leaves "+d.String()+".", world.ActOptions{})
	if err := world.Step(m, d); err != nil {
		ctx.Respond("There is no exit in that direction.")
		return nil
	}
	world.Act(m, nil, "", "",
		"{User} arrives from the "+d.Reverse().String()+".", world.ActOptions{})
	if c := g.clientFor(m); c != nil && c.char.Settings.AutoLook {
		g.lookRoom(m)
	}
	return nil
}

// registerCoreCommands installs the built-in command set. Registration
// order is matching order within a priority, so specific shapes come
// before general ones and the bare-direction catch-all comes last.
func (g *Game) registerCoreCommands() error {
	cmds := []*command.Command{
		{
			Name:    "look",
			Pattern: "l~ook <target:word?>",
			Execute: func(ctx *command.Context, args command.Args) error {
				if t, ok := args["target"]; ok {
					g.lookTarget(ctx, t.Raw)
					return nil
				}
				g.lookRoom(ctx.Actor)
				return nil
			},
		},
		{
			Name:    "go",
			Pattern: "go <dir:direction>",
			Execute: func(ctx *command.Context, args command.Args) error {
				return g.step(ctx, args["dir"].Direction)
			},
		},
		{
			Name:    "kill",
			Pattern: "kill <target:mob>",
			Aliases: []string{"attack <target:mob>"},
			Execute: func(ctx *command.Context, args command.Args) error {
				m, t := ctx.Actor, args["target"].Mob
				if t == m {
					ctx.Respond("You can't attack yourself.")
					return nil
				}
				if t.Dead {
					ctx.Respond("They are already dead.")
					return nil
				}
				if !m.CanAct() {
					ctx.Respond("You can't fight right now.")
					return nil
				}
				m.Target = t
				if t.Target == nil {
					t.Target = m
				}
				world.Act(m, t,
					"You attack {target}!",
					"{User} attacks you!",
					"{User} attacks {target}!",
					world.ActOptions{Group: world.GroupCombat})
				return nil
			},
		},
		{
			Name:    "get from",
			Pattern: "g~et <item:word> from <container:object>",
			Execute: func(ctx *command.Context, args command.Args) error {
				cont := args["container"].Entity
				e := world.FindByKeyword(cont.Contents(), args["item"].Raw, nil)
				if e == nil {
					ctx.Respond("There is no such thing in " + cont.Display() + ".")
					return nil
				}
				if err := ctx.Actor.Add(e); err != nil {
					ctx.Respond("You can't take that.")
					return nil
				}
				world.Act(ctx.Actor, nil,
					"You take "+e.Display()+" from "+cont.Display()+".", "",
					"{User} takes "+e.Display()+" from "+cont.Display()+".",
					world.ActOptions{})
				return nil
			},
		},
		{
			Name:    "get",
			Pattern: "g~et <item:object@room>",
			Aliases: []string{"take <item:object@room>"},
			Execute: func(ctx *command.Context, args command.Args) error {
				e := args["item"].Entity
				switch e.(type) {
				case *world.Prop:
					ctx.Respond("You can't take that.")
					return nil
				case *world.Mob:
					ctx.Respond("You can't take that.")
					return nil
				}
				if err := ctx.Actor.Add(e); err != nil {
					ctx.Respond("You can't take that.")
					return nil
				}
				world.Act(ctx.Actor, nil,
					"You pick up "+e.Display()+".", "",
					"{User} picks up "+e.Display()+".", world.ActOptions{})
				return nil
			},
		},
		{
			Name:    "drop",
			Pattern: "drop <item:object@inventory>",
			Execute: func(ctx *command.Context, args command.Args) error {
				e := args["item"].Entity
				r := ctx.Actor.Room()
				if r == nil {
					ctx.Respond("There is nowhere to drop it.")
					return nil
				}
				if err := r.Add(e); err != nil {
					ctx.Respond("You can't drop that here.")
					return nil
				}
				world.Act(ctx.Actor, nil,
					"You drop "+e.Display()+".", "",
					"{User} drops "+e.Display()+".", world.ActOptions{})
				return nil
			},
		},
		{
			Name:    "put",
			Pattern: "put <item:item> in <container:object>",
			Execute: func(ctx *command.Context, args command.Args) error {
				e, cont := args["item"].Entity, args["container"].Entity
				it, ok := cont.(*world.Item)
				if !ok || !it.Container {
					ctx.Respond("That isn't a container.")
					return nil
				}
				if e == cont {
					ctx.Respond("You can't put something inside itself.")
					return nil
				}
				if err := it.Add(e); err != nil {
					ctx.Respond(world.Title(it.Display()) + " can't hold that.")
					return nil
				}
				world.Act(ctx.Actor, nil,
					"You put "+e.Display()+" in "+it.Display()+".", "",
					"{User} puts "+e.Display()+" in "+it.Display()+".",
					world.ActOptions{})
				return nil
			},
		},
		{
			Name:    "give gold",
			Pattern: "give <amount:number> gold to <target:mob>",
			Aliases: []string{"give <amount:number> gold <target:mob>"},
			Execute: func(ctx *command.Context, args command.Args) error {
				n, t := args["amount"].Number, args["target"].Mob
				if n <= 0 {
					ctx.Respond("Give how much?")
					return nil
				}
				if ctx.Actor.Gold < n {
					ctx.Respond("You don't have that much gold.")
					return nil
				}
				ctx.Actor.Gold -= n
				t.Gold += n
				amount := itoa(n)
				world.Act(ctx.Actor, t,
					"You give "+amount+" gold to {target}.",
					"{User} gives you "+amount+" gold.",
					"{User} gives some gold to {target}.",
					world.ActOptions{})
				return nil
			},
		},
		{
			Name:    "give all",
			Pattern: "give all to <target:mob>",
			Aliases: []string{"give all <target:mob>"},
			Execute: func(ctx *command.Context, args command.Args) error {
				t := args["target"].Mob
				items := append([]world.Entity(nil), ctx.Actor.Contents()...)
				if len(items) == 0 {
					ctx.Respond("You aren't carrying anything.")
					return nil
				}
				moved := 0
				for _, e := range items {
					if err := t.Add(e); err == nil {
						moved++
					}
				}
				world.Act(ctx.Actor, t,
					"You give everything you carry to {target}.",
					"{User} gives you everything they carry.",
					"{User} gives everything they carry to {target}.",
					world.ActOptions{})
				_ = moved
				return nil
			},
		},
		{
			Name:    "give",
			Pattern: "give <item:item> to <target:mob>",
			Aliases: []string{"give <item:item> <target:mob>"},
			Execute: func(ctx *command.Context, args command.Args) error {
				e, t := args["item"].Entity, args["target"].Mob
				if err := t.Add(e); err != nil {
					ctx.Respond("They can't take that.")
					return nil
				}
				world.Act(ctx.Actor, t,
					"You give "+e.Display()+" to {target}.",
					"{User} gives you "+e.Display()+".",
					"{User} gives "+e.Display()+" to {target}.",
					world.ActOptions{})
				return nil
			},
		},
		{
			Name:    "wear",
			Pattern: "wear <item:item>",
			Aliases: []string{"wield <item:item>", "equip <item:item>"},
			Execute: func(ctx *command.Context, args command.Args) error {
				e := args["item"].Entity
				w, ok := e.(world.Wearable)
				if !ok {
					ctx.Respond("You can't wear that.")
					return nil
				}
				if err := ctx.Actor.Equip(w, w.Slot()); err != nil {
					ctx.Respond("You can't wear that.")
					return nil
				}
				world.Act(ctx.Actor, nil,
					"You equip "+e.Display()+".", "",
					"{User} equips "+e.Display()+".", world.ActOptions{})
				return nil
			},
		},
		{
			Name:    "remove",
			Pattern: "remove <item:word>",
			Execute: func(ctx *command.Context, args command.Args) error {
				raw := args["item"].Raw
				var found world.Slot
				var hit world.Wearable
				ctx.Actor.EachEquipped(func(s world.Slot, w world.Wearable) {
					if hit == nil && w.MatchKeyword(raw) {
						found, hit = s, w
					}
				})
				if hit == nil {
					ctx.Respond("You aren't wearing that.")
					return nil
				}
				if _, err := ctx.Actor.Unequip(found); err != nil {
					ctx.Respond("You can't remove that.")
					return nil
				}
				world.Act(ctx.Actor, nil,
					"You remove "+hit.Display()+".", "",
					"{User} removes "+hit.Display()+".", world.ActOptions{})
				return nil
			},
		},
		{
			Name:    "inventory",
			Pattern: "i~nventory",
			Execute: func(ctx *command.Context, args command.Args) error {
				ctx.Respond("You are carrying:")
				items := ctx.Actor.Contents()
				if len(items) == 0 {
					ctx.Respond("  nothing")
				}
				for _, e := range items {
					ctx.Respond("  " + e.Display())
				}
				ctx.Respond("Gold: " + itoa(ctx.Actor.Gold))
				return nil
			},
		},
		{
			Name:    "equipment",
			Pattern: "eq~uipment",
			Execute: func(ctx *command.Context, args command.Args) error {
				ctx.Respond("You are wearing:")
				any := false
				ctx.Actor.EachEquipped(func(s world.Slot, w world.Wearable) {
					any = true
					ctx.Respond(fmt.Sprintf("  %-10s %s", string(s)+":", w.Display()))
				})
				if !any {
					ctx.Respond("  nothing")
				}
				return nil
			},
		},
		{
			Name:    "say",
			Pattern: "say <text:text>",
			Execute: func(ctx *command.Context, args command.Args) error {
				text := args["text"].Raw
				world.Act(ctx.Actor, nil,
					"You say, \""+text+"\"", "",
					"{User} says, \""+text+"\"",
					world.ActOptions{Group: world.GroupChannels})
				return nil
			},
		},
		{
			Name:    "shout",
			Pattern: "shout <text:text>",
			Execute: func(ctx *command.Context, args command.Args) error {
				r := ctx.Actor.Room()
				if r == nil {
					ctx.Respond("Nobody can hear you.")
					return nil
				}
				text := args["text"].Raw
				ctx.Actor.Deliver(world.GroupChannels, "You shout, \""+text+"\"")
				line := world.Title(ctx.Actor.Display()) + " shouts, \"" + text + "\""
				r.Dungeon().EachRoom(func(o *world.Room) {
					for _, m := range o.Mobs() {
						if m != ctx.Actor {
							m.Deliver(world.GroupChannels, line)
						}
					}
				})
				return nil
			},
			Cooldown: func(*command.Context, command.Args) time.Duration {
				return time.Second
			},
		},
		{
			Name:    "tell",
			Pattern: "tell <target:word> <text:text>",
			Execute: func(ctx *command.Context, args command.Args) error {
				c, ok := g.byName[strings.ToLower(args["target"].Raw)]
				if !ok || c.char.Mob == ctx.Actor {
					ctx.Respond("They aren't here.")
					return nil
				}
				text := args["text"].Raw
				ctx.Respond("You tell " + c.char.Username + ", \"" + text + "\"")
				c.char.Mob.Deliver(world.GroupChannels,
					world.Title(ctx.Actor.Display())+" tells you, \""+text+"\"")
				return nil
			},
		},
		{
			Name:    "who",
			Pattern: "who",
			Execute: func(ctx *command.Context, args command.Args) error {
				names := make([]string, 0, len(g.byName))
				for name := range g.byName {
					names = append(names, name)
				}
				sort.Strings(names)
				ctx.Respond("{WPlayers online:{x")
				for _, name := range names {
					c := g.byName[name]
					ctx.Respond(fmt.Sprintf("  [%2d] %s", c.char.Mob.Level, c.char.Username))
				}
				ctx.Respond(itoa(len(names)) + " visible.")
				return nil
			},
		},
		{
			Name:    "score",
			Pattern: "sc~ore",
			Execute: func(ctx *command.Context, args command.Args) error {
				m := ctx.Actor
				f := g.Cfg.Game.Combat
				caps := m.Caps(f)
				sec := m.Secondaries(f)
				ctx.Respond("{W" + world.Title(m.Display()) + "{x, level " + itoa(m.Level) +
					" " + m.Race.Name + " " + m.Job.Name)
				ctx.Respond(fmt.Sprintf("Health %d/%d  Mana %d/%d  Exhaustion %d",
					m.Health, caps.MaxHealth, m.Mana, caps.MaxMana, m.Exhaustion))
				ctx.Respond(fmt.Sprintf("Experience %d (%d to next level)  Gold %d",
					m.Experience, world.ExperienceToLevel(m.Level+1)-m.Experience, m.Gold))
				ctx.Respond(fmt.Sprintf("Attack %d  Defense %d  Accuracy %d  Avoidance %d  Crit %d",
					sec.AttackPower, sec.Defense, sec.Accuracy, sec.Avoidance, sec.CritRate))
				ctx.Respond("It is " + g.clock.Stamp() + ".")
				return nil
			},
		},
		{
			Name:    "abilities",
			Pattern: "ab~ilities",
			Execute: func(ctx *command.Context, args command.Args) error {
				type row struct {
					name    string
					percent int
					uses    int
				}
				var rows []row
				ctx.Actor.EachLearned(func(la *world.LearnedAbility) {
					name := la.AbilityID
					if a := g.Abilities.Get(la.AbilityID); a != nil {
						name = a.Name
					}
					rows = append(rows, row{name, la.Percent, la.Uses})
				})
				if len(rows) == 0 {
					ctx.Respond("You know no abilities.")
					return nil
				}
				sort.Slice(rows, func(i, j int) bool { return rows[i].name < rows[j].name })
				ctx.Respond("{WYour abilities:{x")
				for _, r := range rows {
					ctx.Respond(fmt.Sprintf("  %-20s %3d%% (%d uses)", r.name, r.percent, r.uses))
				}
				return nil
			},
		},
		{
			Name:    "bonuses",
			Pattern: "bon~uses",
			Execute: func(ctx *command.Context, args command.Args) error {
				b := ctx.Actor.EquipmentBonuses()
				ctx.Respond("{WEquipment and effect bonuses:{x")
				ctx.Respond(fmt.Sprintf("  Strength %+d  Agility %+d  Intelligence %+d",
					b.Primary.Strength, b.Primary.Agility, b.Primary.Intelligence))
				ctx.Respond(fmt.Sprintf("  Attack %+d  Defense %+d  Accuracy %+d  Avoidance %+d",
					b.Secondary.AttackPower, b.Secondary.Defense,
					b.Secondary.Accuracy, b.Secondary.Avoidance))
				ctx.Respond(fmt.Sprintf("  Max health %+d  Max mana %+d",
					b.Caps.MaxHealth, b.Caps.MaxMana))
				return nil
			},
		},
		{
			Name:    "resistances",
			Pattern: "res~istances",
			Execute: func(ctx *command.Context, args command.Args) error {
				seen := map[world.DamageType]bool{}
				var lines []string
				for _, a := range []*world.Archetype{ctx.Actor.Race, ctx.Actor.Job} {
					for dt := range a.Relations {
						if seen[dt] {
							continue
						}
						seen[dt] = true
						lines = append(lines, fmt.Sprintf("  %-12s %s", dt, ctx.Actor.Relation(dt)))
					}
				}
				if len(lines) == 0 {
					ctx.Respond("You have no special resistances.")
					return nil
				}
				sort.Strings(lines)
				ctx.Respond("{WDamage relations:{x")
				for _, l := range lines {
					ctx.Respond(l)
				}
				return nil
			},
		},
		{
			Name:    "learn",
			Pattern: "learn <ability:word>",
			Execute: func(ctx *command.Context, args command.Args) error {
				id := strings.ToLower(args["ability"].Raw)
				if g.Abilities.Get(id) == nil {
					ctx.Respond("No such ability.")
					return nil
				}
				if ctx.Actor.Learned(id) != nil {
					ctx.Respond("You already know that.")
					return nil
				}
				granted := false
				for _, a := range []*world.Archetype{ctx.Actor.Race, ctx.Actor.Job} {
					for _, gid := range a.GrantsAt(ctx.Actor.Level) {
						if gid == id {
							granted = true
						}
					}
				}
				if !granted {
					ctx.Respond("You can't learn that.")
					return nil
				}
				ctx.Actor.LearnAbility(id)
				ctx.Respond("You learn " + id + ".")
				return nil
			},
		},
		{
			Name:    "recall",
			Pattern: "recall",
			Execute: func(ctx *command.Context, args command.Args) error {
				m := ctx.Actor
				if m.Target != nil {
					ctx.Respond("Not while you are fighting!")
					return nil
				}
				dest, err := g.World.RecallRoom()
				if err != nil {
					ctx.Respond("You sense no sanctuary to return to.")
					return nil
				}
				world.Act(m, nil, "", "",
					"{User} vanishes in a flash of light.", world.ActOptions{})
				if err := world.Move(m, world.MoveOptions{To: dest}); err != nil {
					ctx.Respond("Something holds you here.")
					return nil
				}
				world.Act(m, nil,
					"You are whisked back to safety.", "",
					"{User} appears in a flash of light.", world.ActOptions{})
				if c := g.clientFor(m); c != nil && c.char.Settings.AutoLook {
					g.lookRoom(m)
				}
				return nil
			},
		},
		{
			Name:    "flee",
			Pattern: "flee",
			Execute: func(ctx *command.Context, args command.Args) error {
				m := ctx.Actor
				if m.Target == nil {
					ctx.Respond("You aren't fighting anyone.")
					return nil
				}
				r := m.Room()
				if r == nil {
					return nil
				}
				var open []world.Direction
				for _, d := range r.Exits() {
					if world.CanStep(m, d) {
						open = append(open, d)
					}
				}
				if len(open) == 0 {
					ctx.Respond("There is nowhere to run!")
					return nil
				}
				d := open[g.rng.Intn(len(open))]
				m.Target = nil
				world.Act(m, nil,
					"You flee "+d.String()+"!", "",
					"{User} flees "+d.String()+"!", world.ActOptions{Group: world.GroupCombat})
				if err := world.Step(m, d); err != nil {
					return nil
				}
				world.Act(m, nil, "", "",
					"{User} runs in, panting.", world.ActOptions{})
				return nil
			},
			Cooldown: func(*command.Context, command.Args) time.Duration {
				return fleeCooldown
			},
		},
		{
			Name:     "cancel",
			Pattern:  "cancel <scope:word?>",
			Priority: command.PriorityHigh,
			Execute: func(ctx *command.Context, args command.Args) error {
				all := false
				if s, ok := args["scope"]; ok {
					if !strings.EqualFold(s.Raw, "all") {
						ctx.Respond("Cancel what?")
						return nil
					}
					all = true
				}
				c := g.clientFor(ctx.Actor)
				if c == nil {
					return nil
				}
				n := c.queue.Cancel(all)
				if n == 1 {
					ctx.Respond("Cancelled 1 queued action.")
				} else {
					ctx.Respond(fmt.Sprintf("Cancelled %d queued actions.", n))
				}
				return nil
			},
		},
		{
			Name:    "config",
			Pattern: "config <setting:word?> <value:text?>",
			Execute: func(ctx *command.Context, args command.Args) error {
				c := g.clientFor(ctx.Actor)
				if c == nil {
					return nil
				}
				setting, hasSetting := args["setting"]
				value, hasValue := args["value"]
				if !hasSetting {
					g.showConfig(ctx, &c.char.Settings)
					return nil
				}
				if !hasValue {
					g.showConfig(ctx, &c.char.Settings)
					return nil
				}
				return g.setConfig(ctx, c, strings.ToLower(setting.Raw), value.Raw)
			},
		},
		{
			Name:    "help search",
			Pattern: "help search <query:text>",
			Execute: func(ctx *command.Context, args command.Args) error {
				hits := g.Help.Search(args["query"].Raw)
				if len(hits) == 0 {
					ctx.Respond("No help topics match.")
					return nil
				}
				ctx.Respond("{WMatching help topics:{x")
				for _, h := range hits {
					ctx.Respond("  " + h.ID + " - " + h.Title)
				}
				return nil
			},
		},
		{
			Name:    "help",
			Pattern: "h~elp <topic:text?>",
			Execute: func(ctx *command.Context, args command.Args) error {
				t, ok := args["topic"]
				if !ok {
					ctx.Respond("Try 'help <topic>' or 'help search <query>'.")
					ctx.Respond("Common topics: commands, combat, boards.")
					return nil
				}
				h := g.Help.Get(t.Raw)
				if h == nil {
					ctx.Respond("There is no help on that.")
					return nil
				}
				ctx.Respond("{W" + h.Title + "{x")
				for _, line := range strings.Split(strings.TrimRight(h.Body, "\n"), "\n") {
					ctx.Respond(line)
				}
				return nil
			},
		},
		{
			Name:    "boards",
			Pattern: "boards",
			Execute: func(ctx *command.Context, args command.Args) error {
				if len(g.Boards) == 0 {
					ctx.Respond("There are no boards.")
					return nil
				}
				names := make([]string, 0, len(g.Boards))
				for name := range g.Boards {
					names = append(names, name)
				}
				sort.Strings(names)
				now := time.Now()
				user := g.usernameOf(ctx.Actor)
				ctx.Respond("{WBoards:{x")
				for _, name := range names {
					b := g.Boards[name]
					ctx.Respond(fmt.Sprintf("  %-12s %d unread", name, b.UnreadCount(user, now)))
				}
				return nil
			},
		},
		{
			Name:    "board read",
			Pattern: "board <name:word> read <id:number>",
			Execute: func(ctx *command.Context, args command.Args) error {
				b := g.Boards[strings.ToLower(args["name"].Raw)]
				if b == nil {
					ctx.Respond("There is no such board.")
					return nil
				}
				user := g.usernameOf(ctx.Actor)
				now := time.Now()
				msg := b.Message(user, args["id"].Number, now)
				if msg == nil {
					ctx.Respond("There is no such message.")
					return nil
				}
				ctx.Respond(fmt.Sprintf("{W[%d] %s{x (%s, %s)",
					msg.ID, msg.Subject, msg.Author, msg.PostedAt.Format("2006-01-02")))
				for _, line := range strings.Split(strings.TrimRight(msg.Body, "\n"), "\n") {
					ctx.Respond(line)
				}
				b.MarkRead(user, msg.ID, now)
				return nil
			},
		},
		{
			Name:    "board post",
			Pattern: "board <name:word> post <subject:text>",
			Execute: func(ctx *command.Context, args command.Args) error {
				b := g.Boards[strings.ToLower(args["name"].Raw)]
				if b == nil {
					ctx.Respond("There is no such board.")
					return nil
				}
				c := g.clientFor(ctx.Actor)
				if c == nil {
					return nil
				}
				if !b.CanWrite(c.char.Privileged, false) {
					ctx.Respond("You may not post on that board.")
					return nil
				}
				g.collectPost(c, b, args["subject"].Raw)
				return nil
			},
		},
		{
			Name:    "board",
			Pattern: "board <name:word>",
			Execute: func(ctx *command.Context, args command.Args) error {
				b := g.Boards[strings.ToLower(args["name"].Raw)]
				if b == nil {
					ctx.Respond("There is no such board.")
					return nil
				}
				user := g.usernameOf(ctx.Actor)
				now := time.Now()
				msgs := b.VisibleMessages(user, now)
				if len(msgs) == 0 {
					ctx.Respond("The board is empty.")
					return nil
				}
				ctx.Respond("{W" + b.Name + "{x")
				for _, m := range msgs {
					ctx.Respond(fmt.Sprintf("  [%3d] %-30s %s", m.ID, m.Subject, m.Author))
				}
				return nil
			},
		},
		{
			Name:    "list",
			Pattern: "list",
			Execute: func(ctx *command.Context, args command.Args) error {
				keeper := shopkeeper(ctx.Actor.Room())
				if keeper == nil {
					ctx.Respond("There is no shop here.")
					return nil
				}
				stock := keeper.Contents()
				if len(stock) == 0 {
					ctx.Respond(world.Title(keeper.Display()) + " has nothing for sale.")
					return nil
				}
				ctx.Respond("{W" + world.Title(keeper.Display()) + " sells:{x")
				for _, e := range stock {
					if v, ok := itemValue(e); ok {
						ctx.Respond(fmt.Sprintf("  %-30s %d gold", e.Display(), v))
					}
				}
				return nil
			},
		},
		{
			Name:    "buy",
			Pattern: "buy <item:word>",
			Execute: func(ctx *command.Context, args command.Args) error {
				keeper := shopkeeper(ctx.Actor.Room())
				if keeper == nil {
					ctx.Respond("There is no shop here.")
					return nil
				}
				e := world.FindByKeyword(keeper.Contents(), args["item"].Raw, nil)
				if e == nil {
					ctx.Respond("They don't sell that.")
					return nil
				}
				price, ok := itemValue(e)
				if !ok {
					ctx.Respond("They don't sell that.")
					return nil
				}
				if ctx.Actor.Gold < price {
					ctx.Respond("You can't afford it.")
					return nil
				}
				if err := ctx.Actor.Add(e); err != nil {
					ctx.Respond("You can't carry it.")
					return nil
				}
				ctx.Actor.Gold -= price
				keeper.Gold += price
				world.Act(ctx.Actor, keeper,
					"You buy "+e.Display()+" for "+itoa(price)+" gold.",
					"",
					"{User} buys "+e.Display()+".", world.ActOptions{})
				return nil
			},
		},
		{
			Name:    "sell",
			Pattern: "sell <item:item>",
			Execute: func(ctx *command.Context, args command.Args) error {
				keeper := shopkeeper(ctx.Actor.Room())
				if keeper == nil {
					ctx.Respond("There is no shop here.")
					return nil
				}
				e := args["item"].Entity
				value, ok := itemValue(e)
				if !ok {
					ctx.Respond("They aren't interested in that.")
					return nil
				}
				price := value / 2
				if err := keeper.Add(e); err != nil {
					ctx.Respond("They won't take it.")
					return nil
				}
				ctx.Actor.Gold += price
				world.Act(ctx.Actor, keeper,
					"You sell "+e.Display()+" for "+itoa(price)+" gold.",
					"",
					"{User} sells "+e.Display()+".", world.ActOptions{})
				return nil
			},
		},
		{
			Name:    "time",
			Pattern: "time",
			Execute: func(ctx *command.Context, args command.Args) error {
				ctx.Respond("It is " + g.clock.Stamp() + ".")
				return nil
			},
		},
		{
			Name:    "save",
			Pattern: "save",
			Execute: func(ctx *command.Context, args command.Args) error {
				if c := g.clientFor(ctx.Actor); c != nil {
					g.saveClient(c)
					ctx.Respond("Saved.")
				}
				return nil
			},
		},
		{
			Name:    "quit",
			Pattern: "quit",
			Execute: func(ctx *command.Context, args command.Args) error {
				c := g.clientFor(ctx.Actor)
				if c == nil {
					return nil
				}
				ctx.Respond("Farewell.")
				c.conn.FlushOutput()
				c.conn.Close()
				return nil
			},
		},
		{
			Name:    "shutdown",
			Pattern: "shutdown",
			Execute: func(ctx *command.Context, args command.Args) error {
				if !g.privileged(ctx.Actor) {
					ctx.Respond("Huh?")
					return nil
				}
				g.Log.Warn("shutdown requested", zap.String("user", g.usernameOf(ctx.Actor)))
				g.Shutdown(ExitShutdown)
				return nil
			},
		},
		{
			Name:    "reload",
			Pattern: "reload",
			Execute: func(ctx *command.Context, args command.Args) error {
				if !g.privileged(ctx.Actor) {
					ctx.Respond("Huh?")
					return nil
				}
				if err := g.reloadScripts(); err != nil {
					ctx.Respond("Reload failed: " + err.Error())
					return nil
				}
				ctx.Respond("Scripts reloaded.")
				return nil
			},
		},
		{
			Name:    "track",
			Pattern: "track <target:word>",
			Execute: func(ctx *command.Context, args command.Args) error {
				if g.Paths == nil {
					ctx.Respond("You have no sense of direction.")
					return nil
				}
				here := ctx.Actor.Room()
				if here == nil {
					return nil
				}
				var quarry *world.Mob
				g.World.AllMobs(func(m *world.Mob) {
					if quarry == nil && m != ctx.Actor && !m.Dead &&
						m.MatchKeyword(args["target"].Raw) {
						quarry = m
					}
				})
				if quarry == nil || quarry.Room() == nil {
					ctx.Respond("You find no trail to follow.")
					return nil
				}
				if quarry.Room() == here {
					ctx.Respond("They are right here!")
					return nil
				}
				p := g.Paths.Find(here, quarry.Room(), nil, nil)
				if p == nil {
					ctx.Respond("The trail goes cold.")
					return nil
				}
				steps := make([]string, len(p.Directions))
				for i, d := range p.Directions {
					steps[i] = d.Abbrev()
				}
				ctx.Respond("The trail leads " + p.Directions[0].String() +
					" (" + strings.Join(steps, " ") + ").")
				return nil
			},
			Cooldown: func(*command.Context, command.Args) time.Duration {
				return time.Second
			},
		},
		{
			// Bare direction words and abbreviations. Registered last so
			// every named command gets first shot at the line; anything that
			// fails to parse as a direction reads as an unknown command.
			Name:    "move",
			Pattern: "<dir:direction>",
			OnError: func(ctx *command.Context, err error) {
				ctx.Respond("Huh?")
			},
			Execute: func(ctx *command.Context, args command.Args) error {
				return g.step(ctx, args["dir"].Direction)
			},
		},
	}
	for _, c := range cmds {
		if err := g.Registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// usernameOf returns the playing character's username for a mob, or its
// display name for NPCs.
func (g *Game) usernameOf(m *world.Mob) string {
	if c := g.clientFor(m); c != nil {
		return c.char.Username
	}
	return m.Display()
}

// showConfig prints the character's current settings.
func (g *Game) showConfig(ctx *command.Context, s *world.Settings) {
	onOff := func(b bool) string {
		if b {
			return "on"
		}
		return "off"
	}
	ctx.Respond("{WSettings:{x")
	ctx.Respond("  autolook     " + onOff(s.AutoLook))
	ctx.Respond("  brief        " + onOff(s.BriefMode))
	ctx.Respond("  verbose      " + onOff(s.VerboseMode))
	ctx.Respond("  color        " + onOff(s.ColorEnabled))
	ctx.Respond("  echo         " + string(s.EchoMode))
	ctx.Respond("  defaultcolor " + s.DefaultColor)
	ctx.Respond("  prompt       " + s.Prompt)
	ctx.Respond("Use 'config <setting> <value>' to change one.")
}

// setConfig applies one settings change and persists it.
func (g *Game) setConfig(ctx *command.Context, c *Client, setting, value string) error {
	s := &c.char.Settings
	parseBool := func() (bool, bool) {
		switch strings.ToLower(value) {
		case "on", "true", "yes":
			return true, true
		case "off", "false", "no":
			return false, true
		}
		return false, false
	}
	switch setting {
	case "autolook", "brief", "verbose", "color":
		b, ok := parseBool()
		if !ok {
			ctx.Respond("Use on or off.")
			return nil
		}
		switch setting {
		case "autolook":
			s.AutoLook = b
		case "brief":
			s.BriefMode = b
		case "verbose":
			s.VerboseMode = b
		case "color":
			s.ColorEnabled = b
		}
	case "echo":
		switch world.EchoMode(strings.ToLower(value)) {
		case world.EchoClient:
			s.EchoMode = world.EchoClient
			c.conn.SuppressEcho(false)
		case world.EchoServer:
			s.EchoMode = world.EchoServer
			c.conn.SuppressEcho(true)
		case world.EchoOff:
			s.EchoMode = world.EchoOff
			c.conn.SuppressEcho(true)
		default:
			ctx.Respond("Echo modes: client, server, off.")
			return nil
		}
	case "defaultcolor":
		if len(value) != 1 {
			ctx.Respond("Default color is a single style code character.")
			return nil
		}
		s.DefaultColor = value
	case "prompt":
		s.Prompt = value
	default:
		ctx.Respond("There is no such setting.")
		return nil
	}
	ctx.Respond("Set " + setting + ".")
	g.saveClient(c)
	return nil
}

// collectPost gathers a post body line by line until a lone "." and then
// files the message.
func (g *Game) collectPost(c *Client, b *board.Board, subject string) {
	var lines []string
	var collect func(line string)
	collect = func(line string) {
		if strings.TrimSpace(line) == "." {
			msg, err := b.CreateMessage(c.char.Username, subject,
				strings.Join(lines, "\n"), nil, c.char.Privileged, time.Now())
			if err != nil {
				c.Deliver(world.GroupResponse, "Your post was rejected: "+err.Error())
				return
			}
			c.Deliver(world.GroupResponse,
				fmt.Sprintf("Posted message %d to %s.", msg.ID, b.Name))
			event.Emit(g.Bus, event.BoardPosted{
				Board: b.Name, Author: c.char.Username, ID: msg.ID,
			})
			return
		}
		lines = append(lines, line)
		c.Ask(collect)
	}
	c.Deliver(world.GroupResponse, "Enter your message. End with '.' on a line by itself.")
	if !c.Ask(collect) {
		c.Deliver(world.GroupResponse, "Finish your pending prompt first.")
	}
}
