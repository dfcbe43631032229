package command

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackindisguise/mud3-sub004/internal/world"
)

// Kind names an argument hole's resolution rule.
type Kind string

const (
	KindWord      Kind = "word"
	KindText      Kind = "text"
	KindNumber    Kind = "number"
	KindDirection Kind = "direction"

	// Object kinds resolve by keyword-prefix match against the actor's
	// context. The bare kinds are shorthands for their default context.
	KindMob             Kind = "mob"
	KindItem            Kind = "item"
	KindObject          Kind = "object"
	KindMobRoom         Kind = "mob@room"
	KindItemInventory   Kind = "item@inventory"
	KindObjectRoom      Kind = "object@room"
	KindObjectInventory Kind = "object@inventory"
)

// argSpec is one named hole in a compiled pattern.
type argSpec struct {
	name     string
	kind     Kind
	optional bool
}

// Pattern is a compiled command pattern: a regex that consumes literals and
// scalar kinds, plus resolvers for the object kinds.
type Pattern struct {
	source string
	re     *regexp.Regexp
	args   []argSpec
}

var holePattern = regexp.MustCompile(`^<([a-z][a-zA-Z0-9_]*):([a-z@]+)(\?)?>$`)

// Compile parses a pattern string. Grammar per token:
//
//	word          literal
//	wo~rd         literal "wo" plus any prefix of "rd" (autocomplete)
//	'two words'   quoted multi-word literal
//	<name:kind?>  named argument hole, '?' marks optional
func Compile(src string) (*Pattern, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("empty pattern")
	}

	p := &Pattern{source: src}
	var b strings.Builder
	b.WriteString(`(?i)^\s*`)
	for i, tok := range tokens {
		sep := `\s+`
		if i == 0 {
			sep = ""
		}
		if m := holePattern.FindStringSubmatch(tok); m != nil {
			kind := Kind(m[2])
			if !validKind(kind) {
				return nil, fmt.Errorf("pattern %q: unknown argument kind %q", src, m[2])
			}
			spec := argSpec{name: m[1], kind: kind, optional: m[3] == "?"}
			p.args = append(p.args, spec)
			capture := kindCapture(kind)
			if spec.optional {
				fmt.Fprintf(&b, `(?:%s%s)?`, sep, capture)
			} else {
				b.WriteString(sep)
				b.WriteString(capture)
			}
			continue
		}
		b.WriteString(sep)
		b.WriteString(literalRegex(tok))
	}
	b.WriteString(`\s*$`)

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", src, err)
	}
	p.re = re
	return p, nil
}

// tokenize splits on whitespace, keeping single-quoted spans as one token.
func tokenize(src string) ([]string, error) {
	var tokens []string
	i := 0
	for i < len(src) {
		for i < len(src) && src[i] == ' ' {
			i++
		}
		if i >= len(src) {
			break
		}
		if src[i] == '\'' {
			end := strings.IndexByte(src[i+1:], '\'')
			if end < 0 {
				return nil, fmt.Errorf("pattern %q: unterminated quote", src)
			}
			tokens = append(tokens, src[i+1:i+1+end])
			i += end + 2
			continue
		}
		end := strings.IndexByte(src[i:], ' ')
		if end < 0 {
			tokens = append(tokens, src[i:])
			break
		}
		tokens = append(tokens, src[i:i+end])
		i += end
	}
	return tokens, nil
}

// literalRegex renders one literal token. A '~' splits the token into a
// required prefix and an optional character-by-character completion, so
// "conf~ig" matches conf, confi, and config. Quoted literals may contain
// spaces, matched as runs of whitespace.
func literalRegex(tok string) string {
	var b strings.Builder
	rest := tok
	first := true
	for {
		idx := strings.IndexByte(rest, '~')
		var part string
		if idx < 0 {
			part = rest
			rest = ""
		} else {
			part = rest[:idx]
			rest = rest[idx+1:]
		}
		if first {
			b.WriteString(quoteLiteral(part))
			first = false
		} else {
			// Nested optional groups: each further character may stop.
			closers := 0
			for _, r := range part {
				b.WriteString(`(?:`)
				b.WriteString(regexp.QuoteMeta(string(r)))
				closers++
			}
			for ; closers > 0; closers-- {
				b.WriteString(`)?`)
			}
		}
		if rest == "" {
			break
		}
	}
	return b.String()
}

func quoteLiteral(s string) string {
	fields := strings.Fields(s)
	if len(fields) <= 1 {
		return regexp.QuoteMeta(s)
	}
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = regexp.QuoteMeta(f)
	}
	return strings.Join(quoted, `\s+`)
}

func validKind(k Kind) bool {
	switch k {
	case KindWord, KindText, KindNumber, KindDirection,
		KindMob, KindItem, KindObject,
		KindMobRoom, KindItemInventory, KindObjectRoom, KindObjectInventory:
		return true
	}
	return false
}

func kindCapture(k Kind) string {
	switch k {
	case KindText:
		return `(.+?)`
	case KindNumber:
		return `(-?\d+)`
	default:
		return `(\S+)`
	}
}

// Arg is one resolved argument value. Which field is set depends on the kind.
type Arg struct {
	Raw       string
	Number    int
	Direction world.Direction
	Entity    world.Entity
	Mob       *world.Mob
}

// Args maps hole names to resolved values. Optional holes that did not bind
// are absent from the map.
type Args map[string]Arg

// Match binds the line against the pattern and resolves every argument in
// the actor's context. A nil return with nil error means the regex did not
// bind; a non-nil error means the shape matched but a required argument
// failed to resolve.
func (p *Pattern) Match(actor *world.Mob, line string) (Args, error) {
	m := p.re.FindStringSubmatch(line)
	if m == nil {
		return nil, nil
	}
	args := make(Args, len(p.args))
	for i, spec := range p.args {
		raw := m[i+1]
		if raw == "" {
			if spec.optional {
				continue
			}
			return nil, &ParseError{Message: "Missing argument: " + spec.name + "."}
		}
		arg, err := resolveArg(actor, spec, raw)
		if err != nil {
			if spec.optional {
				continue
			}
			return nil, err
		}
		args[spec.name] = arg
	}
	return args, nil
}

// Source returns the pattern text the command was registered with.
func (p *Pattern) Source() string { return p.source }

func resolveArg(actor *world.Mob, spec argSpec, raw string) (Arg, error) {
	switch spec.kind {
	case KindWord, KindText:
		return Arg{Raw: raw}, nil
	case KindNumber:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Arg{}, parseErrorf("%q is not a number.", raw)
		}
		return Arg{Raw: raw, Number: n}, nil
	case KindDirection:
		d, ok := world.ParseDirection(raw)
		if !ok {
			return Arg{}, parseErrorf("%q is not a direction.", raw)
		}
		return Arg{Raw: raw, Direction: d}, nil
	case KindMob, KindMobRoom:
		mob := findMob(actor, raw)
		if mob == nil {
			return Arg{}, &ResolutionError{Argument: spec.name, Message: "You don't see them here."}
		}
		return Arg{Raw: raw, Entity: mob, Mob: mob}, nil
	case KindItem, KindItemInventory:
		e := findInInventory(actor, raw)
		if e == nil {
			return Arg{}, &ResolutionError{Argument: spec.name, Message: "You aren't carrying that."}
		}
		return Arg{Raw: raw, Entity: e}, nil
	case KindObjectRoom:
		e := findInRoom(actor, raw)
		if e == nil {
			return Arg{}, &ResolutionError{Argument: spec.name, Message: "You don't see that here."}
		}
		return Arg{Raw: raw, Entity: e}, nil
	case KindObjectInventory:
		e := findAnyInInventory(actor, raw)
		if e == nil {
			return Arg{}, &ResolutionError{Argument: spec.name, Message: "You aren't carrying that."}
		}
		return Arg{Raw: raw, Entity: e}, nil
	case KindObject:
		// Inventory first, then the room.
		if e := findAnyInInventory(actor, raw); e != nil {
			return Arg{Raw: raw, Entity: e}, nil
		}
		e := findInRoom(actor, raw)
		if e == nil {
			return Arg{}, &ResolutionError{Argument: spec.name, Message: "You don't see that here."}
		}
		return Arg{Raw: raw, Entity: e}, nil
	}
	return Arg{}, parseErrorf("unresolvable argument kind %q", spec.kind)
}

func findMob(actor *world.Mob, raw string) *world.Mob {
	r := actor.Room()
	if r == nil {
		return nil
	}
	e := world.FindByKeyword(r.Contents(), raw, func(e world.Entity) bool {
		_, ok := e.(*world.Mob)
		return ok
	})
	m, _ := e.(*world.Mob)
	return m
}

func findInInventory(actor *world.Mob, raw string) world.Entity {
	return world.FindByKeyword(actor.Contents(), raw, func(e world.Entity) bool {
		switch e.(type) {
		case *world.Item, *world.Equipment, *world.Weapon, *world.Armor:
			return true
		}
		return false
	})
}

func findAnyInInventory(actor *world.Mob, raw string) world.Entity {
	return world.FindByKeyword(actor.Contents(), raw, nil)
}

func findInRoom(actor *world.Mob, raw string) world.Entity {
	r := actor.Room()
	if r == nil {
		return nil
	}
	return world.FindByKeyword(r.Contents(), raw, func(e world.Entity) bool {
		return e != world.Entity(actor)
	})
}
