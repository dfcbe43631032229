package world

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ActOptions is the options bag for Act.
type ActOptions struct {
	Group         MessageGroup
	ExcludeUser   bool
	ExcludeTarget bool
}

var titleCaser = cases.Title(language.English, cases.NoLower)

// Title capitalizes a display name for sentence starts. Only the leading
// word is cased, so "a goblin" becomes "A goblin", not "A Goblin".
func Title(s string) string {
	if i := strings.IndexByte(s, ' '); i > 0 {
		return titleCaser.String(s[:i]) + s[i:]
	}
	return titleCaser.String(s)
}

// expandActTemplate substitutes the participant tokens in one narration
// template. {User}/{Target} capitalize the display name; {user}/{target}
// insert it verbatim.
func expandActTemplate(tpl string, user, target *Mob) string {
	rep := []string{
		"{User}", Title(user.Display()),
		"{user}", user.Display(),
	}
	if target != nil {
		rep = append(rep,
			"{Target}", Title(target.Display()),
			"{target}", target.Display(),
		)
	}
	return strings.NewReplacer(rep...).Replace(tpl)
}

// Act is the narration primitive: it delivers the user template to the user,
// the target template to the optional target, and the room template to every
// other mob in the room, each with participant tokens expanded. Delivery
// order follows room contents order, so causally related lines stay ordered
// per recipient.
func Act(user *Mob, target *Mob, userTpl, targetTpl, roomTpl string, opt ActOptions) {
	if opt.Group == "" {
		opt.Group = GroupAction
	}
	if user != nil && !opt.ExcludeUser && userTpl != "" {
		user.Deliver(opt.Group, expandActTemplate(userTpl, user, target))
	}
	if target != nil && !opt.ExcludeTarget && targetTpl != "" {
		target.Deliver(opt.Group, expandActTemplate(targetTpl, user, target))
	}
	if roomTpl == "" || user == nil {
		return
	}
	room := user.Room()
	if room == nil {
		return
	}
	line := expandActTemplate(roomTpl, user, target)
	for _, m := range room.Mobs() {
		if m == user || m == target {
			continue
		}
		m.Deliver(opt.Group, line)
	}
}
