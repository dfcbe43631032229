// Package board implements message boards: posting under a write policy,
// expiry on time-limited boards, per-user visibility, and read tracking.
// Board state mutates on message activity and is re-persisted periodically.
package board

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// WritePolicy gates who may post.
type WritePolicy string

const (
	WriteAll        WritePolicy = "all"
	WritePrivileged WritePolicy = "privileged"
	WriteSystem     WritePolicy = "system"
)

// ErrWriteForbidden is returned when the poster fails the board's policy.
var ErrWriteForbidden = errors.New("write forbidden")

// ErrNoSubject is returned when a post carries an empty subject.
var ErrNoSubject = errors.New("subject required")

// placeholderSubject is assigned to legacy messages loaded without one.
const placeholderSubject = "(No subject)"

// Message is one board post. Targets limit visibility; an empty list means
// public. ReadBy tracks which users marked the message read.
type Message struct {
	ID       int       `yaml:"id"`
	Author   string    `yaml:"author"`
	Subject  string    `yaml:"subject"`
	Body     string    `yaml:"body"`
	PostedAt time.Time `yaml:"posted_at"`
	Targets  []string  `yaml:"targets,omitempty"`
	ReadBy   []string  `yaml:"read_by,omitempty"`
}

// visibleTo applies the visibility rule: public, or authored by the user,
// or targeted at the user. Username comparison is case-insensitive.
func (m *Message) visibleTo(username string) bool {
	if len(m.Targets) == 0 {
		return true
	}
	if strings.EqualFold(m.Author, username) {
		return true
	}
	for _, t := range m.Targets {
		if strings.EqualFold(t, username) {
			return true
		}
	}
	return false
}

// readBy reports whether the user already marked the message read.
func (m *Message) readBy(username string) bool {
	for _, r := range m.ReadBy {
		if strings.EqualFold(r, username) {
			return true
		}
	}
	return false
}

// Duration decodes "168h"-style strings, since yaml.v3 has no native
// time.Duration support.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("bad duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Board is one message board. Configuration and the message list persist in
// separate files so message growth never rewrites metadata.
type Board struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	Policy      WritePolicy `yaml:"write_policy"`
	Expiry      Duration    `yaml:"expiry,omitempty"` // 0 = never expires

	messages []*Message
	nextID   int
	dirty    bool
}

// New creates an empty board.
func New(name string, policy WritePolicy) *Board {
	return &Board{Name: name, Policy: policy, nextID: 1}
}

// setMessages installs a loaded message list: legacy subjects get the
// placeholder and the id counter resumes past the highest existing id.
func (b *Board) setMessages(msgs []*Message) {
	maxID := 0
	for _, m := range msgs {
		if m.Subject == "" {
			m.Subject = placeholderSubject
		}
		if m.ID > maxID {
			maxID = m.ID
		}
	}
	b.messages = msgs
	b.nextID = maxID + 1
}

// Dirty reports whether the board has unpersisted changes.
func (b *Board) Dirty() bool { return b.dirty }

// ClearDirty marks the board persisted.
func (b *Board) ClearDirty() { b.dirty = false }

// CanWrite applies the write policy. The system itself always may post.
func (b *Board) CanWrite(privileged, system bool) bool {
	if system {
		return true
	}
	switch b.Policy {
	case WriteAll:
		return true
	case WritePrivileged:
		return privileged
	default:
		return false
	}
}

// CreateMessage posts under the write policy. Ids are strictly increasing.
func (b *Board) CreateMessage(author, subject, body string, targets []string, privileged bool, now time.Time) (*Message, error) {
	if !b.CanWrite(privileged, false) {
		return nil, ErrWriteForbidden
	}
	if strings.TrimSpace(subject) == "" {
		return nil, ErrNoSubject
	}
	m := &Message{
		ID:       b.nextID,
		Author:   author,
		Subject:  subject,
		Body:     body,
		PostedAt: now,
		Targets:  targets,
	}
	b.nextID++
	b.messages = append(b.messages, m)
	b.dirty = true
	return m, nil
}

// expire drops messages older than the expiry window and marks the board
// dirty when anything fell off. No-op on boards without a window.
func (b *Board) expire(now time.Time) {
	if b.Expiry <= 0 {
		return
	}
	kept := b.messages[:0]
	for _, m := range b.messages {
		if now.Sub(m.PostedAt) <= time.Duration(b.Expiry) {
			kept = append(kept, m)
		} else {
			b.dirty = true
		}
	}
	b.messages = kept
}

// VisibleMessages returns the messages the user may see, oldest first.
// Reading a time-limited board expires stale messages as a side effect.
func (b *Board) VisibleMessages(username string, now time.Time) []*Message {
	b.expire(now)
	var out []*Message
	for _, m := range b.messages {
		if m.visibleTo(username) {
			out = append(out, m)
		}
	}
	return out
}

// UnreadCount returns how many visible messages the user has not read.
func (b *Board) UnreadCount(username string, now time.Time) int {
	n := 0
	for _, m := range b.VisibleMessages(username, now) {
		if !m.readBy(username) {
			n++
		}
	}
	return n
}

// Message returns a visible message by id, or nil.
func (b *Board) Message(username string, id int, now time.Time) *Message {
	for _, m := range b.VisibleMessages(username, now) {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// MarkRead records the user on the message's read-by set and schedules a
// persist. Idempotent.
func (b *Board) MarkRead(username string, id int, now time.Time) {
	m := b.Message(username, id, now)
	if m == nil || m.readBy(username) {
		return
	}
	m.ReadBy = append(m.ReadBy, username)
	b.dirty = true
}

// Messages returns the full list regardless of visibility. Used by the
// persister.
func (b *Board) Messages() []*Message { return b.messages }

// NextID returns the id the next post will get.
func (b *Board) NextID() int { return b.nextID }
