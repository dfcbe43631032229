package world

import "time"

// EchoMode controls whether received lines are echoed back to the sender.
type EchoMode string

const (
	EchoClient EchoMode = "client"
	EchoServer EchoMode = "server"
	EchoOff    EchoMode = "off"
)

// Settings are the per-character rendering and behavior preferences.
type Settings struct {
	DefaultColor string   `yaml:"defaultColor,omitempty"`
	AutoLook     bool     `yaml:"autoLook"`
	VerboseMode  bool     `yaml:"verboseMode"`
	BriefMode    bool     `yaml:"briefMode"`
	ColorEnabled bool     `yaml:"colorEnabled"`
	EchoMode     EchoMode `yaml:"echoMode"`
	Prompt       string   `yaml:"prompt"`
}

// DefaultSettings are applied to freshly registered characters.
func DefaultSettings() Settings {
	return Settings{
		AutoLook:     true,
		ColorEnabled: true,
		EchoMode:     EchoClient,
		Prompt:       "{g%hh{x/{G%HH{xhp {c%mm{x/{C%MM{xmp %xp{xxp> ",
	}
}

// Character is the persistent player envelope: credentials, settings, and
// the owning mob. Serialized separately from world state.
type Character struct {
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	LastLogin    time.Time

	Privileged bool

	Settings Settings

	Mob *Mob
}
