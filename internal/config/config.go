package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jackindisguise/mud3-sub004/internal/world"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Game    GameConfig    `yaml:"game"`
	Data    DataConfig    `yaml:"data"`
	Logging LoggingConfig `yaml:"logging"`
}

// Duration decodes "10m"-style strings, since yaml.v3 has no native
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

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

type ServerConfig struct {
	Host               string   `yaml:"host"`
	Port               int      `yaml:"port"`
	InactivityTimeout  int      `yaml:"inactivity_timeout"` // seconds
	NegotiationTimeout Duration `yaml:"negotiation_timeout"`
	TickRate           Duration `yaml:"tick_rate"`
	InQueueSize        int      `yaml:"in_queue_size"`
	OutQueueSize       int      `yaml:"out_queue_size"`
}

// BindAddress joins host and port for net.Listen.
func (s ServerConfig) BindAddress() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IdleWindow is the inactivity timeout as a duration.
func (s ServerConfig) IdleWindow() time.Duration {
	return time.Duration(s.InactivityTimeout) * time.Second
}

type GameConfig struct {
	Name        string         `yaml:"name"`
	Creator     string         `yaml:"creator"`
	DefaultRace string         `yaml:"default_race"`
	DefaultJob  string         `yaml:"default_job"`
	Calendar    CalendarConfig `yaml:"calendar"`
	Combat      world.Factors  `yaml:"combat"`
}

// CalendarConfig shapes the in-game clock. One real second is one game
// minute.
type CalendarConfig struct {
	HoursPerDay   int `yaml:"hours_per_day"`
	DaysPerWeek   int `yaml:"days_per_week"`
	DaysPerMonth  int `yaml:"days_per_month"`
	MonthsPerYear int `yaml:"months_per_year"`
}

type DataConfig struct {
	Dir string `yaml:"dir"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "console"
}

// Load reads a config file over the defaults. A missing file yields the
// defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := defaults()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:               "",
			Port:               4000,
			InactivityTimeout:  30 * 60,
			NegotiationTimeout: Duration(2 * time.Second),
			TickRate:           Duration(100 * time.Millisecond),
			InQueueSize:        64,
			OutQueueSize:       256,
		},
		Game: GameConfig{
			Name:        "Undermountain",
			Creator:     "the architects",
			DefaultRace: "human",
			DefaultJob:  "adventurer",
			Calendar: CalendarConfig{
				HoursPerDay:   24,
				DaysPerWeek:   7,
				DaysPerMonth:  28,
				MonthsPerYear: 12,
			},
			Combat: world.DefaultFactors,
		},
		Data: DataConfig{
			Dir: "data",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
