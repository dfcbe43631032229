package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":4000", cfg.Server.BindAddress())
	assert.Equal(t, 30*time.Minute, cfg.Server.IdleWindow())
	assert.Equal(t, 24, cfg.Game.Calendar.HoursPerDay)
	assert.Equal(t, 2, cfg.Game.Combat.AttackPerStrength)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mudd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  host: 127.0.0.1
  port: 5000
  inactivity_timeout: 600
  negotiation_timeout: 5s
game:
  name: Testmud
  calendar:
    hours_per_day: 20
  combat:
    attack_per_strength: 3
logging:
  level: debug
`), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:5000", cfg.Server.BindAddress())
	assert.Equal(t, 10*time.Minute, cfg.Server.IdleWindow())
	assert.Equal(t, 5*time.Second, cfg.Server.NegotiationTimeout.Std())
	assert.Equal(t, "Testmud", cfg.Game.Name)
	assert.Equal(t, 20, cfg.Game.Calendar.HoursPerDay)
	assert.Equal(t, 3, cfg.Game.Combat.AttackPerStrength)
	// Keys absent from the file keep their defaults.
	assert.Equal(t, 12, cfg.Game.Calendar.MonthsPerYear)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mudd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [broken"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
