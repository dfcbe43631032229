package persist

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jackindisguise/mud3-sub004/internal/world"
)

// characterFile is the on-disk envelope for one player character.
type characterFile struct {
	Username     string         `yaml:"username"`
	PasswordHash string         `yaml:"password_hash"`
	CreatedAt    time.Time      `yaml:"created_at"`
	LastLogin    time.Time      `yaml:"last_login"`
	Privileged   bool           `yaml:"privileged,omitempty"`
	Settings     world.Settings `yaml:"settings"`
	Mob          *Node          `yaml:"mob"`
}

// CharacterRepo stores characters one file per username under a directory.
type CharacterRepo struct {
	dir      string
	hydrator *Hydrator
	log      *zap.Logger
}

// NewCharacterRepo creates a repo rooted at dir.
func NewCharacterRepo(dir string, h *Hydrator, log *zap.Logger) *CharacterRepo {
	return &CharacterRepo{dir: dir, hydrator: h, log: log}
}

func (r *CharacterRepo) path(username string) string {
	return filepath.Join(r.dir, SanitizeFilename(username)+".yaml")
}

// Exists reports whether a character file is present for the username.
func (r *CharacterRepo) Exists(username string) bool {
	_, err := os.Stat(r.path(username))
	return err == nil
}

// Save writes the character atomically.
func (r *CharacterRepo) Save(c *world.Character) error {
	f := characterFile{
		Username:     c.Username,
		PasswordHash: c.PasswordHash,
		CreatedAt:    c.CreatedAt,
		LastLogin:    c.LastLogin,
		Privileged:   c.Privileged,
		Settings:     c.Settings,
	}
	if c.Mob != nil {
		f.Mob = Serialize(c.Mob)
	}
	if err := SaveYAML(r.path(c.Username), &f); err != nil {
		return fmt.Errorf("character %s: %w", c.Username, err)
	}
	return nil
}

// Load reads a character by username. os.IsNotExist on the returned error
// distinguishes "no such character" from corruption.
func (r *CharacterRepo) Load(username string) (*world.Character, error) {
	var f characterFile
	if err := LoadYAML(r.path(username), &f); err != nil {
		return nil, err
	}
	c := &world.Character{
		Username:     f.Username,
		PasswordHash: f.PasswordHash,
		CreatedAt:    f.CreatedAt,
		LastLogin:    f.LastLogin,
		Privileged:   f.Privileged,
		Settings:     f.Settings,
	}
	if f.Mob != nil {
		e, err := r.hydrator.Deserialize(f.Mob)
		if err != nil {
			return nil, fmt.Errorf("character %s: %w", username, err)
		}
		m, ok := e.(*world.Mob)
		if !ok {
			return nil, fmt.Errorf("character %s: mob node is a %s", username, e.Kind())
		}
		c.Mob = m
	}
	return c, nil
}

// Usernames lists every stored character name, derived from filenames.
func (r *CharacterRepo) Usernames() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		out = append(out, strings.TrimSuffix(name, ".yaml"))
	}
	return out, nil
}
