package board

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackindisguise/mud3-sub004/internal/persist"
)

// boardFile is the on-disk configuration document.
type boardFile struct {
	Board *Board `yaml:"board"`
}

// messagesFile is the on-disk message list, split from the configuration so
// message growth does not rewrite metadata.
type messagesFile struct {
	Messages []*Message `yaml:"messages"`
}

// Store persists boards under one directory as <name>.yaml plus
// <name>.messages.yaml.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store { return &Store{dir: dir} }

func (s *Store) configPath(name string) string {
	return filepath.Join(s.dir, persist.SanitizeFilename(name)+".yaml")
}

func (s *Store) messagesPath(name string) string {
	return filepath.Join(s.dir, persist.SanitizeFilename(name)+".messages.yaml")
}

// Load reads one board. A missing message file is legal and yields an empty
// board.
func (s *Store) Load(name string) (*Board, error) {
	var cfg boardFile
	if err := persist.LoadYAML(s.configPath(name), &cfg); err != nil {
		return nil, fmt.Errorf("load board %s: %w", name, err)
	}
	if cfg.Board == nil {
		return nil, fmt.Errorf("load board %s: missing board document", name)
	}
	b := cfg.Board
	if b.nextID == 0 {
		b.nextID = 1
	}

	var msgs messagesFile
	err := persist.LoadYAML(s.messagesPath(name), &msgs)
	switch {
	case err == nil:
		b.setMessages(msgs.Messages)
	case os.IsNotExist(err):
		b.setMessages(nil)
	default:
		return nil, fmt.Errorf("load board %s messages: %w", name, err)
	}
	return b, nil
}

// LoadAll reads every board in the directory. A missing directory yields an
// empty set.
func (s *Store) LoadAll() (map[string]*Board, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return map[string]*Board{}, nil
	}
	if err != nil {
		return nil, err
	}
	boards := make(map[string]*Board)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".messages.yaml") {
			continue
		}
		stem := strings.TrimSuffix(name, ".yaml")
		b, err := s.Load(stem)
		if err != nil {
			return nil, err
		}
		boards[b.Name] = b
	}
	return boards, nil
}

// Save writes both halves atomically and clears the dirty flag.
func (s *Store) Save(b *Board) error {
	if err := persist.SaveYAML(s.configPath(b.Name), &boardFile{Board: b}); err != nil {
		return err
	}
	if err := persist.SaveYAML(s.messagesPath(b.Name), &messagesFile{Messages: b.Messages()}); err != nil {
		return err
	}
	b.ClearDirty()
	return nil
}
