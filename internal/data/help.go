package data

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Helpfile is one help topic.
type Helpfile struct {
	ID      string   `yaml:"id"`
	Title   string   `yaml:"title"`
	Aliases []string `yaml:"aliases,omitempty"`
	Topics  []string `yaml:"topics,omitempty"`
	Body    string   `yaml:"body"`
}

type helpListFile struct {
	Helpfiles []Helpfile `yaml:"helpfiles"`
}

// HelpTable indexes helpfiles by id, alias, and topic.
type HelpTable struct {
	byID    map[string]*Helpfile
	byAlias map[string]*Helpfile
	byTopic map[string][]*Helpfile
}

// Get resolves a helpfile by id or alias, case-insensitive.
func (t *HelpTable) Get(key string) *Helpfile {
	k := strings.ToLower(key)
	if h, ok := t.byID[k]; ok {
		return h
	}
	return t.byAlias[k]
}

// Count returns the number of loaded helpfiles.
func (t *HelpTable) Count() int {
	return len(t.byID)
}

// Search returns helpfiles whose title, topics, or body contain the query,
// case-insensitive, ordered by id.
func (t *HelpTable) Search(query string) []*Helpfile {
	q := strings.ToLower(query)
	var out []*Helpfile
	for _, h := range t.byID {
		if strings.Contains(strings.ToLower(h.Title), q) ||
			strings.Contains(strings.ToLower(h.Body), q) ||
			topicMatches(h.Topics, q) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func topicMatches(topics []string, q string) bool {
	for _, topic := range topics {
		if strings.Contains(strings.ToLower(topic), q) {
			return true
		}
	}
	return false
}

// LoadHelpTable loads every help file in a directory. Duplicate ids or
// aliases are an error.
func LoadHelpTable(dir string) (*HelpTable, error) {
	t := &HelpTable{
		byID:    make(map[string]*Helpfile),
		byAlias: make(map[string]*Helpfile),
		byTopic: make(map[string][]*Helpfile),
	}
	err := eachYAMLFile(dir, func(path string) error {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("help: read %s: %w", path, err)
		}
		var f helpListFile
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return fmt.Errorf("help: parse %s: %w", path, err)
		}
		for i := range f.Helpfiles {
			h := &f.Helpfiles[i]
			id := strings.ToLower(h.ID)
			if id == "" {
				return fmt.Errorf("help: %s: missing id", path)
			}
			if _, dup := t.byID[id]; dup {
				return fmt.Errorf("help: duplicate id %q in %s", h.ID, path)
			}
			t.byID[id] = h
			for _, alias := range h.Aliases {
				a := strings.ToLower(alias)
				if _, dup := t.byAlias[a]; dup {
					return fmt.Errorf("help: duplicate alias %q in %s", alias, path)
				}
				t.byAlias[a] = h
			}
			for _, topic := range h.Topics {
				tp := strings.ToLower(topic)
				t.byTopic[tp] = append(t.byTopic[tp], h)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}
