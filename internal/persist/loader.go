package persist

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"github.com/jackindisguise/mud3-sub004/internal/data"
	"github.com/jackindisguise/mud3-sub004/internal/world"
)

// Loader populates a world from the dungeon packages under a data
// directory. The directory is guarded by a lockfile so two processes never
// load or persist over each other.
type Loader struct {
	root      string
	templates *data.TemplateTable
	races     *data.ArchetypeTable
	jobs      *data.ArchetypeTable
	lock      *flock.Flock
	log       *zap.Logger
}

// NewLoader creates a loader rooted at the data directory.
func NewLoader(root string, templates *data.TemplateTable, races, jobs *data.ArchetypeTable, log *zap.Logger) *Loader {
	return &Loader{
		root:      root,
		templates: templates,
		races:     races,
		jobs:      jobs,
		lock:      flock.New(filepath.Join(root, ".mudd.lock")),
		log:       log,
	}
}

// Acquire takes the data-directory lock. It fails immediately when another
// process holds it.
func (l *Loader) Acquire() error {
	ok, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock %s: %w", l.lock.Path(), err)
	}
	if !ok {
		return fmt.Errorf("data directory %s is locked by another process", l.root)
	}
	return nil
}

// Release drops the data-directory lock.
func (l *Loader) Release() error {
	return l.lock.Unlock()
}

// LoadWorld reads every dungeon package, orders them so declared
// requirements load first, then builds grids, gateway links, and spawns.
func (l *Loader) LoadWorld(w *world.World, f world.Factors) error {
	files, err := l.readDungeonFiles()
	if err != nil {
		return err
	}
	ordered, err := orderByRequires(files)
	if err != nil {
		return err
	}
	for _, df := range ordered {
		d, err := BuildDungeon(df)
		if err != nil {
			return err
		}
		if err := w.AddDungeon(d); err != nil {
			return err
		}
		l.log.Info("loaded dungeon",
			zap.String("id", d.ID), zap.Int("rooms", d.RoomCount()))
	}
	// Gateways last: requirement order guarantees targets exist, but links
	// may also point forward within one file.
	for _, df := range ordered {
		if err := ApplyGateways(w, df); err != nil {
			return err
		}
	}
	for _, df := range ordered {
		if err := l.applySpawns(w, df, f); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loader) readDungeonFiles() ([]*DungeonFile, error) {
	dir := filepath.Join(l.root, "dungeons")
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("dungeons: %w", err)
	}
	var out []*DungeonFile
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		path := filepath.Join(dir, name)
		var df DungeonFile
		if err := LoadYAML(path, &df); err != nil {
			return nil, fmt.Errorf("dungeons: %s: %w", name, err)
		}
		if df.Dungeon.ID == "" {
			return nil, fmt.Errorf("dungeons: %s: missing dungeon id", name)
		}
		out = append(out, &df)
	}
	return out, nil
}

// orderByRequires topologically sorts packages on their declared
// requirements. Unknown requirements and cycles are errors.
func orderByRequires(files []*DungeonFile) ([]*DungeonFile, error) {
	byID := make(map[string]*DungeonFile, len(files))
	for _, df := range files {
		if _, dup := byID[df.Dungeon.ID]; dup {
			return nil, fmt.Errorf("duplicate dungeon id %q", df.Dungeon.ID)
		}
		byID[df.Dungeon.ID] = df
	}
	indegree := make(map[string]int, len(files))
	dependents := make(map[string][]string)
	for _, df := range files {
		id := df.Dungeon.ID
		for _, req := range df.Requires {
			if _, ok := byID[req]; !ok {
				return nil, fmt.Errorf("dungeon %q requires unknown dungeon %q", id, req)
			}
			indegree[id]++
			dependents[req] = append(dependents[req], id)
		}
	}
	var queue []string
	for _, df := range files {
		if indegree[df.Dungeon.ID] == 0 {
			queue = append(queue, df.Dungeon.ID)
		}
	}
	sort.Strings(queue)
	var ordered []*DungeonFile
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		ordered = append(ordered, byID[id])
		for _, dep := range dependents[id] {
			indegree[dep]--
			if indegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
		sort.Strings(queue)
	}
	if len(ordered) != len(files) {
		var stuck []string
		for id, n := range indegree {
			if n > 0 {
				stuck = append(stuck, id)
			}
		}
		sort.Strings(stuck)
		return nil, fmt.Errorf("dependency cycle among dungeons: %s", strings.Join(stuck, ", "))
	}
	return ordered, nil
}

// applySpawns instantiates templated mobs and items into their rooms.
// A faulty spawn is logged and skipped; the rest of the file loads.
func (l *Loader) applySpawns(w *world.World, df *DungeonFile, f world.Factors) error {
	d := w.Dungeon(df.Dungeon.ID)
	for i := range df.Spawns {
		sp := &df.Spawns[i]
		r := d.RoomAt(sp.Room[0], sp.Room[1], sp.Room[2])
		if r == nil {
			l.log.Error("spawn targets missing room",
				zap.String("dungeon", df.Dungeon.ID),
				zap.Ints("at", sp.Room[:]))
			continue
		}
		if sp.Mob != "" {
			m, err := l.templates.SpawnMob(sp.Mob, l.races, l.jobs, f)
			if err != nil {
				l.log.Error("mob spawn failed", zap.String("template", sp.Mob), zap.Error(err))
				continue
			}
			m.SpawnRoom = r
			if err := r.Add(m); err != nil {
				l.log.Error("mob spawn failed", zap.String("template", sp.Mob), zap.Error(err))
				continue
			}
		}
		for _, itemID := range sp.Items {
			it, err := l.templates.SpawnItem(itemID)
			if err != nil {
				l.log.Error("item spawn failed", zap.String("template", itemID), zap.Error(err))
				continue
			}
			if err := r.Add(it); err != nil {
				l.log.Error("item spawn failed", zap.String("template", itemID), zap.Error(err))
			}
		}
	}
	return nil
}
