package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jackindisguise/mud3-sub004/internal/board"
	"github.com/jackindisguise/mud3-sub004/internal/command"
	"github.com/jackindisguise/mud3-sub004/internal/config"
	"github.com/jackindisguise/mud3-sub004/internal/data"
	"github.com/jackindisguise/mud3-sub004/internal/game"
	"github.com/jackindisguise/mud3-sub004/internal/path"
	"github.com/jackindisguise/mud3-sub004/internal/persist"
	"github.com/jackindisguise/mud3-sub004/internal/scripting"
	"github.com/jackindisguise/mud3-sub004/internal/telnet"
	"github.com/jackindisguise/mud3-sub004/internal/world"
)

func main() {
	var cfgPath, dataDir string

	root := &cobra.Command{
		Use:           "mudd",
		Short:         "Multi-user dungeon server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "data/config.yaml",
		"path to the server config file")
	root.PersistentFlags().StringVar(&dataDir, "data", "",
		"data directory (overrides data.dir from the config)")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Load the world and accept connections",
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := serve(cfgPath, dataDir)
			if err != nil {
				return err
			}
			os.Exit(code)
			return nil
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "checkdata",
		Short: "Load every data file and report what it contains",
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkData(cfgPath, dataDir)
		},
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// content bundles everything loaded from the data directory.
type content struct {
	Abilities *data.AbilityTable
	Races     *data.ArchetypeTable
	Jobs      *data.ArchetypeTable
	Templates *data.TemplateTable
	Help      *data.HelpTable
	Reserved  *data.ReservedNames
	Locations world.Locations
	Boards    map[string]*board.Board
	Store     *board.Store
}

// loadContent reads the static tables under the data directory.
func loadContent(dir string) (*content, error) {
	abilities, err := data.LoadAbilityTable(filepath.Join(dir, "abilities"))
	if err != nil {
		return nil, fmt.Errorf("abilities: %w", err)
	}
	races, err := data.LoadArchetypeTable(filepath.Join(dir, "archetypes", "races"), world.ArchetypeRace)
	if err != nil {
		return nil, fmt.Errorf("races: %w", err)
	}
	jobs, err := data.LoadArchetypeTable(filepath.Join(dir, "archetypes", "jobs"), world.ArchetypeJob)
	if err != nil {
		return nil, fmt.Errorf("jobs: %w", err)
	}
	templates, err := data.LoadTemplateTable(filepath.Join(dir, "templates"))
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}
	help, err := data.LoadHelpTable(filepath.Join(dir, "help"))
	if err != nil {
		return nil, fmt.Errorf("help: %w", err)
	}
	reserved, err := data.LoadReservedNames(filepath.Join(dir, "reserved.yaml"))
	if err != nil {
		return nil, fmt.Errorf("reserved names: %w", err)
	}
	locations, err := data.LoadLocations(filepath.Join(dir, "locations.yaml"))
	if err != nil {
		return nil, fmt.Errorf("locations: %w", err)
	}
	store := board.NewStore(filepath.Join(dir, "boards"))
	boards, err := store.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("boards: %w", err)
	}
	return &content{
		Abilities: abilities,
		Races:     races,
		Jobs:      jobs,
		Templates: templates,
		Help:      help,
		Reserved:  reserved,
		Locations: locations,
		Boards:    boards,
		Store:     store,
	}, nil
}

func serve(cfgPath, dataDir string) (int, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return 1, err
	}
	if dataDir != "" {
		cfg.Data.Dir = dataDir
	}
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return 1, fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	c, err := loadContent(cfg.Data.Dir)
	if err != nil {
		return 1, err
	}
	log.Info("content loaded",
		zap.Int("abilities", c.Abilities.Count()),
		zap.Int("races", c.Races.Count()),
		zap.Int("jobs", c.Jobs.Count()),
		zap.Int("templates", c.Templates.Count()),
		zap.Int("helpfiles", c.Help.Count()),
		zap.Int("boards", len(c.Boards)))

	loader := persist.NewLoader(cfg.Data.Dir, c.Templates, c.Races, c.Jobs, log)
	if err := loader.Acquire(); err != nil {
		return 1, fmt.Errorf("another server owns the data directory: %w", err)
	}
	defer loader.Release()

	w := world.New()
	w.Locations = c.Locations
	w.Factors = cfg.Game.Combat
	if err := loader.LoadWorld(w, cfg.Game.Combat); err != nil {
		return 1, fmt.Errorf("world: %w", err)
	}
	log.Info("world loaded", zap.Int("dungeons", w.DungeonCount()))

	characters := persist.NewCharacterRepo(filepath.Join(cfg.Data.Dir, "characters"),
		&persist.Hydrator{Races: c.Races, Jobs: c.Jobs, Log: log}, log)

	engine, err := scripting.NewEngine(filepath.Join(cfg.Data.Dir, "commands"), log)
	if err != nil {
		return 1, fmt.Errorf("scripting: %w", err)
	}
	defer engine.Close()

	server, err := telnet.NewServer(cfg.Server.BindAddress(),
		cfg.Server.InQueueSize, cfg.Server.OutQueueSize,
		cfg.Server.NegotiationTimeout.Std(), log)
	if err != nil {
		return 1, fmt.Errorf("listen: %w", err)
	}

	g, err := game.New(game.Deps{
		Cfg:        cfg,
		Log:        log,
		World:      w,
		Registry:   command.NewRegistry(),
		Engine:     engine,
		Templates:  c.Templates,
		Races:      c.Races,
		Jobs:       c.Jobs,
		Abilities:  c.Abilities,
		Help:       c.Help,
		Boards:     c.Boards,
		BoardStore: c.Store,
		Characters: characters,
		Reserved:   c.Reserved,
		Server:     server,
		Paths:      path.NewCache(w),
	})
	if err != nil {
		return 1, err
	}

	go server.AcceptLoop()
	log.Info("listening", zap.String("addr", server.Addr().String()),
		zap.String("game", cfg.Game.Name))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info("signal received", zap.String("signal", sig.String()))
		g.Shutdown(0)
	}()

	return g.Run(), nil
}

// checkData loads everything the server would and prints a summary, so
// content edits can be validated without binding the port.
func checkData(cfgPath, dataDir string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if dataDir != "" {
		cfg.Data.Dir = dataDir
	}
	c, err := loadContent(cfg.Data.Dir)
	if err != nil {
		return err
	}
	w := world.New()
	w.Locations = c.Locations
	loader := persist.NewLoader(cfg.Data.Dir, c.Templates, c.Races, c.Jobs, zap.NewNop())
	if err := loader.LoadWorld(w, cfg.Game.Combat); err != nil {
		return fmt.Errorf("world: %w", err)
	}

	rooms := 0
	w.EachDungeon(func(d *world.Dungeon) { rooms += d.RoomCount() })
	fmt.Printf("abilities:  %d\n", c.Abilities.Count())
	fmt.Printf("races:      %d\n", c.Races.Count())
	fmt.Printf("jobs:       %d\n", c.Jobs.Count())
	fmt.Printf("templates:  %d\n", c.Templates.Count())
	fmt.Printf("helpfiles:  %d\n", c.Help.Count())
	fmt.Printf("boards:     %d\n", len(c.Boards))
	fmt.Printf("dungeons:   %d\n", w.DungeonCount())
	fmt.Printf("rooms:      %d\n", rooms)

	for _, ref := range []struct{ name, ref string }{
		{"start", c.Locations.Start},
		{"recall", c.Locations.Recall},
		{"graveyard", c.Locations.Graveyard},
	} {
		if _, err := w.Resolve(ref.ref); err != nil {
			return fmt.Errorf("location %s: %w", ref.name, err)
		}
	}
	fmt.Println("locations:  ok")
	return nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
