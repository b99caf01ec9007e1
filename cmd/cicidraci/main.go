package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/justchokingaround/cicidraci/internal/api"
	"github.com/justchokingaround/cicidraci/internal/catalog"
	"github.com/justchokingaround/cicidraci/internal/cli"
	"github.com/justchokingaround/cicidraci/internal/config"
	"github.com/justchokingaround/cicidraci/internal/player"
	"github.com/justchokingaround/cicidraci/internal/player/mpv"
	"github.com/justchokingaround/cicidraci/internal/playback"
	"github.com/justchokingaround/cicidraci/internal/search"
	"github.com/justchokingaround/cicidraci/internal/share"
	"github.com/justchokingaround/cicidraci/internal/store"
	"github.com/justchokingaround/cicidraci/internal/tui"
	"github.com/justchokingaround/cicidraci/pkg/types"
)

var (
	// Version information (set via ldflags during build)
	version = "dev"
	commit  = "none"
	date    = "unknown"

	// Global flags
	cfgFile   string
	logLevel  string
	noColor   bool
	debugMode bool

	// Global config and logger. cfg is swapped by hot reload, read it through currentConfig.
	cfgMu  sync.RWMutex
	cfg    *config.Config
	logger *slog.Logger

	// View-state backend, opened in PersistentPreRunE
	state       *store.ViewState
	stateCloser io.Closer
)

// skipSetup marks commands that run without config, logger and store
const skipSetup = "skip-setup"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "cicidraci",
	Short: "Browse and watch short dramas from the terminal",
	Long: `cicidraci is a terminal client for a short-drama catalog. It browses the
category feeds, searches with live suggestions, remembers favorites and the
last watched episode of every title, and plays episodes in mpv.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Annotations[skipSetup] == "true" {
			return nil
		}

		if err := config.InitializeDirs(); err != nil {
			return fmt.Errorf("failed to initialize directories: %w", err)
		}

		loaded, v, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		applyFlagOverrides(loaded)
		setConfig(loaded)

		logger, err = config.InitLogger(&loaded.Logging)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		kv, closer, err := store.Open(loaded, logger)
		if err != nil {
			return fmt.Errorf("failed to open view-state store: %w", err)
		}
		state = store.NewViewState(kv, logger)
		stateCloser = closer

		// The log level changes at once; other settings apply to components built afterwards
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			logger.Info("config file changed", "name", e.Name)
			if err := reloadConfig(v); err != nil {
				logger.Error("ignoring config change", "error", err)
				return
			}
			logger.Info("config reloaded", "log_level", currentConfig().Logging.Level)
		})

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if stateCloser == nil {
			return
		}
		if err := stateCloser.Close(); err != nil {
			logger.Error("failed to close view-state store", "error", err)
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(types.Category(currentConfig().Catalog.DefaultCategory))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/cicidraci/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug mode (verbose HTTP logging)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(popularCmd)
	rootCmd.AddCommand(episodesCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(favoriteCmd)
	rootCmd.AddCommand(recentCmd)
	rootCmd.AddCommand(shareCmd)
}

// applyFlagOverrides lets --debug, --log-level and --no-color win over the config file
func applyFlagOverrides(c *config.Config) {
	if debugMode {
		c.Advanced.Debug = true
		if logLevel == "" {
			c.Logging.Level = "debug"
		}
	}
	if logLevel != "" {
		c.Logging.Level = logLevel
	}
	if noColor {
		c.Logging.Color = false
	}
}

func currentConfig() *config.Config {
	cfgMu.RLock()
	defer cfgMu.RUnlock()
	return cfg
}

func setConfig(c *config.Config) {
	cfgMu.Lock()
	cfg = c
	cfgMu.Unlock()
}

// reloadConfig re-reads the watched file, keeps the flag overrides and the
// resolved log file, and applies the new log level.
func reloadConfig(v *viper.Viper) error {
	reloaded := &config.Config{}
	if err := v.Unmarshal(reloaded); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	applyFlagOverrides(reloaded)
	if err := reloaded.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if prev := currentConfig(); prev != nil && reloaded.Logging.File == "" {
		reloaded.Logging.File = prev.Logging.File
	}
	config.SetLogLevel(reloaded.Logging.Level)
	setConfig(reloaded)
	return nil
}

// components are the services shared by the TUI and the plain commands
type components struct {
	client   *api.Client
	catalog  *catalog.Aggregator
	search   *search.Assistant
	selector *playback.Selector
	// session is nil when mpv is not installed
	session *playback.Session
	sharer  *share.Sharer
	out     *cli.Formatter
}

func newComponents() *components {
	cfg := currentConfig()
	client := api.NewClient(cfg, logger)
	selector := playback.NewSelector(client, playback.Options{
		Quality: cfg.Player.Quality,
		State:   state,
		Logger:  logger,
	})

	c := &components{
		client: client,
		catalog: catalog.New(client, catalog.Options{
			PageSize: cfg.Catalog.PageSize,
			State:    state,
			Logger:   logger,
		}),
		search: search.New(client, search.Options{
			Debounce:     cfg.Search.Debounce,
			RecentLimit:  cfg.Search.RecentLimit,
			PopularLimit: cfg.Search.PopularLimit,
			State:        state,
			Logger:       logger,
		}),
		selector: selector,
		sharer:   share.New(&cfg.Share, logger),
		out:      cli.NewFormatter(noColor),
	}

	p, err := mpv.NewFromConfig(cfg, logger)
	if err != nil {
		logger.Warn("playback disabled", "error", err)
		return c
	}
	c.session = playback.NewSession(selector, p, player.PlayOptions{
		Fullscreen: cfg.Player.Fullscreen,
		UserAgent:  cfg.API.UserAgent,
		MPVArgs:    cfg.Player.MPVArgs,
	}, logger)
	return c
}

func runTUI(category types.Category) error {
	if !category.Valid() {
		return fmt.Errorf("unknown category %q", category)
	}
	logger.Info("cicidraci starting", "version", version, "category", category)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c := newComponents()
	defer c.search.Close()

	return tui.Start(ctx, tui.Deps{
		Catalog:         c.catalog,
		Search:          c.search,
		Selector:        c.selector,
		Session:         c.session,
		State:           state,
		Sharer:          c.sharer,
		InitialCategory: category,
		Logger:          logger,
	})
}
