// Package cli implements the flowcheck command line.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm/logger"

	"github.com/thebtf/flowcheck/internal/config"
	gormdb "github.com/thebtf/flowcheck/internal/db/gorm"
	"github.com/thebtf/flowcheck/pkg/similarity"
)

// app carries state shared by the subcommands of one invocation.
type app struct {
	v        *viper.Viper
	cfg      *config.Config
	version  string
	cfgFile  string
	debug    bool
	noColor  bool
	settings string
}

// NewRootCmd builds the command tree.
func NewRootCmd(version string) *cobra.Command {
	a := &app{version: version}

	root := &cobra.Command{
		Use:   "flowcheck",
		Short: "Fact-check caching, goal recommendations and progress forecasts",
		Long: `flowcheck answers fact-check queries from a history of previous claims
when a sufficiently similar one exists, and from the Google Fact Check Tools
API otherwise. It also clusters user goals to suggest related goals and
forecasts the next progress milestone.

Configuration hierarchy (highest to lowest priority):
  1. CLI flags
  2. Environment variables (FLOWCHECK_*, FACT_CHECK_API_KEY, NEWS_API_KEY, DATABASE_URL)
  3. Settings file (~/.flowcheck/settings.json)
  4. Defaults`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "settings file (default: $FLOWCHECK_DATA_DIR/settings.json)")
	flags.BoolVar(&a.debug, "debug", false, "enable debug logging")
	flags.BoolVar(&a.noColor, "no-color", false, "disable colored log output")
	flags.String("database-url", "", "database URL or SQLite path")
	flags.Float64("threshold", config.DefaultSimilarityThreshold, "similarity threshold for reusing a stored claim")

	root.AddCommand(
		a.newServeCmd(),
		a.newMigrateCmd(),
		a.newCheckCmd(),
		a.newRecommendCmd(),
		a.newForecastCmd(),
		a.newConfigCmd(),
		a.newVersionCmd(),
	)
	return root
}

// Execute runs the command line.
func Execute(version string) error {
	return NewRootCmd(version).Execute()
}

func (a *app) init(cmd *cobra.Command) error {
	a.settings = a.cfgFile
	if a.settings == "" {
		a.settings = config.SettingsPath()
	}

	a.v = config.NewViperWithFile(a.settings)
	flags := cmd.Flags()
	bind := map[string]string{
		config.KeyDatabaseURL:         "database-url",
		config.KeySimilarityThreshold: "threshold",
		config.KeyWorkerPort:          "port",
		config.KeyWorkerHost:          "host",
	}
	for key, name := range bind {
		if f := flags.Lookup(name); f != nil {
			if err := a.v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("bind --%s: %w", name, err)
			}
		}
	}

	cfg, err := config.FromViper(a.v)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg
	config.Set(cfg)

	setupLogging(cmd, cfg.LogLevel, a.debug, a.noColor)
	return nil
}

func setupLogging(cmd *cobra.Command, level string, debug, noColor bool) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if debug {
		lvl = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), NoColor: noColor})
}

// reload re-reads the settings file and environment. Flags keep precedence.
func (a *app) reload(cmd *cobra.Command) (*config.Config, error) {
	v := config.NewViperWithFile(a.settings)
	if f := cmd.Flags().Lookup("threshold"); f != nil && f.Changed {
		_ = v.BindPFlag(config.KeySimilarityThreshold, f)
	}
	return config.FromViper(v)
}

// openStore opens the configured database and runs migrations.
func (a *app) openStore() (*gormdb.Store, error) {
	path, url := a.cfg.Database()
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	level := logger.Silent
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		level = logger.Warn
	}
	store, err := gormdb.NewStore(gormdb.Config{
		Path:     path,
		URL:      url,
		MaxConns: a.cfg.MaxConns,
		LogLevel: level,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return store, nil
}

// normalizer builds the text normalizer, including the lexicon file when
// one is configured or present in the data directory.
func (a *app) normalizer() (*similarity.Normalizer, error) {
	path := a.cfg.LexiconPath
	explicit := path != ""
	if !explicit {
		path = config.DefaultLexiconPath()
	}

	var lex *similarity.Lexicon
	if _, err := os.Stat(path); err == nil {
		lex, err = similarity.LoadLexicon(path)
		if err != nil {
			return nil, err
		}
		log.Debug().Str("path", path).Int("lemmas", len(lex.Lemmas)).Msg("Lexicon loaded")
	} else if explicit {
		return nil, fmt.Errorf("lexicon %s: %w", path, err)
	}

	return similarity.NewNormalizer(lex.Merge(a.cfg.ExtraStopwords)), nil
}
