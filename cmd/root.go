package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/mentions/internal/cachemanager"
	"github.com/zjrosen/mentions/internal/config"
	"github.com/zjrosen/mentions/internal/directory"
	"github.com/zjrosen/mentions/internal/log"
	"github.com/zjrosen/mentions/internal/mention"
	"github.com/zjrosen/mentions/internal/session"
	"github.com/zjrosen/mentions/internal/textdiff"
	"github.com/zjrosen/mentions/internal/tracing"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

// logToFile marks commands whose debug log must not go to stderr.
const logToFile = "log-to-file"

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	utf16Flag bool
	cfg       config.Config

	logCleanup func()
)

var rootCmd = &cobra.Command{
	Use:   "mentions",
	Short: "Tokenize, edit and reconcile text with inline mentions",
	Long: `mentions works with raw text carrying inline mention markup such as
"<@42>". It tokenizes raw values into plain text and mention parts, folds
plain-text edits back into markup, resolves the keyword being typed after a
trigger and inserts suggestions.`,
	Version:            version,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/mentions/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"enable debug logging (also MENTIONS_DEBUG=1)")
	rootCmd.PersistentFlags().BoolVar(&utf16Flag, "utf16", false,
		"read and print offsets as UTF-16 code units")
	rootCmd.PersistentFlags().String("directory", "",
		"suggestion directory file (overrides directory.path)")

	_ = viper.BindPFlag("directory.path", rootCmd.PersistentFlags().Lookup("directory"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("part_types", defaults.PartTypes)
	viper.SetDefault("diff.timeout", defaults.Diff.Timeout)
	viper.SetDefault("suggestions.limit", defaults.Suggestions.Limit)
	viper.SetDefault("cache.enabled", defaults.Cache.Enabled)
	viper.SetDefault("cache.ttl", defaults.Cache.TTL)
	viper.SetDefault("log.level", defaults.Log.Level)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .mentions/config.yaml (current directory)
		// 2. ~/.config/mentions/config.yaml (user config)
		if _, err := os.Stat(".mentions/config.yaml"); err == nil {
			viper.SetConfigFile(".mentions/config.yaml")
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "mentions"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create default at .mentions/config.yaml
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			defaultPath := ".mentions/config.yaml"
			if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
				viper.SetConfigFile(defaultPath)
				_ = viper.ReadInConfig()
			}
			// If write fails, just continue with defaults (no config file)
		}
	}

	cfg = config.Config{}
	_ = viper.Unmarshal(&cfg)
}

// configPath is the file part type edits are saved to.
func configPath() string {
	if p := viper.ConfigFileUsed(); p != "" {
		return p
	}
	return ".mentions/config.yaml"
}

func setup(cmd *cobra.Command, _ []string) error {
	if err := initLogging(cmd.Annotations[logToFile] != ""); err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	log.Debug(log.CatConfig, "config loaded", "path", viper.ConfigFileUsed(), "part_types", len(cfg.PartTypes))
	return nil
}

func teardown(*cobra.Command, []string) error {
	if logCleanup != nil {
		logCleanup()
		logCleanup = nil
	}
	return nil
}

// initLogging enables the debug log when requested by flag or environment.
// Commands owning the terminal log to a file; the rest log to stderr.
func initLogging(toFile bool) error {
	if !debugFlag && os.Getenv("MENTIONS_DEBUG") == "" {
		return nil
	}

	path := cfg.Log.File
	if env := os.Getenv("MENTIONS_LOG"); env != "" {
		path = env
	}
	if path == "" && toFile {
		path = "debug.log"
	}

	if path == "" {
		log.InitWriter(os.Stderr, log.ParseLevel(cfg.Log.Level))
		return nil
	}
	cleanup, err := log.InitWithTeaLog(path, "mentions")
	if err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	logCleanup = cleanup
	return nil
}

// env bundles what the subcommands share, built from the loaded config.
type env struct {
	types  []mention.PartType
	parser *mention.Parser
	dir    *directory.Directory
	differ *textdiff.Differ
	traces *tracing.Provider
}

func loadEnv() (*env, error) {
	e := &env{differ: textdiff.New(cfg.Diff.Timeout)}

	if path := expandHome(cfg.Directory.Path); path != "" {
		dir, err := directory.Load(path)
		if err != nil {
			return nil, err
		}
		e.dir = dir
	}

	var lookup config.NameLookup
	if e.dir != nil {
		lookup = e.dir.Lookup
	}
	types, err := config.BuildPartTypes(cfg.PartTypes, lookup)
	if err != nil {
		return nil, err
	}
	parser, err := mention.NewParser(types...)
	if err != nil {
		return nil, fmt.Errorf("building parser: %w", err)
	}
	e.types, e.parser = types, parser

	traces, err := tracing.NewProvider(tracing.FromConfig(cfg.Tracing))
	if err != nil {
		return nil, fmt.Errorf("initializing tracing: %w", err)
	}
	e.traces = traces

	return e, nil
}

// newSession creates a session wired to the config's cache and tracing.
func (e *env) newSession() *session.Session {
	opts := []session.Option{
		session.WithTracer(e.traces.Tracer()),
		session.WithDiffer(e.differ),
	}
	if cfg.Cache.Enabled {
		ttl := cfg.Cache.TTL
		if ttl <= 0 {
			ttl = cachemanager.DefaultExpiration
		}
		cache := cachemanager.NewInMemoryCacheManager[string, mention.Result]("parse", ttl, cachemanager.DefaultCleanupInterval)
		opts = append(opts, session.WithParseCache(cache, ttl))
	} else {
		opts = append(opts, session.WithoutParseCache())
	}
	return session.New(e.parser, opts...)
}

// mentionType finds the mention type called name.
func (e *env) mentionType(name string) (*mention.MentionType, error) {
	var names []string
	for _, mt := range mention.MentionTypes(e.types) {
		if mt.Name == name {
			return mt, nil
		}
		names = append(names, mt.Name)
	}
	return nil, fmt.Errorf("unknown mention type %q (have: %s)", name, strings.Join(names, ", "))
}

func (e *env) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.traces.Shutdown(ctx); err != nil {
		log.ErrorErr(log.CatConfig, "tracing shutdown failed", err)
	}
}

func expandHome(path string) string {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return path
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
