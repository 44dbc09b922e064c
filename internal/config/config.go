// Package config resolves tool settings from a .env file, the process
// environment and command-line flags, in that order of precedence.
package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/orizon-lang/lty/internal/allocator"
	"github.com/orizon-lang/lty/internal/labeled"
)

// Log levels understood by LTY_LOG_LEVEL and -log-level.
const (
	LevelError = "error"
	LevelWarn  = "warn"
	LevelInfo  = "info"
	LevelDebug = "debug"
)

// Config holds the settings shared by the lty tools.
type Config struct {
	// Strict rejects hidden-structure kinds instead of building leaves.
	Strict bool
	// ChunkSize is the arena chunk size in elements.
	ChunkSize int
	LogLevel  string
	// HistoryFile is where lty-repl keeps its line history.
	HistoryFile string
	// ShareCache is the interner size; zero disables sharing.
	ShareCache int
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		ChunkSize:   allocator.DefaultChunkSize,
		LogLevel:    LevelWarn,
		HistoryFile: defaultHistoryFile(),
	}
}

// Load reads .env (if present), overlays the LTY_* environment, then
// registers flags on fs seeded with those values and parses args.
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := FromEnv(os.Getenv)
	if err != nil {
		return nil, err
	}

	verbose, debug := cfg.Bind(fs)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if *debug {
		cfg.LogLevel = LevelDebug
	} else if *verbose && cfg.LogLevel != LevelDebug {
		cfg.LogLevel = LevelInfo
	}

	return cfg, cfg.Validate()
}

// FromEnv builds a Config from defaults overlaid with the LTY_* variables
// returned by getenv.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := Default()

	if raw := strings.TrimSpace(getenv("LTY_STRICT")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("LTY_STRICT: %w", err)
		}
		cfg.Strict = v
	}

	if raw := strings.TrimSpace(getenv("LTY_CHUNK_SIZE")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("LTY_CHUNK_SIZE: %w", err)
		}
		cfg.ChunkSize = v
	}

	if raw := strings.TrimSpace(getenv("LTY_SHARE_CACHE")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("LTY_SHARE_CACHE: %w", err)
		}
		cfg.ShareCache = v
	}

	cfg.LogLevel = strings.ToLower(firstNonEmpty(strings.TrimSpace(getenv("LTY_LOG_LEVEL")), cfg.LogLevel))
	cfg.HistoryFile = firstNonEmpty(strings.TrimSpace(getenv("LTY_HISTORY")), cfg.HistoryFile)

	return cfg, cfg.Validate()
}

// Bind registers the shared flags on fs with the current values as
// defaults. It returns the -v and -debug switches, which map onto LogLevel
// after parsing.
func (c *Config) Bind(fs *flag.FlagSet) (verbose, debug *bool) {
	fs.BoolVar(&c.Strict, "strict", c.Strict, "reject dynamic, closure, projection and opaque types")
	fs.IntVar(&c.ChunkSize, "chunk", c.ChunkSize, "arena chunk size in elements")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level (error, warn, info, debug)")
	fs.StringVar(&c.HistoryFile, "history", c.HistoryFile, "REPL history file")
	fs.IntVar(&c.ShareCache, "share", c.ShareCache, "share equal subtrees through an interner of this size (0 disables)")

	verbose = fs.Bool("v", false, "verbose output")
	debug = fs.Bool("debug", false, "debug output")

	return verbose, debug
}

// Validate rejects settings no tool can run with.
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", c.ChunkSize)
	}

	if c.ShareCache < 0 {
		return fmt.Errorf("share cache size must not be negative, got %d", c.ShareCache)
	}

	switch c.LogLevel {
	case LevelError, LevelWarn, LevelInfo, LevelDebug:
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}

	return nil
}

// ArenaOptions returns the allocator options for an arena named name.
func (c *Config) ArenaOptions(name string) []allocator.Option {
	return []allocator.Option{
		allocator.WithName(name),
		allocator.WithChunkSize(c.ChunkSize),
	}
}

// ContextOptions returns the labeled.Context options these settings imply.
func (c *Config) ContextOptions() []labeled.Option {
	var opts []labeled.Option
	if c.Strict {
		opts = append(opts, labeled.WithStrictKinds())
	}

	return opts
}

func defaultHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lty_history"
	}

	return filepath.Join(home, ".lty_history")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
