package config

import (
	"flag"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orizon-lang/lty/internal/allocator"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

// TestFromEnv tests overlaying LTY_* variables on the defaults.
func TestFromEnv(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := FromEnv(envMap(nil))
		require.NoError(t, err)

		assert.False(t, cfg.Strict)
		assert.Equal(t, allocator.DefaultChunkSize, cfg.ChunkSize)
		assert.Equal(t, LevelWarn, cfg.LogLevel)
		assert.Zero(t, cfg.ShareCache)
		assert.NotEmpty(t, cfg.HistoryFile)
	})

	t.Run("Overrides", func(t *testing.T) {
		cfg, err := FromEnv(envMap(map[string]string{
			"LTY_STRICT":      "true",
			"LTY_CHUNK_SIZE":  "64",
			"LTY_LOG_LEVEL":   " DEBUG ",
			"LTY_HISTORY":     "/tmp/h",
			"LTY_SHARE_CACHE": "128",
		}))
		require.NoError(t, err)

		assert.True(t, cfg.Strict)
		assert.Equal(t, 64, cfg.ChunkSize)
		assert.Equal(t, LevelDebug, cfg.LogLevel)
		assert.Equal(t, "/tmp/h", cfg.HistoryFile)
		assert.Equal(t, 128, cfg.ShareCache)
	})

	t.Run("Invalid", func(t *testing.T) {
		for name, env := range map[string]map[string]string{
			"Strict":    {"LTY_STRICT": "maybe"},
			"ChunkSize": {"LTY_CHUNK_SIZE": "big"},
			"ZeroChunk": {"LTY_CHUNK_SIZE": "0"},
			"Share":     {"LTY_SHARE_CACHE": "-1"},
			"Level":     {"LTY_LOG_LEVEL": "loud"},
		} {
			t.Run(name, func(t *testing.T) {
				_, err := FromEnv(envMap(env))
				assert.Error(t, err)
			})
		}
	})
}

// TestLoad tests that flags take precedence over the environment.
func TestLoad(t *testing.T) {
	newFlags := func() *flag.FlagSet {
		fs := flag.NewFlagSet("lty", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		return fs
	}

	t.Run("FlagsOverrideEnv", func(t *testing.T) {
		t.Setenv("LTY_CHUNK_SIZE", "32")
		t.Setenv("LTY_STRICT", "false")

		fs := newFlags()
		cfg, err := Load(fs, []string{"-chunk", "8", "-strict", "rest"})
		require.NoError(t, err)

		assert.Equal(t, 8, cfg.ChunkSize)
		assert.True(t, cfg.Strict)
		assert.Equal(t, []string{"rest"}, fs.Args())
	})

	t.Run("EnvSeedsFlags", func(t *testing.T) {
		t.Setenv("LTY_CHUNK_SIZE", "32")

		cfg, err := Load(newFlags(), nil)
		require.NoError(t, err)
		assert.Equal(t, 32, cfg.ChunkSize)
	})

	t.Run("VerboseAndDebug", func(t *testing.T) {
		t.Setenv("LTY_LOG_LEVEL", "")

		cfg, err := Load(newFlags(), []string{"-v"})
		require.NoError(t, err)
		assert.Equal(t, LevelInfo, cfg.LogLevel)

		cfg, err = Load(newFlags(), []string{"-v", "-debug"})
		require.NoError(t, err)
		assert.Equal(t, LevelDebug, cfg.LogLevel)
	})

	t.Run("LevelFlagIsCaseInsensitive", func(t *testing.T) {
		t.Setenv("LTY_LOG_LEVEL", "")

		cfg, err := Load(newFlags(), []string{"-log-level", " INFO "})
		require.NoError(t, err)
		assert.Equal(t, LevelInfo, cfg.LogLevel)
	})

	t.Run("BadFlagValue", func(t *testing.T) {
		_, err := Load(newFlags(), []string{"-chunk", "-3"})
		assert.Error(t, err)
	})
}

// TestOptions tests translation into allocator and context options.
func TestOptions(t *testing.T) {
	cfg := Default()
	cfg.ChunkSize = 16
	cfg.Strict = true

	arena, err := allocator.NewArena(cfg.ArenaOptions("opts")...)
	require.NoError(t, err)
	assert.Equal(t, 16, arena.Config().ChunkSize)
	assert.Equal(t, "opts", arena.Config().Name)

	assert.Len(t, cfg.ContextOptions(), 1)
	assert.Empty(t, Default().ContextOptions())
}
