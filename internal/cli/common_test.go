package cli

import (
	"bytes"
	"flag"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orizon-lang/lty/internal/allocator"
)

func testLogger(level string) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := NewLevelLogger(level, &buf)
	l.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	return l, &buf
}

func emitAll(l *Logger) {
	l.Debug("d")
	l.Info("i")
	l.Warn("w")
	l.Error("e")
}

// TestLoggerLevels tests which messages each level lets through.
func TestLoggerLevels(t *testing.T) {
	cases := map[string][]string{
		"error": {"[ERROR] 03:04:05: e"},
		"warn":  {"[WARN] 03:04:05: w", "[ERROR] 03:04:05: e"},
		"info":  {"[INFO] 03:04:05: i", "[WARN] 03:04:05: w", "[ERROR] 03:04:05: e"},
		"debug": {"[DEBUG] 03:04:05: d", "[INFO] 03:04:05: i", "[WARN] 03:04:05: w", "[ERROR] 03:04:05: e"},
	}

	for level, want := range cases {
		t.Run(level, func(t *testing.T) {
			l, buf := testLogger(level)
			emitAll(l)
			assert.Equal(t, want, strings.Split(strings.TrimSpace(buf.String()), "\n"))
		})
	}
}

// TestLoggerStd tests the standard library adapter.
func TestLoggerStd(t *testing.T) {
	l, buf := testLogger("warn")
	l.Std().Printf("dyn Any built as a leaf")
	assert.Equal(t, "[WARN] 03:04:05: dyn Any built as a leaf\n", buf.String())

	quiet, buf := testLogger("error")
	quiet.Std().Print("dropped")
	assert.Empty(t, buf.String())
}

// TestFormatStats tests human-readable arena statistics.
func TestFormatStats(t *testing.T) {
	arena, err := allocator.NewArena(allocator.WithName("render"))
	require.NoError(t, err)

	slab := allocator.NewSlab[[64]byte](arena)
	for i := 0; i < 20; i++ {
		slab.Alloc([64]byte{})
	}

	out := FormatStats(arena.Stats())
	assert.Contains(t, out, "render (generation 0, 0 resets)")
	assert.Contains(t, out, "20 elements in 1 chunks")
	assert.Contains(t, out, "KiB in use")
}

// TestFormatSharing tests interner statistics.
func TestFormatSharing(t *testing.T) {
	assert.Equal(t, "interner: empty", FormatSharing(0, 0, 0))
	assert.Equal(t, "interner: 1,500 of 2,000 nodes shared (75.0%), 500 cached", FormatSharing(1500, 500, 500))
}

// TestCommandUsage tests usage text built from a flag set.
func TestCommandUsage(t *testing.T) {
	fs := flag.NewFlagSet("tool", flag.ContinueOnError)
	fs.String("mode", "fast", "how to run")
	fs.Bool("dry", false, "do nothing")
	fs.Int("n", 0, "repeat count")

	flags := FlagsOf(fs)
	assert.Equal(t, []FlagInfo{
		{Name: "dry", Usage: "do nothing"},
		{Name: "mode", Usage: "how to run", Default: "fast"},
		{Name: "n", Usage: "repeat count"},
	}, flags)

	var buf bytes.Buffer
	PrintCommandUsage(&buf, "tool", CommandInfo{
		Name:        "run",
		Usage:       "tool run [OPTIONS]",
		Description: "run things",
		Examples:    []string{"tool run -dry"},
		Flags:       flags,
	})

	want := strings.Join([]string{
		"tool run - run things",
		"",
		"USAGE:",
		"    tool run [OPTIONS]",
		"",
		"OPTIONS:",
		"    -dry             do nothing",
		"    -mode            how to run",
		"                     Default: fast",
		"    -n               repeat count",
		"",
		"EXAMPLES:",
		"    tool run -dry",
		"",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}
