package main

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orizon-lang/lty/internal/catalog"
	"github.com/orizon-lang/lty/internal/cli"
	"github.com/orizon-lang/lty/internal/config"
	"github.com/orizon-lang/lty/internal/session"
	"github.com/orizon-lang/lty/internal/types"
)

func newTestREPL(t *testing.T) (*REPL, *bytes.Buffer) {
	t.Helper()

	s, err := session.New(config.Default(), catalog.New(types.NewContext()), cli.NewLevelLogger("error", io.Discard))
	require.NoError(t, err)

	var buf bytes.Buffer

	return NewREPL(s, &buf), &buf
}

// TestEval tests a short session of declarations, rendering and commands.
func TestEval(t *testing.T) {
	r, buf := newTestREPL(t)

	step := func(line, want string) {
		t.Helper()
		buf.Reset()
		assert.False(t, r.Eval(line))
		assert.Equal(t, want, buf.String(), line)
	}

	step(":decl Wrapper<T>", "Wrapper = Wrapper<T>\n")
	step(":decl Bytes = Wrapper<[u8]>", "Bytes = Wrapper<[u8]>\n")
	step("Bytes", "Wrapper  Wrapper<[u8]>\n  slice  [u8]\n    uint8  u8\n")
	step(":label type", "Label mode: type\n")
	step(":subst Wrapper | bool", "Wrapper<T>  Wrapper<bool>\n  bool  bool\n")
	step(":list", "  Wrapper = Wrapper<T>\n  Bytes = Wrapper<[u8]>\n")
	step(":nope", "Unknown command: :nope\nType :help for available commands\n")

	assert.True(t, r.Eval(":quit"))
}

// TestEvalErrors tests that failures are reported without ending the session.
func TestEvalErrors(t *testing.T) {
	r, buf := newTestREPL(t)

	for _, line := range []string{
		"Vec<",
		":label color",
		":subst Vec<$0>",
		":subst Vec<$1> | u8",
		":decl Broken<T",
	} {
		buf.Reset()
		assert.False(t, r.Eval(line))
		assert.Contains(t, buf.String(), "Error:", line)
	}
}

// TestResetAndStats tests the arena commands.
func TestResetAndStats(t *testing.T) {
	r, buf := newTestREPL(t)

	r.Eval("(u8, u16)")
	buf.Reset()
	r.Eval(":stats")
	assert.Contains(t, buf.String(), "5 elements")

	buf.Reset()
	r.Eval(":reset")
	assert.Equal(t, "Arena reset\n", buf.String())

	buf.Reset()
	r.Eval(":stats")
	assert.Contains(t, buf.String(), "0 elements")
}

// TestComplete tests completion of commands and declared names.
func TestComplete(t *testing.T) {
	r, _ := newTestREPL(t)
	r.Eval(":decl Pair<A, B>")
	r.Eval(":decl Ptr = *const u8")

	assert.Equal(t, []string{":stats", ":subst"}, r.complete(":s"))
	assert.Equal(t, []string{"Pair", "Ptr"}, r.complete("P"))
	assert.Empty(t, r.complete("Q"))
}
