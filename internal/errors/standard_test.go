package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestIsComparesCodes tests sentinel matching through wrapping.
func TestIsComparesCodes(t *testing.T) {
	err := fmt.Errorf("substitute: %w", IndexOutOfBounds(3, 2))

	assert.True(t, errors.Is(err, ErrIndexOutOfBounds))
	assert.False(t, errors.Is(err, ErrStaleReference))
	assert.False(t, errors.Is(err, fmt.Errorf("INDEX_OUT_OF_BOUNDS")))

	var se *StandardError
	if assert.True(t, errors.As(err, &se)) {
		assert.Equal(t, 3, se.Context["index"])
		assert.Equal(t, 2, se.Context["length"])
		assert.Equal(t, CategoryBounds, se.Category)
	}
}

// TestCallerIsRecorded tests that constructors report their caller.
func TestCallerIsRecorded(t *testing.T) {
	err := UnknownType("Foo")
	assert.True(t, strings.HasSuffix(err.Caller, "TestCallerIsRecorded"), err.Caller)

	custom := NewStandardError(CategorySyntax, CodeParse, "bad", nil)
	assert.True(t, strings.HasSuffix(custom.Caller, "TestCallerIsRecorded"), custom.Caller)
	assert.Contains(t, custom.Error(), "[SYNTAX:PARSE_ERROR] bad")
}

// TestConstructorCodes tests that each constructor matches its sentinel.
func TestConstructorCodes(t *testing.T) {
	cases := map[*StandardError]*StandardError{
		UnsupportedKind("closure", "closure#1"): ErrUnsupportedKind,
		MalformedType("adt", "Foo", "type args"): ErrMalformedType,
		StaleReference("relabel", 0, 1):          ErrStaleReference,
		ScopeMismatch("a vs b"):                  ErrScopeMismatch,
		Arity("Pair<u8>", 1, 2):                  ErrArity,
		Parse("Vec<", 4, "unexpected end"):       ErrParse,
		SchemaVersion("2.0.0", ">= 1.0.0"):       ErrSchemaVersion,
		UnknownType("Foo"):                       ErrUnknownType,
	}

	for err, sentinel := range cases {
		assert.True(t, errors.Is(err, sentinel), err.Error())
		assert.Equal(t, sentinel.Category, err.Category, err.Code)
	}
}
