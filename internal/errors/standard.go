// Package errors provides standardized error messaging for the labeled type toolchain
package errors

import (
	"fmt"
	"runtime"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryBounds     ErrorCategory = "BOUNDS"
	CategoryStructure  ErrorCategory = "STRUCTURE"
	CategoryLifetime   ErrorCategory = "LIFETIME"
	CategoryValidation ErrorCategory = "VALIDATION"
	CategorySyntax     ErrorCategory = "SYNTAX"
)

// Error codes. StandardError values compare equal under errors.Is when their
// codes match.
const (
	CodeIndexOutOfBounds = "INDEX_OUT_OF_BOUNDS"
	CodeUnsupportedKind  = "UNSUPPORTED_KIND"
	CodeMalformedType    = "MALFORMED_TYPE"
	CodeStaleReference   = "STALE_REFERENCE"
	CodeScopeMismatch    = "SCOPE_MISMATCH"
	CodeArity            = "ARITY_MISMATCH"
	CodeParse            = "PARSE_ERROR"
	CodeSchemaVersion    = "SCHEMA_VERSION"
	CodeUnknownType      = "UNKNOWN_TYPE"
)

// StandardError provides a consistent error format
type StandardError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Context  map[string]interface{}
	Caller   string
}

// Error implements the error interface
func (e *StandardError) Error() string {
	return fmt.Sprintf("[%s:%s] %s (caller: %s)", e.Category, e.Code, e.Message, e.Caller)
}

// Is reports whether target is a StandardError with the same code.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}

	return t.Code == e.Code
}

// NewStandardError creates a new standardized error
func NewStandardError(category ErrorCategory, code, message string, context map[string]interface{}) *StandardError {
	return newStandardError(2, category, code, message, context)
}

func newStandardError(skip int, category ErrorCategory, code, message string, context map[string]interface{}) *StandardError {
	pc, _, _, ok := runtime.Caller(skip)
	caller := "unknown"
	if ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			caller = fn.Name()
		}
	}

	return &StandardError{
		Category: category,
		Code:     code,
		Message:  message,
		Context:  context,
		Caller:   caller,
	}
}

// Sentinels for errors.Is.
var (
	ErrIndexOutOfBounds = &StandardError{Category: CategoryBounds, Code: CodeIndexOutOfBounds}
	ErrUnsupportedKind  = &StandardError{Category: CategoryStructure, Code: CodeUnsupportedKind}
	ErrMalformedType    = &StandardError{Category: CategoryStructure, Code: CodeMalformedType}
	ErrStaleReference   = &StandardError{Category: CategoryLifetime, Code: CodeStaleReference}
	ErrScopeMismatch    = &StandardError{Category: CategoryLifetime, Code: CodeScopeMismatch}
	ErrArity            = &StandardError{Category: CategoryValidation, Code: CodeArity}
	ErrParse            = &StandardError{Category: CategorySyntax, Code: CodeParse}
	ErrSchemaVersion    = &StandardError{Category: CategoryValidation, Code: CodeSchemaVersion}
	ErrUnknownType      = &StandardError{Category: CategoryValidation, Code: CodeUnknownType}
)

// Common error constructors

// IndexOutOfBounds reports a placeholder index with no matching argument.
func IndexOutOfBounds(index, length int) *StandardError {
	return newStandardError(2, CategoryBounds, CodeIndexOutOfBounds,
		fmt.Sprintf("Index %d out of bounds for length %d", index, length),
		map[string]interface{}{"index": index, "length": length})
}

func UnsupportedKind(kind, typ string) *StandardError {
	return newStandardError(2, CategoryStructure, CodeUnsupportedKind,
		fmt.Sprintf("Unsupported type kind %s in %s", kind, typ),
		map[string]interface{}{"kind": kind, "type": typ})
}

func MalformedType(kind, typ, want string) *StandardError {
	return newStandardError(2, CategoryStructure, CodeMalformedType,
		fmt.Sprintf("Type %s of kind %s does not expose %s", typ, kind, want),
		map[string]interface{}{"kind": kind, "type": typ, "want": want})
}

func StaleReference(operation string, generation, current uint64) *StandardError {
	return newStandardError(2, CategoryLifetime, CodeStaleReference,
		fmt.Sprintf("Stale tree in %s: allocated in generation %d, arena is at %d", operation, generation, current),
		map[string]interface{}{"operation": operation, "generation": generation, "current": current})
}

func ScopeMismatch(details string) *StandardError {
	return newStandardError(2, CategoryLifetime, CodeScopeMismatch,
		fmt.Sprintf("Arena scope mismatch: %s", details),
		map[string]interface{}{"details": details})
}

func Arity(typ string, got, want int) *StandardError {
	return newStandardError(2, CategoryValidation, CodeArity,
		fmt.Sprintf("%s has %d children, want %d", typ, got, want),
		map[string]interface{}{"type": typ, "got": got, "want": want})
}

func Parse(input string, offset int, details string) *StandardError {
	return newStandardError(2, CategorySyntax, CodeParse,
		fmt.Sprintf("Parse error at offset %d in %q: %s", offset, input, details),
		map[string]interface{}{"input": input, "offset": offset, "details": details})
}

func SchemaVersion(version, constraint string) *StandardError {
	return newStandardError(2, CategoryValidation, CodeSchemaVersion,
		fmt.Sprintf("Catalogue schema %s does not satisfy %s", version, constraint),
		map[string]interface{}{"version": version, "constraint": constraint})
}

func UnknownType(name string) *StandardError {
	return newStandardError(2, CategoryValidation, CodeUnknownType,
		fmt.Sprintf("Unknown type %s", name),
		map[string]interface{}{"name": name})
}
