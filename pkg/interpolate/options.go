package interpolate

import (
	"time"

	"github.com/aescanero/dago-interpolate/internal/security"
)

// SecurityLevel selects how much of the expression grammar a call admits.
type SecurityLevel int

const (
	// SecurityDefault uses the engine's configured level.
	SecurityDefault SecurityLevel = iota

	// SecurityStrict admits arithmetic, identifiers, literals, member
	// access and ternaries only; no calls.
	SecurityStrict

	// SecurityModerate additionally admits the collection operations but
	// blocks reflection introspection.
	SecurityModerate

	// SecurityPermissive applies only the baseline blocklists and limits.
	SecurityPermissive
)

func (l SecurityLevel) internal(fallback security.Level) security.Level {
	switch l {
	case SecurityStrict:
		return security.LevelStrict
	case SecurityModerate:
		return security.LevelModerate
	case SecurityPermissive:
		return security.LevelPermissive
	default:
		return fallback
	}
}

// DelimiterSyntax selects the slot delimiter convention for one call.
type DelimiterSyntax int

const (
	// SyntaxDefault uses the engine's configured convention.
	SyntaxDefault DelimiterSyntax = iota

	// SyntaxBrace marks expressions as {expr}.
	SyntaxBrace

	// SyntaxDollar marks expressions as ${expr}; bare braces are literal
	// text.
	SyntaxDollar
)

// CacheMode controls compiled-unit reuse for one call.
type CacheMode int

const (
	// CacheDefault uses the engine default: caching enabled.
	CacheDefault CacheMode = iota

	// CacheEnabled reuses compiled units across calls with the same
	// expression text and context shape.
	CacheEnabled

	// CacheDisabled compiles on every call.
	CacheDisabled
)

// Options controls one evaluation call. A nil *Options means
// DefaultOptions. Every zero-valued field falls back to the engine
// default, so a partially filled Options never silently disables an
// engine-level setting.
type Options struct {
	// ThrowOnMissingParameter surfaces an undefined variable as an error
	// instead of an empty substitution.
	ThrowOnMissingParameter bool

	// ThrowOnError escalates failures that otherwise degrade silently,
	// including format failures and undefined simple identifiers inside
	// full expressions.
	ThrowOnError bool

	// StrictParameterAccess makes a missing member an error instead of a
	// null result.
	StrictParameterAccess bool

	// EnableDebugLogging traces every slot evaluation, including
	// suppressed errors, to the engine logger at debug level.
	EnableDebugLogging bool

	// Culture is the BCP-47 formatting culture, e.g. "en" or "de-DE".
	// Empty uses the engine default.
	Culture string

	// VariableResolver is consulted before every other resolution
	// strategy, at every recursion level: the whole slot text first, then
	// each free identifier during evaluation. Returning ok=true
	// short-circuits.
	VariableResolver func(name string) (value any, ok bool)

	// Funcs extends the callable universe with host functions, matched
	// case-insensitively by name.
	Funcs map[string]func(args []any) (any, error)

	// Syntax selects the delimiter convention for this call.
	// SyntaxDefault uses the engine's configured convention.
	Syntax DelimiterSyntax

	// Caching controls compiled-unit reuse for this call. CacheDefault
	// means enabled.
	Caching CacheMode

	// SecurityLevel overrides the engine's validator level for this call.
	SecurityLevel SecurityLevel

	// ErrorHandler, when set, is offered every per-slot failure; returning
	// ok=true substitutes the returned text instead of the default
	// posture.
	ErrorHandler func(expr string, err error) (substitute string, ok bool)

	// Timeout bounds each full-evaluator invocation. Zero uses the engine
	// default.
	Timeout time.Duration
}

// DefaultOptions returns the default per-call options: every field at its
// zero value, meaning caching on, degrade-to-empty error posture, and the
// engine's security level, culture and delimiter convention.
func DefaultOptions() *Options {
	return &Options{}
}

func normalizeOptions(opts *Options) *Options {
	if opts == nil {
		return DefaultOptions()
	}
	o := *opts
	return &o
}
