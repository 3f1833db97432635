package security

import (
	"fmt"
	"regexp"
	"strings"
)

// Level selects how much of the expression grammar is admitted.
// Strict admits the least; every level includes the baseline checks.
type Level int

const (
	// LevelStrict restricts expressions to arithmetic, comparisons,
	// boolean logic, ternaries, literals and member access. No calls.
	LevelStrict Level = iota

	// LevelModerate admits the collection operations but blocks
	// reflection-introspection member names.
	LevelModerate

	// LevelPermissive applies only the baseline blocklists and limits.
	LevelPermissive
)

// String returns the lowercase level name.
func (l Level) String() string {
	switch l {
	case LevelStrict:
		return "strict"
	case LevelModerate:
		return "moderate"
	case LevelPermissive:
		return "permissive"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel parses a level name, case-insensitively.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict":
		return LevelStrict, nil
	case "moderate":
		return LevelModerate, nil
	case "permissive":
		return LevelPermissive, nil
	default:
		return 0, fmt.Errorf("unknown security level %q", s)
	}
}

// ViolationError reports an expression rejected by the validator. It is
// always raised; validation never silently degrades an expression.
type ViolationError struct {
	Expr   string
	Reason string
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("security violation in %q: %s", e.Expr, e.Reason)
}

const (
	maxLength       = 10000
	maxNestingDepth = 20
)

// blockedKeywords rejects vocabulary that reaches outside the expression
// sandbox: filesystem, process control, reflection loading, threading,
// networking, raw memory and dynamic compilation. Matched as substrings of
// the lowercased expression at every level.
var blockedKeywords = []string{
	"system.io", "file.", "directory.", "path.combine",
	"process.", "exec(", "syscall",
	"assembly.", "appdomain", "activator.", "dllimport",
	"thread.", "task.run", "task.factory", "monitor.",
	"socket", "tcpclient", "udpclient", "webclient", "httpclient", "dns.",
	"marshal.", "gchandle", "stackalloc", "pointer",
	"compile(", "codedom", "emit(", "ilgenerator",
	"environment.", "registry.",
}

// blockedPatterns rejects structural constructs the grammar could never
// execute anyway; they are caught here so the error names the real reason.
var blockedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)while\s*\(\s*true\s*\)`),
	regexp.MustCompile(`(?i)for\s*\(\s*;\s*;\s*\)`),
	regexp.MustCompile(`(?i)\bgoto\b`),
	regexp.MustCompile(`(?i)\bunsafe\b`),
}

// introspectionMembers are reflection lookups blocked under Moderate (and
// therefore Strict).
var introspectionMembers = []string{
	"gettype", "typeof", "getmethod", "getfield", "getproperty",
	"getmembers", "invoke", "dynamicinvoke", "makegenerictype",
}

// strictPattern is the whitelist grammar for Strict: identifiers, literals,
// member access, arithmetic, comparison, boolean and ternary operators.
var strictPattern = regexp.MustCompile(
	`^[\w\s.\[\]^'"\\+\-*/%<>=!&|?:,()]*$`,
)

// callPattern recognizes invocation syntax, rejected under Strict.
var callPattern = regexp.MustCompile(`[\w\]]\s*\(`)

// Validate checks an expression against level. A nil return means the
// expression may proceed to compilation. The package tables are immutable,
// so concurrent callers need no synchronization.
func Validate(expr string, level Level) error {
	if len(expr) > maxLength {
		return &ViolationError{Expr: truncate(expr), Reason: fmt.Sprintf("expression exceeds %d characters", maxLength)}
	}
	if depth := nestingDepth(expr); depth > maxNestingDepth {
		return &ViolationError{Expr: truncate(expr), Reason: fmt.Sprintf("nesting depth %d exceeds %d", depth, maxNestingDepth)}
	}

	lowered := strings.ToLower(expr)
	for _, keyword := range blockedKeywords {
		if strings.Contains(lowered, keyword) {
			return &ViolationError{Expr: truncate(expr), Reason: fmt.Sprintf("blocked keyword %q", keyword)}
		}
	}
	for _, pattern := range blockedPatterns {
		if pattern.MatchString(expr) {
			return &ViolationError{Expr: truncate(expr), Reason: fmt.Sprintf("blocked pattern %q", pattern.String())}
		}
	}

	if level <= LevelModerate {
		for _, member := range introspectionMembers {
			if strings.Contains(lowered, member) {
				return &ViolationError{Expr: truncate(expr), Reason: fmt.Sprintf("introspection member %q is not permitted", member)}
			}
		}
	}

	if level == LevelStrict {
		if !strictPattern.MatchString(expr) {
			return &ViolationError{Expr: truncate(expr), Reason: "expression uses syntax outside the strict whitelist"}
		}
		if callPattern.MatchString(expr) {
			return &ViolationError{Expr: truncate(expr), Reason: "calls are not permitted under strict security"}
		}
	}

	return nil
}

// nestingDepth measures the deepest paren/bracket/brace nesting, ignoring
// quoted strings.
func nestingDepth(expr string) int {
	depth, deepest := 0, 0
	var quote byte
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '(', '[', '{':
			depth++
			if depth > deepest {
				deepest = depth
			}
		case ')', ']', '}':
			depth--
		}
	}
	return deepest
}

func truncate(expr string) string {
	const limit = 120
	if len(expr) <= limit {
		return expr
	}
	return expr[:limit] + "..."
}
