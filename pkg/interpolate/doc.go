// Package interpolate provides runtime template interpolation: templates
// with embedded expressions are evaluated against named variables and
// substituted into the output string.
//
// Example usage:
//
//	engine, err := interpolate.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Close()
//
//	out, err := engine.Eval(ctx,
//	    "Hello {user.name}! You are {(age >= 18 ? \"an adult\" : \"a minor\")}.",
//	    map[string]any{
//	        "user": map[string]any{"name": "Alice"},
//	        "age":  20,
//	    }, nil)
//	// out: "Hello Alice! You are an adult."
//
// Expression slots support two delimiter conventions ({expr} and ${expr},
// selected per call), escaped double braces ({{ renders a literal brace),
// alignment and format specifiers ({total,12:N2}), and the bounded
// expression language described in the exprlang package: arithmetic,
// comparisons, boolean logic, ternaries, null coalescing, case-insensitive
// member and indexer access, and a whitelisted set of collection
// operations.
//
// Plain variable and dotted-property slots resolve on a fast path without
// the evaluator. Full expressions are validated by a three-level security
// policy, compiled once per (expression, context shape) pair, cached in a
// concurrent LRU+TTL cache, and interpreted under a per-evaluation
// timeout.
//
// By default missing variables substitute as empty strings and format
// failures degrade to default stringification; ThrowOnMissingParameter,
// ThrowOnError and an ErrorHandler callback tighten or redirect that
// posture. All suppressed errors are observable at debug level on the
// engine logger.
package interpolate
