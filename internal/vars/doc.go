// Package vars builds the per-call variable context for template
// evaluation.
//
// A context merges engine-wide global data with per-call variables, local
// shadowing global on name collision. Lookups are case-insensitive. The
// context also records each entry's declared type and exposes a shape
// identifier (sorted name:kind pairs) that keys the compiled-unit cache.
package vars
