// Package security validates expression text before compilation.
//
// Three strictness levels form a chain: everything Strict admits, Moderate
// admits; everything Moderate admits, Permissive admits. All levels share
// the baseline checks (keyword and pattern blocklists, nesting depth,
// length). Rejection is always an explicit ViolationError; an unsafe
// expression is never silently downgraded or partially evaluated.
package security
