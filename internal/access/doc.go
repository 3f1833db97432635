// Package access provides dynamic, case-insensitive member and index
// resolution over heterogeneous host values.
//
// Values are grouped into three capability variants: ordered maps, indexed
// sequences and structured records. All traversal in the engine (the fast
// path and the full evaluator alike) goes through this package, so the
// resolution rules stay in one place: map keys and struct fields match
// case-insensitively, sequences support positional, negative and from-end
// indexing, and zero-argument methods read like computed members.
package access
