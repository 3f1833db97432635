// Package exprlang implements the embedded expression language: a lexer, a
// recursive-descent parser and a tree-walking interpreter over a bounded
// grammar.
//
// The grammar covers literals, arithmetic, comparison and boolean
// operators, the null-coalescing operator, ternary conditionals with lazy
// branches, member and indexer access (including from-end ^n indexing),
// zero-or-simple-argument host method calls, and a whitelisted set of
// collection operations with single-parameter lambdas:
//
//	{items.where(x => x.price > 10).orderby(x => x.name).take(5)}
//	{score >= 90 ? "A" : score >= 80 ? "B" : "C"}
//	{user.nickname ?? user.name ?? "anonymous"}
//
// Loops, declarations and arbitrary statements are intentionally outside
// the grammar. A compiled Program is immutable and safe for concurrent
// evaluation; name resolution is supplied per evaluation through Env, so
// one Program serves every context with the same shape.
package exprlang
