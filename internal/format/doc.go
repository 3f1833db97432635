// Package format renders evaluated values into their substituted text:
// alignment padding, format specifiers and culture-aware numeric output.
//
// Numbers go through the golang.org/x/text printers so grouping and
// decimal separators follow the selected culture. Standard specifiers
// (F, N, P, E, D, X) take an optional precision; date patterns use either
// .NET-style tokens (yyyy-MM-dd) or Go reference layouts. Values that
// implement Formattable render themselves. A failing specifier degrades to
// default stringification; the error is still returned so the caller can
// escalate it instead.
package format
