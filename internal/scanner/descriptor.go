package scanner

import (
	"strconv"
	"strings"
)

// Descriptor is a parsed expression slot: the expression text plus the
// optional alignment and format specifier split off from it.
//
// A slot follows the form "expr[,alignment][:format]". Both separators are
// only recognized at the top level, outside parens, brackets, braces and
// quoted strings, so a ternary written as {(a ? b : c)} keeps its colon.
type Descriptor struct {
	Base         string // expression text, whitespace-trimmed
	Alignment    int    // negative = left-align, positive = right-align
	HasAlignment bool
	Format       string // format specifier, verbatim
	HasFormat    bool
}

// ParseDescriptor splits a raw slot body into base text, alignment and
// format specifier. The first top-level colon starts the format; the first
// top-level comma before it (or anywhere, if no format) starts the
// alignment. A comma whose tail is not a signed integer is left in the base
// text rather than rejected.
func ParseDescriptor(raw string) Descriptor {
	d := Descriptor{Base: strings.TrimSpace(raw)}

	colon := formatColon(raw)
	head := raw
	if colon >= 0 {
		head = raw[:colon]
		d.Format = raw[colon+1:]
		d.HasFormat = true
	}

	comma := indexTopLevel(head, ',')
	if comma >= 0 {
		if n, err := strconv.Atoi(strings.TrimSpace(head[comma+1:])); err == nil {
			d.Alignment = n
			d.HasAlignment = true
			head = head[:comma]
		}
	}

	d.Base = strings.TrimSpace(head)
	return d
}

// formatColon finds the colon that starts the format specifier: the first
// top-level colon not claimed by a pending ternary '?'. This keeps
// unparenthesized ternaries like a>1?"x":"y" whole while {value:F2} still
// splits. A '??' is null coalescing and claims no colon.
func formatColon(s string) int {
	depth, pending := 0, 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\'', '"':
			end, ok := skipQuoted(s, i)
			if !ok {
				return -1
			}
			i = end - 1
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case '?':
			if depth == 0 {
				if i+1 < len(s) && s[i+1] == '?' {
					i++
					continue
				}
				pending++
			}
		case ':':
			if depth == 0 {
				if pending > 0 {
					pending--
					continue
				}
				return i
			}
		}
	}
	return -1
}

// indexTopLevel returns the index of the first occurrence of sep outside
// parens, brackets, braces and quoted strings, or -1.
func indexTopLevel(s string, sep byte) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\'', '"':
			end, ok := skipQuoted(s, i)
			if !ok {
				return -1
			}
			i = end - 1
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case sep:
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
