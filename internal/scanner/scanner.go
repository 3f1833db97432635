package scanner

import (
	"strings"
)

// Mode selects the delimiter convention for expression slots.
type Mode int

const (
	// ModeBrace marks expressions as {expr}.
	ModeBrace Mode = iota

	// ModeDollar marks expressions as ${expr}; bare braces are literal text.
	ModeDollar
)

// Escape sentinels stand in for {{ and }} during evaluation so that braces
// produced by expression results are never re-interpreted. They are restored
// to single braces by Unescape as the final output pass.
const (
	escapeOpen  = '\x01'
	escapeClose = '\x02'
)

// SegmentKind discriminates the two segment variants.
type SegmentKind int

const (
	// SegmentLiteral is plain text copied to the output verbatim.
	SegmentLiteral SegmentKind = iota

	// SegmentExpression is a slot whose descriptor must be evaluated.
	SegmentExpression
)

// Segment is one piece of a scanned template, in encounter order.
type Segment struct {
	Kind       SegmentKind
	Text       string     // literal text, or the raw inner slot text
	Descriptor Descriptor // populated for SegmentExpression
	Offset     int        // byte offset of the segment in the template
}

// Scan splits a template into ordered literal and expression segments.
//
// The scan is a three-state machine (literal, in-expression, in-quote).
// Inside an expression, brace depth is tracked and quoted string literals
// (single or double, with backslash escapes) suppress brace counting. An
// open delimiter that never closes degrades to literal text instead of
// failing.
func Scan(template string, mode Mode) []Segment {
	var segments []Segment
	var literal strings.Builder
	literalStart := 0

	flushLiteral := func(end int) {
		if literal.Len() > 0 {
			segments = append(segments, Segment{
				Kind:   SegmentLiteral,
				Text:   literal.String(),
				Offset: literalStart,
			})
			literal.Reset()
		}
		literalStart = end
	}

	i := 0
	for i < len(template) {
		c := template[i]

		// Escaped double braces only exist in brace mode; in dollar mode a
		// brace never opens a slot, so it needs no escape.
		if mode == ModeBrace && c == '{' && i+1 < len(template) && template[i+1] == '{' {
			literal.WriteByte(escapeOpen)
			i += 2
			continue
		}
		if mode == ModeBrace && c == '}' && i+1 < len(template) && template[i+1] == '}' {
			literal.WriteByte(escapeClose)
			i += 2
			continue
		}

		open := 0
		switch mode {
		case ModeBrace:
			if c == '{' {
				open = 1
			}
		case ModeDollar:
			if c == '$' && i+1 < len(template) && template[i+1] == '{' {
				open = 2
			}
		}

		if open == 0 {
			literal.WriteByte(c)
			i++
			continue
		}

		inner, end, ok := scanSlot(template, i+open)
		if !ok {
			// Unmatched open delimiter: the rest of the template is literal.
			literal.WriteString(template[i:])
			i = len(template)
			break
		}

		flushLiteral(i)
		segments = append(segments, Segment{
			Kind:       SegmentExpression,
			Text:       inner,
			Descriptor: ParseDescriptor(inner),
			Offset:     i,
		})
		i = end
		literalStart = i
	}

	flushLiteral(len(template))
	return segments
}

// scanSlot consumes an expression body starting just after the open
// delimiter. It returns the inner text, the index just past the closing
// brace, and whether a matching close was found.
func scanSlot(template string, start int) (string, int, bool) {
	depth := 1
	i := start
	for i < len(template) {
		c := template[i]
		switch c {
		case '\'', '"':
			end, ok := skipQuoted(template, i)
			if !ok {
				return "", 0, false
			}
			i = end
			continue
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return template[start:i], i + 1, true
			}
		}
		i++
	}
	return "", 0, false
}

// skipQuoted advances past a quoted string literal starting at the opening
// quote, honoring backslash escapes. Returns the index just past the closing
// quote.
func skipQuoted(s string, start int) (int, bool) {
	quote := s[start]
	i := start + 1
	for i < len(s) {
		switch s[i] {
		case '\\':
			i += 2
			continue
		case quote:
			return i + 1, true
		}
		i++
	}
	return 0, false
}

// Unescape restores escaped double braces in the final output. It must run
// exactly once, after every slot has been substituted.
func Unescape(s string) string {
	if !strings.ContainsAny(s, "\x01\x02") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case escapeOpen:
			b.WriteByte('{')
		case escapeClose:
			b.WriteByte('}')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
