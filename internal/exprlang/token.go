package exprlang

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// tokenKind discriminates lexical token classes.
type tokenKind int

const (
	tokEOF tokenKind = iota
	tokInt
	tokFloat
	tokString
	tokIdent
	tokOp
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// multi-byte operators, longest first so the lexer matches greedily.
var multiOps = []string{"=>", "??", "||", "&&", "==", "!=", "<=", ">="}

const singleOps = "+-*/%!<>?:.,()[]^"

// lex tokenizes an expression. It reports the first lexical error with its
// byte position.
func lex(input string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(input) {
		c := input[i]

		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			i++
			continue
		}

		if c == '\'' || c == '"' {
			text, end, err := lexString(input, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{kind: tokString, text: text, pos: i})
			i = end
			continue
		}

		if c >= '0' && c <= '9' {
			start := i
			isFloat := false
			for i < len(input) && (input[i] >= '0' && input[i] <= '9') {
				i++
			}
			// A dot is part of the number only when a digit follows;
			// otherwise it is a member access on an integer literal.
			if i+1 < len(input) && input[i] == '.' && input[i+1] >= '0' && input[i+1] <= '9' {
				isFloat = true
				i++
				for i < len(input) && (input[i] >= '0' && input[i] <= '9') {
					i++
				}
			}
			kind := tokInt
			if isFloat {
				kind = tokFloat
			}
			tokens = append(tokens, token{kind: kind, text: input[start:i], pos: start})
			continue
		}

		if r, size := utf8.DecodeRuneInString(input[i:]); isIdentStart(r) {
			start := i
			i += size
			for i < len(input) {
				r, size := utf8.DecodeRuneInString(input[i:])
				if !isIdentPart(r) {
					break
				}
				i += size
			}
			tokens = append(tokens, token{kind: tokIdent, text: input[start:i], pos: start})
			continue
		}

		matched := false
		for _, op := range multiOps {
			if strings.HasPrefix(input[i:], op) {
				tokens = append(tokens, token{kind: tokOp, text: op, pos: i})
				i += len(op)
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		if strings.IndexByte(singleOps, c) >= 0 {
			tokens = append(tokens, token{kind: tokOp, text: string(c), pos: i})
			i++
			continue
		}

		return nil, fmt.Errorf("unexpected character %q at position %d", c, i)
	}
	tokens = append(tokens, token{kind: tokEOF, pos: len(input)})
	return tokens, nil
}

// lexString consumes a quoted string literal, resolving backslash escapes.
func lexString(input string, start int) (string, int, error) {
	quote := input[start]
	var b strings.Builder
	i := start + 1
	for i < len(input) {
		c := input[i]
		switch c {
		case quote:
			return b.String(), i + 1, nil
		case '\\':
			if i+1 >= len(input) {
				return "", 0, fmt.Errorf("unterminated escape at position %d", i)
			}
			switch input[i+1] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '\\', '\'', '"':
				b.WriteByte(input[i+1])
			default:
				b.WriteByte(input[i+1])
			}
			i += 2
		default:
			b.WriteByte(c)
			i++
		}
	}
	return "", 0, fmt.Errorf("unterminated string literal at position %d", start)
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
