package exprlang

import (
	"fmt"
	"strconv"
)

// ParseError reports a syntactically invalid expression.
type ParseError struct {
	Expr string
	Pos  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %q at position %d: %s", e.Expr, e.Pos, e.Msg)
}

// Program is the compiled, reusable form of one expression. It is immutable
// after Compile and safe for concurrent evaluation.
type Program struct {
	Text string
	root node
}

// Compile parses an expression into a Program.
func Compile(text string) (*Program, error) {
	tokens, err := lex(text)
	if err != nil {
		return nil, &ParseError{Expr: text, Msg: err.Error()}
	}
	p := &parser{expr: text, tokens: tokens}
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, p.errorf("unexpected %q after expression", p.peek().text)
	}
	return &Program{Text: text, root: root}, nil
}

// parser is a recursive-descent parser with one level of precedence per
// method, lowest first.
type parser struct {
	expr   string
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) acceptOp(op string) bool {
	if t := p.peek(); t.kind == tokOp && t.text == op {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expectOp(op string) error {
	if !p.acceptOp(op) {
		return p.errorf("expected %q, got %q", op, p.peek().text)
	}
	return nil
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Expr: p.expr, Pos: p.peek().pos, Msg: fmt.Sprintf(format, args...)}
}

// parseExpr = ternary (lowest precedence, right-associative).
func (p *parser) parseExpr() (node, error) {
	cond, err := p.parseCoalesce()
	if err != nil {
		return nil, err
	}
	if !p.acceptOp("?") {
		return cond, nil
	}
	thenExpr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectOp(":"); err != nil {
		return nil, err
	}
	elseExpr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return conditionalNode{cond: cond, thenExpr: thenExpr, elseExpr: elseExpr}, nil
}

func (p *parser) parseCoalesce() (node, error) {
	left, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if !p.acceptOp("??") {
		return left, nil
	}
	// Right-associative: a ?? b ?? c groups as a ?? (b ?? c).
	right, err := p.parseCoalesce()
	if err != nil {
		return nil, err
	}
	return coalesceNode{left: left, right: right}, nil
}

func (p *parser) parseOr() (node, error) {
	return p.parseBinary([]string{"||"}, p.parseAnd)
}

func (p *parser) parseAnd() (node, error) {
	return p.parseBinary([]string{"&&"}, p.parseEquality)
}

func (p *parser) parseEquality() (node, error) {
	return p.parseBinary([]string{"==", "!="}, p.parseComparison)
}

func (p *parser) parseComparison() (node, error) {
	return p.parseBinary([]string{"<=", ">=", "<", ">"}, p.parseAdditive)
}

func (p *parser) parseAdditive() (node, error) {
	return p.parseBinary([]string{"+", "-"}, p.parseMultiplicative)
}

func (p *parser) parseMultiplicative() (node, error) {
	return p.parseBinary([]string{"*", "/", "%"}, p.parseUnary)
}

func (p *parser) parseBinary(ops []string, operand func() (node, error)) (node, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}
	for {
		matched := ""
		for _, op := range ops {
			if p.acceptOp(op) {
				matched = op
				break
			}
		}
		if matched == "" {
			return left, nil
		}
		right, err := operand()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: matched, left: left, right: right}
	}
}

func (p *parser) parseUnary() (node, error) {
	if p.acceptOp("!") {
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return unaryNode{op: "!", operand: operand}, nil
	}
	if p.acceptOp("-") {
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return unaryNode{op: "-", operand: operand}, nil
	}
	return p.parsePostfix()
}

// parsePostfix parses a primary followed by any chain of member reads,
// indexers and calls.
func (p *parser) parsePostfix() (node, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.acceptOp("."):
			t := p.next()
			if t.kind != tokIdent {
				return nil, p.errorf("expected member name after '.', got %q", t.text)
			}
			if p.acceptOp("(") {
				args, err := p.parseArgs()
				if err != nil {
					return nil, err
				}
				expr = callNode{recv: expr, name: t.text, args: args}
			} else {
				expr = memberNode{obj: expr, name: t.text}
			}

		case p.acceptOp("["):
			idx, err := p.parseIndex()
			if err != nil {
				return nil, err
			}
			if err := p.expectOp("]"); err != nil {
				return nil, err
			}
			expr = idx.withObj(expr)

		default:
			return expr, nil
		}
	}
}

// pendingIndex carries an index expression until its receiver is known.
type pendingIndex struct {
	idx     node
	fromEnd bool
}

func (pi pendingIndex) withObj(obj node) node {
	return indexNode{obj: obj, idx: pi.idx, fromEnd: pi.fromEnd}
}

func (p *parser) parseIndex() (pendingIndex, error) {
	if p.acceptOp("^") {
		t := p.next()
		if t.kind != tokInt {
			return pendingIndex{}, p.errorf("expected integer after '^', got %q", t.text)
		}
		n, err := strconv.ParseInt(t.text, 10, 64)
		if err != nil {
			return pendingIndex{}, p.errorf("invalid from-end index %q", t.text)
		}
		return pendingIndex{idx: literalNode{value: n}, fromEnd: true}, nil
	}
	idx, err := p.parseExpr()
	if err != nil {
		return pendingIndex{}, err
	}
	return pendingIndex{idx: idx}, nil
}

// parseArgs parses a call argument list after the opening paren. Each
// argument is either a lambda (ident => expr) or a full expression.
func (p *parser) parseArgs() ([]node, error) {
	var args []node
	if p.acceptOp(")") {
		return args, nil
	}
	for {
		arg, err := p.parseArg()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.acceptOp(",") {
			continue
		}
		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
		return args, nil
	}
}

func (p *parser) parseArg() (node, error) {
	if t := p.peek(); t.kind == tokIdent {
		after := p.tokens[p.pos+1]
		if after.kind == tokOp && after.text == "=>" {
			p.pos += 2
			body, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			return lambdaNode{param: t.text, body: body}, nil
		}
	}
	return p.parseExpr()
}

func (p *parser) parsePrimary() (node, error) {
	t := p.next()
	switch t.kind {
	case tokInt:
		n, err := strconv.ParseInt(t.text, 10, 64)
		if err != nil {
			return nil, p.errorf("invalid integer literal %q", t.text)
		}
		return literalNode{value: n}, nil

	case tokFloat:
		f, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, p.errorf("invalid float literal %q", t.text)
		}
		return literalNode{value: f}, nil

	case tokString:
		return literalNode{value: t.text}, nil

	case tokIdent:
		switch t.text {
		case "true":
			return literalNode{value: true}, nil
		case "false":
			return literalNode{value: false}, nil
		case "null":
			return literalNode{value: nil}, nil
		}
		if p.acceptOp("(") {
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			return callNode{name: t.text, args: args}, nil
		}
		return identNode{name: t.text}, nil

	case tokOp:
		if t.text == "(" {
			inner, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if err := p.expectOp(")"); err != nil {
				return nil, err
			}
			return inner, nil
		}
	}
	return nil, &ParseError{Expr: p.expr, Pos: t.pos, Msg: fmt.Sprintf("unexpected token %q", t.text)}
}
