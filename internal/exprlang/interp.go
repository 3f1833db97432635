package exprlang

import (
	"context"
	"fmt"
	"strings"

	"github.com/aescanero/dago-interpolate/internal/access"
)

// Env supplies name resolution to an evaluation. Lookup is consulted for
// every free identifier at every recursion depth, so the caller decides the
// resolver-callback / variable-context precedence once and it applies
// uniformly. Funcs extends the callable universe with host functions.
type Env struct {
	Lookup func(name string) (any, bool)
	Funcs  map[string]func(args []any) (any, error)

	// locals chains lambda parameter bindings over the outer environment.
	locals *binding
}

type binding struct {
	name  string
	value any
	next  *binding
}

// bind returns a child environment with one extra local.
func (e *Env) bind(name string, value any) *Env {
	child := *e
	child.locals = &binding{name: name, value: value, next: e.locals}
	return &child
}

func (e *Env) resolve(name string) (any, bool) {
	for b := e.locals; b != nil; b = b.next {
		if strings.EqualFold(b.name, name) {
			return b.value, true
		}
	}
	if e.Lookup != nil {
		return e.Lookup(name)
	}
	return nil, false
}

// Eval walks the program against env. ctx bounds the evaluation; it is
// checked at call boundaries and on every collection-operation iteration so
// timeouts interrupt long walks.
func (p *Program) Eval(ctx context.Context, env *Env) (any, error) {
	v, err := eval(ctx, p.root, env)
	if err != nil {
		if _, ok := err.(*RuntimeError); ok {
			return nil, err
		}
		return nil, &RuntimeError{Expr: p.Text, Err: err}
	}
	return v, nil
}

func eval(ctx context.Context, n node, env *Env) (any, error) {
	switch n := n.(type) {
	case literalNode:
		return n.value, nil

	case identNode:
		if v, ok := env.resolve(n.name); ok {
			return v, nil
		}
		return nil, &MissingVariableError{Name: n.name}

	case unaryNode:
		return evalUnary(ctx, n, env)

	case binaryNode:
		return evalBinary(ctx, n, env)

	case coalesceNode:
		left, err := eval(ctx, n.left, env)
		if err != nil {
			// A missing identifier on the left of ?? falls through to the
			// default instead of failing the whole expression.
			if _, missing := err.(*MissingVariableError); !missing {
				return nil, err
			}
			left = nil
		}
		if left != nil {
			return left, nil
		}
		return eval(ctx, n.right, env)

	case conditionalNode:
		cond, err := eval(ctx, n.cond, env)
		if err != nil {
			return nil, err
		}
		b, err := truthy(cond)
		if err != nil {
			return nil, fmt.Errorf("ternary condition: %w", err)
		}
		if b {
			return eval(ctx, n.thenExpr, env)
		}
		return eval(ctx, n.elseExpr, env)

	case memberNode:
		obj, err := eval(ctx, n.obj, env)
		if err != nil {
			return nil, err
		}
		return evalMember(obj, n.name)

	case indexNode:
		return evalIndex(ctx, n, env)

	case callNode:
		return evalCall(ctx, n, env)

	case lambdaNode:
		return nil, fmt.Errorf("lambda is only valid as a call argument")

	default:
		return nil, fmt.Errorf("unknown node type %T", n)
	}
}

func evalUnary(ctx context.Context, n unaryNode, env *Env) (any, error) {
	v, err := eval(ctx, n.operand, env)
	if err != nil {
		return nil, err
	}
	switch n.op {
	case "!":
		b, err := truthy(v)
		if err != nil {
			return nil, err
		}
		return !b, nil
	case "-":
		if i, ok := asInt64(v); ok {
			return -i, nil
		}
		if f, ok := asFloat64(v); ok {
			return -f, nil
		}
		return nil, fmt.Errorf("cannot negate value of type %T", v)
	}
	return nil, fmt.Errorf("unknown unary operator %q", n.op)
}

func evalBinary(ctx context.Context, n binaryNode, env *Env) (any, error) {
	// Boolean operators short-circuit; the right side may stay unevaluated.
	if n.op == "&&" || n.op == "||" {
		left, err := eval(ctx, n.left, env)
		if err != nil {
			return nil, err
		}
		lb, err := truthy(left)
		if err != nil {
			return nil, err
		}
		if n.op == "&&" && !lb {
			return false, nil
		}
		if n.op == "||" && lb {
			return true, nil
		}
		right, err := eval(ctx, n.right, env)
		if err != nil {
			return nil, err
		}
		return truthy(right)
	}

	left, err := eval(ctx, n.left, env)
	if err != nil {
		return nil, err
	}
	right, err := eval(ctx, n.right, env)
	if err != nil {
		return nil, err
	}

	switch n.op {
	case "==":
		return equal(left, right), nil
	case "!=":
		return !equal(left, right), nil
	case "<", "<=", ">", ">=":
		c, err := compare(left, right)
		if err != nil {
			return nil, err
		}
		switch n.op {
		case "<":
			return c < 0, nil
		case "<=":
			return c <= 0, nil
		case ">":
			return c > 0, nil
		default:
			return c >= 0, nil
		}
	default:
		return arith(n.op, left, right)
	}
}

// evalMember resolves obj.name through the shared member-access rules, so
// a dotted read means the same thing here and on the fast path.
func evalMember(obj any, name string) (any, error) {
	if obj == nil {
		return nil, fmt.Errorf("cannot read member %q of null", name)
	}
	v, found, err := access.Member(obj, name)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("member %q not found on %T", name, obj)
	}
	return v, nil
}

func evalIndex(ctx context.Context, n indexNode, env *Env) (any, error) {
	obj, err := eval(ctx, n.obj, env)
	if err != nil {
		return nil, err
	}
	idx, err := eval(ctx, n.idx, env)
	if err != nil {
		return nil, err
	}
	if n.fromEnd {
		i, ok := asInt64(idx)
		if !ok {
			return nil, fmt.Errorf("from-end index must be an integer, got %T", idx)
		}
		return access.FromEnd(obj, int(i))
	}
	return access.Index(obj, idx)
}

func evalCall(ctx context.Context, n callNode, env *Env) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Bare call: a host function registered on the environment.
	if n.recv == nil {
		fn, ok := env.Funcs[strings.ToLower(n.name)]
		if !ok {
			return nil, fmt.Errorf("unknown function %q", n.name)
		}
		args, err := evalArgs(ctx, n.args, env)
		if err != nil {
			return nil, err
		}
		return fn(args)
	}

	recv, err := eval(ctx, n.recv, env)
	if err != nil {
		return nil, err
	}
	if recv == nil {
		return nil, fmt.Errorf("cannot call %q on null", n.name)
	}

	// Collection and string operations take precedence over host methods so
	// their semantics stay uniform across value shapes.
	if out, handled, err := evalBuiltin(ctx, recv, n.name, n.args, env); handled {
		return out, err
	}

	args, err := evalArgs(ctx, n.args, env)
	if err != nil {
		return nil, err
	}
	out, found, err := access.CallMethod(recv, n.name, args)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("method %q not found on %T", n.name, recv)
	}
	return out, nil
}

// evalArgs evaluates plain call arguments. Lambdas never reach here; the
// builtin dispatcher consumes them unevaluated.
func evalArgs(ctx context.Context, args []node, env *Env) ([]any, error) {
	out := make([]any, len(args))
	for i, arg := range args {
		if _, ok := arg.(lambdaNode); ok {
			return nil, fmt.Errorf("argument %d: lambda is not valid here", i)
		}
		v, err := eval(ctx, arg, env)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
