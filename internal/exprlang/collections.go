package exprlang

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aescanero/dago-interpolate/internal/access"
)

// evalBuiltin dispatches the whitelisted string and collection operations.
// The second result reports whether the name was handled; unhandled names
// fall through to host-method invocation.
func evalBuiltin(ctx context.Context, recv any, name string, args []node, env *Env) (any, bool, error) {
	if s, ok := recv.(string); ok {
		return evalStringOp(ctx, s, strings.ToLower(name), args, env)
	}
	if seq, ok := access.AsSequence(recv); ok {
		return evalSequenceOp(ctx, seq, strings.ToLower(name), args, env)
	}
	return nil, false, nil
}

func evalStringOp(ctx context.Context, s, name string, args []node, env *Env) (any, bool, error) {
	switch name {
	case "upper", "toupper":
		return strings.ToUpper(s), true, nil
	case "lower", "tolower":
		return strings.ToLower(s), true, nil
	case "trim":
		return strings.TrimSpace(s), true, nil
	case "contains", "startswith", "endswith":
		vals, err := evalArgs(ctx, args, env)
		if err != nil {
			return nil, true, err
		}
		if len(vals) != 1 {
			return nil, true, fmt.Errorf("%s expects 1 argument, got %d", name, len(vals))
		}
		arg, ok := vals[0].(string)
		if !ok {
			return nil, true, fmt.Errorf("%s expects a string argument, got %T", name, vals[0])
		}
		switch name {
		case "contains":
			return strings.Contains(s, arg), true, nil
		case "startswith":
			return strings.HasPrefix(s, arg), true, nil
		default:
			return strings.HasSuffix(s, arg), true, nil
		}
	}
	return nil, false, nil
}

func evalSequenceOp(ctx context.Context, seq []any, name string, args []node, env *Env) (any, bool, error) {
	switch name {
	case "count":
		if len(args) == 0 {
			return int64(len(seq)), true, nil
		}
		matched, err := filter(ctx, seq, args, env, name)
		if err != nil {
			return nil, true, err
		}
		return int64(len(matched)), true, nil

	case "sum", "min", "max", "average":
		return true2(reduce(ctx, seq, name, args, env))

	case "where":
		matched, err := filter(ctx, seq, args, env, name)
		return matched, true, err

	case "select":
		sel, err := lambdaArg(args, name)
		if err != nil {
			return nil, true, err
		}
		out := make([]any, len(seq))
		for i, item := range seq {
			if err := ctx.Err(); err != nil {
				return nil, true, err
			}
			v, err := applyLambda(ctx, sel, env, item)
			if err != nil {
				return nil, true, err
			}
			out[i] = v
		}
		return out, true, nil

	case "orderby", "orderbydescending":
		sorted, err := orderBy(ctx, seq, args, env, name == "orderbydescending")
		return sorted, true, err

	case "take", "skip":
		vals, err := evalArgs(ctx, args, env)
		if err != nil {
			return nil, true, err
		}
		if len(vals) != 1 {
			return nil, true, fmt.Errorf("%s expects 1 argument, got %d", name, len(vals))
		}
		n, ok := asInt64(vals[0])
		if !ok {
			return nil, true, fmt.Errorf("%s expects an integer, got %T", name, vals[0])
		}
		i := int(n)
		if i < 0 {
			i = 0
		}
		if i > len(seq) {
			i = len(seq)
		}
		if name == "take" {
			return append([]any(nil), seq[:i]...), true, nil
		}
		return append([]any(nil), seq[i:]...), true, nil

	case "first", "last":
		candidates := seq
		if len(args) > 0 {
			matched, err := filter(ctx, seq, args, env, name)
			if err != nil {
				return nil, true, err
			}
			candidates = matched
		}
		if len(candidates) == 0 {
			return nil, true, fmt.Errorf("%s: sequence contains no matching element", name)
		}
		if name == "first" {
			return candidates[0], true, nil
		}
		return candidates[len(candidates)-1], true, nil

	case "any":
		if len(args) == 0 {
			return len(seq) > 0, true, nil
		}
		matched, err := filter(ctx, seq, args, env, name)
		if err != nil {
			return nil, true, err
		}
		return len(matched) > 0, true, nil

	case "all":
		matched, err := filter(ctx, seq, args, env, name)
		if err != nil {
			return nil, true, err
		}
		return len(matched) == len(seq), true, nil

	case "contains":
		vals, err := evalArgs(ctx, args, env)
		if err != nil {
			return nil, true, err
		}
		if len(vals) != 1 {
			return nil, true, fmt.Errorf("contains expects 1 argument, got %d", len(vals))
		}
		for _, item := range seq {
			if equal(item, vals[0]) {
				return true, true, nil
			}
		}
		return false, true, nil

	case "join":
		vals, err := evalArgs(ctx, args, env)
		if err != nil {
			return nil, true, err
		}
		sep := ","
		if len(vals) == 1 {
			s, ok := vals[0].(string)
			if !ok {
				return nil, true, fmt.Errorf("join expects a string separator, got %T", vals[0])
			}
			sep = s
		} else if len(vals) > 1 {
			return nil, true, fmt.Errorf("join expects at most 1 argument, got %d", len(vals))
		}
		parts := make([]string, len(seq))
		for i, item := range seq {
			parts[i] = stringify(item)
		}
		return strings.Join(parts, sep), true, nil
	}
	return nil, false, nil
}

func true2(v any, err error) (any, bool, error) {
	return v, true, err
}

// filter applies the single lambda predicate in args to seq.
func filter(ctx context.Context, seq []any, args []node, env *Env, op string) ([]any, error) {
	pred, err := lambdaArg(args, op)
	if err != nil {
		return nil, err
	}
	var out []any
	for _, item := range seq {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := applyLambda(ctx, pred, env, item)
		if err != nil {
			return nil, err
		}
		keep, err := truthy(v)
		if err != nil {
			return nil, fmt.Errorf("%s predicate: %w", op, err)
		}
		if keep {
			out = append(out, item)
		}
	}
	return out, nil
}

// reduce implements sum/min/max/average with an optional selector.
func reduce(ctx context.Context, seq []any, op string, args []node, env *Env) (any, error) {
	var sel *lambdaNode
	if len(args) > 0 {
		l, err := lambdaArg(args, op)
		if err != nil {
			return nil, err
		}
		sel = &l
	}

	if len(seq) == 0 {
		switch op {
		case "sum":
			return int64(0), nil
		default:
			return nil, fmt.Errorf("%s: sequence contains no elements", op)
		}
	}

	allInt := true
	var sumF float64
	var sumI int64
	var best any
	for i, item := range seq {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v := item
		if sel != nil {
			var err error
			v, err = applyLambda(ctx, *sel, env, item)
			if err != nil {
				return nil, err
			}
		}

		switch op {
		case "min", "max":
			if i == 0 {
				best = v
				continue
			}
			c, err := compare(v, best)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
			if (op == "min" && c < 0) || (op == "max" && c > 0) {
				best = v
			}
		default:
			if n, ok := asInt64(v); ok {
				sumI += n
				sumF += float64(n)
			} else if f, ok := asFloat64(v); ok {
				allInt = false
				sumF += f
			} else {
				return nil, fmt.Errorf("%s: element %d is not numeric (%T)", op, i, v)
			}
		}
	}

	switch op {
	case "min", "max":
		return best, nil
	case "average":
		return sumF / float64(len(seq)), nil
	default:
		if allInt {
			return sumI, nil
		}
		return sumF, nil
	}
}

// orderBy sorts a copy of seq by the selector key, stably.
func orderBy(ctx context.Context, seq []any, args []node, env *Env, descending bool) ([]any, error) {
	sel, err := lambdaArg(args, "orderby")
	if err != nil {
		return nil, err
	}
	keys := make([]any, len(seq))
	for i, item := range seq {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		k, err := applyLambda(ctx, sel, env, item)
		if err != nil {
			return nil, err
		}
		keys[i] = k
	}

	idx := make([]int, len(seq))
	for i := range idx {
		idx[i] = i
	}
	var sortErr error
	sort.SliceStable(idx, func(a, b int) bool {
		if sortErr != nil {
			return false
		}
		c, err := compare(keys[idx[a]], keys[idx[b]])
		if err != nil {
			sortErr = err
			return false
		}
		if descending {
			return c > 0
		}
		return c < 0
	})
	if sortErr != nil {
		return nil, fmt.Errorf("orderby: %w", sortErr)
	}

	out := make([]any, len(seq))
	for i, j := range idx {
		out[i] = seq[j]
	}
	return out, nil
}

func lambdaArg(args []node, op string) (lambdaNode, error) {
	if len(args) != 1 {
		return lambdaNode{}, fmt.Errorf("%s expects 1 lambda argument, got %d arguments", op, len(args))
	}
	lam, ok := args[0].(lambdaNode)
	if !ok {
		return lambdaNode{}, fmt.Errorf("%s expects a lambda argument like x => expr", op)
	}
	return lam, nil
}

func applyLambda(ctx context.Context, lam lambdaNode, env *Env, item any) (any, error) {
	return eval(ctx, lam.body, env.bind(lam.param, item))
}
