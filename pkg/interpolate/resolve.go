package interpolate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/aescanero/dago-interpolate/internal/access"
	"github.com/aescanero/dago-interpolate/internal/cache"
	"github.com/aescanero/dago-interpolate/internal/exprlang"
	"github.com/aescanero/dago-interpolate/internal/format"
	"github.com/aescanero/dago-interpolate/internal/scanner"
	"github.com/aescanero/dago-interpolate/internal/security"
	"github.com/aescanero/dago-interpolate/internal/vars"
)

// evalSlot resolves one expression slot to its substituted text: classify,
// resolve, apply the error posture, format, align.
func (e *Engine) evalSlot(ctx context.Context, desc scanner.Descriptor, vctx *vars.Context, o *Options, evalID string) (string, error) {
	start := time.Now()

	value, path, err := e.resolveExpression(ctx, desc.Base, vctx, o, evalID)
	if err != nil {
		value, err = e.applyPosture(desc.Base, err, o)
		if err != nil {
			if o.ErrorHandler != nil {
				if substitute, handled := o.ErrorHandler(desc.Base, err); handled {
					e.debugSuppressed(evalID, desc.Base, "error handler substitution", err)
					return substitute, nil
				}
			}
			return "", err
		}
	}

	out, ferr := format.Apply(value, desc.Alignment, desc.HasAlignment, desc.Format, e.cultureFor(o))
	if ferr != nil {
		if o.ThrowOnError {
			err := newError(KindFormat, desc.Base, ferr)
			if o.ErrorHandler != nil {
				if substitute, handled := o.ErrorHandler(desc.Base, err); handled {
					return substitute, nil
				}
			}
			return "", err
		}
		e.debugSuppressed(evalID, desc.Base, "format degraded to default rendering", ferr)
	}

	if o.EnableDebugLogging {
		e.logger.Debug("slot evaluated",
			zap.String("eval_id", evalID),
			zap.String("expression", desc.Base),
			zap.String("path", path),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
	return out, nil
}

// resolveExpression classifies and resolves an expression. Resolution
// order is uniform at every level: the resolver callback, then the fast
// path, then the full evaluator. The second result names the path taken.
func (e *Engine) resolveExpression(ctx context.Context, text string, vctx *vars.Context, o *Options, evalID string) (any, string, error) {
	if text == "" {
		return "", "empty", nil
	}

	if o.VariableResolver != nil {
		if v, ok := o.VariableResolver(text); ok {
			return v, "resolver", nil
		}
	}

	if path, ok := dottedPath(text); ok {
		v, err := e.walkPath(path, vctx, o)
		return v, "fast", err
	}

	v, err := e.evaluateFull(ctx, text, vctx, o, evalID)
	return v, "evaluator", err
}

// dottedPath recognizes the fast-path grammar ident(.ident)* with a
// non-special root, so plain variable and property reads skip the
// evaluator.
func dottedPath(text string) ([]string, bool) {
	parts := strings.Split(text, ".")
	for _, part := range parts {
		if !isIdentifier(part) {
			return nil, false
		}
	}
	switch strings.ToLower(parts[0]) {
	case "true", "false", "null":
		return nil, false
	}
	return parts, true
}

// isIdentifier matches the expression lexer's identifier grammar, so every
// name the evaluator could resolve is also eligible for the fast path.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}

// walkPath resolves a dotted path by successive member lookups. A missing
// root is a MissingVariable error; a missing member short-circuits to a
// null result, or a MissingMember error under strict parameter access.
func (e *Engine) walkPath(path []string, vctx *vars.Context, o *Options) (any, error) {
	current, ok := e.lookupName(path[0], vctx, o)
	if !ok {
		return nil, newError(KindMissingVariable, strings.Join(path, "."), &exprlang.MissingVariableError{Name: path[0]})
	}

	for _, member := range path[1:] {
		if current == nil {
			if o.StrictParameterAccess {
				return nil, newError(KindMissingMember, strings.Join(path, "."), fmt.Errorf("member %q of null", member))
			}
			return nil, nil
		}
		v, found, err := access.Member(current, member)
		if err != nil {
			return nil, newError(KindRuntime, strings.Join(path, "."), err)
		}
		if !found {
			if o.StrictParameterAccess {
				return nil, newError(KindMissingMember, strings.Join(path, "."), fmt.Errorf("member %q not found on %T", member, current))
			}
			return nil, nil
		}
		current = v
	}
	return current, nil
}

// lookupName is the uniform identifier resolution chain: resolver callback
// first, then the variable context.
func (e *Engine) lookupName(name string, vctx *vars.Context, o *Options) (any, bool) {
	if o.VariableResolver != nil {
		if v, ok := o.VariableResolver(name); ok {
			return v, true
		}
	}
	return vctx.Lookup(name)
}

// evaluateFull runs the security validator, fetches or compiles the unit,
// and interprets it as an independently cancellable evaluation bounded by
// the timeout.
func (e *Engine) evaluateFull(ctx context.Context, text string, vctx *vars.Context, o *Options, evalID string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := security.Validate(text, o.SecurityLevel.internal(e.level)); err != nil {
		return nil, newError(KindSecurity, text, err)
	}

	prog, cached, err := e.compile(text, vctx, o)
	if err != nil {
		return nil, err
	}
	if o.EnableDebugLogging {
		e.logger.Debug("compiled unit ready",
			zap.String("eval_id", evalID),
			zap.String("expression", text),
			zap.Bool("cache_hit", cached),
		)
	}

	env := &exprlang.Env{
		Lookup: func(name string) (any, bool) {
			return e.lookupName(name, vctx, o)
		},
		Funcs: lowerFuncs(o.Funcs),
	}

	timeout := o.Timeout
	if timeout <= 0 {
		timeout = e.timeout
	}
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		value any
		err   error
	}
	done := make(chan result, 1)
	go func() {
		v, err := prog.Eval(tctx, env)
		done <- result{value: v, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return nil, e.classifyEvalError(text, r.err, tctx)
		}
		return r.value, nil
	case <-tctx.Done():
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, newError(KindTimeout, text, fmt.Errorf("evaluation exceeded %s", timeout))
	}
}

// classifyEvalError maps interpreter failures onto the public taxonomy.
func (e *Engine) classifyEvalError(text string, err error, tctx context.Context) error {
	var missing *exprlang.MissingVariableError
	if errors.As(err, &missing) {
		return newError(KindMissingVariable, text, missing)
	}
	if errors.Is(err, context.DeadlineExceeded) && tctx.Err() != nil {
		return newError(KindTimeout, text, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return newError(KindRuntime, text, err)
}

// compile fetches the prepared unit for (context shape, expression) or
// builds it. The cache lock is not held while parsing.
func (e *Engine) compile(text string, vctx *vars.Context, o *Options) (*exprlang.Program, bool, error) {
	if o.Caching == CacheDisabled {
		prog, err := exprlang.Compile(text)
		if err != nil {
			return nil, false, newError(KindParse, text, err)
		}
		return prog, false, nil
	}

	key := vctx.ShapeID() + "\x1f" + text
	compiled := false
	v, err := e.cache.GetOrCreate(key, func() (any, error) {
		compiled = true
		return exprlang.Compile(text)
	})
	if err != nil {
		var parseErr *exprlang.ParseError
		if errors.As(err, &parseErr) {
			return nil, false, newError(KindParse, text, parseErr)
		}
		if errors.Is(err, cache.ErrClosed) {
			return nil, false, ErrEngineClosed
		}
		return nil, false, newError(KindCompilation, text, err)
	}
	return v.(*exprlang.Program), !compiled, nil
}

// applyPosture decides whether a resolution failure degrades to a null
// substitution or propagates. Undefined variables degrade by default;
// everything else propagates.
func (e *Engine) applyPosture(text string, err error, o *Options) (any, error) {
	kind, ok := KindOf(err)
	if !ok {
		return nil, err
	}
	if kind == KindMissingVariable &&
		!o.ThrowOnMissingParameter && !o.StrictParameterAccess && !o.ThrowOnError {
		e.logger.Debug("undefined variable degraded to empty substitution",
			zap.String("expression", text),
			zap.Error(err),
		)
		return nil, nil
	}
	return nil, err
}

func (e *Engine) cultureFor(o *Options) language.Tag {
	if o.Culture == "" {
		return e.culture
	}
	tag, err := format.ParseCulture(o.Culture)
	if err != nil {
		e.logger.Warn("invalid culture, using engine default",
			zap.String("culture", o.Culture),
			zap.Error(err),
		)
		return e.culture
	}
	return tag
}

// lowerFuncs normalizes host function names for case-insensitive dispatch.
func lowerFuncs(funcs map[string]func(args []any) (any, error)) map[string]func(args []any) (any, error) {
	if len(funcs) == 0 {
		return nil
	}
	out := make(map[string]func(args []any) (any, error), len(funcs))
	for name, fn := range funcs {
		out[strings.ToLower(name)] = fn
	}
	return out
}

func (e *Engine) debugSuppressed(evalID, expr, reason string, err error) {
	e.logger.Debug("suppressed evaluation error",
		zap.String("eval_id", evalID),
		zap.String("expression", expr),
		zap.String("reason", reason),
		zap.Error(err),
	)
}
