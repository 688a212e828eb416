// Package evaluator renders MHPL syntax trees to strings.
package evaluator

import (
	"context"
	"strings"
	"time"

	"machinehub/statusboard/pkg/mhpl/ast"
	mhplErrors "machinehub/statusboard/pkg/mhpl/errors"
	"machinehub/statusboard/pkg/mhpl/functions"
)

// Observer receives one notification per function call. err is nil on
// success. Implementations must be safe for concurrent use.
type Observer interface {
	ObserveCall(name string, duration time.Duration, err error)
}

// Evaluator renders trees against a function table.
// It holds no per-render state and is safe for concurrent use.
type Evaluator struct {
	functions *functions.Registry
	observer  Observer
}

// New creates an evaluator over the given function table.
func New(table *functions.Registry) *Evaluator {
	return &Evaluator{functions: table}
}

// WithObserver attaches a call observer.
func (e *Evaluator) WithObserver(o Observer) *Evaluator {
	e.observer = o
	return e
}

// Functions returns the function table.
func (e *Evaluator) Functions() *functions.Registry {
	return e.functions
}

// Render concatenates the rendered tokens of msg. Nested calls are evaluated
// innermost first, left to right.
func (e *Evaluator) Render(ctx context.Context, msg *ast.Message) (string, error) {
	if msg.IsEmpty() {
		return "", nil
	}

	var sb strings.Builder
	for _, tok := range msg.Tokens {
		switch t := tok.(type) {
		case *ast.PlainText:
			sb.WriteString(t.Text)
		case *ast.Function:
			out, err := e.call(ctx, t)
			if err != nil {
				return "", err
			}
			sb.WriteString(out)
		}
	}
	return sb.String(), nil
}

// call evaluates one function node. The name is checked before any argument
// is rendered.
func (e *Evaluator) call(ctx context.Context, fn *ast.Function) (string, error) {
	entry, ok := e.functions.Lookup(fn.Name)
	if !ok {
		return "", &mhplErrors.FunctionNotFoundError{
			Name:       fn.Name,
			Suggestion: mhplErrors.SuggestFunctionName(fn.Name, e.functions.Names()),
		}
	}

	params := make([]string, 0, len(fn.Args))
	for _, arg := range fn.Args {
		s, err := e.Render(ctx, arg)
		if err != nil {
			return "", err
		}
		params = append(params, s)
	}

	// A lone empty argument means the call had nothing to pass.
	if len(params) == 1 && params[0] == "" {
		params = params[:0]
	}

	if len(params) != entry.Arity {
		err := &mhplErrors.FunctionParamUnmatchError{
			Name:   fn.Name,
			Params: params,
			Want:   entry.Arity,
		}
		e.observe(fn.Name, 0, err)
		return "", err
	}

	start := time.Now()
	out, err := entry.Call(ctx, params)
	if err != nil && !mhplErrors.IsTemplateError(err) {
		err = &mhplErrors.EvaluationError{Name: fn.Name, Err: err}
	}
	e.observe(fn.Name, time.Since(start), err)
	if err != nil {
		return "", err
	}
	return out, nil
}

func (e *Evaluator) observe(name string, d time.Duration, err error) {
	if e.observer != nil {
		e.observer.ObserveCall(name, d, err)
	}
}
