// Package validator checks parsed MHPL templates against the function table
// without evaluating them.
//
// Validation reports every unknown function name (with a suggestion when a
// registered name is close) and every call whose argument count is wrong
// before evaluation. A call written as name() counts as zero arguments. A
// lone argument made only of nested calls may render empty at run time, so
// the count of such a call is left unchecked.
package validator

import (
	"fmt"
	"strings"

	"machinehub/statusboard/pkg/mhpl/ast"
	mhplErrors "machinehub/statusboard/pkg/mhpl/errors"
	"machinehub/statusboard/pkg/mhpl/functions"
)

// Validator lints templates against a function table.
type Validator struct {
	functions *functions.Registry
}

// NewValidator creates a validator for the given table.
func NewValidator(table *functions.Registry) *Validator {
	return &Validator{functions: table}
}

// Validate walks msg and returns an *errors.ErrorList, or nil if the
// template is clean.
func (v *Validator) Validate(msg *ast.Message) error {
	errs := mhplErrors.NewErrorList()
	v.validateMessage(msg, nil, errs)
	return errs.ToError()
}

func (v *Validator) validateMessage(msg *ast.Message, path []string, errs *mhplErrors.ErrorList) {
	for _, fn := range msg.Functions() {
		v.validateFunction(fn, path, errs)
	}
}

func (v *Validator) validateFunction(fn *ast.Function, parent []string, errs *mhplErrors.ErrorList) {
	path := append(append([]string(nil), parent...), fn.Name)
	where := strings.Join(path, " > ")

	entry, ok := v.functions.Lookup(fn.Name)
	if !ok {
		errs.AddErrorWithSuggestion(
			mhplErrors.KindFunctionNotFound,
			fmt.Sprintf("unknown function '%s'", fn.Name),
			where,
			mhplErrors.SuggestFunctionName(fn.Name, v.functions.Names()),
		)
	} else if got, exact := staticArgCount(fn); exact && got != entry.Arity {
		errs.AddError(
			mhplErrors.KindParamUnmatch,
			fmt.Sprintf("function '%s' takes %d param(s), written with %d", fn.Name, entry.Arity, got),
			where,
		)
	}

	for _, arg := range fn.Args {
		v.validateMessage(arg, path, errs)
	}
}

// staticArgCount returns the number of parameters fn will be called with,
// and whether that number is certain before evaluation.
func staticArgCount(fn *ast.Function) (int, bool) {
	if fn.WrittenEmpty() {
		return 0, true
	}
	if len(fn.Args) == 1 && !hasText(fn.Args[0]) {
		// A lone argument made only of calls may render empty.
		return 1, false
	}
	return len(fn.Args), true
}

func hasText(msg *ast.Message) bool {
	for _, tok := range msg.Tokens {
		if t, ok := tok.(*ast.PlainText); ok && t.Text != "" {
			return true
		}
	}
	return false
}
