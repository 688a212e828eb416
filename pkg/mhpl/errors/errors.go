package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind categorizes an MHPL failure.
type Kind string

const (
	KindParse            Kind = "parse"              // Malformed template grammar
	KindFunctionNotFound Kind = "function_not_found" // Unregistered function name
	KindParamUnmatch     Kind = "param_unmatch"      // Wrong argument count
	KindEvaluation       Kind = "evaluation"         // Collaborator failure during a call
)

// ParseError reports malformed template grammar. No partial tree accompanies it.
type ParseError struct {
	Message  string // What went wrong
	Offset   int    // Byte offset into Fragment, -1 if not tied to a position
	Fragment string // Text that was being parsed when the failure occurred
}

func (e *ParseError) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("parse error: %s", e.Message)
	}
	return fmt.Sprintf("parse error: %s at offset %d in %q", e.Message, e.Offset, e.Fragment)
}

// FunctionNotFoundError reports a call to a name missing from the function table.
type FunctionNotFoundError struct {
	Name       string
	Suggestion string // Optional "did you mean" hint
}

func (e *FunctionNotFoundError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("function not found: %q (%s)", e.Name, e.Suggestion)
	}
	return fmt.Sprintf("function not found: %q", e.Name)
}

// FunctionParamUnmatchError reports a call whose rendered arguments do not
// fit the function. Got and Want are parameter counts. When the count was
// right but the value matched nothing (an unknown device name), Cause holds
// the underlying condition.
type FunctionParamUnmatchError struct {
	Name   string
	Params []string
	Want   int
	Cause  error
}

// Got returns the number of parameters supplied.
func (e *FunctionParamUnmatchError) Got() int {
	return len(e.Params)
}

func (e *FunctionParamUnmatchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("function %q called with params %q: %v", e.Name, e.Params, e.Cause)
	}
	return fmt.Sprintf("function %q takes %d param(s), called with %d: %q", e.Name, e.Want, e.Got(), e.Params)
}

func (e *FunctionParamUnmatchError) Unwrap() error {
	return e.Cause
}

// EvaluationError wraps a collaborator failure raised while a function ran.
type EvaluationError struct {
	Name string
	Err  error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("function %q failed: %v", e.Name, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first MHPL failure in err's chain, or the
// empty Kind when err is nil or not an MHPL failure.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}

	var parseErr *ParseError
	var notFound *FunctionNotFoundError
	var unmatch *FunctionParamUnmatchError
	var evalErr *EvaluationError
	var list *ErrorList

	switch {
	case stderrors.As(err, &parseErr):
		return KindParse
	case stderrors.As(err, &notFound):
		return KindFunctionNotFound
	case stderrors.As(err, &unmatch):
		return KindParamUnmatch
	case stderrors.As(err, &evalErr):
		return KindEvaluation
	case stderrors.As(err, &list) && list.HasErrors():
		return list.Errors[0].Kind
	}
	return ""
}

// IsTemplateError reports whether err is one of the three template-fault
// kinds, as opposed to an infrastructure failure.
func IsTemplateError(err error) bool {
	switch KindOf(err) {
	case KindParse, KindFunctionNotFound, KindParamUnmatch:
		return true
	}
	return false
}
