// Package errors defines the failure kinds of the MHPL parser and evaluator.
//
// Rendering a template fails with exactly one of three kinds when the
// template itself is at fault:
//
//   - *ParseError: malformed grammar (unclosed parentheses, a function name
//     with no opening parenthesis, nesting or length limits exceeded)
//   - *FunctionNotFoundError: a call to a name missing from the function table
//   - *FunctionParamUnmatchError: a registered function called with the wrong
//     number of rendered arguments
//
// *EvaluationError is reserved for collaborator failures (for example the
// device registry being unreachable) and never signals a template mistake.
//
// Callers usually branch on KindOf:
//
//	out, err := pipeline.Feed(ctx, tmpl)
//	switch errors.KindOf(err) {
//	case errors.KindParse:
//	    // template authoring bug
//	case errors.KindFunctionNotFound, errors.KindParamUnmatch:
//	    // fall back to the literal template
//	}
//
// Error and ErrorList collect lint findings for whole templates so that a
// single run can report every problem at once.
package errors
