// Package mhpl renders MHPL (Machine-Hub Pipeline Language) templates.
//
// MHPL interleaves literal text with calls into a fixed table of host
// functions. A template such as
//
//	Alive Device: #alives() / #devices()
//
// renders to "Alive Device: 3 / 4" when three of four registered devices have
// sent a heartbeat within the alive window. The language has no variables,
// conditionals or loops; only text and nested calls.
//
// # Architecture
//
// The package is organized into subpackages:
//
//   - ast: the Message / PlainText / Function tree
//   - parser: escape resolution and recursive-descent parsing
//   - functions: the closed function table and numeric coercion
//   - evaluator: tree-walking rendering with arity checks
//   - validator: static lint of parsed templates
//   - errors: the failure kinds and lint error lists
//
// # Basic Usage
//
//	p := mhpl.New(mhpl.Options{Devices: store})
//	out, err := p.Feed(ctx, "#divide(#alives(), #devices())")
//	if err != nil {
//	    // err is a *errors.ParseError, *errors.FunctionNotFoundError or
//	    // *errors.FunctionParamUnmatchError for template mistakes
//	}
//
// Feed parses the whole template before evaluating anything, so a parse
// failure never triggers registry reads. Each call builds and discards its
// own tree; a Pipeline is safe for concurrent use.
//
// # Syntax
//
//	#name()          call with no arguments
//	#name(text)      one argument, spaces kept
//	#name(a, b)      several arguments, all whitespace removed
//	\#  \\           literal hash and literal backslash
//
// See package parser for the exact splitting rules.
package mhpl
