// Package ast defines the syntax tree produced by the MHPL parser.
//
// A template is a Message: an ordered list of Tokens. A Token is either
// PlainText, whose text is already escape-resolved, or a Function call whose
// arguments are themselves Messages. The tree is built once per render and is
// never mutated afterwards.
//
//	"Alive: #alives() / #devices()"
//
//	Message
//	├── PlainText "Alive: "
//	├── Function alives [Message{}]
//	├── PlainText " / "
//	└── Function devices [Message{}]
//
// A call written with nothing between its parentheses is represented as a
// single argument whose Message has no tokens. The evaluator treats that shape
// as a zero-argument call.
package ast
