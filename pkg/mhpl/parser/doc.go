// Package parser turns MHPL template text into an ast.Message.
//
// # Grammar
//
//	message    ::= token*
//	token      ::= function | plain-text
//	function   ::= "#" name "(" arglist? ")"
//	arglist    ::= message ( "," message )*
//	name       ::= any run of characters up to the first "("
//	plain-text ::= any run of characters not starting an unescaped function
//
// Two escapes exist: `\\` is a literal backslash and `\#` is a literal hash.
// A hash directly after an unescaped backslash never starts a function.
//
// # Argument splitting
//
// The text between a call's matched parentheses is escape-resolved first.
// If it contains a comma anywhere, every whitespace character is removed and
// the text is split on each comma; otherwise the text is parsed whole, spaces
// included. So "#plus(1, 2)" has arguments "1" and "2" while
// "#report(GPU 480)" has the single argument "GPU 480".
//
// The split does not track nesting, so a multi-argument call cannot appear
// inside another multi-argument call: "#plus(#plus(1,2),3)" is a ParseError.
// Nested calls inside single-argument positions and zero-argument calls work
// anywhere: "#divide(#alives(),#devices())".
//
// # Limits
//
// Parsing recurses once per nested call. NewParser bounds nesting at
// DefaultMaxDepth levels and input at DefaultMaxLength bytes; exceeding
// either yields a ParseError instead of exhausting the stack.
package parser
