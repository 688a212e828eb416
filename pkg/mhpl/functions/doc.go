// Package functions is the closed table of functions callable from MHPL
// templates.
//
// Every function receives its rendered arguments as strings and returns one
// string. The table is built once by New and cannot be extended afterwards;
// each Entry carries a fixed arity that the evaluator enforces before the
// call.
//
//	name     arity  result
//	alives   0      devices whose last heartbeat is inside the alive window
//	devices  0      total device count
//	deads    0      devices minus alives
//	random   0      name of a random device, empty if there are none
//	report   1      stored report of the named device
//	plus     2      integer, then float, then string concatenation
//	minus    2      integer, then float, then "NaN"
//	times    2      integer, then float, then repetition, then "NaN"
//	divide   2      exact integer quotient, then real division, then "NaN"
//
// The arithmetic functions try their operands as integers first, then as
// floats, and only then fall back to the per-function textual result. That
// order is observable: plus("1", "a") is "1a" and minus("1", "a") is "NaN".
// Integers are arbitrary precision. Floats print in shortest round-trip form
// with a fractional part, switching to exponent form below 1e-4 and from 1e16
// up ("0.75", "3.0", "1e+16").
package functions
