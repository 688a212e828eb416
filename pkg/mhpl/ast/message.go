package ast

import (
	"fmt"
	"strings"
)

// Token is one element of a Message. The set of implementations is closed:
// *PlainText and *Function.
type Token interface {
	// TokenName returns the literal text of a PlainText or the identifier of
	// a Function.
	TokenName() string

	// Equal reports whether two tokens are structurally identical.
	Equal(other Token) bool

	token()
}

// Message is an ordered sequence of tokens that renders by concatenation.
type Message struct {
	Tokens []Token
}

// NewMessage builds a message from the given tokens.
func NewMessage(tokens ...Token) *Message {
	if tokens == nil {
		tokens = []Token{}
	}
	return &Message{Tokens: tokens}
}

// IsEmpty returns true if the message has no tokens.
func (m *Message) IsEmpty() bool {
	return m == nil || len(m.Tokens) == 0
}

// Equal reports whether both messages hold recursively equal tokens.
func (m *Message) Equal(other *Message) bool {
	if m.IsEmpty() || other.IsEmpty() {
		return m.IsEmpty() && other.IsEmpty()
	}
	if len(m.Tokens) != len(other.Tokens) {
		return false
	}
	for i, tok := range m.Tokens {
		if !tok.Equal(other.Tokens[i]) {
			return false
		}
	}
	return true
}

// Functions returns the function calls appearing directly in the message.
func (m *Message) Functions() []*Function {
	if m == nil {
		return nil
	}
	var fns []*Function
	for _, tok := range m.Tokens {
		if fn, ok := tok.(*Function); ok {
			fns = append(fns, fn)
		}
	}
	return fns
}

// String returns a debug representation of the tree, not its rendered text.
func (m *Message) String() string {
	if m == nil {
		return "Message[]"
	}
	parts := make([]string, len(m.Tokens))
	for i, tok := range m.Tokens {
		parts[i] = fmt.Sprint(tok)
	}
	return "Message[" + strings.Join(parts, ", ") + "]"
}

// PlainText is literal, escape-resolved template text.
type PlainText struct {
	Text string
}

// NewPlainText creates a plain text token.
func NewPlainText(text string) *PlainText {
	return &PlainText{Text: text}
}

// TokenName returns the literal text.
func (t *PlainText) TokenName() string { return t.Text }

// Equal reports whether other is plain text with the same content.
func (t *PlainText) Equal(other Token) bool {
	o, ok := other.(*PlainText)
	return ok && o.Text == t.Text
}

func (t *PlainText) String() string {
	return fmt.Sprintf("PlainText(%q)", t.Text)
}

func (*PlainText) token() {}

// Function is a call to a host-provided function. Name is kept exactly as
// written; it is only checked against the function table at evaluation time.
type Function struct {
	Name string
	Args []*Message
}

// NewFunction creates a function call token.
func NewFunction(name string, args ...*Message) *Function {
	if args == nil {
		args = []*Message{}
	}
	return &Function{Name: name, Args: args}
}

// TokenName returns the function identifier.
func (f *Function) TokenName() string { return f.Name }

// Equal reports whether other is a call to the same name with equal arguments.
func (f *Function) Equal(other Token) bool {
	o, ok := other.(*Function)
	if !ok || o.Name != f.Name || len(o.Args) != len(f.Args) {
		return false
	}
	for i, arg := range f.Args {
		if !arg.Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

// WrittenEmpty reports whether the call was written as name() and so takes
// no arguments.
func (f *Function) WrittenEmpty() bool {
	return len(f.Args) == 1 && f.Args[0].IsEmpty()
}

func (f *Function) String() string {
	parts := make([]string, len(f.Args))
	for i, arg := range f.Args {
		parts[i] = arg.String()
	}
	return fmt.Sprintf("Function(%s, [%s])", f.Name, strings.Join(parts, ", "))
}

func (*Function) token() {}
