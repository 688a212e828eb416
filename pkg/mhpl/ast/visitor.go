package ast

// Visitor provides an interface for traversing the AST.
// Implement this interface to perform analysis on template trees
// (linting, collecting function names, and similar).
type Visitor interface {
	VisitPlainText(*PlainText) error
	// VisitFunction is called before the function's arguments are walked.
	VisitFunction(fn *Function, depth int) error
}

// Walk traverses the message depth-first in token order and calls the
// visitor for every node. Top-level function calls have depth 1. It returns
// the first error encountered, or nil if traversal completes.
func Walk(msg *Message, visitor Visitor) error {
	return walkMessage(msg, visitor, 1)
}

func walkMessage(msg *Message, visitor Visitor, depth int) error {
	if msg == nil {
		return nil
	}
	for _, tok := range msg.Tokens {
		switch t := tok.(type) {
		case *PlainText:
			if err := visitor.VisitPlainText(t); err != nil {
				return err
			}
		case *Function:
			if err := visitor.VisitFunction(t, depth); err != nil {
				return err
			}
			for _, arg := range t.Args {
				if err := walkMessage(arg, visitor, depth+1); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// FunctionNames returns every function identifier used in the message,
// including nested calls, in traversal order.
func FunctionNames(msg *Message) []string {
	c := &nameCollector{}
	_ = Walk(msg, c)
	return c.names
}

type nameCollector struct {
	names []string
}

func (c *nameCollector) VisitPlainText(*PlainText) error { return nil }

func (c *nameCollector) VisitFunction(fn *Function, _ int) error {
	c.names = append(c.names, fn.Name)
	return nil
}
