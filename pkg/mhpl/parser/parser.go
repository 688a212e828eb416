package parser

import (
	"fmt"
	"strings"
	"unicode"

	"machinehub/statusboard/pkg/mhpl/ast"
	mhplErrors "machinehub/statusboard/pkg/mhpl/errors"
)

const (
	// DefaultMaxDepth is the default limit on nested function calls.
	DefaultMaxDepth = 32

	// DefaultMaxLength is the default limit on template size in bytes.
	DefaultMaxLength = 64 * 1024
)

// Parser parses MHPL templates into Abstract Syntax Trees.
// A Parser holds only configuration and is safe for concurrent use.
type Parser struct {
	maxDepth  int // Maximum function nesting depth (default: 32)
	maxLength int // Maximum template size in bytes (default: 64KiB)
}

// NewParser creates a new parser with default configuration.
func NewParser() *Parser {
	return &Parser{
		maxDepth:  DefaultMaxDepth,
		maxLength: DefaultMaxLength,
	}
}

// WithMaxDepth sets the maximum function nesting depth.
// Values below one keep the current setting.
func (p *Parser) WithMaxDepth(depth int) *Parser {
	if depth > 0 {
		p.maxDepth = depth
	}
	return p
}

// WithMaxLength sets the maximum template size in bytes.
// Values below one keep the current setting.
func (p *Parser) WithMaxLength(length int) *Parser {
	if length > 0 {
		p.maxLength = length
	}
	return p
}

// MaxDepth returns the configured nesting limit.
func (p *Parser) MaxDepth() int {
	return p.maxDepth
}

// Parse parses a whole template. It returns a *errors.ParseError for
// malformed input and never a partial tree.
func (p *Parser) Parse(template string) (*ast.Message, error) {
	if len(template) > p.maxLength {
		return nil, &mhplErrors.ParseError{
			Message: fmt.Sprintf("template size %d exceeds maximum %d bytes", len(template), p.maxLength),
			Offset:  -1,
		}
	}
	return p.parseMessage(template, 0)
}

// parseMessage scans text as a sequence of tokens. depth is the number of
// function calls enclosing text.
func (p *Parser) parseMessage(text string, depth int) (*ast.Message, error) {
	tokens := make([]ast.Token, 0)
	bufferStart := -1
	escaped := false

	flush := func(end int) {
		if bufferStart >= 0 {
			tokens = append(tokens, ast.NewPlainText(Unescape(text[bufferStart:end])))
			bufferStart = -1
		}
	}

	for i := 0; i < len(text); {
		switch c := text[i]; {
		case c == '\\':
			escaped = !escaped
		case c == '#' && !escaped:
			flush(i)
			fn, next, err := p.parseFunction(text, i, depth+1)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, fn)
			i = next
			continue
		default:
			escaped = false
		}

		if bufferStart < 0 {
			bufferStart = i
		}
		i++
	}
	flush(len(text))

	return ast.NewMessage(tokens...), nil
}

// parseFunction parses the call whose '#' sits at text[start]. It returns
// the call and the index just past its closing parenthesis.
func (p *Parser) parseFunction(text string, start, depth int) (*ast.Function, int, error) {
	if depth > p.maxDepth {
		return nil, 0, &mhplErrors.ParseError{
			Message:  fmt.Sprintf("maximum nesting depth %d exceeded", p.maxDepth),
			Offset:   start,
			Fragment: text,
		}
	}

	open := strings.IndexByte(text[start+1:], '(')
	if open < 0 {
		return nil, 0, &mhplErrors.ParseError{
			Message:  "function without left parenthesis",
			Offset:   start,
			Fragment: text,
		}
	}
	open += start + 1

	closing := findClosingParen(text, open)
	if closing < 0 {
		return nil, 0, &mhplErrors.ParseError{
			Message:  "unclosed parentheses",
			Offset:   open,
			Fragment: text,
		}
	}

	name := Unescape(text[start+1 : open])
	param := Unescape(text[open+1 : closing])

	var pieces []string
	if strings.Contains(param, ",") {
		pieces = strings.Split(stripWhitespace(param), ",")
	} else {
		pieces = []string{param}
	}

	args := make([]*ast.Message, 0, len(pieces))
	for _, piece := range pieces {
		arg, err := p.parseMessage(piece, depth)
		if err != nil {
			return nil, 0, err
		}
		args = append(args, arg)
	}

	return ast.NewFunction(name, args...), closing + 1, nil
}

// findClosingParen returns the index of the ')' matching the '(' at
// text[open], or -1 if the parentheses never balance.
func findClosingParen(text string, open int) int {
	level := 0
	for i := open; i < len(text); i++ {
		switch text[i] {
		case '(':
			level++
		case ')':
			level--
			if level == 0 {
				return i
			}
		}
	}
	return -1
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// Parse parses template with a default parser.
func Parse(template string) (*ast.Message, error) {
	return NewParser().Parse(template)
}
