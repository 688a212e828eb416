package mhpl

import (
	"context"
	"sync"
	"time"

	"machinehub/statusboard/pkg/mhpl/ast"
	"machinehub/statusboard/pkg/mhpl/evaluator"
	"machinehub/statusboard/pkg/mhpl/functions"
	"machinehub/statusboard/pkg/mhpl/parser"
	"machinehub/statusboard/pkg/mhpl/validator"
	"machinehub/statusboard/pkg/registry"
)

// Options configures a Pipeline. Zero values select defaults.
type Options struct {
	Devices     registry.Reader
	Now         func() time.Time
	AliveWindow time.Duration
	MaxDepth    int
	MaxLength   int
	MaxOutput   int
	Observer    evaluator.Observer
}

// Pipeline parses and renders templates against one function table.
type Pipeline struct {
	parser    *parser.Parser
	evaluator *evaluator.Evaluator
	validator *validator.Validator
}

// New builds a pipeline.
func New(opts Options) *Pipeline {
	table := functions.New(functions.Config{
		Devices:     opts.Devices,
		Now:         opts.Now,
		AliveWindow: opts.AliveWindow,
		MaxOutput:   opts.MaxOutput,
	})

	eval := evaluator.New(table)
	if opts.Observer != nil {
		eval.WithObserver(opts.Observer)
	}

	return &Pipeline{
		parser:    parser.NewParser().WithMaxDepth(opts.MaxDepth).WithMaxLength(opts.MaxLength),
		evaluator: eval,
		validator: validator.NewValidator(table),
	}
}

// Parse parses template without evaluating it.
func (p *Pipeline) Parse(template string) (*ast.Message, error) {
	return p.parser.Parse(template)
}

// Render evaluates an already parsed template.
func (p *Pipeline) Render(ctx context.Context, msg *ast.Message) (string, error) {
	return p.evaluator.Render(ctx, msg)
}

// Feed parses template and renders it.
func (p *Pipeline) Feed(ctx context.Context, template string) (string, error) {
	msg, err := p.parser.Parse(template)
	if err != nil {
		return "", err
	}
	return p.evaluator.Render(ctx, msg)
}

// Lint parses template and checks it against the function table without
// touching the device registry. It returns the *errors.ParseError for
// unparsable input, otherwise an *errors.ErrorList or nil.
func (p *Pipeline) Lint(template string) error {
	msg, err := p.parser.Parse(template)
	if err != nil {
		return err
	}
	return p.validator.Validate(msg)
}

// Functions returns the pipeline's function table.
func (p *Pipeline) Functions() *functions.Registry {
	return p.evaluator.Functions()
}

var defaultPipeline = sync.OnceValue(func() *Pipeline {
	return New(Options{})
})

// Feed renders template with a default pipeline bound to an empty device
// registry.
func Feed(template string) (string, error) {
	return defaultPipeline().Feed(context.Background(), template)
}

// Parse parses template with default limits.
func Parse(template string) (*ast.Message, error) {
	return defaultPipeline().Parse(template)
}
