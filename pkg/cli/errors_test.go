package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	mhplErrors "machinehub/statusboard/pkg/mhpl/errors"
)

func TestConfigError(t *testing.T) {
	err := NewConfigError("registry.backend", "unknown backend")
	assert.Equal(t, "config error in registry.backend: unknown backend", err.Error())
}

func TestCommandError(t *testing.T) {
	underlying := errors.New("underlying error")
	err := NewCommandError("render", underlying)

	assert.Equal(t, "command render failed: underlying error", err.Error())
	assert.ErrorIs(t, err, underlying)
}

func TestExitCode(t *testing.T) {
	list := mhplErrors.NewErrorList()
	list.AddError(mhplErrors.KindFunctionNotFound, "unknown function", "#alive")

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitOK},
		{name: "plain error", err: errors.New("disk full"), want: ExitFailure},
		{name: "parse error", err: NewCommandError("render", &mhplErrors.ParseError{Message: "unclosed parentheses", Offset: 3}), want: ExitTemplate},
		{name: "lint list", err: fmt.Errorf("lint: %w", list), want: ExitTemplate},
		{name: "evaluation error", err: &mhplErrors.EvaluationError{Name: "alives", Err: errors.New("db down")}, want: ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}
