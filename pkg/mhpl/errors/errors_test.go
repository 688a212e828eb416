package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDeviceMissing = stderrors.New("device not found")

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"unrelated", stderrors.New("boom"), ""},
		{"parse", &ParseError{Message: "unclosed parentheses", Offset: 2, Fragment: "#f("}, KindParse},
		{"not found", &FunctionNotFoundError{Name: "nope"}, KindFunctionNotFound},
		{"unmatch", &FunctionParamUnmatchError{Name: "devices", Params: []string{"extra"}}, KindParamUnmatch},
		{"evaluation", &EvaluationError{Name: "alives", Err: stderrors.New("db down")}, KindEvaluation},
		{"wrapped parse", fmt.Errorf("render: %w", &ParseError{Message: "x", Offset: -1}), KindParse},
		{"empty list", NewErrorList(), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestKindOf_ErrorList(t *testing.T) {
	list := NewErrorList()
	list.AddError(KindFunctionNotFound, "unknown function 'nope'", "nope")
	list.AddError(KindParamUnmatch, "wrong count", "plus")

	assert.Equal(t, KindFunctionNotFound, KindOf(list.ToError()))
}

func TestIsTemplateError(t *testing.T) {
	assert.True(t, IsTemplateError(&ParseError{Offset: -1}))
	assert.True(t, IsTemplateError(&FunctionNotFoundError{Name: "x"}))
	assert.True(t, IsTemplateError(&FunctionParamUnmatchError{Name: "x"}))
	assert.False(t, IsTemplateError(&EvaluationError{Name: "x", Err: stderrors.New("io")}))
	assert.False(t, IsTemplateError(nil))
}

func TestFunctionParamUnmatchError_Unwrap(t *testing.T) {
	err := &FunctionParamUnmatchError{Name: "report", Params: []string{"GPU 480"}, Want: 1, Cause: errDeviceMissing}

	assert.True(t, stderrors.Is(err, errDeviceMissing))
	assert.Equal(t, 1, err.Got())
	assert.Contains(t, err.Error(), "GPU 480")
}

func TestFunctionParamUnmatchError_Message(t *testing.T) {
	err := &FunctionParamUnmatchError{Name: "devices", Params: []string{"extra"}, Want: 0}
	assert.Equal(t, `function "devices" takes 0 param(s), called with 1: ["extra"]`, err.Error())
}

func TestParseError_Message(t *testing.T) {
	err := &ParseError{Message: "unclosed parentheses", Offset: 2, Fragment: "#f("}
	assert.Equal(t, `parse error: unclosed parentheses at offset 2 in "#f("`, err.Error())

	err = &ParseError{Message: "template too long", Offset: -1}
	assert.Equal(t, "parse error: template too long", err.Error())
}

func TestFunctionNotFoundError_Message(t *testing.T) {
	err := &FunctionNotFoundError{Name: "alive", Suggestion: "Did you mean 'alives'?"}
	assert.Equal(t, `function not found: "alive" (Did you mean 'alives'?)`, err.Error())
}

func TestErrorList(t *testing.T) {
	list := NewErrorList()
	require.NoError(t, list.ToError())

	list.AddErrorWithSuggestion(KindFunctionNotFound, "unknown function 'plsu'", "plsu", "Did you mean 'plus'?")
	list.AddError(KindParamUnmatch, "function 'report' takes 1 param(s), called with 0", "report")

	require.Error(t, list.ToError())
	assert.Equal(t, 2, list.Count())
	assert.True(t, list.HasKind(KindParamUnmatch))
	assert.False(t, list.HasKind(KindParse))
	assert.Len(t, list.ByKind(KindFunctionNotFound), 1)
	assert.Contains(t, list.Error(), "Found 2 error(s)")
	assert.Contains(t, list.Error(), "= suggestion: Did you mean 'plus'?")
}

func TestSuggestFunctionName(t *testing.T) {
	known := []string{"alives", "deads", "devices", "divide", "minus", "plus", "random", "report", "times"}

	tests := []struct {
		unknown string
		want    string
	}{
		{"alive", "Did you mean 'alives'?"},
		{"plsu", "Did you mean 'plus'?"},
		{"Report", "Did you mean 'report'?"},
		{"devise", "Did you mean 'devices'?"},
		{"frobnicate", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.unknown, func(t *testing.T) {
			assert.Equal(t, tt.want, SuggestFunctionName(tt.unknown, known))
		})
	}
}

func TestLevenshteinDistance(t *testing.T) {
	assert.Equal(t, 0, levenshteinDistance("plus", "plus"))
	assert.Equal(t, 1, levenshteinDistance("alive", "alives"))
	assert.Equal(t, 2, levenshteinDistance("plsu", "plus"))
	assert.Equal(t, 4, levenshteinDistance("", "plus"))
	assert.Equal(t, 3, levenshteinDistance("kitten", "sitting"))
}
