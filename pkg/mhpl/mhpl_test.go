package mhpl

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"machinehub/statusboard/internal/testutil"
	mhplErrors "machinehub/statusboard/pkg/mhpl/errors"
)

func newPipeline() *Pipeline {
	return New(Options{Devices: testutil.Fleet(testutil.Epoch), Now: testutil.FixedClock(testutil.Epoch)})
}

func TestFeed_PlainTextIdentity(t *testing.T) {
	for _, s := range []string{"", "Hello!", "a, b (c)", "100% (ok)", "改行\nあり", `back\slash`} {
		got, err := Feed(s)
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestFeed(t *testing.T) {
	p := newPipeline()

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{"escaped backslash", `\\`, `\`},
		{"escaped hash", `\#`, `#`},
		{"hash after escaped backslash is a call", `\\#devices()`, `\4`},
		{"hash after backslash is literal", `\#devices()`, `#devices()`},
		{"plus", "#plus(1, 2)", "3"},
		{"plus falls back to concatenation", "#plus(1, a)", "1a"},
		{"nested divide", "#divide(#alives(), #devices())", "0.75"},
		{"deads", "#deads()", "1"},
		{"report keeps spaces", "#report(GPU 480)", "GPU Information Here."},
		{"mixed", "Alive Device: #alives() / #devices()", "Alive Device: 3 / 4"},
		{"balanced inner parentheses", "#plus((a), b)", "(a)b"},
		{"repetition", "#times(ab, 3)", "ababab"},
		{"nested single argument", "#report(#report(c))", "GPU Information Here."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Feed(context.Background(), tt.template)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFeed_Errors(t *testing.T) {
	p := newPipeline()

	tests := []struct {
		template string
		kind     mhplErrors.Kind
	}{
		{"#nope()", mhplErrors.KindFunctionNotFound},
		{"#devices(extra)", mhplErrors.KindParamUnmatch},
		{"#report()", mhplErrors.KindParamUnmatch},
		{"#report(GPU480)", mhplErrors.KindParamUnmatch},
		// The comma strips the space inside the nested report argument.
		{"#times(#report(GPU 480),1)", mhplErrors.KindParamUnmatch},
		{"#f(", mhplErrors.KindParse},
		{"#devices", mhplErrors.KindParse},
		{"#plus(#plus(1,2),3)", mhplErrors.KindParse},
		{strings.Repeat("#report(", 40) + strings.Repeat(")", 40), mhplErrors.KindParse},
	}

	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			got, err := p.Feed(context.Background(), tt.template)
			assert.Empty(t, got)
			assert.Equal(t, tt.kind, mhplErrors.KindOf(err), "err = %v", err)
		})
	}
}

func TestFeed_ParseFailsBeforeEvaluation(t *testing.T) {
	// The unknown name would fail evaluation; the trailing syntax error wins.
	_, err := newPipeline().Feed(context.Background(), "#nope() #f(")
	assert.Equal(t, mhplErrors.KindParse, mhplErrors.KindOf(err))
}

func TestPipeline_Lint(t *testing.T) {
	p := newPipeline()

	assert.NoError(t, p.Lint("Alive Device: #alives() / #devices()"))
	assert.Equal(t, mhplErrors.KindParse, mhplErrors.KindOf(p.Lint("#f(")))

	err := p.Lint("#alive() #report()")
	var list *mhplErrors.ErrorList
	require.ErrorAs(t, err, &list)
	assert.Equal(t, 2, list.Count())
}

func TestPipeline_Options(t *testing.T) {
	p := New(Options{MaxDepth: 2, MaxLength: 32, MaxOutput: 4})

	_, err := p.Feed(context.Background(), "#plus(#devices())")
	assert.Equal(t, mhplErrors.KindParamUnmatch, mhplErrors.KindOf(err))

	_, err = p.Parse(strings.Repeat("x", 33))
	assert.Equal(t, mhplErrors.KindParse, mhplErrors.KindOf(err))

	_, err = p.Parse("#devices(#devices(#devices()))")
	assert.Equal(t, mhplErrors.KindParse, mhplErrors.KindOf(err))

	out, err := p.Feed(context.Background(), "#times(ab,3)")
	require.NoError(t, err)
	assert.Equal(t, "NaN", out)

	assert.Len(t, p.Functions().Names(), 9)
}
