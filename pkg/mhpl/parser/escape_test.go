package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnescape(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no escapes", "Hello!", "Hello!"},
		{"empty", "", ""},
		{"backslash pair", `\\`, `\`},
		{"escaped hash", `\#`, `#`},
		{"mixed", `\\\#\#Hello\\world!\#\#`, `\##Hello\world!##`},
		{"only backslash pair", `C:\\temp`, `C:\temp`},
		{"lone backslash kept", `a\b`, `a\b`},
		{"trailing backslash kept", `a\`, `a\`},
		{"leftmost wins", `\\#`, `\#`},
		{"hash before pair", `\#\\`, `#\`},
		{"four backslashes", `\\\\`, `\\`},
		{"utf8 preserved", `温度\#1`, `温度#1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Unescape(tt.in))
		})
	}
}

func TestEscape(t *testing.T) {
	for _, s := range []string{"plain", `a\b`, "#plus(1,2)", `\#`, `\\`, `tail\`} {
		t.Run(s, func(t *testing.T) {
			escaped := Escape(s)
			assert.Equal(t, s, Unescape(escaped))

			msg, err := Parse(escaped)
			assert.NoError(t, err)
			assert.Empty(t, msg.Functions())
		})
	}
}
