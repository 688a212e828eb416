package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessage_Equal(t *testing.T) {
	tests := []struct {
		name  string
		a, b  *Message
		equal bool
	}{
		{
			name:  "both empty",
			a:     NewMessage(),
			b:     &Message{},
			equal: true,
		},
		{
			name:  "nil and empty",
			a:     nil,
			b:     NewMessage(),
			equal: true,
		},
		{
			name:  "same plain text",
			a:     NewMessage(NewPlainText("Hello!")),
			b:     NewMessage(NewPlainText("Hello!")),
			equal: true,
		},
		{
			name:  "different plain text",
			a:     NewMessage(NewPlainText("Hello!")),
			b:     NewMessage(NewPlainText("Hello")),
			equal: false,
		},
		{
			name:  "plain text against function",
			a:     NewMessage(NewPlainText("plus")),
			b:     NewMessage(NewFunction("plus")),
			equal: false,
		},
		{
			name: "nested functions",
			a: NewMessage(NewFunction("divide",
				NewMessage(NewFunction("alives", NewMessage())),
				NewMessage(NewFunction("devices", NewMessage())),
			)),
			b: NewMessage(NewFunction("divide",
				NewMessage(NewFunction("alives", NewMessage())),
				NewMessage(NewFunction("devices", NewMessage())),
			)),
			equal: true,
		},
		{
			name: "argument count differs",
			a:    NewMessage(NewFunction("plus", NewMessage(NewPlainText("1")))),
			b: NewMessage(NewFunction("plus",
				NewMessage(NewPlainText("1")),
				NewMessage(NewPlainText("2")),
			)),
			equal: false,
		},
		{
			name:  "token order matters",
			a:     NewMessage(NewPlainText("a"), NewPlainText("b")),
			b:     NewMessage(NewPlainText("b"), NewPlainText("a")),
			equal: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, tt.a.Equal(tt.b))
			assert.Equal(t, tt.equal, tt.b.Equal(tt.a))
		})
	}
}

func TestFunction_WrittenEmpty(t *testing.T) {
	assert.True(t, NewFunction("alives", NewMessage()).WrittenEmpty())
	assert.False(t, NewFunction("report", NewMessage(NewPlainText("GPU480"))).WrittenEmpty())
	assert.False(t, NewFunction("plus", NewMessage(), NewMessage()).WrittenEmpty())
}

func TestMessage_String(t *testing.T) {
	msg := NewMessage(
		NewPlainText("Alive: "),
		NewFunction("alives", NewMessage()),
	)
	assert.Equal(t, `Message[PlainText("Alive: "), Function(alives, [Message[]])]`, msg.String())
}

func TestFunctionNames(t *testing.T) {
	msg := NewMessage(
		NewPlainText("x"),
		NewFunction("divide",
			NewMessage(NewFunction("alives", NewMessage())),
			NewMessage(NewFunction("devices", NewMessage())),
		),
		NewFunction("report", NewMessage(NewPlainText("GPU480"))),
	)

	assert.Equal(t, []string{"divide", "alives", "devices", "report"}, FunctionNames(msg))
}

type depthRecorder struct {
	depths map[string]int
	texts  []string
}

func (r *depthRecorder) VisitPlainText(t *PlainText) error {
	r.texts = append(r.texts, t.Text)
	return nil
}

func (r *depthRecorder) VisitFunction(fn *Function, depth int) error {
	r.depths[fn.Name] = depth
	return nil
}

func TestWalk_Depth(t *testing.T) {
	msg := NewMessage(
		NewFunction("plus",
			NewMessage(NewFunction("times",
				NewMessage(NewPlainText("2")),
				NewMessage(NewFunction("devices", NewMessage())),
			)),
			NewMessage(NewPlainText("1")),
		),
	)

	rec := &depthRecorder{depths: map[string]int{}}
	assert.NoError(t, Walk(msg, rec))
	assert.Equal(t, map[string]int{"plus": 1, "times": 2, "devices": 3}, rec.depths)
	assert.Equal(t, []string{"2", "1"}, rec.texts)
}
