package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArgs_Int(t *testing.T) {
	tests := []struct {
		name string
		args Args
		want int
	}{
		{name: "json number", args: Args{"limit": float64(10)}, want: 10},
		{name: "int", args: Args{"limit": 7}, want: 7},
		{name: "numeric string", args: Args{"limit": " 12 "}, want: 12},
		{name: "absent", args: Args{}, want: 5},
		{name: "garbage string", args: Args{"limit": "many"}, want: 5},
		{name: "NaN", args: Args{"limit": math.NaN()}, want: 5},
		{name: "wrong type", args: Args{"limit": true}, want: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.args.Int("limit", 5))
		})
	}
}

func TestArgs_Bool(t *testing.T) {
	args := Args{"a": true, "b": "false", "c": "nope", "d": float64(1)}
	assert.True(t, args.Bool("a", false))
	assert.False(t, args.Bool("b", true))
	assert.True(t, args.Bool("c", true))
	assert.False(t, args.Bool("d", false))
	assert.True(t, args.Bool("missing", true))
}

func TestArgs_String(t *testing.T) {
	args := Args{"q": "  budget  ", "n": float64(3), "nil": nil}
	assert.Equal(t, "budget", args.String("q"))
	assert.Equal(t, "3", args.String("n"))
	assert.Equal(t, "", args.String("nil"))
	assert.Equal(t, "inbox", args.StringOr("folder", "inbox"))
	assert.True(t, args.Has("q"))
	assert.False(t, args.Has("nil"))
}

func TestArgs_Text(t *testing.T) {
	args := Args{"body": "  line one\n\tline two\n", "blank": " \n ", "n": float64(3)}
	assert.Equal(t, "  line one\n\tline two\n", args.Text("body"))
	assert.Equal(t, "", args.Text("blank"))
	assert.Equal(t, "", args.Text("n"))
	assert.Equal(t, "", args.Text("missing"))
}

func TestArgs_Strings(t *testing.T) {
	tests := []struct {
		name string
		val  any
		want []string
	}{
		{name: "json array", val: []any{"a.pdf", " ", "b.txt", 3}, want: []string{"a.pdf", "b.txt"}},
		{name: "string slice", val: []string{"x"}, want: []string{"x"}},
		{name: "separated string", val: "a.pdf; b.txt,c.doc", want: []string{"a.pdf", "b.txt", "c.doc"}},
		{name: "absent", val: nil, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Args{"files": tt.val}.Strings("files"))
		})
	}
}
