package errfmt

import (
	"math"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type node struct {
	Name string
	Next *node
}

type label struct{ text string }

func (l label) String() string { return "label:" + l.text }

func TestSerialize_Scalars(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"string", "Simple string error", `"Simple string error"`},
		{"int", 404, "404"},
		{"float", 1.5, "1.5"},
		{"bool", false, "false"},
		{"nil", nil, "null"},
		{"undefined", Undefined, "undefined"},
		{"html is not escaped", "<b>&</b>", `"<b>&</b>"`},
		{"NaN falls back", math.NaN(), "NaN"},
		{"symbol", Symbol("test"), "Symbol(test)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Serialize(tt.value))
		})
	}
}

func TestSerialize_BigInt(t *testing.T) {
	n, ok := new(big.Int).SetString("123456789012345678901234567890", 10)
	if !ok {
		t.Fatal("failed to parse big integer")
	}

	got := Serialize(n)
	if got != "123456789012345678901234567890" {
		t.Errorf("expected decimal digits, got %s", got)
	}

	assert.Equal(t, `[5,{"n":7}]`, Serialize([]any{big.NewInt(5), NewFields("n", big.NewInt(7))}))
	assert.Equal(t, `[9]`, Serialize([]big.Int{*big.NewInt(9)}))
}

func TestSerialize_Nested(t *testing.T) {
	value := map[string]any{
		"a": []any{1, map[string]any{"b": []any{true, nil}}},
		"c": NewFields("z", "last", "y", "first"),
	}

	assert.Equal(t, `{"a":[1,{"b":[true,null]}],"c":{"z":"last","y":"first"}}`, Serialize(value))
}

func TestSerialize_KeepsHTMLCharacters(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"map", map[string]any{"q": "<a&b>"}, `{"q":"<a&b>"}`},
		{"fields", NewFields("q", "<a&b>"), `{"q":"<a&b>"}`},
		{"fields key", NewFields("a<b", 1), `{"a<b":1}`},
		{"nested fields", NewFields("q", "<a&b>", "n", NewFields("x", "<")), `{"q":"<a&b>","n":{"x":"<"}}`},
		{"fields inside map", map[string]any{"f": NewFields("x", ">")}, `{"f":{"x":">"}}`},
		{"fields inside slice", []any{NewFields("x", "&")}, `[{"x":"&"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Serialize(tt.value))
		})
	}
}

func TestSerialize_NestedUndefinedIsNull(t *testing.T) {
	assert.Equal(t, `[null,null]`, Serialize([]any{Undefined, Symbol("x")}))
}

func TestSerialize_SharedReferencesAreNotCycles(t *testing.T) {
	shared := []int{1}
	leaf := &node{Name: "leaf"}
	value := map[string]any{
		"a": shared,
		"b": shared,
		"c": []*node{leaf, leaf},
	}

	assert.Equal(t,
		`{"a":[1],"b":[1],"c":[{"Name":"leaf","Next":null},{"Name":"leaf","Next":null}]}`,
		Serialize(value))
}

func TestSerialize_Cycles(t *testing.T) {
	cyclicMap := map[string]any{"name": "root"}
	cyclicMap["self"] = cyclicMap

	cyclicSlice := []any{nil}
	cyclicSlice[0] = cyclicSlice

	cyclicNode := &node{Name: "loop"}
	cyclicNode.Next = cyclicNode

	cyclicFields := NewFields("name", "root")
	cyclicFields.Set("self", cyclicFields)

	indirect := map[string]any{}
	indirect["child"] = []any{map[string]any{"parent": indirect}}

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"map", cyclicMap, "[object Object]"},
		{"slice", cyclicSlice, "[object Array]"},
		{"struct pointer", cyclicNode, "[object Object]"},
		{"fields", cyclicFields, "[object Object]"},
		{"indirect", indirect, "[object Object]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Equal(t, tt.want, Serialize(tt.value))
			})
		})
	}
}

func TestSerialize_Unsupported(t *testing.T) {
	got := Serialize(func() {})
	if got != "func()" {
		t.Errorf("expected type name for func, got %q", got)
	}

	got = Serialize(make(chan int))
	if got != "chan int" {
		t.Errorf("expected type name for chan, got %q", got)
	}

	got = Serialize(complex(1, 2))
	if got != "(1+2i)" {
		t.Errorf("expected complex literal, got %q", got)
	}

	got = Serialize(map[[2]int]string{{1, 2}: "x"})
	if got != "[object Object]" {
		t.Errorf("expected object fallback for unsupported key type, got %q", got)
	}
}

func TestCoerce(t *testing.T) {
	var nilNode *node

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"nil", nil, "null"},
		{"nil pointer", nilNode, "null"},
		{"stringer", label{"x"}, "label:x"},
		{"string", "plain", "plain"},
		{"number", 42, "42"},
		{"struct", node{}, "[object Object]"},
		{"slice", []int{1}, "[object Array]"},
		{"array", [1]int{1}, "[object Array]"},
		{"symbol", Symbol("test"), "Symbol(test)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Coerce(tt.value))
		})
	}
}

func TestSerialize_SymbolInsideError(t *testing.T) {
	err := NewDatabaseError("E", "m", WithTable("t"), WithOriginal(Symbol("test")))

	if !strings.Contains(FormatError(err), "Original Error: Symbol(test)") {
		t.Errorf("expected symbol label in output")
	}
}
