package errfmt

import (
	"fmt"
	"math"
	"reflect"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Fields holds the column values attached to a failed statement.
// Keys keep insertion order when serialized.
type Fields = orderedmap.OrderedMap[string, any]

// NewFields builds a Fields map from alternating key/value arguments.
// Non-string keys are converted with fmt.Sprint. A trailing key without
// a value is stored as nil.
func NewFields(kv ...any) *Fields {
	f := orderedmap.New[string, any]()
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		var value any
		if i+1 < len(kv) {
			value = kv[i+1]
		}
		f.Set(key, value)
	}
	return f
}

// Opt is an optional attribute. The zero Opt is absent; an Opt can be
// present and still hold a zero value.
type Opt[T any] struct {
	Value   T
	Present bool
}

// Some returns a present Opt holding v.
func Some[T any](v T) Opt[T] {
	return Opt[T]{Value: v, Present: true}
}

// Attributes describes a failed SQL operation.
type Attributes struct {
	Constraint Opt[string]
	Table      Opt[string]
	Fields     Opt[*Fields]
	Detail     Opt[string]
	SQL        Opt[string]
	// Original is the underlying cause, an error or a string. nil is absent.
	Original any
}

// Classified reports whether the attributes mark a database error. Only
// Constraint, Table, Fields and SQL count, and only their presence.
func (a Attributes) Classified() bool {
	return a.Constraint.Present || a.Table.Present || a.Fields.Present || a.SQL.Present
}

// AttributeCarrier is implemented by errors that carry database attributes.
type AttributeCarrier interface {
	error
	DatabaseAttributes() Attributes
}

// truthy mirrors the loose truthiness used to decide whether an
// attribute is worth a line.
func truthy(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.Len() > 0
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f != 0 && !math.IsNaN(f)
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return !rv.IsNil()
	}
	return true
}
