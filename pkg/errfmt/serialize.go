package errfmt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
)

// jsonless marks values that have no JSON form at the top level.
type jsonless interface {
	fmt.Stringer
	noJSON()
}

type undefined struct{}

// Undefined stands for a missing value. It serializes to "undefined" and
// to null when nested inside a map or slice.
var Undefined any = undefined{}

func (undefined) String() string               { return "undefined" }
func (undefined) MarshalJSON() ([]byte, error) { return []byte("null"), nil }
func (undefined) noJSON()                      {}

// Symbol is a labelled unique token. It formats as Symbol(label).
type Symbol string

func (s Symbol) String() string             { return "Symbol(" + string(s) + ")" }
func (Symbol) MarshalJSON() ([]byte, error) { return []byte("null"), nil }
func (Symbol) noJSON()                      {}

var fieldsPtrType = reflect.TypeOf((*Fields)(nil))

var marshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()

// Serialize renders v as compact JSON. When v cannot be expressed as
// JSON, including when it contains a reference cycle, it returns
// Coerce(v) instead.
func Serialize(v any) (out string) {
	if j, ok := v.(jsonless); ok {
		return j.String()
	}

	defer func() {
		if r := recover(); r != nil {
			out = Coerce(v)
		}
	}()

	if hasCycle(reflect.ValueOf(v), map[cycleKey]struct{}{}) {
		return Coerce(v)
	}

	var b bytes.Buffer
	if err := writeJSON(&b, reflect.ValueOf(v)); err != nil {
		return Coerce(v)
	}
	return b.String()
}

// writeJSON encodes v like encoding/json without HTML escaping. *Fields
// are written here pair by pair because their MarshalJSON escapes HTML,
// and maps, slices and pointers are walked so nested *Fields get the
// same treatment. Other values go to the encoder.
func writeJSON(b *bytes.Buffer, v reflect.Value) error {
	if !v.IsValid() {
		b.WriteString("null")
		return nil
	}

	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			b.WriteString("null")
			return nil
		}
		return writeJSON(b, v.Elem())

	case reflect.Pointer:
		if v.IsNil() {
			b.WriteString("null")
			return nil
		}
		if v.Type() == fieldsPtrType && v.CanInterface() {
			return writeFields(b, v.Interface().(*Fields))
		}
		if v.Type().Implements(marshalerType) {
			break
		}
		return writeJSON(b, v.Elem())

	case reflect.Map:
		if v.Type().Implements(marshalerType) || v.Type().Key().Kind() != reflect.String {
			break
		}
		if v.IsNil() {
			b.WriteString("null")
			return nil
		}
		keys := v.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := writeLeaf(b, k.String()); err != nil {
				return err
			}
			b.WriteByte(':')
			if err := writeJSON(b, v.MapIndex(k)); err != nil {
				return err
			}
		}
		b.WriteByte('}')
		return nil

	case reflect.Slice, reflect.Array:
		if v.Type().Implements(marshalerType) || v.Type().Elem().Kind() == reflect.Uint8 {
			break
		}
		if v.Kind() == reflect.Slice && v.IsNil() {
			b.WriteString("null")
			return nil
		}
		b.WriteByte('[')
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := writeJSON(b, v.Index(i)); err != nil {
				return err
			}
		}
		b.WriteByte(']')
		return nil
	}

	if !v.CanInterface() {
		return fmt.Errorf("unsupported value of type %s", v.Type())
	}
	if v.Kind() != reflect.Pointer && v.CanAddr() && v.Addr().Type().Implements(marshalerType) {
		return writeLeaf(b, v.Addr().Interface())
	}
	return writeLeaf(b, v.Interface())
}

func writeFields(b *bytes.Buffer, f *Fields) error {
	if f.Len() == 0 {
		raw, err := f.MarshalJSON()
		b.Write(raw)
		return err
	}

	b.WriteByte('{')
	for p := f.Oldest(); p != nil; p = p.Next() {
		if p != f.Oldest() {
			b.WriteByte(',')
		}
		if err := writeLeaf(b, p.Key); err != nil {
			return err
		}
		b.WriteByte(':')
		if err := writeJSON(b, reflect.ValueOf(p.Value)); err != nil {
			return err
		}
	}
	b.WriteByte('}')
	return nil
}

func writeLeaf(b *bytes.Buffer, v any) error {
	var leaf bytes.Buffer
	enc := json.NewEncoder(&leaf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	b.Write(bytes.TrimSuffix(leaf.Bytes(), []byte("\n")))
	return nil
}

// Coerce is the generic string form of v. It never walks into v, so it
// is safe on cyclic values.
func Coerce(v any) (out string) {
	if v == nil {
		return "null"
	}
	if s, ok := v.(fmt.Stringer); ok {
		defer func() {
			if r := recover(); r != nil {
				out = fmt.Sprintf("%T", v)
			}
		}()
		return s.String()
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map, reflect.Struct:
		return "[object Object]"
	case reflect.Slice, reflect.Array:
		return "[object Array]"
	case reflect.Pointer:
		return "null"
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return fmt.Sprint(rv.Interface())
	}
	return fmt.Sprintf("%T", v)
}

type cycleKey struct {
	ptr uintptr
	len int
	typ reflect.Type
}

// hasCycle reports whether v reaches itself through the parts the JSON
// encoder would visit. Shared but acyclic references are allowed.
func hasCycle(v reflect.Value, path map[cycleKey]struct{}) bool {
	if !v.IsValid() {
		return false
	}

	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return false
		}
		return hasCycle(v.Elem(), path)

	case reflect.Pointer:
		if v.IsNil() {
			return false
		}
		key := cycleKey{ptr: v.Pointer(), typ: v.Type()}
		if _, seen := path[key]; seen {
			return true
		}
		path[key] = struct{}{}
		defer delete(path, key)

		if v.Type() == fieldsPtrType && v.CanInterface() {
			f := v.Interface().(*Fields)
			for p := f.Oldest(); p != nil; p = p.Next() {
				if hasCycle(reflect.ValueOf(p.Value), path) {
					return true
				}
			}
			return false
		}
		if v.Type().Implements(marshalerType) {
			return false
		}
		return hasCycle(v.Elem(), path)

	case reflect.Map:
		if v.IsNil() {
			return false
		}
		key := cycleKey{ptr: v.Pointer(), typ: v.Type()}
		if _, seen := path[key]; seen {
			return true
		}
		path[key] = struct{}{}
		defer delete(path, key)

		iter := v.MapRange()
		for iter.Next() {
			if hasCycle(iter.Value(), path) {
				return true
			}
		}
		return false

	case reflect.Slice:
		if v.IsNil() || v.Len() == 0 {
			return false
		}
		key := cycleKey{ptr: v.Pointer(), len: v.Len(), typ: v.Type()}
		if _, seen := path[key]; seen {
			return true
		}
		path[key] = struct{}{}
		defer delete(path, key)

		for i := 0; i < v.Len(); i++ {
			if hasCycle(v.Index(i), path) {
				return true
			}
		}
		return false

	case reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if hasCycle(v.Index(i), path) {
				return true
			}
		}
		return false

	case reflect.Struct:
		if v.Type().Implements(marshalerType) {
			return false
		}
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			if !t.Field(i).IsExported() {
				continue
			}
			if hasCycle(v.Field(i), path) {
				return true
			}
		}
		return false
	}
	return false
}
