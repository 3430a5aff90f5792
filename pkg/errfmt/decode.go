package errfmt

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Decode parses a JSON document into a value FormatError can render.
// Objects become *Fields so key order survives, numbers stay json.Number.
// An object with string "name" and "message" keys becomes a
// *DatabaseError; its attribute keys count as present even when null.
func Decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return nil, fmt.Errorf("failed to decode value: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode value: unexpected data after top-level value")
	}

	return asError(v)
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		fields := NewFields()
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, _ := keyTok.(string)
			value, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			fields.Set(key, value)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return fields, nil

	case '[':
		items := []any{}
		for dec.More() {
			item, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return items, nil
	}

	return nil, fmt.Errorf("unexpected delimiter %q", delim)
}

// asError turns an error-shaped object into a *DatabaseError and leaves
// every other value alone.
func asError(v any) (any, error) {
	obj, ok := v.(*Fields)
	if !ok {
		return v, nil
	}
	name, okName := stringKey(obj, "name")
	message, okMessage := stringKey(obj, "message")
	if !okName || !okMessage {
		return v, nil
	}

	opts := []Option{WithStack("")}

	stringAttrs := []struct {
		key string
		opt func(string) Option
	}{
		{"constraint", WithConstraint},
		{"table", WithTable},
		{"detail", WithDetail},
		{"sql", WithSQL},
	}
	for _, attr := range stringAttrs {
		if raw, present := obj.Get(attr.key); present {
			opts = append(opts, attr.opt(attrString(raw)))
		}
	}

	if raw, present := obj.Get("fields"); present {
		switch f := raw.(type) {
		case *Fields:
			opts = append(opts, WithFields(f))
		case nil:
			opts = append(opts, WithFields(nil))
		default:
			return nil, fmt.Errorf("failed to decode value: fields must be an object, got %s", Serialize(raw))
		}
	}

	if raw, present := obj.Get("original"); present {
		original, err := asError(raw)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithOriginal(original))
	}

	if raw, present := obj.Get("stack"); present {
		if s, ok := raw.(string); ok {
			opts = append(opts, WithStack(s))
		}
	}

	return NewDatabaseError(name, message, opts...), nil
}

func stringKey(obj *Fields, key string) (string, bool) {
	raw, present := obj.Get(key)
	if !present {
		return "", false
	}
	s, ok := raw.(string)
	return s, ok
}

// attrString keeps strings as they are, maps null to the empty (falsy)
// string and serializes anything else.
func attrString(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	}
	return Serialize(raw)
}
