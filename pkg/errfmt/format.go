// Package errfmt renders errors, in particular errors raised by a SQL
// data-access layer, as plain text for log output.
package errfmt

import (
	"errors"
	"fmt"
	"go/token"
	"reflect"
	"strings"
)

// DetailsHeader opens the block of database attributes.
const DetailsHeader = "[Sequelize Error Details]"

type namer interface {
	Name() string
}

type stacker interface {
	Stack() string
}

// FormatError returns a log-ready description of v. Errors render as
// "name: message", then the database attribute block when the error
// carries one, then the trace text. Any other value is serialized with
// Serialize. FormatError never panics.
func FormatError(v any) (out string) {
	err, ok := v.(error)
	if !ok || isNilPointer(v) {
		return Serialize(v)
	}

	defer func() {
		if r := recover(); r != nil {
			out = fmt.Sprintf("%v", v)
		}
	}()

	var b strings.Builder
	b.WriteString(errorName(err))
	b.WriteString(": ")
	b.WriteString(err.Error())

	var carrier AttributeCarrier
	if errors.As(err, &carrier) {
		if attrs := carrier.DatabaseAttributes(); attrs.Classified() {
			b.WriteString("\n")
			writeDetails(&b, attrs)
		}
	}

	b.WriteString("\n")
	b.WriteString(traceText(err))
	return b.String()
}

// writeDetails writes the header and one indented line per truthy
// attribute, in a fixed order.
func writeDetails(b *strings.Builder, a Attributes) {
	b.WriteString(DetailsHeader)

	line := func(label, value string) {
		b.WriteString("\n  ")
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(value)
	}

	if a.Constraint.Value != "" {
		line("Constraint", a.Constraint.Value)
	}
	if a.Table.Value != "" {
		line("Table", a.Table.Value)
	}
	if a.Fields.Value != nil {
		line("Fields", Serialize(a.Fields.Value))
	}
	if a.Detail.Value != "" {
		line("Detail", a.Detail.Value)
	}
	if a.SQL.Value != "" {
		line("SQL", a.SQL.Value)
	}
	if truthy(a.Original) {
		line("Original Error", originalText(a.Original))
	}
}

func originalText(original any) string {
	switch o := original.(type) {
	case error:
		return o.Error()
	case string:
		return o
	}
	return Coerce(original)
}

// errorName is Name() when the error has one, otherwise the exported
// name of its concrete type, otherwise "Error".
func errorName(err error) string {
	if n, ok := err.(namer); ok {
		return n.Name()
	}
	t := reflect.TypeOf(err)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if name := t.Name(); name != "" && token.IsExported(name) {
		return name
	}
	return "Error"
}

// traceText walks the wrap chain from the outside in and returns the
// first trace it meets: preformatted text, or pkg/errors frames.
// Untraced errors yield "".
func traceText(err error) string {
	switch e := err.(type) {
	case stacker:
		return e.Stack()
	case stackTracer:
		return strings.TrimPrefix(fmt.Sprintf("%+v", e.StackTrace()), "\n")
	case interface{ Unwrap() error }:
		if inner := e.Unwrap(); inner != nil {
			return traceText(inner)
		}
	case interface{ Unwrap() []error }:
		for _, inner := range e.Unwrap() {
			if s := traceText(inner); s != "" {
				return s
			}
		}
	}
	return ""
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
