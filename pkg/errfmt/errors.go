package errfmt

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// DatabaseError is an error raised by a data-access layer. It carries
// the optional attributes of the failed operation and the call stack at
// construction time.
type DatabaseError struct {
	name    string
	message string
	attrs   Attributes

	stack    errors.StackTrace
	trace    string
	hasTrace bool
}

// Option sets an attribute on a DatabaseError.
type Option func(*DatabaseError)

func WithConstraint(name string) Option {
	return func(e *DatabaseError) { e.attrs.Constraint = Some(name) }
}

func WithTable(name string) Option {
	return func(e *DatabaseError) { e.attrs.Table = Some(name) }
}

// WithFields attaches field values. A nil map still marks the attribute
// as present.
func WithFields(f *Fields) Option {
	return func(e *DatabaseError) { e.attrs.Fields = Some(f) }
}

func WithDetail(detail string) Option {
	return func(e *DatabaseError) { e.attrs.Detail = Some(detail) }
}

func WithSQL(sql string) Option {
	return func(e *DatabaseError) { e.attrs.SQL = Some(sql) }
}

// WithOriginal records the underlying cause, an error or a string.
func WithOriginal(original any) Option {
	return func(e *DatabaseError) { e.attrs.Original = original }
}

// WithStack replaces the captured call stack with preformatted trace text.
func WithStack(trace string) Option {
	return func(e *DatabaseError) {
		e.trace = trace
		e.hasTrace = true
	}
}

// NewDatabaseError returns a DatabaseError whose stack starts at the caller.
func NewDatabaseError(name, message string, opts ...Option) *DatabaseError {
	e := &DatabaseError{name: name, message: message}
	if st, ok := errors.New(message).(stackTracer); ok {
		if frames := st.StackTrace(); len(frames) > 1 {
			e.stack = frames[1:]
		}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *DatabaseError) Error() string { return e.message }

// Name returns the error category, e.g. SequelizeUniqueConstraintError.
func (e *DatabaseError) Name() string { return e.name }

func (e *DatabaseError) DatabaseAttributes() Attributes { return e.attrs }

// Unwrap returns the original cause when it is an error.
func (e *DatabaseError) Unwrap() error {
	if err, ok := e.attrs.Original.(error); ok {
		return err
	}
	return nil
}

func (e *DatabaseError) StackTrace() errors.StackTrace { return e.stack }

// Stack returns the trace text: the text given to WithStack, or the
// captured frames one per function/file pair.
func (e *DatabaseError) Stack() string {
	if e.hasTrace {
		return e.trace
	}
	return strings.TrimPrefix(fmt.Sprintf("%+v", e.stack), "\n")
}
