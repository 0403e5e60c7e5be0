package brd

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrIndexOutOfRange is matched by every *IndexError.
	ErrIndexOutOfRange = errors.New("record index out of range")

	// ErrKindNotAllowed is returned when an agent record is added to a
	// project whose template kind does not carry agent collections.
	ErrKindNotAllowed = errors.New("record kind not allowed for template")

	// ErrUnknownKind is returned when a record kind name cannot be parsed.
	ErrUnknownKind = errors.New("unknown record kind")
)

// FieldError is a single violated constraint.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (f FieldError) String() string {
	return f.Field + " " + f.Message
}

// ValidationError lists every constraint a record or project violates.
// It is never returned empty.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field appears among the violations.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

func (e *ValidationError) add(field, format string, args ...any) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// merge appends other's violations with every field name prefixed.
func (e *ValidationError) merge(prefix string, err error) {
	var other *ValidationError
	if !errors.As(err, &other) {
		if err != nil {
			e.add(prefix, "%v", err)
		}
		return
	}
	for _, f := range other.Fields {
		name := f.Field
		if prefix != "" {
			name = prefix + "." + name
		}
		e.Fields = append(e.Fields, FieldError{Field: name, Message: f.Message})
	}
}

// err returns nil when no violations were collected.
func (e *ValidationError) err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// IndexError reports a positional address outside a collection.
type IndexError struct {
	Kind  Kind
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s: index %d out of range [0,%d)", e.Kind, e.Index, e.Len)
}

func (e *IndexError) Unwrap() error { return ErrIndexOutOfRange }
