package fxom

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformed marks markup that parses but does not form a valid tree
	// of objects and properties.
	ErrMalformed = errors.New("malformed document")
	// ErrDuplicateProperty is returned when an owner declares a property
	// name twice.
	ErrDuplicateProperty = errors.New("duplicate property")

	ErrClassNotFound   = errors.New("class not found")
	ErrNotInstantiable = errors.New("class is not instantiable")
	ErrAbstractType    = errors.New("abstract type")
	ErrNoInstantiator  = errors.New("no instantiator configured")

	ErrUnresolved       = errors.New("unresolved reference")
	ErrForwardReference = errors.New("reference to an object declared later")
	ErrIncludeCycle     = errors.New("include cycle")
	ErrIncludeDepth     = errors.New("include nesting too deep")
	ErrNoFilesystem     = errors.New("document has no filesystem")
	ErrNoLocation       = errors.New("document has no location")
)

// InstantiationError records why an instance has no live object.
type InstantiationError struct {
	Class string
	Line  int
	Err   error
}

func (e *InstantiationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: instantiate %s: %v", e.Line, e.Class, e.Err)
	}
	return fmt.Sprintf("instantiate %s: %v", e.Class, e.Err)
}

func (e *InstantiationError) Unwrap() error { return e.Err }

func malformed(line int, format string, args ...any) error {
	return fmt.Errorf("line %d: %w: %s", line, ErrMalformed, fmt.Sprintf(format, args...))
}
