package schema

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	ErrCycle          = errors.New("cycle detected in common type definitions")
	ErrUndefinedType  = errors.New("undefined type")
	ErrUnknownType    = errors.New("unknown type")
	ErrNamespaceCount = errors.New("schema must declare exactly one namespace")
	ErrShapeNotRecord = errors.New("entity shape must be a record")
)

// CycleError indicates a cycle in common type definitions.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%v: %s", ErrCycle, strings.Join(e.Path, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrCycle }

// UndefinedTypeError indicates a reference to a type the schema does not declare.
type UndefinedTypeError struct {
	Name    string
	Context string
}

func (e *UndefinedTypeError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%v: %q %s", ErrUndefinedType, e.Name, e.Context)
	}
	return fmt.Sprintf("%v: %q", ErrUndefinedType, e.Name)
}

func (e *UndefinedTypeError) Unwrap() error { return ErrUndefinedType }
