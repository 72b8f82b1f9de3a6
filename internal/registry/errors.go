package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrNilProperty is returned when a nil property is registered.
	ErrNilProperty = errors.New("nil property")
	// ErrNilGroup is returned when a nil group is registered explicitly or bound to an exporter.
	ErrNilGroup = errors.New("nil group")
	// ErrDuplicateProperty is returned when the same declaration is registered twice.
	ErrDuplicateProperty = errors.New("property registered more than once")
	// ErrDuplicateName is returned when two properties claim the same name.
	ErrDuplicateName = errors.New("duplicate property name")
	// ErrUnknownGroup is returned when an export binding refers to a group with no registration.
	ErrUnknownGroup = errors.New("group not registered")
	// ErrNilExporter is returned when an export binding has no exporter.
	ErrNilExporter = errors.New("nil exporter")
)

// NameConflictError reports two properties competing for one name.
type NameConflictError struct {
	Name     string
	Existing string
	Incoming string
}

func (e *NameConflictError) Error() string {
	return fmt.Sprintf("name %q of %q is already used by %q", e.Name, e.Incoming, e.Existing)
}

func (e *NameConflictError) Unwrap() error {
	return ErrDuplicateName
}
