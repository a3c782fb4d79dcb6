package docsettings

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedSettings means stored settings could not be resolved into their typed shape.
	ErrMalformedSettings = errors.New("malformed settings")
	// ErrUnknownKind is returned for a document kind with no registered defaults.
	ErrUnknownKind = errors.New("unknown settings kind")
)

// ValidationError reports a settings field whose value does not fit the expected type.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid settings: %s", e.Reason)
	}
	return fmt.Sprintf("invalid setting %q: %s", e.Field, e.Reason)
}
