package core

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when a reference record or artifact does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a save collides with an existing natural key.
	ErrDuplicate = errors.New("record already exists")
)

// ValidationError lists the required fields that were missing or invalid.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// MissingFields extracts the field list from err when it is a *ValidationError.
func MissingFields(err error) ([]string, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields, true
	}
	return nil, false
}
