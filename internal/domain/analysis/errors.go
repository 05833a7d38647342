package analysis

import "errors"

var (
	// ErrDuplicateCategory is returned when a category name or id is reused.
	ErrDuplicateCategory = errors.New("duplicate category")
	// ErrDuplicateVariable is returned when a variable name is reused.
	ErrDuplicateVariable = errors.New("duplicate variable")
	// ErrUnknownCategory is returned when a referenced category does not exist.
	ErrUnknownCategory = errors.New("unknown category")
)
