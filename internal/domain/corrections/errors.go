package corrections

import "errors"

var (
	// ErrOutOfRange is returned when an eligible lepton falls outside a table.
	ErrOutOfRange = errors.New("scale factor lookup out of range")
	// ErrInvalidTable is returned for tables with inconsistent binning.
	ErrInvalidTable = errors.New("invalid scale factor table")
)
