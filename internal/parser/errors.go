package parser

import "errors"

var (
	// ErrTableNotFound is returned when no line opens the target table.
	ErrTableNotFound = errors.New("localization table not found")

	// ErrTableUnterminated is returned when the input ends inside the table.
	ErrTableUnterminated = errors.New("localization table is not closed")
)
