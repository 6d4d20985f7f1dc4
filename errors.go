package emistat

import "errors"

// Standard errors for consistency across the package
var (
	// ErrEmptyData indicates that the data source contains no records
	ErrEmptyData = errors.New("emistat: empty data source")

	// ErrUnsupportedFormat indicates an unsupported file format
	ErrUnsupportedFormat = errors.New("emistat: unsupported file format")

	// ErrDuplicateColumnName is returned when a file contains duplicate column names
	ErrDuplicateColumnName = errors.New("emistat: duplicate column name")

	// ErrMissingColumns indicates a file header with fewer columns than the
	// table layout requires
	ErrMissingColumns = errors.New("emistat: missing required columns")

	// ErrDivisionByZero indicates a share or growth denominator of zero.
	// It is reported per group; unaffected groups still produce rows.
	ErrDivisionByZero = errors.New("emistat: division by zero")

	// ErrNoObservations indicates that the join produced no observations,
	// so no analysis can run
	ErrNoObservations = errors.New("emistat: no joined observations")

	// ErrFileNotFound indicates file not found
	ErrFileNotFound = errors.New("emistat: file not found")
)
