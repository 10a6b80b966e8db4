package analysis

import "errors"

// Error kinds shared by the loaders, the pooler and the reporters.
// Callers match them with errors.Is; messages wrap them with the offending file.
var (
	// ErrBadShape is returned when a table has no data rows, has ragged rows,
	// or when records of different modes are combined.
	ErrBadShape = errors.New("bad shape")
	// ErrBadColumns is returned when a row has fewer than MinColumns numeric fields.
	ErrBadColumns = errors.New("bad columns")
	// ErrLengthMismatch is returned when record lengths or list lengths disagree.
	ErrLengthMismatch = errors.New("length mismatch")
	// ErrDegenerateCount is returned when a sample count makes the unbiased variance undefined.
	ErrDegenerateCount = errors.New("degenerate count")
)
