package contracts

import "errors"

// Cell is the dual-field read contract: the raw stored content alongside the
// computed numeric result. When the cell's formula cannot be computed, Err
// carries the evaluation error and Result is zero.
type Cell struct {
	Value  string
	Result float64
	Err    error
}

var CellNotFoundError = errors.New("cell not found")

var OutOfBoundsError = errors.New("cell address out of sheet bounds")

var InvalidExtentError = errors.New("sheet extent must be non-negative")
