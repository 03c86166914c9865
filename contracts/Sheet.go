package contracts

// Resolver returns the current numeric value of a cell. An empty cell
// resolves to zero; a cell whose value cannot be produced returns an error
// unwrapping to ExpressionError, or UnresolvedError when this resolver does
// not cover the address.
type Resolver func(Address) (float64, error)

// Sheet is the public façade over the grid, parser, dependency graph and
// evaluator. Operational failures (malformed label, read out of bounds,
// edit of an uninitialized cell) come back as the error return; a formula
// computing to an error is reported inside the returned Cell instead.
type Sheet interface {
	SetValue(label string, content string) error
	GetValue(label string) (*Cell, error)
	EditValue(label string, content string) error
	DeleteValue(label string) error
	Resize(rows, cols int) error
	Extent() (rows, cols int)
	Snapshot() map[string]*Cell
}
