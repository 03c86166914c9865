package contracts

// CellDependencyGraph tracks which cells a formula reads and which cells
// read it back.
type CellDependencyGraph interface {
	// SetDependsOn
	/**
	 * Example, for formula `A1 = B1 + C1`:
	 * `dependant` depends on `dependingOn`
	 * A1 depends on B1 and C1
	 *  SetDependsOn(A1, []Address{B1, C1})
	 * Edges from the dependant's previous formula that are no longer read
	 * are removed atomically with the new set being installed.
	 */
	SetDependsOn(dependant Address, dependingOn []Address)

	// DependantsOf returns the cells that directly read dependingOn, in
	// edge insertion order.
	DependantsOf(dependingOn Address) []Address

	// Dependants returns the cells that transitively read dependingOn.
	Dependants(dependingOn Address) []Address

	// TopoOrderFrom returns start plus every cell transitively dependent on
	// it, ordered so dependencies come before dependants. A cycle fails
	// with *CircularReferenceError naming its members.
	TopoOrderFrom(start Address) ([]Address, error)

	// PurgeDropped removes the edge sets owned by cells outside the new
	// extent and reports the surviving dependants that still read a dropped
	// coordinate.
	PurgeDropped(rows, cols int) []Address
}
