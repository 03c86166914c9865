package sheet

import "formulaSheet/contracts"

// DependencyGraph stores the directed edges "dependant reads dependingOn".
// Adjacency slices keep edge insertion order, so traversal and cycle
// reporting are deterministic.
type DependencyGraph struct {
	dependsOn  map[contracts.Address][]contracts.Address
	dependants map[contracts.Address][]contracts.Address
}

const (
	colorWhite = iota
	colorGray
	colorBlack
)

func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		dependsOn:  map[contracts.Address][]contracts.Address{},
		dependants: map[contracts.Address][]contracts.Address{},
	}
}

// SetDependsOn replaces the dependant's edge set. Edges carried over from
// the previous set are kept in place, removed ones are dropped and new ones
// appended, so the cost is proportional to the old plus new degree.
func (g *DependencyGraph) SetDependsOn(dependant contracts.Address, dependingOn []contracts.Address) {
	previousToDelete := map[contracts.Address]bool{}
	for _, previous := range g.dependsOn[dependant] {
		previousToDelete[previous] = true
	}

	for _, dependingOnCell := range dependingOn {
		if previousToDelete[dependingOnCell] {
			// already linked, keep the edge
			delete(previousToDelete, dependingOnCell)
		} else {
			g.dependants[dependingOnCell] = append(g.dependants[dependingOnCell], dependant)
		}
	}

	for oldDependingOnCell := range previousToDelete {
		g.removeDependant(oldDependingOnCell, dependant)
	}

	if len(dependingOn) == 0 {
		delete(g.dependsOn, dependant)
		return
	}
	g.dependsOn[dependant] = append([]contracts.Address(nil), dependingOn...)
}

// DependsOn returns the dependant's current edge set in source order.
func (g *DependencyGraph) DependsOn(dependant contracts.Address) []contracts.Address {
	return append([]contracts.Address(nil), g.dependsOn[dependant]...)
}

func (g *DependencyGraph) DependantsOf(dependingOn contracts.Address) []contracts.Address {
	return append([]contracts.Address(nil), g.dependants[dependingOn]...)
}

// Dependants returns every cell that transitively reads dependingOn.
func (g *DependencyGraph) Dependants(dependingOn contracts.Address) []contracts.Address {
	return g.fetchDependantsRecursive(dependingOn, map[contracts.Address]bool{
		dependingOn: true,
	})
}

func (g *DependencyGraph) fetchDependantsRecursive(dependingOn contracts.Address, alreadyFetched map[contracts.Address]bool) []contracts.Address {
	dependants := append([]contracts.Address(nil), g.dependants[dependingOn]...)

	for _, dependantCell := range g.dependants[dependingOn] {
		if !alreadyFetched[dependantCell] {
			alreadyFetched[dependantCell] = true
			dependants = append(dependants, g.fetchDependantsRecursive(dependantCell, alreadyFetched)...)
		}
	}

	return dependants
}

// TopoOrderFrom returns start plus its transitive dependants, dependencies
// before dependants, via a three-color depth-first traversal. Reaching a
// gray (in-progress) cell closes a cycle, reported from its first repeated
// member.
func (g *DependencyGraph) TopoOrderFrom(start contracts.Address) ([]contracts.Address, error) {
	color := map[contracts.Address]int{}
	path := make([]contracts.Address, 0, 8)
	postorder := make([]contracts.Address, 0, 8)

	var visit func(cell contracts.Address) error
	visit = func(cell contracts.Address) error {
		switch color[cell] {
		case colorGray:
			first := 0
			for path[first] != cell {
				first++
			}
			return &contracts.CircularReferenceError{Cycle: append([]contracts.Address(nil), path[first:]...)}
		case colorBlack:
			return nil
		}

		color[cell] = colorGray
		path = append(path, cell)

		for _, dependant := range g.dependants[cell] {
			if err := visit(dependant); err != nil {
				return err
			}
		}

		path = path[:len(path)-1]
		color[cell] = colorBlack
		postorder = append(postorder, cell)
		return nil
	}

	if err := visit(start); err != nil {
		return nil, err
	}

	for i, j := 0, len(postorder)-1; i < j; i, j = i+1, j-1 {
		postorder[i], postorder[j] = postorder[j], postorder[i]
	}
	return postorder, nil
}

// PurgeDropped removes the edge sets owned by dependants outside the new
// extent and reports surviving dependants still reading dropped coordinates.
// Those survivors keep their edges: the edge set must stay consistent with
// the stored formula, and the kept edge is what re-validates the formula if
// the sheet grows back.
func (g *DependencyGraph) PurgeDropped(rows, cols int) []contracts.Address {
	dropped := func(cell contracts.Address) bool {
		return cell.Row >= rows || cell.Col >= cols
	}

	for dependant := range g.dependsOn {
		if dropped(dependant) {
			g.SetDependsOn(dependant, nil)
		}
	}

	affected := make([]contracts.Address, 0)
	for dependant, dependingOn := range g.dependsOn {
		for _, dependingOnCell := range dependingOn {
			if dropped(dependingOnCell) {
				affected = append(affected, dependant)
				break
			}
		}
	}
	return affected
}

func (g *DependencyGraph) removeDependant(dependingOn contracts.Address, dependant contracts.Address) {
	edges := g.dependants[dependingOn]
	for index, cell := range edges {
		if cell == dependant {
			edges = append(edges[:index], edges[index+1:]...)
			break
		}
	}

	if len(edges) == 0 {
		delete(g.dependants, dependingOn)
		return
	}
	g.dependants[dependingOn] = edges
}
