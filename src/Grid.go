package sheet

import (
	"fmt"

	"formulaSheet/contracts"
)

type cellState uint8

const (
	stateEmpty cellState = iota
	stateLiteral
	stateFormulaFresh
	stateFormulaStale
	stateFormulaError
)

// cellRecord is the grid's per-cell storage: the raw content, the parsed
// formula with its reference set, and the cached result of the last
// evaluation.
type cellRecord struct {
	raw     string
	numeric bool
	expr    *contracts.Expr
	refs    []contracts.Address
	state   cellState
	result  float64
	err     error
}

// Grid is dense row-major cell storage with a resizable extent.
type Grid struct {
	rows  int
	cols  int
	cells [][]cellRecord
}

func NewGrid(rows, cols int) *Grid {
	grid := &Grid{}
	grid.Resize(rows, cols)
	return grid
}

func (g *Grid) Rows() int { return g.rows }

func (g *Grid) Cols() int { return g.cols }

func (g *Grid) InBounds(addr contracts.Address) bool {
	return addr.Row >= 0 && addr.Row < g.rows && addr.Col >= 0 && addr.Col < g.cols
}

// Resize reallocates storage. Cells within the old bounds keep their content
// and cached results, cells outside are dropped.
func (g *Grid) Resize(rows, cols int) {
	cells := make([][]cellRecord, rows)
	for row := range cells {
		cells[row] = make([]cellRecord, cols)
		if row < g.rows {
			copy(cells[row], g.cells[row])
		}
	}

	g.rows = rows
	g.cols = cols
	g.cells = cells
}

// Grow ensures the grid spans at least rows x cols.
func (g *Grid) Grow(rows, cols int) {
	if rows <= g.rows && cols <= g.cols {
		return
	}
	if rows < g.rows {
		rows = g.rows
	}
	if cols < g.cols {
		cols = g.cols
	}
	g.Resize(rows, cols)
}

// at returns the record at addr. The caller guarantees bounds.
func (g *Grid) at(addr contracts.Address) *cellRecord {
	return &g.cells[addr.Row][addr.Col]
}

func (g *Grid) read(addr contracts.Address) (*cellRecord, error) {
	if !g.InBounds(addr) {
		return nil, fmt.Errorf("%s: %w", addr.Label(), contracts.OutOfBoundsError)
	}
	return g.at(addr), nil
}

func (g *Grid) forEach(visit func(addr contracts.Address, rec *cellRecord)) {
	for row := 0; row < g.rows; row++ {
		for col := 0; col < g.cols; col++ {
			visit(contracts.Address{Row: row, Col: col}, &g.cells[row][col])
		}
	}
}
