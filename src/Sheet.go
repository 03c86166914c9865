package sheet

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"formulaSheet/contracts"
)

const FormulaPrefix = "="

// Sheet composes the grid, parser, dependency graph and evaluator behind the
// public set/get/edit/delete/resize surface. One instance owns its grid and
// graph exclusively; operations run to completion, there is no background
// recomputation.
type Sheet struct {
	grid      *Grid
	graph     contracts.CellDependencyGraph
	parser    contracts.ExpressionParser
	evaluator *Evaluator

	// formula evaluations since creation, for recomputation accounting
	evaluations int
}

var _ contracts.Sheet = (*Sheet)(nil)

func NewSheet(rows, cols int) *Sheet {
	return &Sheet{
		grid:      NewGrid(rows, cols),
		graph:     NewDependencyGraph(),
		parser:    NewExpressionParser(),
		evaluator: NewEvaluator(),
	}
}

// Evaluator exposes the function registry, the extension point for
// additional spreadsheet functions.
func (s *Sheet) Evaluator() *Evaluator { return s.evaluator }

func (s *Sheet) Extent() (rows, cols int) {
	return s.grid.Rows(), s.grid.Cols()
}

// SetValue stores content at the labelled cell, growing the grid when the
// label lies beyond the current extent. Formula parse failures are stored
// with the raw content kept; user input is never silently dropped.
func (s *Sheet) SetValue(label string, content string) error {
	addr, err := contracts.ParseAddress(label)
	if err != nil {
		return err
	}

	if !s.grid.InBounds(addr) {
		s.grid.Grow(addr.Row+1, addr.Col+1)
		s.healBadReferences()
	}

	s.setCell(addr, content)
	return nil
}

// EditValue is SetValue restricted to an already initialized cell.
func (s *Sheet) EditValue(label string, content string) error {
	addr, err := contracts.ParseAddress(label)
	if err != nil {
		return err
	}

	if !s.grid.InBounds(addr) || s.grid.at(addr).state == stateEmpty {
		return fmt.Errorf("%s: %w", label, contracts.CellNotFoundError)
	}

	s.setCell(addr, content)
	return nil
}

// DeleteValue clears the cell's content, removes its outgoing dependency
// edges and marks its dependants stale.
func (s *Sheet) DeleteValue(label string) error {
	addr, err := contracts.ParseAddress(label)
	if err != nil {
		return err
	}

	if !s.grid.InBounds(addr) {
		return fmt.Errorf("%s: %w", label, contracts.CellNotFoundError)
	}

	s.setCell(addr, "")
	return nil
}

func (s *Sheet) GetValue(label string) (*contracts.Cell, error) {
	addr, err := contracts.ParseAddress(label)
	if err != nil {
		return nil, err
	}

	rec, err := s.grid.read(addr)
	if err != nil {
		return nil, err
	}

	if rec.state == stateFormulaStale {
		s.recompute(addr)
	}
	return cellView(rec), nil
}

// Resize changes the sheet extent. Shrinking purges the dependency edges of
// dropped cells and marks surviving formulas that read a dropped coordinate
// with a BadReference error; growing re-arms formulas whose references came
// back into bounds.
func (s *Sheet) Resize(rows, cols int) error {
	if rows < 0 || cols < 0 || rows > contracts.MaxRows || cols > contracts.MaxCols {
		return fmt.Errorf("%dx%d: %w", rows, cols, contracts.InvalidExtentError)
	}

	oldRows, oldCols := s.grid.Rows(), s.grid.Cols()
	if rows == oldRows && cols == oldCols {
		return nil
	}

	s.grid.Resize(rows, cols)

	if rows < oldRows || cols < oldCols {
		for _, affected := range s.graph.PurgeDropped(rows, cols) {
			if !s.grid.InBounds(affected) {
				continue
			}
			rec := s.grid.at(affected)
			if rec.expr == nil {
				continue
			}
			rec.state = stateFormulaError
			rec.result = 0
			for _, ref := range rec.refs {
				if !s.grid.InBounds(ref) {
					rec.err = &contracts.BadReferenceError{Ref: ref}
					break
				}
			}
		}
	}

	if rows > oldRows || cols > oldCols {
		s.healBadReferences()
	}
	return nil
}

// Snapshot materializes every non-empty cell, keyed by label.
func (s *Sheet) Snapshot() map[string]*contracts.Cell {
	cells := map[string]*contracts.Cell{}
	s.grid.forEach(func(addr contracts.Address, rec *cellRecord) {
		if rec.state == stateEmpty {
			return
		}
		if rec.state == stateFormulaStale {
			s.recompute(addr)
		}
		cells[addr.Label()] = cellView(rec)
	})
	return cells
}

func cellView(rec *cellRecord) *contracts.Cell {
	return &contracts.Cell{Value: rec.raw, Result: rec.result, Err: rec.err}
}

// setCell installs content at addr, keeping the dependency edge set
// consistent with the stored content, and marks every transitive dependant
// stale. It never evaluates.
func (s *Sheet) setCell(addr contracts.Address, content string) {
	rec := s.grid.at(addr)
	if rec.raw == content {
		// same content, same outcome
		return
	}

	switch {
	case content == "":
		s.graph.SetDependsOn(addr, nil)
		*rec = cellRecord{}

	case strings.HasPrefix(content, FormulaPrefix):
		expr, err := s.parser.Parse(strings.TrimPrefix(content, FormulaPrefix))
		if err != nil {
			s.graph.SetDependsOn(addr, nil)
			*rec = cellRecord{raw: content, state: stateFormulaError, err: err}
			break
		}
		refs := s.parser.ExtractReferences(expr)
		s.graph.SetDependsOn(addr, refs)
		*rec = cellRecord{raw: content, expr: expr, refs: refs, state: stateFormulaStale}

	default:
		s.graph.SetDependsOn(addr, nil)
		number, err := strconv.ParseFloat(strings.TrimSpace(content), 64)
		if err != nil {
			*rec = cellRecord{raw: content, state: stateLiteral}
		} else {
			*rec = cellRecord{raw: content, numeric: true, state: stateLiteral, result: number}
		}
	}

	s.markDependantsStale(addr)
}

func (s *Sheet) markDependantsStale(addr contracts.Address) {
	for _, dependant := range s.graph.Dependants(addr) {
		if !s.grid.InBounds(dependant) {
			continue
		}
		rec := s.grid.at(dependant)
		if rec.expr == nil {
			// parse failures stay sticky until the cell itself is rewritten
			continue
		}
		if rec.state == stateFormulaFresh || rec.state == stateFormulaError {
			rec.state = stateFormulaStale
			rec.err = nil
		}
	}
}

// recompute brings addr and its transitive dependants up to date: one
// topological pass, each cell evaluated at most once. A cycle marks every
// member with the same CircularReferenceError and leaves the rest of the
// sheet computable.
func (s *Sheet) recompute(start contracts.Address) {
	resolve := s.recomputeResolver()

	order, err := s.graph.TopoOrderFrom(start)
	if err != nil {
		var circular *contracts.CircularReferenceError
		if errors.As(err, &circular) {
			s.markCycle(circular)
		}
		// the cycle can lie strictly among the dependants; the requested
		// cell still needs its value
		_, _ = resolve(start)
		return
	}

	for _, cell := range order {
		_, _ = resolve(cell)
	}
}

// recomputeResolver chains the materialized-value fast path with recursive
// evaluation of stale cells. Stale precedents are pulled on demand with
// in-process marking, so cycles reached through precedents are detected too.
func (s *Sheet) recomputeResolver() contracts.Resolver {
	visiting := map[contracts.Address]bool{}
	path := make([]contracts.Address, 0, 8)

	var resolve contracts.Resolver
	evaluateStale := func(addr contracts.Address) (float64, error) {
		rec := s.grid.at(addr)
		if rec.expr == nil {
			return 0, nil
		}

		if visiting[addr] {
			first := 0
			for path[first] != addr {
				first++
			}
			return 0, &contracts.CircularReferenceError{Cycle: append([]contracts.Address(nil), path[first:]...)}
		}

		visiting[addr] = true
		path = append(path, addr)
		s.evaluations++
		value, err := s.evaluator.Evaluate(rec.expr, resolve)
		path = path[:len(path)-1]
		delete(visiting, addr)

		if err != nil {
			rec.state = stateFormulaError
			rec.result = 0
			rec.err = err

			var circular *contracts.CircularReferenceError
			if errors.As(err, &circular) {
				s.markCycle(circular)
			}
			return 0, err
		}

		rec.state = stateFormulaFresh
		rec.result = value
		rec.err = nil
		return value, nil
	}

	resolve = NewResolverChain(s.cacheResolver, evaluateStale)
	return resolve
}

// cacheResolver serves already-materialized cells and signals
// UnresolvedError for stale formulas.
func (s *Sheet) cacheResolver(addr contracts.Address) (float64, error) {
	if !s.grid.InBounds(addr) {
		return 0, &contracts.BadReferenceError{Ref: addr}
	}

	rec := s.grid.at(addr)
	switch rec.state {
	case stateEmpty:
		// blank cells read as numeric zero
		return 0, nil
	case stateLiteral:
		if !rec.numeric {
			return 0, fmt.Errorf("%s: %w", addr.Label(), contracts.ValueNotNumericError)
		}
		return rec.result, nil
	case stateFormulaFresh:
		return rec.result, nil
	case stateFormulaError:
		return 0, rec.err
	}

	return 0, contracts.UnresolvedError
}

func (s *Sheet) markCycle(circular *contracts.CircularReferenceError) {
	for _, member := range circular.Cycle {
		if !s.grid.InBounds(member) {
			continue
		}
		rec := s.grid.at(member)
		if rec.expr == nil {
			continue
		}
		rec.state = stateFormulaError
		rec.result = 0
		rec.err = circular
	}
}

// healBadReferences re-arms formulas stuck on a BadReference error once all
// of their references are back in bounds.
func (s *Sheet) healBadReferences() {
	s.grid.forEach(func(addr contracts.Address, rec *cellRecord) {
		if rec.state != stateFormulaError || rec.expr == nil {
			return
		}
		var badRef *contracts.BadReferenceError
		if !errors.As(rec.err, &badRef) {
			return
		}
		for _, ref := range rec.refs {
			if !s.grid.InBounds(ref) {
				return
			}
		}
		rec.state = stateFormulaStale
		rec.err = nil
	})
}
