package main

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"formulaSheet/contracts"
	sheet "formulaSheet/src"
)

var SheetNotFoundError = errors.New("sheet not found")

// SheetRepository holds the named sheets. A single mutex guards all access:
// reads recompute and cache results, so they need exclusivity too.
type SheetRepository struct {
	mu     sync.Mutex
	sheets map[string]contracts.Sheet

	defaultRows int
	defaultCols int
}

func NewSheetRepository(defaultRows, defaultCols int) *SheetRepository {
	return &SheetRepository{
		sheets:      map[string]contracts.Sheet{},
		defaultRows: defaultRows,
		defaultCols: defaultCols,
	}
}

// SetCell stores value in the cell, creating the sheet on first use, and
// returns the cell's freshly computed view.
func (r *SheetRepository) SetCell(sheetId string, cellId string, value string) (*contracts.Cell, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sheetId = strings.ToLower(sheetId)
	instance, ok := r.sheets[sheetId]
	if !ok {
		instance = sheet.NewSheet(r.defaultRows, r.defaultCols)
		r.sheets[sheetId] = instance
	}

	if err := instance.SetValue(cellId, value); err != nil {
		return nil, err
	}
	return instance.GetValue(cellId)
}

// EditCell is SetCell restricted to an already initialized cell of an
// existing sheet.
func (r *SheetRepository) EditCell(sheetId string, cellId string, value string) (*contracts.Cell, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	instance, err := r.sheet(sheetId)
	if err != nil {
		return nil, err
	}

	if err = instance.EditValue(cellId, value); err != nil {
		return nil, err
	}
	return instance.GetValue(cellId)
}

func (r *SheetRepository) GetCell(sheetId string, cellId string) (*contracts.Cell, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	instance, err := r.sheet(sheetId)
	if err != nil {
		return nil, err
	}

	cell, err := instance.GetValue(cellId)
	if errors.Is(err, contracts.OutOfBoundsError) {
		return nil, fmt.Errorf("%s: %w", cellId, contracts.CellNotFoundError)
	}
	if err != nil {
		return nil, err
	}
	if cell.Value == "" && cell.Err == nil {
		return nil, fmt.Errorf("%s: %w", cellId, contracts.CellNotFoundError)
	}
	return cell, nil
}

func (r *SheetRepository) DeleteCell(sheetId string, cellId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	instance, err := r.sheet(sheetId)
	if err != nil {
		return err
	}
	return instance.DeleteValue(cellId)
}

// ResizeSheet resizes the sheet, creating it when missing.
func (r *SheetRepository) ResizeSheet(sheetId string, rows, cols int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sheetId = strings.ToLower(sheetId)
	instance, ok := r.sheets[sheetId]
	if !ok {
		instance = sheet.NewSheet(r.defaultRows, r.defaultCols)
		r.sheets[sheetId] = instance
	}
	return instance.Resize(rows, cols)
}

// GetCellList returns every non-empty cell of the sheet, keyed by label.
func (r *SheetRepository) GetCellList(sheetId string) (map[string]*contracts.Cell, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	instance, err := r.sheet(sheetId)
	if err != nil {
		return nil, err
	}
	return instance.Snapshot(), nil
}

// sheet looks up an existing sheet; the caller holds the lock.
func (r *SheetRepository) sheet(sheetId string) (contracts.Sheet, error) {
	instance, ok := r.sheets[strings.ToLower(sheetId)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", strings.ToLower(sheetId), SheetNotFoundError)
	}
	return instance, nil
}
