package contracts

import "errors"

// CellGetter resolves a position to its cell, nil when no cell exists
// there. It is the read-only lookup service handed to formula
// evaluation and must not mutate the sheet.
type CellGetter func(Position) CellInterface

// SheetInterface is the engine's mutation and read entry point. Every
// call assumes exclusive access for its duration; concurrent callers
// serialize through an external lock.
type SheetInterface interface {
	SetCell(pos Position, text string) error
	// GetCell returns the cell at pos, nil when none exists.
	GetCell(pos Position) (CellInterface, error)
	ClearCell(pos Position) error
	GetPrintableSize() Size
}

var InvalidPositionError = errors.New("invalid position")
