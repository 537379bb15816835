package contracts

import "errors"

// CellInterface is the read surface of a single grid cell.
type CellInterface interface {
	// GetValue returns the cell's evaluated value: the raw text with a
	// leading escape sign stripped for text cells, "" for empty cells,
	// a number or a FormulaError for formula cells.
	GetValue() Value
	// GetText returns the text as entered (formula cells render their
	// canonical expression behind the formula sign).
	GetText() string
	GetReferencedCells() []Position
}

// Cell is the API representation of a cell: the text as entered and
// the rendered evaluation result.
type Cell struct {
	Value        string `json:"value"`
	Result       string `json:"result"`
	CanonicalKey string `json:"-"`
}

type CellList map[string]*Cell

var CellNotFoundError = errors.New("cell not found")
