package contracts

import "errors"

// FormulaInterface is a parsed formula body (the text after the
// formula sign).
type FormulaInterface interface {
	// Evaluate computes the formula against the given lookup. A non-nil
	// error is always a FormulaError; structural failures cannot occur
	// after a successful parse.
	Evaluate(getter CellGetter) (float64, error)
	// GetReferencedCells returns the valid referenced positions in
	// first-occurrence order, deduplicated.
	GetReferencedCells() []Position
	// GetExpression returns the canonical spelling of the formula,
	// parenthesized only where precedence requires.
	GetExpression() string
}

var FormulaSyntaxError = errors.New("formula syntax error")

var CircularReferenceError = errors.New("circular reference detected")
