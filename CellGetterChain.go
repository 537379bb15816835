package main

import "gridsheet/contracts"

// NewCellGetterChain resolves through first and falls back to second
// for positions first does not know.
func NewCellGetterChain(first contracts.CellGetter, second contracts.CellGetter) contracts.CellGetter {
	if second == nil {
		return first
	}
	if first == nil {
		return second
	}

	return func(pos contracts.Position) contracts.CellInterface {
		if cell := first(pos); cell != nil {
			return cell
		}
		return second(pos)
	}
}

// NewStaticCellGetter serves cells from a fixed map. In a chain, an
// entry shadows whatever a later getter would return for the same
// position.
func NewStaticCellGetter(cells map[contracts.Position]contracts.CellInterface) contracts.CellGetter {
	return func(pos contracts.Position) contracts.CellInterface {
		if cell, ok := cells[pos]; ok {
			return cell
		}
		return nil
	}
}
