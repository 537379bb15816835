package main

import (
	"fmt"
	"io"
	"strconv"

	"gridsheet/contracts"
)

// Sheet is a sparse grid of cells and the engine's mutation entry
// point. Single-threaded: every entry point assumes exclusive access
// for the duration of the call.
type Sheet struct {
	codec *PositionCodec
	table map[contracts.Position]*Cell
}

func NewSheet(codec *PositionCodec) *Sheet {
	return &Sheet{
		codec: codec,
		table: map[contracts.Position]*Cell{},
	}
}

func (s *Sheet) SetCell(pos contracts.Position, text string) error {
	if !pos.IsValid() {
		return invalidPositionError(pos)
	}

	// the entry stays allocated even when Set rejects the edit: a
	// touched position remains a blank cell until explicitly cleared
	return s.materializeCell(pos).Set(text)
}

func (s *Sheet) GetCell(pos contracts.Position) (contracts.CellInterface, error) {
	if !pos.IsValid() {
		return nil, invalidPositionError(pos)
	}

	if cell := s.table[pos]; cell != nil {
		return cell, nil
	}
	return nil, nil
}

// ClearCell empties the cell at pos, severing its outgoing edges and
// invalidating dependants. The table entry is dropped once nothing
// references it; a blank that formulas still point at stays allocated
// so edge handles remain valid.
func (s *Sheet) ClearCell(pos contracts.Position) error {
	if !pos.IsValid() {
		return invalidPositionError(pos)
	}

	cell := s.table[pos]
	if cell == nil {
		return nil
	}

	if cell.kind != cellEmpty {
		cell.Clear()
	}

	if !cell.isReferenced() {
		delete(s.table, pos)
	}
	return nil
}

func (s *Sheet) GetPrintableSize() contracts.Size {
	size := contracts.Size{}
	for pos := range s.table {
		if pos.Row+1 > size.Rows {
			size.Rows = pos.Row + 1
		}
		if pos.Col+1 > size.Cols {
			size.Cols = pos.Col + 1
		}
	}
	return size
}

// Dependents returns every cell transitively referencing pos, in
// discovery order.
func (s *Sheet) Dependents(pos contracts.Position) []contracts.Position {
	if !pos.IsValid() {
		return nil
	}
	cell := s.table[pos]
	if cell == nil {
		return nil
	}

	alreadyFetched := map[*Cell]bool{cell: true}
	dependents := make([]contracts.Position, 0)
	queue := []*Cell{cell}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for dependant := range current.inEdges {
			if !alreadyFetched[dependant] {
				alreadyFetched[dependant] = true
				dependents = append(dependents, dependant.pos)
				queue = append(queue, dependant)
			}
		}
	}

	return dependents
}

func (s *Sheet) PrintValues(out io.Writer) {
	s.print(out, func(cell *Cell) string {
		return renderValue(cell.GetValue())
	})
}

func (s *Sheet) PrintTexts(out io.Writer) {
	s.print(out, func(cell *Cell) string {
		return cell.GetText()
	})
}

func (s *Sheet) print(out io.Writer, render func(*Cell) string) {
	size := s.GetPrintableSize()
	for row := 0; row < size.Rows; row++ {
		for col := 0; col < size.Cols; col++ {
			if col > 0 {
				fmt.Fprint(out, "\t")
			}
			if cell := s.table[contracts.Position{Row: row, Col: col}]; cell != nil {
				fmt.Fprint(out, render(cell))
			}
		}
		fmt.Fprintln(out)
	}
}

// cellGetter is the read-only lookup service handed to formula
// evaluation.
func (s *Sheet) cellGetter() contracts.CellGetter {
	return func(pos contracts.Position) contracts.CellInterface {
		if !pos.IsValid() {
			return nil
		}
		if cell := s.table[pos]; cell != nil {
			return cell
		}
		return nil
	}
}

// cellData assumes a valid position; nil when no cell exists.
func (s *Sheet) cellData(pos contracts.Position) *Cell {
	return s.table[pos]
}

// materializeCell returns the cell at pos, creating a blank one with
// empty edge sets when none exists. A freshly materialized cell has no
// in-edges, which is what keeps the materialize-after-cycle-check
// ordering sound.
func (s *Sheet) materializeCell(pos contracts.Position) *Cell {
	if cell := s.table[pos]; cell != nil {
		return cell
	}
	cell := newCell(s, pos)
	s.table[pos] = cell
	return cell
}

func invalidPositionError(pos contracts.Position) error {
	return fmt.Errorf("(%d, %d): %w", pos.Row, pos.Col, contracts.InvalidPositionError)
}

// renderValue is the display form shared by the printers and the API:
// numbers without exponent notation, errors by their code.
func renderValue(value contracts.Value) string {
	switch v := value.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return v
	case error:
		return v.Error()
	}
	return ""
}
