package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"gridsheet/contracts"
)

var _ contracts.SheetInterface = (*Sheet)(nil)

var (
	posA1 = contracts.Position{Row: 0, Col: 0}
	posB1 = contracts.Position{Row: 0, Col: 1}
	posC1 = contracts.Position{Row: 0, Col: 2}
)

func _assertEdgeInvariants(t *testing.T, sheet *Sheet) {
	t.Helper()
	for pos, cell := range sheet.table {
		if cell.kind != cellFormula {
			assert.Empty(t, cell.outEdges, "non-formula cell %v has out-edges", pos)
		}
		for outgoing := range cell.outEdges {
			assert.True(t, outgoing.inEdges[cell], "missing back-edge for %v", pos)
		}
		for incoming := range cell.inEdges {
			assert.True(t, incoming.outEdges[cell], "missing forward edge into %v", pos)
		}
	}
}

func TestSheet_SetCell(t *testing.T) {
	t.Run("literal_formula", func(t *testing.T) {
		sheet := NewSheet(NewPositionCodec())

		assert.NoError(t, sheet.SetCell(posA1, "=1+2"))

		cell, err := sheet.GetCell(posA1)
		assert.NoError(t, err)
		assert.Equal(t, 3.0, cell.GetValue())
		assert.Equal(t, "=1+2", cell.GetText())
		assert.Equal(t, contracts.Size{Rows: 1, Cols: 1}, sheet.GetPrintableSize())
	})

	t.Run("invalid_position", func(t *testing.T) {
		sheet := NewSheet(NewPositionCodec())

		err := sheet.SetCell(contracts.InvalidPosition, "5")
		assert.ErrorIs(t, err, contracts.InvalidPositionError)
		assert.Equal(t, contracts.Size{}, sheet.GetPrintableSize())
	})

	t.Run("reference_materializes_blank_cell", func(t *testing.T) {
		sheet := NewSheet(NewPositionCodec())

		assert.NoError(t, sheet.SetCell(posA1, "=B1"))

		cell, err := sheet.GetCell(posB1)
		assert.NoError(t, err)
		assert.NotNil(t, cell)
		assert.Equal(t, "", cell.GetText())
		assert.Equal(t, contracts.Size{Rows: 1, Cols: 2}, sheet.GetPrintableSize())
		_assertEdgeInvariants(t, sheet)
	})

	t.Run("replacing_formula_rewires_edges", func(t *testing.T) {
		sheet := NewSheet(NewPositionCodec())

		assert.NoError(t, sheet.SetCell(posA1, "=B1"))
		assert.NoError(t, sheet.SetCell(posA1, "=C1"))

		assert.Empty(t, sheet.cellData(posB1).inEdges)
		assert.Len(t, sheet.cellData(posC1).inEdges, 1)
		_assertEdgeInvariants(t, sheet)
	})

	t.Run("text_replacing_formula_drops_edges", func(t *testing.T) {
		sheet := NewSheet(NewPositionCodec())

		assert.NoError(t, sheet.SetCell(posA1, "=B1+C1"))
		assert.NoError(t, sheet.SetCell(posA1, "plain"))

		assert.Empty(t, sheet.cellData(posA1).outEdges)
		assert.Empty(t, sheet.cellData(posB1).inEdges)
		_assertEdgeInvariants(t, sheet)
	})
}

func TestSheet_CircularDependency(t *testing.T) {
	t.Run("two_cell_cycle_rejected", func(t *testing.T) {
		sheet := NewSheet(NewPositionCodec())

		assert.NoError(t, sheet.SetCell(posA1, "=B1"))

		err := sheet.SetCell(posB1, "=A1")
		assert.ErrorIs(t, err, contracts.CircularReferenceError)

		// B1 stays an evaluatable blank, so A1 still computes
		cell, getErr := sheet.GetCell(posA1)
		assert.NoError(t, getErr)
		assert.Equal(t, 0.0, cell.GetValue())

		b1, _ := sheet.GetCell(posB1)
		assert.NotNil(t, b1)
		assert.Equal(t, "", b1.GetText())
		_assertEdgeInvariants(t, sheet)
	})

	t.Run("self_reference_rejected", func(t *testing.T) {
		sheet := NewSheet(NewPositionCodec())

		err := sheet.SetCell(posA1, "=A1")
		assert.ErrorIs(t, err, contracts.CircularReferenceError)

		// the touched position stays allocated as a blank
		cell, _ := sheet.GetCell(posA1)
		assert.NotNil(t, cell)
		assert.Equal(t, "", cell.GetText())
	})

	t.Run("transitive_cycle_rejected", func(t *testing.T) {
		sheet := NewSheet(NewPositionCodec())

		assert.NoError(t, sheet.SetCell(posA1, "=B1"))
		assert.NoError(t, sheet.SetCell(posB1, "=C1"))

		err := sheet.SetCell(posC1, "=A1")
		assert.ErrorIs(t, err, contracts.CircularReferenceError)

		c1 := sheet.cellData(posC1)
		assert.Equal(t, "", c1.GetText())
		assert.Empty(t, c1.outEdges)
		_assertEdgeInvariants(t, sheet)
	})

	t.Run("rejected_edit_keeps_previous_formula", func(t *testing.T) {
		sheet := NewSheet(NewPositionCodec())

		assert.NoError(t, sheet.SetCell(posA1, "=B1"))
		assert.NoError(t, sheet.SetCell(posB1, "7"))

		err := sheet.SetCell(posB1, "=A1")
		assert.ErrorIs(t, err, contracts.CircularReferenceError)

		b1 := sheet.cellData(posB1)
		assert.Equal(t, "7", b1.GetText())
		assert.Equal(t, 7.0, sheet.cellData(posA1).GetValue())
		_assertEdgeInvariants(t, sheet)
	})

	t.Run("diamond_is_not_a_cycle", func(t *testing.T) {
		sheet := NewSheet(NewPositionCodec())
		posD1 := contracts.Position{Row: 0, Col: 3}

		assert.NoError(t, sheet.SetCell(posA1, "=B1+C1"))
		assert.NoError(t, sheet.SetCell(posB1, "=D1"))
		assert.NoError(t, sheet.SetCell(posC1, "=D1"))
		assert.NoError(t, sheet.SetCell(posD1, "2"))

		assert.Equal(t, 4.0, sheet.cellData(posA1).GetValue())
		_assertEdgeInvariants(t, sheet)
	})
}

func TestSheet_ErrorValues(t *testing.T) {
	t.Run("arithmetic_error_propagates", func(t *testing.T) {
		sheet := NewSheet(NewPositionCodec())

		assert.NoError(t, sheet.SetCell(posA1, "=1/0"))
		assert.NoError(t, sheet.SetCell(posB1, "=A1+1"))

		arithm := contracts.FormulaError{Category: contracts.FormulaErrorArithmetic}
		assert.Equal(t, arithm, sheet.cellData(posA1).GetValue())
		assert.Equal(t, arithm, sheet.cellData(posB1).GetValue())
	})

	t.Run("value_error_recovers_after_edit", func(t *testing.T) {
		sheet := NewSheet(NewPositionCodec())

		assert.NoError(t, sheet.SetCell(posA1, "hello"))
		assert.NoError(t, sheet.SetCell(posB1, "=A1+1"))

		assert.Equal(t, contracts.FormulaError{Category: contracts.FormulaErrorValue}, sheet.cellData(posB1).GetValue())

		assert.NoError(t, sheet.SetCell(posA1, "10"))
		assert.Equal(t, 11.0, sheet.cellData(posB1).GetValue())
	})
}

func TestSheet_ClearCell(t *testing.T) {
	t.Run("invalid_position", func(t *testing.T) {
		sheet := NewSheet(NewPositionCodec())
		assert.ErrorIs(t, sheet.ClearCell(contracts.InvalidPosition), contracts.InvalidPositionError)
	})

	t.Run("missing_cell_is_noop", func(t *testing.T) {
		sheet := NewSheet(NewPositionCodec())
		assert.NoError(t, sheet.ClearCell(posA1))
		assert.Equal(t, contracts.Size{}, sheet.GetPrintableSize())
	})

	t.Run("idempotent", func(t *testing.T) {
		sheet := NewSheet(NewPositionCodec())
		assert.NoError(t, sheet.SetCell(posA1, "5"))

		assert.NoError(t, sheet.ClearCell(posA1))
		first, _ := sheet.GetCell(posA1)
		firstSize := sheet.GetPrintableSize()

		assert.NoError(t, sheet.ClearCell(posA1))
		second, _ := sheet.GetCell(posA1)

		assert.Equal(t, first, second)
		assert.Equal(t, firstSize, sheet.GetPrintableSize())
		assert.Nil(t, first)
		assert.Equal(t, contracts.Size{}, firstSize)
	})

	t.Run("referenced_blank_stays_allocated", func(t *testing.T) {
		sheet := NewSheet(NewPositionCodec())

		assert.NoError(t, sheet.SetCell(posA1, "=B1"))
		assert.NoError(t, sheet.ClearCell(posB1))

		cell, _ := sheet.GetCell(posB1)
		assert.NotNil(t, cell)
		assert.Equal(t, contracts.Size{Rows: 1, Cols: 2}, sheet.GetPrintableSize())
		_assertEdgeInvariants(t, sheet)
	})

	t.Run("clearing_upstream_invalidates_dependents", func(t *testing.T) {
		sheet := NewSheet(NewPositionCodec())

		assert.NoError(t, sheet.SetCell(posA1, "=B1+1"))
		assert.NoError(t, sheet.SetCell(posB1, "5"))
		assert.Equal(t, 6.0, sheet.cellData(posA1).GetValue())

		assert.NoError(t, sheet.ClearCell(posB1))
		assert.False(t, sheet.cellData(posA1).cacheValid)
		assert.Equal(t, 1.0, sheet.cellData(posA1).GetValue())
		_assertEdgeInvariants(t, sheet)
	})

	t.Run("clearing_formula_severs_its_edges", func(t *testing.T) {
		sheet := NewSheet(NewPositionCodec())

		assert.NoError(t, sheet.SetCell(posA1, "=B1"))
		assert.NoError(t, sheet.ClearCell(posA1))

		a1, _ := sheet.GetCell(posA1)
		assert.Nil(t, a1)
		assert.Empty(t, sheet.cellData(posB1).inEdges)

		// the formerly referenced blank is now clearable for good
		assert.NoError(t, sheet.ClearCell(posB1))
		assert.Equal(t, contracts.Size{}, sheet.GetPrintableSize())
	})
}

func TestSheet_GetPrintableSize(t *testing.T) {
	sheet := NewSheet(NewPositionCodec())

	assert.Equal(t, contracts.Size{}, sheet.GetPrintableSize())

	assert.NoError(t, sheet.SetCell(contracts.Position{Row: 2, Col: 2}, "x"))
	assert.Equal(t, contracts.Size{Rows: 3, Cols: 3}, sheet.GetPrintableSize())

	assert.NoError(t, sheet.SetCell(contracts.Position{Row: 5, Col: 0}, "y"))
	assert.Equal(t, contracts.Size{Rows: 6, Cols: 3}, sheet.GetPrintableSize())

	assert.NoError(t, sheet.ClearCell(contracts.Position{Row: 5, Col: 0}))
	assert.Equal(t, contracts.Size{Rows: 3, Cols: 3}, sheet.GetPrintableSize())
}

func TestSheet_Dependents(t *testing.T) {
	sheet := NewSheet(NewPositionCodec())

	assert.NoError(t, sheet.SetCell(posA1, "=B1"))
	assert.NoError(t, sheet.SetCell(posC1, "=A1+B1"))

	assert.ElementsMatch(t, []contracts.Position{posA1, posC1}, sheet.Dependents(posB1))
	assert.ElementsMatch(t, []contracts.Position{posC1}, sheet.Dependents(posA1))
	assert.Empty(t, sheet.Dependents(posC1))
	assert.Nil(t, sheet.Dependents(contracts.Position{Row: 9, Col: 9}))
}

func TestSheet_Print(t *testing.T) {
	sheet := NewSheet(NewPositionCodec())

	assert.NoError(t, sheet.SetCell(posA1, "=1+2"))
	assert.NoError(t, sheet.SetCell(contracts.Position{Row: 1, Col: 1}, "'escaped"))
	assert.NoError(t, sheet.SetCell(contracts.Position{Row: 1, Col: 2}, "=1/0"))

	t.Run("values", func(t *testing.T) {
		out := &bytes.Buffer{}
		sheet.PrintValues(out)
		assert.Equal(t, "3\t\t\n\tescaped\t#ARITHM!\n", out.String())
	})

	t.Run("texts", func(t *testing.T) {
		out := &bytes.Buffer{}
		sheet.PrintTexts(out)
		assert.Equal(t, "=1+2\t\t\n\t'escaped\t=1/0\n", out.String())
	})

	t.Run("empty_sheet_prints_nothing", func(t *testing.T) {
		out := &bytes.Buffer{}
		NewSheet(NewPositionCodec()).PrintValues(out)
		assert.Equal(t, "", out.String())
	})
}

func TestSheet_FormulaTextRoundTrip(t *testing.T) {
	codec := NewPositionCodec()
	sheet := NewSheet(codec)

	assert.NoError(t, sheet.SetCell(posA1, "= b1 +  2 * c1"))

	cell, _ := sheet.GetCell(posA1)
	text := cell.GetText()
	assert.True(t, strings.HasPrefix(text, FormulaPrefix))

	reparsed, err := ParseFormula(strings.TrimPrefix(text, FormulaPrefix), codec)
	assert.NoError(t, err)
	assert.Equal(t, cell.GetReferencedCells(), reparsed.GetReferencedCells())
	assert.Equal(t, "B1+2*C1", reparsed.GetExpression())
}
