package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"gridsheet/contracts"
)

// SheetRepository owns every named sheet and serializes access to the
// single-threaded engine. Reads evaluate formulas lazily and fill
// caches, so even read paths take the exclusive lock.
type SheetRepository struct {
	mu                sync.Mutex
	sheets            map[string]*Sheet
	codec             *PositionCodec
	webhookDispatcher contracts.WebhookDispatcher
}

func NewSheetRepository(codec *PositionCodec, webhookDispatcher contracts.WebhookDispatcher) *SheetRepository {
	return &SheetRepository{
		sheets:            map[string]*Sheet{},
		codec:             codec,
		webhookDispatcher: webhookDispatcher,
	}
}

func (s *SheetRepository) SetCell(sheetId string, cellId string, value string) (*contracts.Cell, error) {
	canonicalSheetId := strings.ToLower(sheetId)

	pos, err := s.parseCellId(cellId)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sheet := s.sheets[canonicalSheetId]
	if sheet == nil {
		sheet = NewSheet(s.codec)
		s.sheets[canonicalSheetId] = sheet
	}

	if err = sheet.SetCell(pos, value); err != nil {
		return nil, err
	}

	cell := s.cellResponse(sheet, pos)

	if s.webhookDispatcher != nil {
		changed := []*contracts.Cell{cell}
		for _, dependentPos := range sheet.Dependents(pos) {
			changed = append(changed, s.cellResponse(sheet, dependentPos))
		}
		s.webhookDispatcher.Notify(canonicalSheetId, changed)
	}

	return cell, nil
}

func (s *SheetRepository) GetCell(sheetId string, cellId string) (*contracts.Cell, error) {
	pos, err := s.parseCellId(cellId)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sheet, err := s.findSheet(sheetId)
	if err != nil {
		return nil, err
	}

	stored, err := sheet.GetCell(pos)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("%s: %w", cellId, contracts.CellNotFoundError)
	}

	return s.cellResponse(sheet, pos), nil
}

func (s *SheetRepository) ClearCell(sheetId string, cellId string) error {
	pos, err := s.parseCellId(cellId)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sheet, err := s.findSheet(sheetId)
	if err != nil {
		return err
	}

	return sheet.ClearCell(pos)
}

func (s *SheetRepository) GetCellList(sheetId string) (*contracts.CellList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sheet, err := s.findSheet(sheetId)
	if err != nil {
		return nil, err
	}

	cellList := contracts.CellList{}
	for pos := range sheet.table {
		cellList[s.codec.Format(pos)] = s.cellResponse(sheet, pos)
	}
	return &cellList, nil
}

func (s *SheetRepository) GetSize(sheetId string) (contracts.Size, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sheet, err := s.findSheet(sheetId)
	if err != nil {
		return contracts.Size{}, err
	}

	return sheet.GetPrintableSize(), nil
}

// PreviewCell evaluates value as if it were written at cellId, without
// committing anything. The target cell resolves as blank during the
// evaluation, so a self-referencing candidate coerces to 0 instead of
// reading its own stale content.
func (s *SheetRepository) PreviewCell(sheetId string, cellId string, value string) (*contracts.Cell, error) {
	pos, err := s.parseCellId(cellId)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sheet, err := s.findSheet(sheetId)
	if err != nil {
		return nil, err
	}

	cell := &contracts.Cell{
		Value:        value,
		CanonicalKey: s.codec.Format(pos),
	}

	if !strings.HasPrefix(value, FormulaPrefix) {
		cell.Result = strings.TrimPrefix(value, EscapePrefix)
		return cell, nil
	}

	formula, err := ParseFormula(strings.TrimPrefix(value, FormulaPrefix), s.codec)
	if err != nil {
		return nil, err
	}

	overlay := NewStaticCellGetter(map[contracts.Position]contracts.CellInterface{
		pos: &Cell{},
	})
	getter := NewCellGetterChain(overlay, sheet.cellGetter())

	number, evalErr := formula.Evaluate(getter)
	if evalErr != nil {
		cell.Result = renderValue(evalErr)
	} else {
		cell.Result = renderValue(number)
	}
	return cell, nil
}

func (s *SheetRepository) RenderValues(sheetId string, out io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sheet, err := s.findSheet(sheetId)
	if err != nil {
		return err
	}

	sheet.PrintValues(out)
	return nil
}

func (s *SheetRepository) RenderTexts(sheetId string, out io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sheet, err := s.findSheet(sheetId)
	if err != nil {
		return err
	}

	sheet.PrintTexts(out)
	return nil
}

func (s *SheetRepository) parseCellId(cellId string) (contracts.Position, error) {
	pos, wellFormed := s.codec.Parse(cellId)
	if !wellFormed || !pos.IsValid() {
		return contracts.InvalidPosition, fmt.Errorf("cell_id `%s`: %w", cellId, contracts.InvalidPositionError)
	}
	return pos, nil
}

// findSheet assumes the caller holds the lock.
func (s *SheetRepository) findSheet(sheetId string) (*Sheet, error) {
	sheet := s.sheets[strings.ToLower(sheetId)]
	if sheet == nil {
		return nil, fmt.Errorf("%s: %w", sheetId, contracts.SheetNotFoundError)
	}
	return sheet, nil
}

func (s *SheetRepository) cellResponse(sheet *Sheet, pos contracts.Position) *contracts.Cell {
	cell := &contracts.Cell{CanonicalKey: s.codec.Format(pos)}

	stored, _ := sheet.GetCell(pos)
	if stored != nil {
		cell.Value = stored.GetText()
		cell.Result = renderValue(stored.GetValue())
	}
	return cell
}
