package contracts

import (
	"errors"
	"io"
)

type SheetRepository interface {
	SetCell(sheetId string, cellId string, value string) (*Cell, error)
	GetCell(sheetId string, cellId string) (*Cell, error)
	ClearCell(sheetId string, cellId string) error
	GetCellList(sheetId string) (*CellList, error)
	GetSize(sheetId string) (Size, error)
	// PreviewCell evaluates value as if it were written at cellId
	// without committing it; the sheet is left untouched.
	PreviewCell(sheetId string, cellId string, value string) (*Cell, error)
	RenderValues(sheetId string, out io.Writer) error
	RenderTexts(sheetId string, out io.Writer) error
}

var SheetNotFoundError = errors.New("sheet not found")
