package main

import (
	"fmt"
	"strings"

	"gridsheet/contracts"
)

const FormulaPrefix = "="

const EscapePrefix = "'"

type cellContentKind uint8

const (
	cellEmpty cellContentKind = iota
	cellText
	cellFormula
)

// Cell is one grid entry, owned by its Sheet. Content is a tagged
// union over {empty, text, formula}; formula cells memoize their last
// evaluation until an upstream edit drops it. Edge sets are
// non-owning: they stay valid while the referenced table entries live.
type Cell struct {
	sheet *Sheet
	pos   contracts.Position

	kind    cellContentKind
	text    string
	formula contracts.FormulaInterface

	cache      contracts.Value
	cacheValid bool

	outEdges map[*Cell]bool // cells this cell references
	inEdges  map[*Cell]bool // cells referencing this cell
}

func newCell(sheet *Sheet, pos contracts.Position) *Cell {
	return &Cell{
		sheet:    sheet,
		pos:      pos,
		outEdges: map[*Cell]bool{},
		inEdges:  map[*Cell]bool{},
	}
}

// Set parses text into a new content variant and commits it through
// the dependency protocol: cycle check first, then edge rewiring, then
// a forced invalidation of every transitive dependent. On any failure
// the previous content, edges and caches are untouched.
func (c *Cell) Set(text string) error {
	kind, formula, err := c.parseContent(text)
	if err != nil {
		return err
	}

	var referenced []contracts.Position
	if formula != nil {
		referenced = formula.GetReferencedCells()
	}

	if c.isCircularDependent(referenced) {
		return fmt.Errorf("`%s`: %w", text, contracts.CircularReferenceError)
	}

	c.kind = kind
	c.formula = formula
	c.text = ""
	if kind == cellText {
		c.text = text
	}

	c.rewireOutgoing(referenced)
	c.invalidateRecursive(map[*Cell]bool{})
	return nil
}

// Clear resets the cell to empty through the same protocol as Set,
// severing outgoing edges and invalidating dependents.
func (c *Cell) Clear() {
	_ = c.Set("")
}

func (c *Cell) parseContent(text string) (cellContentKind, contracts.FormulaInterface, error) {
	if text == "" {
		return cellEmpty, nil, nil
	}

	if strings.HasPrefix(text, FormulaPrefix) {
		formula, err := ParseFormula(strings.TrimPrefix(text, FormulaPrefix), c.sheet.codec)
		if err != nil {
			return cellEmpty, nil, err
		}
		return cellFormula, formula, nil
	}

	return cellText, nil, nil
}

// isCircularDependent reports whether wiring this cell to the
// referenced positions would close a cycle: true iff some referenced
// cell already depends on this one, i.e. is reached from this cell by
// following in-edges (this cell itself counts). Only existing cells
// participate; a cell that is yet to be materialized has no dependants
// and cannot reach anything.
func (c *Cell) isCircularDependent(referenced []contracts.Position) bool {
	if len(referenced) == 0 {
		return false
	}

	referencedCells := map[*Cell]bool{}
	for _, pos := range referenced {
		if cell := c.sheet.cellData(pos); cell != nil {
			referencedCells[cell] = true
		}
	}
	if len(referencedCells) == 0 {
		return false
	}

	visited := map[*Cell]bool{}
	toVisit := []*Cell{c}
	for len(toVisit) > 0 {
		current := toVisit[len(toVisit)-1]
		toVisit = toVisit[:len(toVisit)-1]
		if visited[current] {
			continue
		}
		visited[current] = true

		if referencedCells[current] {
			return true
		}

		for dependant := range current.inEdges {
			toVisit = append(toVisit, dependant)
		}
	}

	return false
}

// rewireOutgoing replaces the outgoing edge set with edges to the
// referenced positions, materializing blank cells for positions that
// do not exist yet.
func (c *Cell) rewireOutgoing(referenced []contracts.Position) {
	for outgoing := range c.outEdges {
		delete(outgoing.inEdges, c)
	}
	c.outEdges = map[*Cell]bool{}

	for _, pos := range referenced {
		outgoing := c.sheet.materializeCell(pos)
		c.outEdges[outgoing] = true
		outgoing.inEdges[c] = true
	}
}

// invalidateRecursive drops the cache of this cell and of every
// transitive dependant. The visited set terminates diamonds.
func (c *Cell) invalidateRecursive(visited map[*Cell]bool) {
	if visited[c] {
		return
	}
	visited[c] = true

	c.cache = nil
	c.cacheValid = false

	for dependant := range c.inEdges {
		dependant.invalidateRecursive(visited)
	}
}

func (c *Cell) GetValue() contracts.Value {
	switch c.kind {
	case cellText:
		return strings.TrimPrefix(c.text, EscapePrefix)

	case cellFormula:
		if !c.cacheValid {
			number, err := c.formula.Evaluate(c.sheet.cellGetter())
			if err != nil {
				c.cache = err.(contracts.FormulaError)
			} else {
				c.cache = number
			}
			c.cacheValid = true
		}
		return c.cache
	}

	return ""
}

func (c *Cell) GetText() string {
	switch c.kind {
	case cellText:
		return c.text
	case cellFormula:
		return FormulaPrefix + c.formula.GetExpression()
	}
	return ""
}

func (c *Cell) GetReferencedCells() []contracts.Position {
	if c.kind == cellFormula {
		return c.formula.GetReferencedCells()
	}
	return nil
}

func (c *Cell) isReferenced() bool {
	return len(c.inEdges) > 0
}
