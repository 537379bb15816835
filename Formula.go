package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"

	"gridsheet/contracts"
)

// Formula is a parsed formula body. The AST comes from the expr-lang
// parser, restricted to the cell grammar: number literals, cell
// references, unary + -, binary + - * /.
type Formula struct {
	root       ast.Node
	codec      *PositionCodec
	referenced []contracts.Position
}

const (
	precedenceAdditive = iota + 1
	precedenceMultiplicative
	precedenceUnary
	precedenceAtom
)

func ParseFormula(body string, codec *PositionCodec) (*Formula, error) {
	tree, err := parser.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", contracts.FormulaSyntaxError, err.Error())
	}

	formula := &Formula{root: tree.Node, codec: codec}
	if err = formula.validate(tree.Node); err != nil {
		return nil, err
	}

	formula.referenced = formula.extractReferencedCells()
	return formula, nil
}

// validate restricts the expr AST to the cell grammar before any
// evaluation can happen; everything else is a parse failure.
func (f *Formula) validate(node ast.Node) error {
	switch n := node.(type) {
	case *ast.IntegerNode, *ast.FloatNode:
		return nil

	case *ast.IdentifierNode:
		if _, wellFormed := f.codec.Parse(n.Value); !wellFormed {
			return fmt.Errorf("%w: `%s` is not a cell reference", contracts.FormulaSyntaxError, n.Value)
		}
		return nil

	case *ast.UnaryNode:
		if n.Operator != "+" && n.Operator != "-" {
			return fmt.Errorf("%w: unsupported operator `%s`", contracts.FormulaSyntaxError, n.Operator)
		}
		return f.validate(n.Node)

	case *ast.BinaryNode:
		switch n.Operator {
		case "+", "-", "*", "/":
		default:
			return fmt.Errorf("%w: unsupported operator `%s`", contracts.FormulaSyntaxError, n.Operator)
		}
		if err := f.validate(n.Left); err != nil {
			return err
		}
		return f.validate(n.Right)
	}

	return fmt.Errorf("%w: unsupported expression", contracts.FormulaSyntaxError)
}

type referencedCellsVisitor struct {
	codec *PositionCodec
	seen  map[contracts.Position]bool
	cells []contracts.Position
}

func (v *referencedCellsVisitor) Visit(node *ast.Node) {
	identifierNode, ok := (*node).(*ast.IdentifierNode)
	if !ok {
		return
	}

	pos, _ := v.codec.Parse(identifierNode.Value)
	if !pos.IsValid() || v.seen[pos] {
		return
	}

	v.seen[pos] = true
	v.cells = append(v.cells, pos)
}

// extractReferencedCells walks the AST left to right, keeping the
// first occurrence of each valid position. Out-of-bounds references
// stay in the tree and surface as #REF! at evaluation.
func (f *Formula) extractReferencedCells() []contracts.Position {
	visitor := &referencedCellsVisitor{
		codec: f.codec,
		seen:  map[contracts.Position]bool{},
		cells: make([]contracts.Position, 0),
	}
	ast.Walk(&f.root, visitor)
	return visitor.cells
}

func (f *Formula) GetReferencedCells() []contracts.Position {
	return f.referenced
}

func (f *Formula) Evaluate(getter contracts.CellGetter) (float64, error) {
	return f.eval(f.root, getter)
}

func (f *Formula) eval(node ast.Node, getter contracts.CellGetter) (float64, error) {
	switch n := node.(type) {
	case *ast.IntegerNode:
		return float64(n.Value), nil

	case *ast.FloatNode:
		return n.Value, nil

	case *ast.IdentifierNode:
		return f.resolveReference(n.Value, getter)

	case *ast.UnaryNode:
		operand, err := f.eval(n.Node, getter)
		if err != nil {
			return 0, err
		}
		if n.Operator == "-" {
			operand = -operand
		}
		return operand, nil

	case *ast.BinaryNode:
		left, err := f.eval(n.Left, getter)
		if err != nil {
			return 0, err
		}
		right, err := f.eval(n.Right, getter)
		if err != nil {
			return 0, err
		}

		var result float64
		switch n.Operator {
		case "+":
			result = left + right
		case "-":
			result = left - right
		case "*":
			result = left * right
		case "/":
			result = left / right
		}

		if math.IsInf(result, 0) || math.IsNaN(result) {
			return 0, contracts.FormulaError{Category: contracts.FormulaErrorArithmetic}
		}
		return result, nil
	}

	// unreachable after validate
	return 0, contracts.FormulaError{Category: contracts.FormulaErrorValue}
}

// resolveReference coerces a referenced cell to a number: absent and
// empty cells count as 0, text must parse entirely as a number, an
// error value propagates unchanged.
func (f *Formula) resolveReference(cellId string, getter contracts.CellGetter) (float64, error) {
	pos, _ := f.codec.Parse(cellId)
	if !pos.IsValid() {
		return 0, contracts.FormulaError{Category: contracts.FormulaErrorRef}
	}

	var cell contracts.CellInterface
	if getter != nil {
		cell = getter(pos)
	}
	if cell == nil {
		return 0, nil
	}

	switch value := cell.GetValue().(type) {
	case float64:
		return value, nil

	case string:
		if value == "" {
			return 0, nil
		}
		number, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, contracts.FormulaError{Category: contracts.FormulaErrorValue}
		}
		return number, nil

	case contracts.FormulaError:
		return 0, value
	}

	return 0, contracts.FormulaError{Category: contracts.FormulaErrorValue}
}

func (f *Formula) GetExpression() string {
	var out strings.Builder
	f.printNode(&out, f.root)
	return out.String()
}

func (f *Formula) printNode(out *strings.Builder, node ast.Node) {
	switch n := node.(type) {
	case *ast.IntegerNode:
		out.WriteString(strconv.Itoa(n.Value))

	case *ast.FloatNode:
		out.WriteString(strconv.FormatFloat(n.Value, 'g', -1, 64))

	case *ast.IdentifierNode:
		out.WriteString(strings.ToUpper(n.Value))

	case *ast.UnaryNode:
		out.WriteString(n.Operator)
		f.printOperand(out, n.Node, precedenceUnary, false)

	case *ast.BinaryNode:
		precedence := operatorPrecedence(n.Operator)
		f.printOperand(out, n.Left, precedence, false)
		out.WriteString(n.Operator)
		// the right operand of - and / keeps parens on equal precedence:
		// 1-(2-3) is not 1-2-3
		f.printOperand(out, n.Right, precedence, n.Operator == "-" || n.Operator == "/")
	}
}

func (f *Formula) printOperand(out *strings.Builder, node ast.Node, parentPrecedence int, strict bool) {
	precedence := nodePrecedence(node)
	if precedence < parentPrecedence || (strict && precedence == parentPrecedence) {
		out.WriteByte('(')
		f.printNode(out, node)
		out.WriteByte(')')
		return
	}
	f.printNode(out, node)
}

func operatorPrecedence(operator string) int {
	if operator == "*" || operator == "/" {
		return precedenceMultiplicative
	}
	return precedenceAdditive
}

func nodePrecedence(node ast.Node) int {
	switch n := node.(type) {
	case *ast.UnaryNode:
		return precedenceUnary
	case *ast.BinaryNode:
		return operatorPrecedence(n.Operator)
	}
	return precedenceAtom
}
