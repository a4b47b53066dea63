package formula

import (
	"strconv"

	"github.com/Lairindil/cellmesh/coord"
)

// Lookup resolves a referenced position to the number a formula should use
// in its place. Implementations raise a *coord.FormulaError for reference,
// value, or (from inside AST.Execute) division errors; those are caught by
// the engine and become the formula's cached value rather than a Go-level
// failure.
type Lookup func(pos coord.Position) (float64, error)

// AST is the contract the engine relies on for a parsed formula: it can be
// executed against a Lookup, rendered back to canonical text, and asked for
// the positions it references. This mirrors the "external AST" boundary
// described by the engine's specification even though, in this module, the
// implementation lives one package away rather than in a separate library.
type AST interface {
	Execute(lookup Lookup) (float64, error)
	Expression() string
	Cells() []coord.Position
}

// NumberNode is a numeric literal.
type NumberNode struct {
	Value float64
	Text  string // original source text, for round-tripping "1.50" faithfully
}

func (n *NumberNode) Execute(Lookup) (float64, error) { return n.Value, nil }
func (n *NumberNode) Expression() string               { return n.Text }
func (n *NumberNode) Cells() []coord.Position          { return nil }

// CellRefNode is a single A1-style cell reference.
type CellRefNode struct {
	Pos  coord.Position
	Text string // canonical "A1"-form text
}

func (n *CellRefNode) Execute(lookup Lookup) (float64, error) { return lookup(n.Pos) }
func (n *CellRefNode) Expression() string                     { return n.Text }
func (n *CellRefNode) Cells() []coord.Position                { return []coord.Position{n.Pos} }

// BinaryOp identifies a binary arithmetic operator.
type BinaryOp byte

const (
	OpAdd BinaryOp = '+'
	OpSub BinaryOp = '-'
	OpMul BinaryOp = '*'
	OpDiv BinaryOp = '/'
)

// BinaryOpNode applies Op to Left and Right.
type BinaryOpNode struct {
	Op          BinaryOp
	Left, Right AST
}

func (n *BinaryOpNode) Execute(lookup Lookup) (float64, error) {
	left, err := n.Left.Execute(lookup)
	if err != nil {
		return 0, err
	}
	right, err := n.Right.Execute(lookup)
	if err != nil {
		return 0, err
	}
	switch n.Op {
	case OpAdd:
		return left + right, nil
	case OpSub:
		return left - right, nil
	case OpMul:
		return left * right, nil
	case OpDiv:
		if right == 0 {
			return 0, coord.NewFormulaError(coord.ErrDiv0)
		}
		return left / right, nil
	default:
		return 0, coord.NewFormulaError(coord.ErrValue)
	}
}

func (n *BinaryOpNode) Expression() string {
	return n.Left.Expression() + string(n.Op) + n.Right.Expression()
}

func (n *BinaryOpNode) Cells() []coord.Position {
	return append(n.Left.Cells(), n.Right.Cells()...)
}

// UnaryOpNode applies a unary sign to Operand. Only '-' and '+' occur.
type UnaryOpNode struct {
	Op      byte
	Operand AST
}

func (n *UnaryOpNode) Execute(lookup Lookup) (float64, error) {
	v, err := n.Operand.Execute(lookup)
	if err != nil {
		return 0, err
	}
	if n.Op == '-' {
		return -v, nil
	}
	return v, nil
}

func (n *UnaryOpNode) Expression() string {
	return string(n.Op) + n.Operand.Expression()
}

func (n *UnaryOpNode) Cells() []coord.Position { return n.Operand.Cells() }

// ParenNode preserves an explicit parenthesization for round-tripping.
type ParenNode struct {
	Inner AST
}

func (n *ParenNode) Execute(lookup Lookup) (float64, error) { return n.Inner.Execute(lookup) }
func (n *ParenNode) Expression() string                     { return "(" + n.Inner.Expression() + ")" }
func (n *ParenNode) Cells() []coord.Position                { return n.Inner.Cells() }

// DistinctValidCells filters a raw, possibly duplicated and possibly
// out-of-bounds Cells() list down to the distinct, order-preserving, valid
// positions the engine's specification requires of GetReferencedCells.
func DistinctValidCells(raw []coord.Position, bounds coord.Bounds) []coord.Position {
	seen := make(map[coord.Position]struct{}, len(raw))
	out := make([]coord.Position, 0, len(raw))
	for _, p := range raw {
		if !p.Valid(bounds) {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// cellRefToPosition maps a lexed "LETTERS+DIGITS" cell-reference token to a
// zero-based Position.
func cellRefToPosition(text string) coord.Position {
	letters, digits := splitCellRef(text)
	col := 0
	for _, r := range letters {
		col = col*26 + int(r-'A'+1)
	}
	col--
	row, _ := strconv.Atoi(digits)
	row--
	return coord.Position{Row: row, Col: col}
}
