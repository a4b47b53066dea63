package cellmesh

import (
	"strconv"
	"strings"

	"github.com/elliotchance/orderedmap/v3"

	"github.com/Lairindil/cellmesh/coord"
	"github.com/Lairindil/cellmesh/formula"
)

// escapeChar prefixes a literal cell whose text should display without a
// leading formula-lookalike character; see formulaSign below.
const escapeChar = '\''

// formulaSign marks a cell's text as a formula.
const formulaSign = '='

type contentKind uint8

const (
	kindEmpty contentKind = iota
	kindLiteral
	kindFormula
)

// Cell is a single grid entry. It never outlives the Sheet that owns it: it
// keeps a non-owning back-pointer to that Sheet so formula evaluation can
// resolve references without every method needing a *Sheet parameter.
// Outgoing and incoming edges are keyed by Position rather than *Cell
// (Design Note 9's Option (a)) and stored in insertion order via
// orderedmap.OrderedMap so GetReferencedCells stays deterministic.
type Cell struct {
	sheet *Sheet
	pos   coord.Position

	kind contentKind
	text string      // raw text as given to Set; "" for Empty
	ast  formula.AST // non-nil only when kind == kindFormula

	cacheValid bool
	cacheValue float64
	cacheErr   *coord.FormulaError

	outgoing *orderedmap.OrderedMap[coord.Position, struct{}]
	incoming *orderedmap.OrderedMap[coord.Position, struct{}]
}

func newCell(sheet *Sheet, pos coord.Position) *Cell {
	return &Cell{
		sheet:    sheet,
		pos:      pos,
		kind:     kindEmpty,
		outgoing: orderedmap.NewOrderedMap[coord.Position, struct{}](),
		incoming: orderedmap.NewOrderedMap[coord.Position, struct{}](),
	}
}

// Set parses text into new content and, if it doesn't create a cycle,
// installs it. On failure the cell is left completely unchanged.
func (c *Cell) Set(text string) error {
	kind, ast, err := parseContent(text)
	if err != nil {
		return newOperationError(FormulaException, "formula did not parse", err)
	}

	var refs []coord.Position
	if kind == kindFormula {
		refs = formula.DistinctValidCells(ast.Cells(), c.sheet.bounds)
	}

	if c.sheet.isCircular(c.pos, refs) {
		return newOperationError(CircularDependency, c.pos.String()+" would create a cycle", nil)
	}

	c.commit(kind, text, ast, refs)
	return nil
}

// Clear replaces the cell's content with Empty. Empty content never
// references anything, so no cycle check is needed.
func (c *Cell) Clear() {
	c.commit(kindEmpty, "", nil, nil)
}

// parseContent applies the three rules from the cell content grammar:
// empty text is Empty, "=" followed by more text is a Formula, anything
// else is Literal. A bare "=" (length 1) is a Literal, not a Formula.
func parseContent(text string) (contentKind, formula.AST, error) {
	switch {
	case text == "":
		return kindEmpty, nil, nil
	case text[0] == formulaSign && len(text) > 1:
		ast, err := formula.Parse(text[1:])
		if err != nil {
			return kindEmpty, nil, err
		}
		return kindFormula, ast, nil
	default:
		return kindLiteral, nil, nil
	}
}

// commit performs the atomic swap described by the specification: sever
// old outgoing edges, install the new content, install new outgoing edges
// (materializing missing targets as Empty), invalidate this cell's cache,
// and cascade invalidation to dependents.
func (c *Cell) commit(kind contentKind, text string, ast formula.AST, refs []coord.Position) {
	oldOutgoing := make([]coord.Position, 0, c.outgoing.Len())
	for pos := range c.outgoing.AllFromFront() {
		oldOutgoing = append(oldOutgoing, pos)
	}
	for _, pos := range oldOutgoing {
		c.severOutgoing(pos)
	}

	c.kind = kind
	c.text = text
	c.ast = ast
	c.cacheValid = false
	c.cacheErr = nil

	for _, pos := range refs {
		target := c.sheet.materialize(pos)
		c.outgoing.Set(pos, struct{}{})
		target.incoming.Set(c.pos, struct{}{})
	}

	c.invalidate(true)
	c.sheet.destroyIfOrphan(c.pos)
}

// severOutgoing removes c from the incoming set of the cell at pos and lets
// the Sheet reclaim that cell if it's now an unreferenced Empty placeholder.
func (c *Cell) severOutgoing(pos coord.Position) {
	c.outgoing.Delete(pos)
	target := c.sheet.getCellIfExists(pos)
	if target == nil {
		return
	}
	target.incoming.Delete(c.pos)
	c.sheet.destroyIfOrphan(pos)
}

// invalidate drops the memoized formula result and, unless it was already
// invalid, cascades to every cell that depends on this one. force makes
// the first step unconditional even when the cache happens to already be
// empty, because the content itself just changed.
func (c *Cell) invalidate(force bool) {
	if !force && !c.cacheValid {
		return
	}
	c.cacheValid = false
	for pos := range c.incoming.AllFromFront() {
		dep := c.sheet.getCellIfExists(pos)
		if dep == nil {
			continue
		}
		dep.invalidate(false)
	}
}

// GetValue returns the cell's current value, evaluating and memoizing a
// Formula's result if the cache is empty.
func (c *Cell) GetValue() CellValue {
	switch c.kind {
	case kindEmpty:
		return stringValue("")
	case kindLiteral:
		return stringValue(unescape(c.text))
	case kindFormula:
		return c.evaluate()
	default:
		return stringValue("")
	}
}

func (c *Cell) evaluate() CellValue {
	if c.cacheValid {
		return c.cachedValue()
	}
	result, err := c.ast.Execute(c.sheet.lookup)
	if ferr, ok := err.(*coord.FormulaError); ok {
		c.cacheValid = true
		c.cacheErr = ferr
		return errorValue(ferr)
	}
	if err != nil {
		// The AST contract only raises *coord.FormulaError; anything else
		// indicates a malformed AST implementation, surfaced as #VALUE!.
		fe := coord.NewFormulaError(coord.ErrValue)
		c.cacheValid = true
		c.cacheErr = fe
		return errorValue(fe)
	}
	c.cacheValid = true
	c.cacheErr = nil
	c.cacheValue = result
	return numberValue(result)
}

func (c *Cell) cachedValue() CellValue {
	if c.cacheErr != nil {
		return errorValue(c.cacheErr)
	}
	return numberValue(c.cacheValue)
}

// GetText returns the cell's raw text: "" for Empty, the original literal
// text for Literal, and '=' plus the AST's canonical expression for
// Formula.
func (c *Cell) GetText() string {
	switch c.kind {
	case kindEmpty:
		return ""
	case kindLiteral:
		return c.text
	case kindFormula:
		return string(formulaSign) + c.ast.Expression()
	default:
		return ""
	}
}

// GetReferencedCells returns the distinct, order-preserving positions this
// cell's formula references. Empty and Literal cells reference nothing.
func (c *Cell) GetReferencedCells() []coord.Position {
	keys := make([]coord.Position, 0, c.outgoing.Len())
	for pos := range c.outgoing.AllFromFront() {
		keys = append(keys, pos)
	}
	return keys
}

// IsReferenced reports whether any other cell's formula references this one.
func (c *Cell) IsReferenced() bool {
	return c.incoming.Len() > 0
}

// isEmptyAndUnreferenced is Invariant 5's destruction condition.
func (c *Cell) isEmptyAndUnreferenced() bool {
	return c.kind == kindEmpty && c.incoming.Len() == 0
}

// unescape strips a single leading escapeChar, if present.
func unescape(text string) string {
	if strings.IndexByte(text, escapeChar) == 0 {
		return text[1:]
	}
	return text
}

// numericLookupValue converts a CellValue to the number a formula sees when
// it references the cell holding it, per the lookup contract in section
// 4.3: numbers pass through, empty strings are 0, non-empty strings must
// parse in full, and errors re-raise verbatim.
func numericLookupValue(v CellValue) (float64, error) {
	switch v.Kind {
	case ValueNumber:
		return v.Num, nil
	case ValueString:
		if v.Str == "" {
			return 0, nil
		}
		n, err := strconv.ParseFloat(v.Str, 64)
		if err != nil {
			return 0, coord.NewFormulaError(coord.ErrValue)
		}
		return n, nil
	case ValueError:
		return 0, v.FormErr
	default:
		return 0, nil
	}
}
