package cellmesh

import (
	"bufio"
	"io"

	"github.com/Lairindil/cellmesh/coord"
)

// Sheet is a sparse two-dimensional grid of Cells. It owns every Cell it
// creates; Cells reach back into it only through the non-owning sheet
// pointer set at construction, so the owning direction stays linear:
// Sheet -> grid -> Cell, exactly the shape Design Note 9 prefers.
type Sheet struct {
	bounds coord.Bounds
	grid   map[coord.Position]*Cell
}

// SheetOption configures a Sheet at construction time.
type SheetOption func(*Sheet)

// WithBounds overrides the default position bounds a Sheet enforces.
func WithBounds(maxRows, maxCols int) SheetOption {
	return func(s *Sheet) {
		s.bounds = coord.Bounds{MaxRows: maxRows, MaxCols: maxCols}
	}
}

// NewSheet constructs an empty Sheet, applying opts in order.
func NewSheet(opts ...SheetOption) *Sheet {
	s := &Sheet{
		bounds: coord.DefaultBounds(),
		grid:   make(map[coord.Position]*Cell),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetCell parses text and, on success, installs it at pos. A rejected edit
// leaves the Sheet unchanged: if pos had no cell before this call, the
// placeholder materialized to attempt the edit is reclaimed on failure.
func (s *Sheet) SetCell(pos coord.Position, text string) error {
	if !pos.Valid(s.bounds) {
		return newOperationError(InvalidPosition, pos.String()+" is out of bounds", nil)
	}
	err := s.materialize(pos).Set(text)
	if err != nil {
		s.destroyIfOrphan(pos)
	}
	return err
}

// GetCell returns the cell at pos, or nil if none exists there. It fails
// with InvalidPosition if pos is out of bounds.
func (s *Sheet) GetCell(pos coord.Position) (*Cell, error) {
	if !pos.Valid(s.bounds) {
		return nil, newOperationError(InvalidPosition, pos.String()+" is out of bounds", nil)
	}
	return s.grid[pos], nil
}

// GetCellPtr is an alias for GetCell kept for parity with the two-name
// read/write-handle contract; both return the same non-owning *Cell.
func (s *Sheet) GetCellPtr(pos coord.Position) (*Cell, error) {
	return s.GetCell(pos)
}

// ClearCell resets the cell at pos to Empty, destroying it if nothing
// references it afterward. Cells that reference pos are left untouched;
// they continue to see an Empty cell there.
func (s *Sheet) ClearCell(pos coord.Position) error {
	if !pos.Valid(s.bounds) {
		return newOperationError(InvalidPosition, pos.String()+" is out of bounds", nil)
	}
	cell, ok := s.grid[pos]
	if !ok {
		return nil
	}
	cell.Clear()
	return nil
}

// GetPrintableSize returns the smallest (rows, cols) rectangle, anchored at
// (0,0), that covers every existing cell.
func (s *Sheet) GetPrintableSize() coord.Size {
	var size coord.Size
	for pos := range s.grid {
		if pos.Row+1 > size.Rows {
			size.Rows = pos.Row + 1
		}
		if pos.Col+1 > size.Cols {
			size.Cols = pos.Col + 1
		}
	}
	return size
}

// PrintValues renders the printable region's computed values, tab-separated
// within a row and newline-terminated between rows.
func (s *Sheet) PrintValues(out io.Writer) error {
	return s.print(out, func(c *Cell) string { return c.GetValue().String() })
}

// PrintTexts renders the printable region's raw texts, tab-separated within
// a row and newline-terminated between rows.
func (s *Sheet) PrintTexts(out io.Writer) error {
	return s.print(out, func(c *Cell) string { return c.GetText() })
}

func (s *Sheet) print(out io.Writer, render func(*Cell) string) error {
	size := s.GetPrintableSize()
	w := bufio.NewWriter(out)
	for row := 0; row < size.Rows; row++ {
		for col := 0; col < size.Cols; col++ {
			if col > 0 {
				if err := w.WriteByte('\t'); err != nil {
					return err
				}
			}
			if cell, ok := s.grid[coord.Position{Row: row, Col: col}]; ok {
				if _, err := w.WriteString(render(cell)); err != nil {
					return err
				}
			}
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return w.Flush()
}

// materialize returns the cell at pos, creating an Empty placeholder if
// none exists yet. pos is assumed already bounds-checked by the caller.
func (s *Sheet) materialize(pos coord.Position) *Cell {
	if cell, ok := s.grid[pos]; ok {
		return cell
	}
	cell := newCell(s, pos)
	s.grid[pos] = cell
	return cell
}

// getCellIfExists is materialize's read-only counterpart, used internally
// by edge bookkeeping that must not conjure placeholders.
func (s *Sheet) getCellIfExists(pos coord.Position) *Cell {
	return s.grid[pos]
}

// destroyIfOrphan removes the cell at pos from the grid if it is Empty and
// unreferenced, per Invariant 5.
func (s *Sheet) destroyIfOrphan(pos coord.Position) {
	cell, ok := s.grid[pos]
	if !ok {
		return
	}
	if cell.isEmptyAndUnreferenced() {
		delete(s.grid, pos)
	}
}

// lookup implements the Position-to-number resolution formula.Lookup needs,
// per section 4.3: invalid positions raise Ref, absent cells yield 0,
// numbers pass through, strings must parse in full or raise Value, and
// errors re-raise verbatim.
func (s *Sheet) lookup(pos coord.Position) (float64, error) {
	if !pos.Valid(s.bounds) {
		return 0, coord.NewFormulaError(coord.ErrRef)
	}
	cell, ok := s.grid[pos]
	if !ok {
		return 0, nil
	}
	return numericLookupValue(cell.GetValue())
}

// isCircular reports whether replacing the outgoing edges of the cell at
// root with refs would introduce a cycle. It performs a non-mutating
// reachability search from every position in refs, following each reached
// cell's *existing* outgoing edges, and reports a cycle if root is ever
// reached again. A self-reference (root appearing in refs) is caught
// immediately by this same check.
func (s *Sheet) isCircular(root coord.Position, refs []coord.Position) bool {
	if len(refs) == 0 {
		return false
	}
	visited := make(map[coord.Position]bool)
	stack := append([]coord.Position(nil), refs...)
	for len(stack) > 0 {
		pos := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if pos == root {
			return true
		}
		if visited[pos] {
			continue
		}
		visited[pos] = true
		cell, ok := s.grid[pos]
		if !ok {
			continue
		}
		for next := range cell.outgoing.AllFromFront() {
			stack = append(stack, next)
		}
	}
	return false
}
