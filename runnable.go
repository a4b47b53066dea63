package cellmesh

import "github.com/Lairindil/cellmesh/coord"

// RunnableSheet provides a chainable interface over Sheet, tracking the
// first error encountered so a caller can compose several edits and check
// the outcome once at the end. Grounded on the teacher's
// RunnableSpreadsheet: every method is a no-op once an error is recorded.
type RunnableSheet struct {
	sheet *Sheet
	err   error
	logf  func(string, ...any)
}

// NewRunnableSheet wraps sheet in a RunnableSheet. logf is used by Log; a
// nil logf makes Log a no-op.
func NewRunnableSheet(sheet *Sheet, logf func(string, ...any)) *RunnableSheet {
	return &RunnableSheet{sheet: sheet, logf: logf}
}

// Set sets a cell's text (chainable).
func (r *RunnableSheet) Set(pos coord.Position, text string) *RunnableSheet {
	if r.err != nil {
		return r
	}
	r.err = r.sheet.SetCell(pos, text)
	return r
}

// Clear clears a cell (chainable).
func (r *RunnableSheet) Clear(pos coord.Position) *RunnableSheet {
	if r.err != nil {
		return r
	}
	r.err = r.sheet.ClearCell(pos)
	return r
}

// Get retrieves a cell's value (chainable). Returns the zero CellValue once
// an error has been recorded.
func (r *RunnableSheet) Get(pos coord.Position) (*RunnableSheet, CellValue) {
	if r.err != nil {
		return r, CellValue{}
	}
	cell, err := r.sheet.GetCell(pos)
	if err != nil {
		r.err = err
		return r, CellValue{}
	}
	if cell == nil {
		return r, stringValue("")
	}
	return r, cell.GetValue()
}

// Log writes the cell's value at pos through logf (chainable).
func (r *RunnableSheet) Log(pos coord.Position) *RunnableSheet {
	if r.err != nil || r.logf == nil {
		return r
	}
	_, v := r.Get(pos)
	r.logf("%s: %s", pos, v.String())
	return r
}

// Err returns the first error recorded by the chain, if any.
func (r *RunnableSheet) Err() error {
	return r.err
}

// Must panics if the chain has recorded an error; otherwise it is a no-op
// that returns r, matching the teacher's fail-fast helper for examples and
// tests.
func (r *RunnableSheet) Must() *RunnableSheet {
	if r.err != nil {
		panic(r.err)
	}
	return r
}

// Sheet returns the underlying Sheet.
func (r *RunnableSheet) Sheet() *Sheet {
	return r.sheet
}
