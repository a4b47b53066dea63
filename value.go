package cellmesh

import (
	"strconv"

	"github.com/Lairindil/cellmesh/coord"
)

// CellValueKind identifies which of CellValue's three variants is populated.
type CellValueKind uint8

const (
	ValueString CellValueKind = iota
	ValueNumber
	ValueError
)

// CellValue is the sum type a Cell's computed value takes: exactly one of a
// string, a number, or a formula error.
type CellValue struct {
	Kind    CellValueKind
	Str     string
	Num     float64
	FormErr *coord.FormulaError
}

func stringValue(s string) CellValue              { return CellValue{Kind: ValueString, Str: s} }
func numberValue(n float64) CellValue             { return CellValue{Kind: ValueNumber, Num: n} }
func errorValue(e *coord.FormulaError) CellValue  { return CellValue{Kind: ValueError, FormErr: e} }

// String renders the value the way PrintValues does: numbers via
// strconv.FormatFloat's shortest round-tripping form, strings verbatim,
// errors as their spreadsheet-style tag.
func (v CellValue) String() string {
	switch v.Kind {
	case ValueString:
		return v.Str
	case ValueNumber:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case ValueError:
		return v.FormErr.String()
	default:
		return ""
	}
}

// Equal reports whether two CellValues carry the same kind and payload.
func (v CellValue) Equal(other CellValue) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case ValueString:
		return v.Str == other.Str
	case ValueNumber:
		return v.Num == other.Num
	case ValueError:
		return v.FormErr.Equal(other.FormErr)
	default:
		return true
	}
}
