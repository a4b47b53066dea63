package formula_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lairindil/cellmesh/coord"
	"github.com/Lairindil/cellmesh/formula"
)

func constLookup(values map[coord.Position]float64) formula.Lookup {
	return func(pos coord.Position) (float64, error) {
		if v, ok := values[pos]; ok {
			return v, nil
		}
		return 0, nil
	}
}

func TestParseArithmetic(t *testing.T) {
	cases := []struct {
		expr string
		want float64
	}{
		{"1+2", 3},
		{"2*3+4", 10},
		{"2+3*4", 14},
		{"(2+3)*4", 20},
		{"-5+2", -3},
		{"10/2/5", 1},
		{"2*-3", -6},
	}
	for _, tc := range cases {
		ast, err := formula.Parse(tc.expr)
		require.NoError(t, err, tc.expr)
		got, err := ast.Execute(constLookup(nil))
		require.NoError(t, err, tc.expr)
		assert.Equal(t, tc.want, got, tc.expr)
	}
}

func TestParseCellReferences(t *testing.T) {
	ast, err := formula.Parse("A1+B2*2")
	require.NoError(t, err)

	values := map[coord.Position]float64{
		{Row: 0, Col: 0}: 5,
		{Row: 1, Col: 1}: 3,
	}
	got, err := ast.Execute(constLookup(values))
	require.NoError(t, err)
	assert.Equal(t, float64(11), got)

	assert.Equal(t, []coord.Position{{Row: 0, Col: 0}, {Row: 1, Col: 1}}, ast.Cells())
	assert.Equal(t, "A1+B2*2", ast.Expression())
}

func TestParseLowercaseCellReferenceNormalizes(t *testing.T) {
	ast, err := formula.Parse("a1")
	require.NoError(t, err)
	assert.Equal(t, "A1", ast.Expression())
}

func TestExecuteDivisionByZero(t *testing.T) {
	ast, err := formula.Parse("1/0")
	require.NoError(t, err)
	_, err = ast.Execute(constLookup(nil))
	require.Error(t, err)
	ferr, ok := err.(*coord.FormulaError)
	require.True(t, ok)
	assert.Equal(t, coord.ErrDiv0, ferr.Kind)
}

func TestParseErrors(t *testing.T) {
	for _, expr := range []string{"1+", "(1+2", "1 2", "@@"} {
		_, err := formula.Parse(expr)
		assert.Error(t, err, expr)
	}
}

func TestExpressionRoundTrip(t *testing.T) {
	for _, expr := range []string{"1+2*3", "(1+2)*3", "-A1+B2", "10/2/5"} {
		ast, err := formula.Parse(expr)
		require.NoError(t, err)
		assert.Equal(t, expr, ast.Expression())
	}
}

func TestDistinctValidCells(t *testing.T) {
	bounds := coord.DefaultBounds()
	raw := []coord.Position{
		{Row: 0, Col: 0},
		{Row: 0, Col: 0},
		{Row: -1, Col: 0},
		{Row: 1, Col: 1},
	}
	got := formula.DistinctValidCells(raw, bounds)
	assert.Equal(t, []coord.Position{{Row: 0, Col: 0}, {Row: 1, Col: 1}}, got)
}
