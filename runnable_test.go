package cellmesh_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lairindil/cellmesh"
)

func TestRunnableSheetChaining(t *testing.T) {
	r := cellmesh.NewRunnableSheet(cellmesh.NewSheet(), nil)
	r.Set(pos(0, 0), "2").Set(pos(0, 1), "=A1*5")
	require.NoError(t, r.Err())

	_, v := r.Get(pos(0, 1))
	require.NoError(t, r.Err())
	assert.Equal(t, cellmesh.ValueNumber, v.Kind)
	assert.Equal(t, float64(10), v.Num)
}

func TestRunnableSheetShortCircuitsOnError(t *testing.T) {
	r := cellmesh.NewRunnableSheet(cellmesh.NewSheet(), nil)
	r.Set(pos(0, 0), "=A1")
	require.Error(t, r.Err())

	// further calls are no-ops once an error is recorded.
	r.Set(pos(0, 1), "10")
	_, v := r.Get(pos(0, 1))
	assert.Equal(t, cellmesh.CellValue{}, v)
	require.Error(t, r.Err())
}

func TestRunnableSheetMustPanics(t *testing.T) {
	r := cellmesh.NewRunnableSheet(cellmesh.NewSheet(), nil)
	r.Set(pos(0, 0), "=A1")
	assert.Panics(t, func() { r.Must() })
}

func TestRunnableSheetLog(t *testing.T) {
	var logged []string
	logf := func(format string, args ...any) {
		logged = append(logged, format)
		_ = args
	}
	r := cellmesh.NewRunnableSheet(cellmesh.NewSheet(), logf)
	r.Set(pos(0, 0), "hi").Log(pos(0, 0))
	require.NoError(t, r.Err())
	assert.Len(t, logged, 1)
}
