package utils

import (
	"path/filepath"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestContainsAndHasColumn(t *testing.T) {
	assert.True(t, Contains([]int{1, 2, 3}, 2))
	assert.False(t, Contains([]string{"a"}, "b"))

	df := dataframe.New(series.New([]int{2009}, series.Int, "Yıl"))
	assert.True(t, HasColumn(df, "Yıl"))
	assert.False(t, HasColumn(df, "Ay"))
}

func TestSaveToExcel(t *testing.T) {
	df := dataframe.New(
		series.New([]int{2009, 2009}, series.Int, "Yıl"),
		series.New([]float64{5.2, 0}, series.Float, "Sanayi | Yıllık değişim"),
	)
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, SaveToExcel(df, path, "Veri"))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Veri")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Yıl", "Sanayi | Yıllık değişim"}, rows[0])
	assert.Equal(t, []string{"2009", "5.2"}, rows[1])
}
