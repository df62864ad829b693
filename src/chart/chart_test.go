package chart

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PaidEmployment/src/config"
	"PaidEmployment/src/processor"
)

func monthly(n int) []time.Time {
	dates := make([]time.Time, n)
	for i := range dates {
		dates[i] = processor.MonthStart(2019, 1+i)
	}
	return dates
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#006400", 0)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0, G: 100, B: 0, A: 255}, c)

	c, err = ParseColor("0000ff", 0.6)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{B: 255, A: 153}, c)

	c, err = ParseColor("", 1)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{A: 255}, c)

	_, err = ParseColor("#12", 1)
	assert.Error(t, err)
	_, err = ParseColor("#zzzzzz", 1)
	assert.Error(t, err)
}

func TestYearTicks(t *testing.T) {
	min := float64(processor.MonthStart(2009, 1).Unix())
	max := float64(processor.MonthStart(2011, 6).Unix())

	ticks := yearTicks{}.Ticks(min, max)
	require.Len(t, ticks, 3)
	assert.Equal(t, "2009", ticks[0].Label)
	assert.Equal(t, "2011", ticks[2].Label)

	short := yearTicks{}.Ticks(
		float64(processor.MonthStart(2020, 3).Unix()),
		float64(processor.MonthStart(2020, 5).Unix()),
	)
	require.Len(t, short, 3)
	assert.Equal(t, "2020-03", short[0].Label)
}

func TestRenderWritesImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "trend.png")
	dates := monthly(24)

	values := make([]float64, len(dates))
	for i := range values {
		values[i] = float64(i - 10)
	}
	err := Render(Spec{
		Title:    "Trend",
		YLabel:   "Çalışan Sayısı",
		ZeroLine: true,
		Markers:  []Marker{{At: processor.MonthStart(2020, 4), Label: "Pandemi", Color: color.NRGBA{R: 255, A: 255}}},
	}, dates, []Line{{Label: "Toplam", Values: values, Color: color.Black, Width: 2}}, path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRenderRejectsBadInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.png")
	assert.ErrorIs(t, Render(Spec{}, nil, []Line{{}}, path), ErrNoData)
	assert.ErrorIs(t, Render(Spec{}, monthly(2), nil, path), ErrNoData)
	assert.Error(t, Render(Spec{}, monthly(2), []Line{{Values: []float64{1}}}, path))
}

func TestBuildAndRenderAll(t *testing.T) {
	dates := monthly(3)
	df := dataframe.New(
		series.New([]float64{1, 2, 3}, series.Float, "A | Mevsim | Sayı"),
		series.New([]float64{3, 2, 1}, series.Float, "A | Ham | Sayı"),
	)
	frame := processor.NewFrame(df, dates)

	dcfg := &config.DataConfig{Charts: []config.ChartConfig{{
		Name:  "a",
		Title: "A",
		Lines: []config.LineConfig{
			{Column: "A | Ham | Sayı", Label: "Ham", Color: "#0000ff", Alpha: 0.6},
			{Column: "A | Mevsim | Sayı", Label: "Mevsim", Color: "#ff0000", Width: 2},
		},
		Markers: []config.MarkerConfig{{Date: "2019-02-01", Label: "Olay", Color: "#ff0000"}},
	}}}

	spec, lines, err := Build(dcfg.Charts[0], frame)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, []float64{3, 2, 1}, lines[0].Values)
	assert.Equal(t, 1.5, lines[0].Width)
	require.Len(t, spec.Markers, 1)
	assert.Equal(t, processor.MonthStart(2019, 2), spec.Markers[0].At)

	cfg := config.Default()
	cfg.Output.Dir = t.TempDir()
	cfg.Output.Format = "svg"
	paths, err := RenderAll(cfg, dcfg, frame)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(cfg.Output.Dir, "a.svg")}, paths)
	assert.FileExists(t, paths[0])

	dcfg.Charts[0].Lines[0].Column = "Yok"
	_, err = RenderAll(cfg, dcfg, frame)
	assert.ErrorIs(t, err, processor.ErrColumnNotFound)

	dcfg.Charts[0].Lines[0].Column = "A | Ham | Sayı"
	dcfg.Charts[0].Markers[0].Date = "01.04.2020"
	_, _, err = Build(dcfg.Charts[0], frame)
	assert.Error(t, err)
}
