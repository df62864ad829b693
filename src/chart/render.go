package chart

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ErrNoData 没有可绘制的数据
var ErrNoData = errors.New("nothing to plot")

var (
	gridColor = color.NRGBA{R: 176, G: 176, B: 176, A: 77}
	dashes    = []vg.Length{vg.Points(6), vg.Points(4)}
)

// Line 一条时间序列曲线
type Line struct {
	Label  string
	Values []float64
	Color  color.Color
	Width  float64 // 点
}

// Marker 竖直事件标记
type Marker struct {
	At    time.Time
	Label string
	Color color.Color
}

// Spec 单张图的外观
type Spec struct {
	Title    string
	YLabel   string
	ZeroLine bool
	Markers  []Marker
	Width    vg.Length
	Height   vg.Length
}

// Render 以日期为横轴绘制多条曲线并保存，格式由文件扩展名决定(png/svg/pdf)
func Render(spec Spec, dates []time.Time, lines []Line, path string) error {
	if len(dates) == 0 || len(lines) == 0 {
		return ErrNoData
	}

	p := plot.New()
	p.Title.Text = spec.Title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.Y.Label.Text = spec.YLabel
	p.Legend.Top = true

	p.X.Tick.Marker = yearTicks{}
	p.X.Tick.Label.Rotation = math.Pi / 6
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	grid := plotter.NewGrid()
	grid.Vertical.Color = gridColor
	grid.Horizontal.Color = gridColor
	p.Add(grid)

	yMin, yMax := math.Inf(1), math.Inf(-1)
	for _, l := range lines {
		if len(l.Values) != len(dates) {
			return fmt.Errorf("line %q has %d values for %d dates", l.Label, len(l.Values), len(dates))
		}

		xy := make(plotter.XYs, len(dates))
		for i, d := range dates {
			xy[i].X = float64(d.Unix())
			xy[i].Y = l.Values[i]
			yMin = math.Min(yMin, l.Values[i])
			yMax = math.Max(yMax, l.Values[i])
		}

		line, err := plotter.NewLine(xy)
		if err != nil {
			return fmt.Errorf("创建曲线失败 %q: %w", l.Label, err)
		}
		line.LineStyle.Color = l.Color
		line.LineStyle.Width = vg.Points(l.Width)
		p.Add(line)
		if l.Label != "" {
			p.Legend.Add(l.Label, line)
		}
	}

	if spec.ZeroLine {
		zero := plotter.NewFunction(func(float64) float64 { return 0 })
		zero.Color = color.Black
		zero.Width = vg.Points(1)
		zero.Dashes = dashes
		p.Add(zero)
	}

	for _, m := range spec.Markers {
		x := float64(m.At.Unix())
		marker, err := plotter.NewLine(plotter.XYs{{X: x, Y: yMin}, {X: x, Y: yMax}})
		if err != nil {
			return fmt.Errorf("创建事件标记失败 %q: %w", m.Label, err)
		}
		marker.LineStyle.Color = m.Color
		marker.LineStyle.Width = vg.Points(1.5)
		marker.LineStyle.Dashes = dashes
		p.Add(marker)
		if m.Label != "" {
			p.Legend.Add(m.Label, marker)
		}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("创建输出目录失败: %w", err)
		}
	}

	width, height := spec.Width, spec.Height
	if width <= 0 {
		width = 14 * vg.Inch
	}
	if height <= 0 {
		height = 6 * vg.Inch
	}
	if err := p.Save(width, height, path); err != nil {
		return fmt.Errorf("保存图表失败 %s: %w", path, err)
	}
	return nil
}
