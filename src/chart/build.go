package chart

import (
	"fmt"
	"image/color"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/plot/vg"

	"PaidEmployment/src/config"
	"PaidEmployment/src/processor"
)

// Build 按配置从表中取列，生成绘图参数
// 配置引用的列不存在时返回 processor.ErrColumnNotFound
func Build(cc config.ChartConfig, frame *processor.Frame) (Spec, []Line, error) {
	spec := Spec{
		Title:    cc.Title,
		YLabel:   cc.YLabel,
		ZeroLine: cc.ZeroLine,
	}

	for _, m := range cc.Markers {
		at, err := time.Parse("2006-01-02", m.Date)
		if err != nil {
			return Spec{}, nil, fmt.Errorf("chart %s: marker date %q: %w", cc.Name, m.Date, err)
		}
		c, err := ParseColor(m.Color, 1)
		if err != nil {
			return Spec{}, nil, fmt.Errorf("chart %s: %w", cc.Name, err)
		}
		spec.Markers = append(spec.Markers, Marker{At: at, Label: m.Label, Color: c})
	}

	lines := make([]Line, 0, len(cc.Lines))
	for _, lc := range cc.Lines {
		values, err := frame.Column(lc.Column)
		if err != nil {
			return Spec{}, nil, fmt.Errorf("chart %s: %w", cc.Name, err)
		}
		c, err := ParseColor(lc.Color, lc.Alpha)
		if err != nil {
			return Spec{}, nil, fmt.Errorf("chart %s: %w", cc.Name, err)
		}
		width := lc.Width
		if width <= 0 {
			width = 1.5
		}
		lines = append(lines, Line{Label: lc.Label, Values: values, Color: c, Width: width})
	}
	return spec, lines, nil
}

// RenderAll 渲染全部图表，返回生成的文件路径
func RenderAll(cfg *config.Config, dcfg *config.DataConfig, frame *processor.Frame) ([]string, error) {
	dates := frame.Dates()
	format := strings.TrimPrefix(strings.ToLower(cfg.Output.Format), ".")

	var paths []string
	for _, cc := range dcfg.Charts {
		spec, lines, err := Build(cc, frame)
		if err != nil {
			return paths, err
		}
		spec.Width = vg.Length(cfg.Output.WidthInch) * vg.Inch
		spec.Height = vg.Length(cfg.Output.HeightInch) * vg.Inch

		path := filepath.Join(cfg.Output.Dir, cc.Name+"."+format)
		if err := Render(spec, dates, lines, path); err != nil {
			return paths, fmt.Errorf("chart %s: %w", cc.Name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// ParseColor 解析 #rrggbb，空串为黑色；alpha 为 0 视为不透明
func ParseColor(hex string, alpha float64) (color.Color, error) {
	a := uint8(255)
	if alpha > 0 && alpha < 1 {
		a = uint8(alpha*255 + 0.5)
	}

	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if hex == "" {
		return color.NRGBA{A: a}, nil
	}
	if len(hex) != 6 {
		return nil, fmt.Errorf("invalid color %q", hex)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: a}, nil
}
