package chart

import (
	"strconv"
	"time"

	"gonum.org/v1/plot"
)

// yearTicks 每年一月一日一个刻度，标签只显示年份
// 横轴值为 Unix 秒
type yearTicks struct{}

func (yearTicks) Ticks(min, max float64) []plot.Tick {
	start := time.Unix(int64(min), 0).UTC()
	end := time.Unix(int64(max), 0).UTC()

	var ticks []plot.Tick
	for y := start.Year(); y <= end.Year(); y++ {
		v := float64(time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC).Unix())
		if v < min || v > max {
			continue
		}
		ticks = append(ticks, plot.Tick{Value: v, Label: strconv.Itoa(y)})
	}
	if len(ticks) > 0 {
		return ticks
	}

	// 不足一年时按月
	for t := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC); !t.After(end); t = t.AddDate(0, 1, 0) {
		v := float64(t.Unix())
		if v < min {
			continue
		}
		ticks = append(ticks, plot.Tick{Value: v, Label: t.Format("2006-01")})
	}
	if len(ticks) == 0 {
		ticks = append(ticks, plot.Tick{Value: min, Label: start.Format("2006-01-02")})
	}
	return ticks
}
