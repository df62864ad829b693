package processor

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// ErrNoRows 清洗后没有任何数据行
var ErrNoRows = errors.New("no data rows after cleaning")

// 年份允许范围
const (
	minYear = 1
	maxYear = 9999
)

// CleanOptions 清洗选项
type CleanOptions struct {
	HeaderRows int // 表头行数，默认 3
}

// CleanReport 清洗过程统计
type CleanReport struct {
	Rows      int // 保留的行数
	Dropped   int // 因年份或月份无法解析而丢弃的行数(脚注等)
	Zeroed    int // 被置为 0 的数据单元格数
	Unordered int // 日期比上一行早的次数
}

// ParseNumber 将文本解析为数值，空白、无法解析、NaN 或 ±Inf 返回 false
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// CoerceOrZero 无法解析的值一律视为 0
// 注意: "未发布" 与 "发布值为 0" 在结果中无法区分
func CoerceOrZero(s string) float64 {
	v, _ := ParseNumber(s)
	return v
}

// MonthStart 由年、月得到当月第一天
func MonthStart(year, month int) time.Time {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
}

// Clean 将原始表格清洗为带日期索引的数值表
func Clean(raw dataframe.DataFrame, opts CleanOptions) (*Frame, CleanReport, error) {
	var report CleanReport
	if raw.Err != nil {
		return nil, report, raw.Err
	}
	headerRows := opts.HeaderRows
	if headerRows <= 0 {
		headerRows = 3
	}

	records := rawRows(raw)
	if len(records) < headerRows {
		return nil, report, fmt.Errorf("%w: %d rows, header needs %d", ErrHeader, len(records), headerRows)
	}

	names, err := FlattenHeader(records[:headerRows])
	if err != nil {
		return nil, report, err
	}
	width := len(names)

	var (
		years  []int
		months []int
		dates  []string
		index  []time.Time
		values = make([][]float64, width)
	)

	lastYear := ""
	for i, row := range records[headerRows:] {
		// 年份只在每年第一行出现，向下填充
		yearText := row[0]
		if isMissing(yearText) {
			yearText = lastYear
		} else {
			lastYear = yearText
		}

		y, okYear := ParseNumber(yearText)
		m, okMonth := ParseNumber(row[1])
		if !okYear || !okMonth {
			report.Dropped++
			continue
		}

		// 先在浮点上检查范围，超出 int 的值转换结果未定义
		if y < minYear || y >= maxYear+1 {
			return nil, report, fmt.Errorf("row %d: year %v out of range", headerRows+i+1, y)
		}
		if m < 1 || m >= 13 {
			return nil, report, fmt.Errorf("row %d: month %v out of range", headerRows+i+1, m)
		}
		year, month := int(y), int(m)

		date := MonthStart(year, month)
		if n := len(index); n > 0 && date.Before(index[n-1]) {
			report.Unordered++
		}

		years = append(years, year)
		months = append(months, month)
		dates = append(dates, date.Format("2006-01-02"))
		index = append(index, date)

		for col := 2; col < width; col++ {
			if _, ok := ParseNumber(row[col]); !ok {
				report.Zeroed++
			}
			values[col] = append(values[col], CoerceOrZero(row[col]))
		}
	}

	if len(index) == 0 {
		return nil, report, ErrNoRows
	}
	report.Rows = len(index)

	columns := make([]series.Series, 0, width+1)
	columns = append(columns,
		series.New(years, series.Int, YearColumn),
		series.New(months, series.Int, MonthColumn),
	)
	for col := 2; col < width; col++ {
		columns = append(columns, series.New(values[col], series.Float, names[col]))
	}
	columns = append(columns, series.New(dates, series.String, DateColumn))

	df := dataframe.New(columns...)
	if df.Err != nil {
		return nil, report, fmt.Errorf("构建清洗后的dataframe失败: %w", df.Err)
	}

	return NewFrame(df, index), report, nil
}

// rawRows 返回原始表格的行(去掉gota自动生成的列名行)
func rawRows(df dataframe.DataFrame) [][]string {
	records := df.Records()
	if len(records) == 0 {
		return nil
	}
	return records[1:]
}
