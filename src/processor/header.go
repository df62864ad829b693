package processor

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// 固定列名
const (
	YearColumn  = "Yıl"
	MonthColumn = "Ay"
	DateColumn  = "Tarih"

	// Separator 组合列名各段之间的分隔符
	Separator = " | "
)

// ErrHeader 表头块不完整
var ErrHeader = errors.New("invalid header block")

// pandas 导出时为空表头生成的占位名
var unnamedPattern = regexp.MustCompile(`^Unnamed:.*`)

// isMissing 判断表头/年份单元格是否为空值
func isMissing(v string) bool {
	return v == "" || v == "NaN" || unnamedPattern.MatchString(v)
}

// ForwardFill 将空值替换为左侧(或上方)最近的非空值
func ForwardFill(values []string) []string {
	out := make([]string, len(values))
	last := ""
	for i, v := range values {
		if isMissing(v) {
			out[i] = last
			continue
		}
		out[i] = v
		last = v
	}
	return out
}

// headerSegment 只保留多行单元格的第一行并去掉首尾空白
func headerSegment(v string) string {
	if isMissing(v) {
		return ""
	}
	if i := strings.IndexByte(v, '\n'); i >= 0 {
		v = v[:i]
	}
	return strings.TrimSpace(v)
}

// FlattenHeader 将多行表头合并为单行列名
// 除最后一行外的每一行(部门、序列类型)向右前向填充，最后一行(指标)按原样使用；
// 非空段以 " | " 连接。前两列固定为年份和月份。
func FlattenHeader(rows [][]string) ([]string, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 header rows, got %d", ErrHeader, len(rows))
	}
	width := len(rows[0])
	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrHeader, i, len(row), width)
		}
	}
	if width < 2 {
		return nil, fmt.Errorf("%w: need year and month columns, got %d columns", ErrHeader, width)
	}

	filled := make([][]string, len(rows))
	last := len(rows) - 1
	for i, row := range rows {
		if i == last {
			filled[i] = row
			continue
		}
		filled[i] = ForwardFill(row)
	}

	names := make([]string, width)
	names[0] = YearColumn
	names[1] = MonthColumn
	for col := 2; col < width; col++ {
		segments := make([]string, 0, len(rows))
		for _, row := range filled {
			if s := headerSegment(row[col]); s != "" {
				segments = append(segments, s)
			}
		}
		names[col] = strings.Join(segments, Separator)
	}
	return uniqueNames(names), nil
}

// uniqueNames 重复的列名从第二次出现起加 _1、_2 后缀，第一次出现保留原名
func uniqueNames(names []string) []string {
	used := make(map[string]bool, len(names))
	for _, name := range names {
		used[name] = true
	}

	seen := make(map[string]int, len(names))
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = name
		if name == "" {
			continue
		}
		seen[name]++
		if seen[name] == 1 {
			continue
		}
		for k := seen[name] - 1; ; k++ {
			candidate := fmt.Sprintf("%s_%d", name, k)
			if !used[candidate] {
				used[candidate] = true
				seen[name] = k + 1
				out[i] = candidate
				break
			}
		}
	}
	return out
}
