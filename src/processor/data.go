// data.go
package processor

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-gota/gota/dataframe"

	"PaidEmployment/src/utils"
)

// ErrColumnNotFound 图表引用的列在表中不存在
var ErrColumnNotFound = errors.New("column not found")

// Frame 封装清洗后的DataFrame及其日期索引，提供线程安全访问
type Frame struct {
	df    dataframe.DataFrame // 清洗后的数据
	dates []time.Time         // 行索引(每月第一天)
	mu    sync.RWMutex
}

func NewFrame(df dataframe.DataFrame, dates []time.Time) *Frame {
	return &Frame{df: df, dates: dates}
}

// DataFrame 获取当前DataFrame(线程安全)
func (f *Frame) DataFrame() dataframe.DataFrame {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.df
}

// Set 替换数据(监听模式下重新加载时使用)
func (f *Frame) Set(other *Frame) {
	df, dates := other.DataFrame(), other.Dates()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.df = df
	f.dates = dates
}

func (f *Frame) Nrow() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.df.Nrow()
}

func (f *Frame) Names() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.df.Names()
}

// Dates 返回日期索引的副本
func (f *Frame) Dates() []time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]time.Time, len(f.dates))
	copy(out, f.dates)
	return out
}

// Head 返回前 n 个日期
func (f *Frame) Head(n int) []time.Time {
	dates := f.Dates()
	if n > len(dates) {
		n = len(dates)
	}
	return dates[:n]
}

// Tail 返回后 n 个日期
func (f *Frame) Tail(n int) []time.Time {
	dates := f.Dates()
	if n > len(dates) {
		n = len(dates)
	}
	return dates[len(dates)-n:]
}

// Column 按组合列名取数值列
func (f *Frame) Column(name string) ([]float64, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if !utils.HasColumn(f.df, name) {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	return f.df.Col(name).Float(), nil
}

// Years 返回年份列
func (f *Frame) Years() ([]int, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.df.Col(YearColumn).Int()
}

// Months 返回月份列
func (f *Frame) Months() ([]int, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.df.Col(MonthColumn).Int()
}

// CalculateMetrics 汇总信息，用于日志
func (f *Frame) CalculateMetrics() map[string]interface{} {
	dates := f.Dates()
	metrics := map[string]interface{}{
		"rows":    f.Nrow(),
		"columns": len(f.Names()),
	}
	if len(dates) > 0 {
		metrics["first"] = dates[0].Format("2006-01-02")
		metrics["last"] = dates[len(dates)-1].Format("2006-01-02")
	}
	return metrics
}

// MissingColumns 返回给定列名中表里不存在的部分
func (f *Frame) MissingColumns(names []string) []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var missing []string
	for _, name := range names {
		if !utils.HasColumn(f.df, name) {
			missing = append(missing, name)
		}
	}
	return missing
}
