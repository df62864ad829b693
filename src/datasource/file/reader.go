// reader.go
package file

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/tealeg/xlsx"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrEmptyInput 输入文件没有任何行
var ErrEmptyInput = errors.New("input has no rows")

// ReadOptions 读取原始表格的选项
type ReadOptions struct {
	Encoding  string // utf-8 / windows-1254 / iso-8859-9
	Delimiter rune   // CSV 分隔符，默认 ','
	SheetName string // xlsx 工作表名，为空时取第一个
}

// DefaultReadOptions 返回默认读取选项
func DefaultReadOptions() ReadOptions {
	return ReadOptions{Encoding: "utf-8", Delimiter: ','}
}

// ReadRaw 读取原始表格，不解释表头，所有单元格保持字符串
func ReadRaw(filePath string, opts ReadOptions) (dataframe.DataFrame, error) {
	var (
		records [][]string
		err     error
	)

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".xlsx":
		records, err = readXLSXRecords(filePath, opts.SheetName)
	default:
		var f *os.File
		f, err = os.Open(filePath)
		if err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("打开输入文件失败: %w", err)
		}
		defer f.Close()
		records, err = ReadCSVRecords(f, opts)
	}
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	return RecordsToDataFrame(records)
}

// ReadCSVRecords 读取CSV为二维字符串，行长度不一致时以空串补齐
func ReadCSVRecords(r io.Reader, opts ReadOptions) ([][]string, error) {
	decoded, err := decodeReader(r, opts.Encoding)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(decoded)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("解析CSV失败: %w", err)
	}
	if !isText(records) {
		return nil, fmt.Errorf("输入包含无法解码的字符，请检查编码配置(当前: %q)", opts.Encoding)
	}
	return padRecords(records)
}

// RecordsToDataFrame 将二维字符串转换为无表头、全字符串列的DataFrame
func RecordsToDataFrame(records [][]string) (dataframe.DataFrame, error) {
	records, err := padRecords(records)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(false),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("转换为dataframe失败: %w", df.Err)
	}
	return df, nil
}

func padRecords(records [][]string) ([][]string, error) {
	width := 0
	for _, row := range records {
		if len(row) > width {
			width = len(row)
		}
	}
	if len(records) == 0 || width == 0 {
		return nil, ErrEmptyInput
	}
	for i, row := range records {
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			records[i] = padded
		}
	}
	return records, nil
}

// decodeReader 按编码将输入转换为UTF-8
func decodeReader(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "utf-8", "utf8":
		return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())), nil
	case "windows-1254", "cp1254":
		return transform.NewReader(r, charmap.Windows1254.NewDecoder()), nil
	case "iso-8859-9", "latin5":
		return transform.NewReader(r, charmap.ISO8859_9.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("不支持的编码: %s", encoding)
	}
}

// readXLSXRecords 使用tealeg/xlsx读取工作表
func readXLSXRecords(filePath, sheetName string) ([][]string, error) {
	xlFile, err := xlsx.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("xlsx open file false: %w", err)
	}
	if len(xlFile.Sheets) == 0 {
		return nil, fmt.Errorf("excel文件中没有工作表: %s", filePath)
	}

	sheet := xlFile.Sheets[0]
	if sheetName != "" {
		s, ok := xlFile.Sheet[sheetName]
		if !ok {
			return nil, fmt.Errorf("工作表不存在: %s", sheetName)
		}
		sheet = s
	}

	records := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		if row == nil {
			records = append(records, nil)
			continue
		}
		values := make([]string, len(row.Cells))
		for i, cell := range row.Cells {
			if cell != nil {
				values[i] = cell.String()
			}
		}
		records = append(records, values)
	}
	return records, nil
}

// isText 判断解码后的内容是否为合法UTF-8
func isText(records [][]string) bool {
	for _, row := range records {
		for _, cell := range row {
			if !utf8.ValidString(cell) || strings.ContainsRune(cell, utf8.RuneError) {
				return false
			}
		}
	}
	return true
}
