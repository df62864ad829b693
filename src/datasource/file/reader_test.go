package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

func TestReadCSVRecordsPadsRaggedRows(t *testing.T) {
	input := "\ufeffYıl,Ay,Sanayi\n2009,1,5.2\n* Dipnot\n"
	records, err := ReadCSVRecords(strings.NewReader(input), DefaultReadOptions())
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, []string{"Yıl", "Ay", "Sanayi"}, records[0])
	assert.Equal(t, []string{"* Dipnot", "", ""}, records[2])
}

func TestReadCSVRecordsWindows1254(t *testing.T) {
	encoded, err := charmap.Windows1254.NewEncoder().String("İnşaat;Ücretli\n1;2\n")
	require.NoError(t, err)

	records, err := ReadCSVRecords(strings.NewReader(encoded), ReadOptions{Encoding: "windows-1254", Delimiter: ';'})
	require.NoError(t, err)
	assert.Equal(t, []string{"İnşaat", "Ücretli"}, records[0])
}

func TestReadCSVRecordsRejectsWrongEncoding(t *testing.T) {
	encoded, err := charmap.Windows1254.NewEncoder().String("İnşaat\n")
	require.NoError(t, err)

	_, err = ReadCSVRecords(strings.NewReader(encoded), DefaultReadOptions())
	assert.Error(t, err)

	_, err = ReadCSVRecords(strings.NewReader("a\n"), ReadOptions{Encoding: "ebcdic"})
	assert.Error(t, err)
}

func TestReadCSVRecordsEmpty(t *testing.T) {
	_, err := ReadCSVRecords(strings.NewReader(""), DefaultReadOptions())
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestReadRawCSVKeepsStrings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.csv")
	require.NoError(t, os.WriteFile(path, []byte(",,Sanayi\nYıl,Ay,x\n,,y\n2009,1,5.2\n"), 0644))

	df, err := ReadRaw(path, DefaultReadOptions())
	require.NoError(t, err)
	assert.Equal(t, 4, df.Nrow())
	assert.Equal(t, 3, df.Ncol())

	records := df.Records()
	assert.Equal(t, []string{"2009", "1", "5.2"}, records[4])
}

func TestReadRawXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "C1", "Sanayi"))
	require.NoError(t, f.SetCellValue("Sheet1", "A4", "2009"))
	require.NoError(t, f.SetCellValue("Sheet1", "B4", "1"))
	require.NoError(t, f.SetCellValue("Sheet1", "C4", "5.2"))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	df, err := ReadRaw(path, DefaultReadOptions())
	require.NoError(t, err)
	records := df.Records()
	require.Len(t, records, 5)
	assert.Equal(t, "Sanayi", records[1][2])
	assert.Equal(t, []string{"2009", "1", "5.2"}, records[4])

	_, err = ReadRaw(path, ReadOptions{SheetName: "Yok"})
	assert.Error(t, err)
}

func TestFileMonitorTriggersOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.csv")
	require.NoError(t, os.WriteFile(path, []byte("a\n"), 0644))

	monitor, err := NewFileMonitor(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hits := make(chan string, 4)
	done := make(chan error, 1)
	go func() {
		done <- monitor.Watch(ctx, func(p string) { hits <- p })
	}()

	time.Sleep(50 * time.Millisecond)
	other := filepath.Join(filepath.Dir(path), "other.csv")
	require.NoError(t, os.WriteFile(other, []byte("b\n"), 0644))
	require.NoError(t, os.WriteFile(path, []byte("a\nb\n"), 0644))

	select {
	case p := <-hits:
		abs, _ := filepath.Abs(path)
		assert.Equal(t, abs, p)
	case <-time.After(5 * time.Second):
		t.Fatal("no change event for the watched file")
	}

	cancel()
	assert.NoError(t, <-done)
}
