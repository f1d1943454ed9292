package excel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gokeyword/domain/core"
	"gokeyword/domain/keyword"

	"github.com/xuri/excelize/v2"
)

// Workbook is a parsed spreadsheet with its sheets in file order
type Workbook struct {
	name   string
	order  []string
	sheets map[string]*SheetData
}

// OpenWorkbook reads an .xlsx or .csv file from disk
func OpenWorkbook(path string) (*Workbook, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("workbook not found: %s", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()
	return ReadWorkbook(f, filepath.Base(path))
}

// ReadWorkbook parses a workbook from r. filename picks the format: .csv is
// read as a single sheet named after the file, anything else as xlsx.
func ReadWorkbook(r io.Reader, filename string) (*Workbook, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == ".csv" {
		return readCSVWorkbook(r, filename)
	}
	return readExcelWorkbook(r, filename)
}

func readExcelWorkbook(r io.Reader, filename string) (*Workbook, error) {
	startTime := time.Now()
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	wb := &Workbook{name: filename, sheets: make(map[string]*SheetData)}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", name, err)
		}
		wb.add(newSheetData(name, rows))
	}
	log.Printf("[Workbook] %s opened in %.2fms (%d sheets)",
		filename, float64(time.Since(startTime).Nanoseconds())/1e6, len(wb.order))

	return wb, nil
}

func readCSVWorkbook(r io.Reader, filename string) (*Workbook, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}

	name := strings.TrimSuffix(filename, filepath.Ext(filename))
	wb := &Workbook{name: filename, sheets: make(map[string]*SheetData)}
	wb.add(newSheetData(name, rows))
	log.Printf("[Workbook] %s read (%d rows)", filename, len(rows))
	return wb, nil
}

func (wb *Workbook) add(sheet *SheetData) {
	wb.order = append(wb.order, sheet.Name)
	wb.sheets[sheet.Name] = sheet
}

// Name returns the file name the workbook was read from
func (wb *Workbook) Name() string {
	return wb.name
}

// SheetNames returns sheet names in workbook order
func (wb *Workbook) SheetNames() []string {
	out := make([]string, len(wb.order))
	copy(out, wb.order)
	return out
}

// Sheet returns the named sheet or a missing sheet error
func (wb *Workbook) Sheet(name string) (*SheetData, error) {
	sheet, ok := wb.sheets[name]
	if !ok {
		return nil, core.NewMissingSheetError(name)
	}
	return sheet, nil
}

// Summaries describes every sheet in workbook order
func (wb *Workbook) Summaries() []SheetSummary {
	out := make([]SheetSummary, 0, len(wb.order))
	for _, name := range wb.order {
		s := wb.sheets[name]
		out = append(out, SheetSummary{Name: name, Headers: s.Headers, RowCount: len(s.Rows)})
	}
	return out
}

// newSheetData splits raw rows into a header and padded data rows. Blank
// headers become "Unnamed: <i>" and repeated ones get a ".<n>" suffix so
// every column stays addressable by name.
func newSheetData(name string, rows [][]string) *SheetData {
	sheet := &SheetData{Name: name}
	if len(rows) == 0 {
		return sheet
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}

	seen := make(map[string]int, width)
	sheet.Headers = make([]string, width)
	for i := 0; i < width; i++ {
		h := ""
		if i < len(rows[0]) {
			h = strings.TrimSpace(rows[0][i])
		}
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		if n := seen[h]; n > 0 {
			seen[h] = n + 1
			h = fmt.Sprintf("%s.%d", h, n)
		} else {
			seen[h] = 1
		}
		sheet.Headers[i] = h
	}

	sheet.Rows = make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		padded := make([]string, width)
		for j, cell := range row {
			padded[j] = strings.TrimSpace(cell)
		}
		sheet.Rows = append(sheet.Rows, padded)
	}
	return sheet
}

// ColumnIndex returns the position of the named column or -1
func (s *SheetData) ColumnIndex(name string) int {
	for i, h := range s.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// Column returns every value of the named column, blanks included
func (s *SheetData) Column(name string) ([]string, error) {
	idx := s.ColumnIndex(name)
	if idx < 0 {
		return nil, core.NewMissingColumnError(s.Name, name)
	}
	out := make([]string, len(s.Rows))
	for i, row := range s.Rows {
		out[i] = row[idx]
	}
	return out, nil
}

// RegionValues walks the sheet row by row and, within a row, the selected
// columns in the given order, returning the non-blank cells.
func (s *SheetData) RegionValues(columns []string) ([]string, error) {
	idx := make([]int, len(columns))
	for i, c := range columns {
		if idx[i] = s.ColumnIndex(c); idx[i] < 0 {
			return nil, core.NewMissingColumnError(s.Name, c)
		}
	}

	var out []string
	for _, row := range s.Rows {
		for _, j := range idx {
			if v := keyword.NormalizeValue(row[j]); v != "" {
				out = append(out, v)
			}
		}
	}
	return out, nil
}

// CollectRegions gathers region values from each selection in order
func CollectRegions(wb *Workbook, selections []SheetSelection) ([]string, error) {
	var out []string
	for _, sel := range selections {
		sheet, err := wb.Sheet(sel.Sheet)
		if err != nil {
			return nil, err
		}
		if len(sel.Columns) == 0 {
			return nil, fmt.Errorf("%w: no columns selected for sheet %q", core.ErrMissingColumn, sel.Sheet)
		}
		values, err := sheet.RegionValues(sel.Columns)
		if err != nil {
			return nil, err
		}
		out = append(out, values...)
	}
	return out, nil
}

// CellString coerces a loosely typed cell (JSON or spreadsheet) to text.
// Integral floats lose their ".0", nil and NaN become blank.
func CellString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if math.IsNaN(t) {
			return ""
		}
		if t == math.Trunc(t) && !math.IsInf(t, 0) {
			return strconv.FormatFloat(t, 'f', -1, 64)
		}
		return strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
