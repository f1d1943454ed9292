package combine

import (
	"gokeyword/domain/keyword"
	"gokeyword/domain/region"
)

// Fixed output columns
const (
	ColumnRegion   = "Region"
	ColumnCombined = "Combined_Keyword"
)

// Table is the flat record set handed to exporters and the API
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Columns returns the output header for the given groups:
// Region, Keyword_<id>..., Combined_Keyword, then the three hierarchy levels.
func Columns(groups []keyword.KeywordGroup) []string {
	cols := make([]string, 0, len(groups)+5)
	cols = append(cols, ColumnRegion)
	for _, g := range groups {
		cols = append(cols, g.Column())
	}
	return append(cols, ColumnCombined, region.ColumnLevel1, region.ColumnLevel2, region.ColumnLevel3)
}

// NewTable renders categorized rows in output column order
func NewTable(groups []keyword.KeywordGroup, rows []region.CategorizedRow) *Table {
	t := &Table{
		Columns: Columns(groups),
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, row := range rows {
		rec := make([]string, 0, len(t.Columns))
		rec = append(rec, row.Region)
		for _, g := range groups {
			v, _ := row.Keyword(g.ID)
			rec = append(rec, v)
		}
		rec = append(rec, row.CombinedText, row.Level1, row.Level2, row.Level3)
		t.Rows = append(t.Rows, rec)
	}
	return t
}

// Len returns the number of data rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Column returns the values of the named column, or nil when it is absent
func (t *Table) Column(name string) []string {
	col := -1
	for i, c := range t.Columns {
		if c == name {
			col = i
			break
		}
	}
	if col < 0 {
		return nil
	}
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		if col < len(r) {
			out[i] = r[col]
		}
	}
	return out
}
