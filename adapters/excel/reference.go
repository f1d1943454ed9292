package excel

import (
	"gokeyword/domain/core"
	"gokeyword/domain/keyword"
	"gokeyword/domain/region"
)

// Column layouts accepted for reference imports. The native layout mirrors
// the table; the generated layout is a workbook exported by this tool where
// Keyword_B and Keyword_C were filled with province and district names.
var (
	nativeReferenceColumns    = [4]string{"name", "level_1", "level_2", "level_3"}
	generatedReferenceColumns = [4]string{"Region", "Keyword_B", "Keyword_C", ""}
)

// ReferenceRecords maps a sheet to reference records. Rows without a name
// or level 1 are skipped.
func ReferenceRecords(sheet *SheetData) ([]region.Record, error) {
	layout := generatedReferenceColumns
	if sheet.ColumnIndex(nativeReferenceColumns[0]) >= 0 {
		layout = nativeReferenceColumns
	}

	idx := [4]int{-1, -1, -1, -1}
	for i, col := range layout {
		if col == "" {
			continue
		}
		idx[i] = sheet.ColumnIndex(col)
		// level_2 and level_3 are optional
		if idx[i] < 0 && i < 2 {
			return nil, core.NewMissingColumnError(sheet.Name, col)
		}
	}

	cell := func(row []string, i int) string {
		if idx[i] < 0 {
			return ""
		}
		return keyword.NormalizeValue(row[idx[i]])
	}

	records := make([]region.Record, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		rec := region.Record{
			Name:   cell(row, 0),
			Level1: cell(row, 1),
			Level2: cell(row, 2),
			Level3: cell(row, 3),
		}
		if rec.Name == "" || rec.Level1 == "" {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}
