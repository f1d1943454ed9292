package region

import "gokeyword/domain/keyword"

// Hierarchy column labels used in exported tables
const (
	ColumnLevel1 = "광역시도"
	ColumnLevel2 = "시군구"
	ColumnLevel3 = "읍면동"
)

// Record is one entry of the administrative hierarchy reference table.
// Name is the join key and is not guaranteed unique.
type Record struct {
	ID     int64  `json:"id" db:"id"`
	Name   string `json:"name" db:"name"`
	Level1 string `json:"level_1" db:"level_1"`
	Level2 string `json:"level_2" db:"level_2"`
	Level3 string `json:"level_3" db:"level_3"`
}

// Levels holds the three hierarchy fields attached to a categorized row
type Levels struct {
	Level1 string `json:"level_1"`
	Level2 string `json:"level_2"`
	Level3 string `json:"level_3"`
}

// Levels returns the record's hierarchy fields
func (r Record) Levels() Levels {
	return Levels{Level1: r.Level1, Level2: r.Level2, Level3: r.Level3}
}

// CategorizedRow is a generated combination enriched with hierarchy fields.
// Levels are empty when no reference record matched the region.
type CategorizedRow struct {
	keyword.CombinationRow
	Levels
}

// Matched reports whether any hierarchy field was filled in
func (r CategorizedRow) Matched() bool {
	return r.Level1 != "" || r.Level2 != "" || r.Level3 != ""
}
