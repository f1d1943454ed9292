package combine

import (
	"gokeyword/domain/keyword"
	"gokeyword/domain/region"
)

// Categorize left joins rows onto the reference by region name. A row with
// no match keeps empty levels; a row whose region matches N records is
// emitted N times, once per record in reference order. Neither input is
// modified.
func Categorize(rows []keyword.CombinationRow, reference []region.Record) []region.CategorizedRow {
	index := indexByName(reference)

	out := make([]region.CategorizedRow, 0, len(rows))
	for _, row := range rows {
		matches := index[row.Region]
		if len(matches) == 0 {
			out = append(out, region.CategorizedRow{CombinationRow: cloneRow(row)})
			continue
		}
		for _, rec := range matches {
			out = append(out, region.CategorizedRow{
				CombinationRow: cloneRow(row),
				Levels:         rec.Levels(),
			})
		}
	}
	return out
}

// DedupeReference keeps the first record for each name, preserving order.
// Categorize fans rows out on duplicate names; callers that want a plain
// lookup dedupe the reference first.
func DedupeReference(reference []region.Record) []region.Record {
	seen := make(map[string]bool, len(reference))
	out := make([]region.Record, 0, len(reference))
	for _, rec := range reference {
		if seen[rec.Name] {
			continue
		}
		seen[rec.Name] = true
		out = append(out, rec)
	}
	return out
}

func indexByName(reference []region.Record) map[string][]region.Record {
	index := make(map[string][]region.Record, len(reference))
	for _, rec := range reference {
		index[rec.Name] = append(index[rec.Name], rec)
	}
	return index
}

// cloneRow copies the keyword slice so fanned-out rows don't share backing
// arrays with the caller's input.
func cloneRow(row keyword.CombinationRow) keyword.CombinationRow {
	kws := make([]keyword.KeywordValue, len(row.Keywords))
	copy(kws, row.Keywords)
	row.Keywords = kws
	return row
}
