// Package combine implements the combination-and-categorization engine:
// expanding keyword groups into a cartesian product per region and left
// joining the result onto the region hierarchy reference.
package combine

import (
	"fmt"
	"math"
	"math/bits"
	"strings"

	"gokeyword/domain/core"
	"gokeyword/domain/keyword"
)

// DefaultMaxRows caps a single generation pass
const DefaultMaxRows = 1_000_000

const preallocLimit = 1 << 20

// Generator expands regions and keyword groups into combination rows.
// The zero value has no row cap.
type Generator struct {
	// MaxRows fails generation before allocation when the expected row count
	// is larger. Zero or negative disables the cap.
	MaxRows int
}

// Batch is the output of one generation pass
type Batch struct {
	Groups   []keyword.KeywordGroup
	Rows     []keyword.CombinationRow
	Warnings []error
}

// NewGenerator creates a generator with the given row cap
func NewGenerator(maxRows int) *Generator {
	return &Generator{MaxRows: maxRows}
}

// Generate emits one row per region value and per tuple of the cartesian
// product of the groups. Regions are walked in order and the product uses
// odometer order (the last group varies fastest). Blank regions are skipped.
//
// Empty input never fails: no regions, no groups or an empty group yield an
// empty batch with ErrEmptyInput warnings. The only error is the row cap.
func (g *Generator) Generate(regions []string, groups []keyword.KeywordGroup) (*Batch, error) {
	batch := &Batch{Groups: groups}

	values := make([]string, 0, len(regions))
	for _, r := range regions {
		if r = keyword.NormalizeValue(r); r != "" {
			values = append(values, r)
		}
	}

	if len(values) == 0 {
		batch.Warnings = append(batch.Warnings, core.NewEmptyInputWarning("no region values"))
	}
	if len(groups) == 0 {
		batch.Warnings = append(batch.Warnings, core.NewEmptyInputWarning("no keyword groups"))
	}
	empty := 0
	for _, grp := range groups {
		if grp.IsEmpty() {
			empty++
			batch.Warnings = append(batch.Warnings,
				core.NewEmptyInputWarning(fmt.Sprintf("keyword group %s has no values", grp.ID)))
		}
	}
	if len(values) == 0 || len(groups) == 0 || empty > 0 {
		return batch, nil
	}

	expected, ok := ExpectedRows(len(values), groups)
	if !ok {
		return nil, core.NewRowLimitError(math.MaxUint64, g.MaxRows)
	}
	if g.MaxRows > 0 && expected > uint64(g.MaxRows) {
		return nil, core.NewRowLimitError(expected, g.MaxRows)
	}

	batch.Rows = make([]keyword.CombinationRow, 0, min(expected, preallocLimit))
	idx := make([]int, len(groups))
	for _, region := range values {
		for i := range idx {
			idx[i] = 0
		}
		for {
			batch.Rows = append(batch.Rows, buildRow(region, groups, idx))
			if !advance(idx, groups) {
				break
			}
		}
	}

	return batch, nil
}

// ExpectedRows returns regions × Π len(group.Values). ok is false on overflow.
func ExpectedRows(regions int, groups []keyword.KeywordGroup) (uint64, bool) {
	if regions <= 0 {
		return 0, true
	}
	total := uint64(regions)
	for _, grp := range groups {
		hi, lo := bits.Mul64(total, uint64(len(grp.Values)))
		if hi != 0 {
			return 0, false
		}
		total = lo
	}
	return total, true
}

// advance moves the odometer one step, last position fastest. It returns
// false once every tuple has been visited.
func advance(idx []int, groups []keyword.KeywordGroup) bool {
	for i := len(idx) - 1; i >= 0; i-- {
		idx[i]++
		if idx[i] < len(groups[i].Values) {
			return true
		}
		idx[i] = 0
	}
	return false
}

func buildRow(region string, groups []keyword.KeywordGroup, idx []int) keyword.CombinationRow {
	kws := make([]keyword.KeywordValue, len(groups))
	var sb strings.Builder
	sb.WriteString(region)
	for i, grp := range groups {
		v := grp.Values[idx[i]]
		kws[i] = keyword.KeywordValue{GroupID: grp.ID, Value: v}
		if grp.PrependSpace {
			sb.WriteByte(' ')
		}
		sb.WriteString(v)
	}
	return keyword.CombinationRow{
		Region:       region,
		Keywords:     kws,
		CombinedText: sb.String(),
	}
}

// ComposeText joins a region and keyword values the way Generate does.
// values must be aligned with groups.
func ComposeText(region string, groups []keyword.KeywordGroup, values []string) string {
	var sb strings.Builder
	sb.WriteString(region)
	for i, grp := range groups {
		if i >= len(values) {
			break
		}
		if grp.PrependSpace {
			sb.WriteByte(' ')
		}
		sb.WriteString(values[i])
	}
	return sb.String()
}
