// Package keyword holds the keyword-group model used by the combination
// engine: the user-supplied lists that are multiplied against each region.
package keyword

import (
	"fmt"
	"strings"
	"unicode"

	"gokeyword/domain/core"

	"golang.org/x/text/unicode/norm"
)

// FirstGroupID is the tag of the first keyword group. The region itself is
// conceptually column A, so keyword groups start at B.
const FirstGroupID = 'B'

// KeywordGroup is one named list of candidate keywords
type KeywordGroup struct {
	ID           string   `json:"id"`
	Values       []string `json:"values"`
	PrependSpace bool     `json:"prepend_space"`
}

// KeywordValue is the value a row picked from one group
type KeywordValue struct {
	GroupID string `json:"group_id"`
	Value   string `json:"value"`
}

// CombinationRow is one region combined with one tuple of the cartesian
// product of all keyword groups.
type CombinationRow struct {
	Region       string         `json:"region"`
	Keywords     []KeywordValue `json:"keywords"`
	CombinedText string         `json:"combined_text"`
}

// Keyword returns the value chosen from the group with the given id
func (r CombinationRow) Keyword(groupID string) (string, bool) {
	for _, kv := range r.Keywords {
		if kv.GroupID == groupID {
			return kv.Value, true
		}
	}
	return "", false
}

// IsEmpty reports whether the group has no usable values
func (g KeywordGroup) IsEmpty() bool {
	return len(g.Values) == 0
}

// Column returns the output column name for the group
func (g KeywordGroup) Column() string {
	return "Keyword_" + g.ID
}

// GroupID returns the default tag for the group at position i (B, C, D, ...).
// Past Z it falls back to numbered tags.
func GroupID(i int) string {
	if i >= 0 && i <= 'Z'-FirstGroupID {
		return string(rune(FirstGroupID + i))
	}
	return fmt.Sprintf("K%d", i+1)
}

// ParseGroup builds a group from raw multi-line text, one keyword per line
func ParseGroup(id, raw string, prependSpace bool) KeywordGroup {
	return KeywordGroup{
		ID:           id,
		Values:       SplitLines(raw),
		PrependSpace: prependSpace,
	}
}

// NewGroup builds a group from already separated values. Values are
// normalized the same way ParseGroup normalizes lines.
func NewGroup(id string, values []string, prependSpace bool) KeywordGroup {
	cleaned := make([]string, 0, len(values))
	for _, v := range values {
		if v = NormalizeValue(v); v != "" {
			cleaned = append(cleaned, v)
		}
	}
	return KeywordGroup{ID: id, Values: cleaned, PrependSpace: prependSpace}
}

// SplitLines splits newline separated input, trims each line and drops blanks
func SplitLines(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		if v := NormalizeValue(line); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// NormalizeValue NFC-normalizes and trims a keyword or region value and
// strips control characters. Korean text pasted from some editors arrives
// decomposed into jamo; NFC makes it compare equal to the reference table.
func NormalizeValue(s string) string {
	s = norm.NFC.String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\t' {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// AssignIDs fills in missing group ids and rejects duplicate explicit ids.
// An unnamed group takes the tag for its position, or the next free tag
// when that one is claimed explicitly by another group.
func AssignIDs(groups []KeywordGroup) ([]KeywordGroup, error) {
	out := make([]KeywordGroup, len(groups))
	claimed := make(map[string]bool, len(groups))
	for i, g := range groups {
		g.ID = strings.TrimSpace(g.ID)
		if g.ID != "" {
			if claimed[g.ID] {
				return nil, fmt.Errorf("%w: duplicate group id %q", core.ErrInvalidKeywords, g.ID)
			}
			claimed[g.ID] = true
		}
		out[i] = g
	}

	for i := range out {
		if out[i].ID != "" {
			continue
		}
		next := i
		for claimed[GroupID(next)] {
			next++
		}
		out[i].ID = GroupID(next)
		claimed[out[i].ID] = true
	}
	return out, nil
}
