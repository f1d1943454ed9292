package main

import (
	"fmt"
	"os"
	"strings"

	"gokeyword/adapters/excel"
	"gokeyword/domain/keyword"
)

// parseSelection parses "Sheet:ColA,ColB" into a sheet selection
func parseSelection(raw string) (excel.SheetSelection, error) {
	sheet, cols, ok := strings.Cut(raw, ":")
	sheet = strings.TrimSpace(sheet)
	if !ok || sheet == "" {
		return excel.SheetSelection{}, fmt.Errorf("selection %q must look like Sheet:Column[,Column]", raw)
	}

	sel := excel.SheetSelection{Sheet: sheet}
	for _, c := range strings.Split(cols, ",") {
		if c = strings.TrimSpace(c); c != "" {
			sel.Columns = append(sel.Columns, c)
		}
	}
	if len(sel.Columns) == 0 {
		return excel.SheetSelection{}, fmt.Errorf("selection %q names no columns", raw)
	}
	return sel, nil
}

// parseKeywordFlag parses "ID=text" or "ID=@file". Inline text may use a
// literal \n to separate keywords. The prefix before "=" is an ID only when
// it looks like a group tag (B, C2, K27); otherwise the whole value is text,
// so "a=b" is the keyword "a=b". An empty prefix ("=x=y") forces text.
func parseKeywordFlag(raw string, readFile func(string) ([]byte, error)) (id, text string, err error) {
	if readFile == nil {
		readFile = os.ReadFile
	}

	id, text = "", raw
	if prefix, rest, ok := strings.Cut(raw, "="); ok {
		prefix = strings.TrimSpace(prefix)
		if prefix == "" || isGroupTag(prefix) {
			id, text = prefix, rest
		}
	}

	if path, isFile := strings.CutPrefix(text, "@"); isFile {
		data, err := readFile(path)
		if err != nil {
			return "", "", fmt.Errorf("failed to read keyword file %s: %w", path, err)
		}
		return id, string(data), nil
	}
	return id, strings.ReplaceAll(text, `\n`, "\n"), nil
}

// buildGroups turns --keywords flags into groups. IDs listed in noSpace get
// PrependSpace false; everything else defaults to true.
func buildGroups(flags []string, noSpace []string, readFile func(string) ([]byte, error)) ([]keyword.KeywordGroup, error) {
	skip := make(map[string]bool, len(noSpace))
	for _, id := range noSpace {
		skip[strings.TrimSpace(id)] = true
	}

	groups := make([]keyword.KeywordGroup, 0, len(flags))
	for _, raw := range flags {
		id, text, err := parseKeywordFlag(raw, readFile)
		if err != nil {
			return nil, err
		}
		groups = append(groups, keyword.ParseGroup(id, text, true))
	}

	groups, err := keyword.AssignIDs(groups)
	if err != nil {
		return nil, err
	}
	for i := range groups {
		groups[i].PrependSpace = !skip[groups[i].ID]
	}
	return groups, nil
}

// isGroupTag reports whether s is a short uppercase tag such as B or K27
func isGroupTag(s string) bool {
	if len(s) == 0 || len(s) > 8 || s[0] < 'A' || s[0] > 'Z' {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
