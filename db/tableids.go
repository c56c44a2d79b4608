package db

import (
	"fmt"
	"sort"
	"strings"
)

// TableIDs collects sets of record IDs grouped by upper-cased table
// name, e.g. while tracking which rows a duplication has touched.
type TableIDs struct {
	data map[string]map[int64]struct{}
}

// NewTableIDs creates an empty collection.
func NewTableIDs() *TableIDs {
	return &TableIDs{data: map[string]map[int64]struct{}{}}
}

// Add records IDs for a table.
func (t *TableIDs) Add(table string, ids ...int64) {
	table = strings.ToUpper(table)
	set, ok := t.data[table]
	if !ok {
		set = map[int64]struct{}{}
		t.data[table] = set
	}
	for _, id := range ids {
		set[id] = struct{}{}
	}
}

// Table returns the IDs recorded for a table, sorted ascending. An
// unknown table yields an empty slice.
func (t *TableIDs) Table(table string) []int64 {
	set := t.data[strings.ToUpper(table)]
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Tables returns the recorded table names, sorted.
func (t *TableIDs) Tables() []string {
	names := make([]string, 0, len(t.data))
	for n := range t.data {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (t *TableIDs) String() string {
	var b strings.Builder
	b.WriteString("{")
	for i, n := range t.Tables() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %v", n, t.Table(n))
	}
	b.WriteString("}")
	return b.String()
}
