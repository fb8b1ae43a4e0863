package crud

import (
	"sort"
	"strconv"
	"strings"

	"github.com/hrmspro/hrms/internal/apiclient"
	"github.com/hrmspro/hrms/internal/catalog"
	"golang.org/x/text/cases"
)

// PageSize is the fixed number of rows per table page.
const PageSize = 10

var fold = cases.Fold()

// TableView is the search, sort and pagination state of one table. It is
// not safe for concurrent use; the engine guards it.
type TableView struct {
	columns []catalog.Column

	search   string
	sortKey  string
	sortDesc bool
	page     int
}

func NewTableView(columns []catalog.Column) *TableView {
	return &TableView{columns: columns}
}

// Filter keeps the rows where at least one column contains q, ignoring
// case. An empty q keeps everything.
func (v *TableView) Filter(rows []apiclient.Record) []apiclient.Record {
	if v.search == "" {
		return rows
	}
	needle := fold.String(v.search)
	out := make([]apiclient.Record, 0, len(rows))
	for _, r := range rows {
		for _, c := range v.columns {
			if strings.Contains(fold.String(catalog.Text(r[c.Key])), needle) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// Sorted returns a sorted copy. Numbers compare numerically, everything
// else as strings with nil as "".
func (v *TableView) Sorted(rows []apiclient.Record) []apiclient.Record {
	out := append([]apiclient.Record(nil), rows...)
	if v.sortKey == "" {
		return out
	}
	key, desc := v.sortKey, v.sortDesc
	sort.SliceStable(out, func(i, j int) bool {
		c := compare(out[i][key], out[j][key])
		if desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

// compare orders numbers before anything else, numerically among
// themselves, and everything else by its display text.
func compare(a, b any) int {
	x, xNum := number(a)
	y, yNum := number(b)
	switch {
	case xNum && yNum:
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case xNum:
		return -1
	case yNum:
		return 1
	}
	return strings.Compare(catalog.Text(a), catalog.Text(b))
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil && n != ""
	}
	return 0, false
}

// SetSearch changes the query and goes back to the first page.
func (v *TableView) SetSearch(q string) {
	v.search = q
	v.page = 0
}

// SortBy toggles direction on the current column; a new column starts
// ascending. The page index is kept.
func (v *TableView) SortBy(key string) {
	if v.sortKey == key {
		v.sortDesc = !v.sortDesc
		return
	}
	v.sortKey = key
	v.sortDesc = false
}

func (v *TableView) Reset() { v.page = 0 }

func (v *TableView) SetPage(p int) { v.page = p }

// Pages is ceil(n / PageSize).
func Pages(n int) int {
	return (n + PageSize - 1) / PageSize
}

// Clamp keeps the page index inside [0, pages-1].
func (v *TableView) Clamp(n int) int {
	last := Pages(n) - 1
	if v.page > last {
		v.page = last
	}
	if v.page < 0 {
		v.page = 0
	}
	return v.page
}

// Slice cuts the current page out of rows.
func (v *TableView) Slice(rows []apiclient.Record) []apiclient.Record {
	page := v.Clamp(len(rows))
	start := page * PageSize
	if start >= len(rows) {
		return []apiclient.Record{}
	}
	end := start + PageSize
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

type ViewState struct {
	Search   string `json:"search"`
	SortKey  string `json:"sort_key,omitempty"`
	SortDesc bool   `json:"sort_desc,omitempty"`
	Page     int    `json:"page"`
}

func (v *TableView) State() ViewState {
	return ViewState{Search: v.search, SortKey: v.sortKey, SortDesc: v.sortDesc, Page: v.page}
}
