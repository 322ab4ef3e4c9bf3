package submissions

import (
	"sort"
	"strings"
)

// SortKey selects the field a View orders by.
type SortKey string

// Direction selects ascending or descending order.
type Direction string

const (
	SortByTitle SortKey = "title"
	SortByDate  SortKey = "date"

	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// SortLabels are the user-facing names of the sort keys.
var SortLabels = map[SortKey]string{
	SortByTitle: "Title",
	SortByDate:  "Submission Date",
}

// PageSizes are the selectable page sizes, smallest first.
var PageSizes = []int{9, 18, 45}

// View is a derived read-side projection over the cache: a sort order plus
// a page size. It holds no record state of its own.
type View struct {
	SortBy       SortKey
	SortDir      Direction
	ItemsPerPage int
}

// NewView returns the default projection: newest submissions first.
func NewView() View {
	return View{
		SortBy:       SortByDate,
		SortDir:      Descending,
		ItemsPerPage: PageSizes[0],
	}
}

// Apply returns a sorted copy of records. The input is never reordered in
// place; the sort is stable so equal keys keep their cache order.
func (v View) Apply(records []Submission) []Submission {
	out := make([]Submission, len(records))
	copy(out, records)

	sort.SliceStable(out, func(i, j int) bool {
		var less bool
		switch v.SortBy {
		case SortByTitle:
			less = strings.ToLower(out[i].Title) < strings.ToLower(out[j].Title)
		default:
			less = out[i].Date < out[j].Date
		}
		if v.SortDir == Descending {
			return !less && !equalKey(v.SortBy, out[i], out[j])
		}
		return less
	})
	return out
}

// Page returns the given zero-based page of records, or an empty slice when
// the page is out of range.
func (v View) Page(records []Submission, page int) []Submission {
	size := v.ItemsPerPage
	if size <= 0 {
		size = PageSizes[0]
	}
	start := page * size
	if page < 0 || start >= len(records) {
		return []Submission{}
	}
	end := start + size
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}

// PageCount returns the number of pages needed for n records.
func (v View) PageCount(n int) int {
	size := v.ItemsPerPage
	if size <= 0 {
		size = PageSizes[0]
	}
	if n == 0 {
		return 0
	}
	return (n + size - 1) / size
}

func equalKey(key SortKey, a, b Submission) bool {
	switch key {
	case SortByTitle:
		return strings.EqualFold(a.Title, b.Title)
	default:
		return a.Date == b.Date
	}
}
