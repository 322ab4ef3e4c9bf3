package submissions_test

import (
	"testing"

	"github.com/cznethub/go-catalog-client/submissions"
	"github.com/stretchr/testify/require"
)

func viewRecords() []submissions.Submission {
	return []submissions.Submission{
		record("a", "Lake levels", 300),
		record("b", "Aquifer recharge", 100),
		record("c", "Snowpack survey", 200),
	}
}

func TestViewDefaults(t *testing.T) {
	v := submissions.NewView()
	require.Equal(t, submissions.SortByDate, v.SortBy)
	require.Equal(t, submissions.Descending, v.SortDir)
	require.Equal(t, submissions.PageSizes[0], v.ItemsPerPage)
}

func TestViewSortByDateDescending(t *testing.T) {
	v := submissions.NewView()
	sorted := v.Apply(viewRecords())

	require.Equal(t, []string{"a", "c", "b"}, ids(sorted))
}

func TestViewSortByTitleAscending(t *testing.T) {
	v := submissions.NewView()
	v.SortBy = submissions.SortByTitle
	v.SortDir = submissions.Ascending

	sorted := v.Apply(viewRecords())
	require.Equal(t, []string{"b", "a", "c"}, ids(sorted))
}

func TestViewSortIsStableForEqualKeys(t *testing.T) {
	recs := []submissions.Submission{
		record("x", "Same", 100),
		record("y", "Same", 100),
	}
	v := submissions.NewView()
	v.SortBy = submissions.SortByTitle
	v.SortDir = submissions.Descending

	require.Equal(t, []string{"x", "y"}, ids(v.Apply(recs)))
}

func TestViewDoesNotMutateInput(t *testing.T) {
	recs := viewRecords()
	submissions.NewView().Apply(recs)
	require.Equal(t, []string{"a", "b", "c"}, ids(recs))
}

func TestViewPaging(t *testing.T) {
	var recs []submissions.Submission
	for i := 0; i < 12; i++ {
		recs = append(recs, record(string(rune('a'+i)), "t", int64(i)))
	}
	v := submissions.NewView() // page size 9

	require.Len(t, v.Page(recs, 0), 9)
	require.Len(t, v.Page(recs, 1), 3)
	require.Empty(t, v.Page(recs, 2))
	require.Empty(t, v.Page(recs, -1))
	require.Equal(t, 2, v.PageCount(len(recs)))
	require.Equal(t, 0, v.PageCount(0))
}

func ids(recs []submissions.Submission) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.ID)
	}
	return out
}
