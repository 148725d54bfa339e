package listview

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	Name     string
	Location string
	Type     string
	Status   string
	Date     time.Time
}

var rowView = Definition[row]{
	Search: func(r row) []string { return []string{r.Name, r.Location} },
	Categories: map[string]func(row) string{
		"type":   func(r row) string { return r.Type },
		"status": func(r row) string { return r.Status },
	},
	Date: func(r row) time.Time { return r.Date },
}

func day(d int) time.Time { return time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC) }

var rows = []row{
	{Name: "Parenting Circle", Location: "Leeds", Type: "workshop", Status: "open", Date: day(3)},
	{Name: "Baby Massage", Location: "York", Type: "class", Status: "open", Date: day(10)},
	{Name: "Dads Group", Location: "leeds central", Type: "group", Status: "closed", Date: day(1)},
	{Name: "Sleep Clinic", Location: "Hull", Type: "workshop", Status: "closed", Date: day(10)},
}

func titles(rs []row) []string {
	out := []string{}
	for _, r := range rs {
		out = append(out, r.Name)
	}
	return out
}

func TestMatches(t *testing.T) {
	tests := []struct {
		name   string
		fields []string
		search string
		want   bool
	}{
		{"empty search", []string{"x"}, "", true},
		{"blank search is literal", []string{"x"}, "   ", false},
		{"spaces are kept", []string{"Jane Doe"}, " doe", true},
		{"leading space needs a word break", []string{"doe"}, " doe", false},
		{"case insensitive", []string{"Jane Doe"}, "jANE", true},
		{"second field", []string{"Jane", "jane@example.org"}, "example", true},
		{"substring", []string{"Perinatal Support"}, "natal sup", true},
		{"no match", []string{"Jane", "Leeds"}, "york", false},
		{"no fields", nil, "a", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.fields, tt.search))
		})
	}
}

func TestFilterSearch(t *testing.T) {
	got := rowView.Filter(rows, Query{Search: "LEEDS"})
	assert.Equal(t, []string{"Parenting Circle", "Dads Group"}, titles(got))
}

func TestFilterIffProperty(t *testing.T) {
	for _, search := range []string{"", "e", "leeds", "clinic", "zzz", "Y"} {
		got := rowView.Filter(rows, Query{Search: search})
		for _, r := range rows {
			want := Matches([]string{r.Name, r.Location}, search)
			assert.Equal(t, want, containsRow(got, r), "search %q row %q", search, r.Name)
		}
	}
}

func containsRow(rs []row, r row) bool {
	for _, x := range rs {
		if x == r {
			return true
		}
	}
	return false
}

func TestFilterCategoriesAreAnded(t *testing.T) {
	got := rowView.Filter(rows, Query{Filters: map[string][]string{
		"type":   {"workshop", "class"},
		"status": {"open"},
	}})
	assert.Equal(t, []string{"Parenting Circle", "Baby Massage"}, titles(got))

	got = rowView.Filter(rows, Query{
		Search:  "clinic",
		Filters: map[string][]string{"status": {"open"}},
	})
	assert.Empty(t, got)
}

func TestFilterIgnoresEmptyAndUnknownCategories(t *testing.T) {
	got := rowView.Filter(rows, Query{Filters: map[string][]string{
		"type":   {},
		"colour": {"red"},
		"status": nil,
	}})
	assert.Len(t, got, len(rows))
}

func TestFilterKeepsInsertionOrderWithoutSort(t *testing.T) {
	got := rowView.Filter(rows, Query{})
	assert.Equal(t, titles(rows), titles(got))
}

func TestSortByDateDescendingIsStable(t *testing.T) {
	got := rowView.Filter(rows, Query{SortByDate: true})
	assert.Equal(t, []string{"Baby Massage", "Sleep Clinic", "Parenting Circle", "Dads Group"}, titles(got))
}

func TestApplyPaginates(t *testing.T) {
	page := rowView.Apply(rows, Query{Page: 2, Limit: 3})
	assert.Equal(t, []string{"Sleep Clinic"}, titles(page.Items))
	assert.Equal(t, Pagination{CurrentPage: 2, Limit: 3, Total: 4, TotalPages: 2}, page.Pagination)

	page = rowView.Apply(rows, Query{Page: 9, Limit: 500})
	assert.Empty(t, page.Items)
	assert.Equal(t, DefaultLimit, page.Pagination.Limit)
	assert.Equal(t, 1, page.Pagination.TotalPages)
}

func TestApplyHugePageIsEmpty(t *testing.T) {
	values, err := url.ParseQuery("page=9223372036854775807&limit=2")
	require.NoError(t, err)

	page := rowView.Apply(rows, ParseQuery(values, nil))
	assert.Empty(t, page.Items)
	assert.Equal(t, Pagination{CurrentPage: 9223372036854775807, Limit: 2, Total: 4, TotalPages: 2}, page.Pagination)

	page = rowView.Apply(rows, Query{Page: 3, Limit: 2})
	assert.Empty(t, page.Items)
	page = rowView.Apply(rows, Query{Page: 2, Limit: 2})
	assert.Equal(t, []string{"Dads Group", "Sleep Clinic"}, titles(page.Items))
}

func TestParseQuery(t *testing.T) {
	values, err := url.ParseQuery("q=jane&status=active,closed&status=inactive&type=x&sort=date&page=2&limit=10")
	require.NoError(t, err)

	q := ParseQuery(values, []string{"status"})
	assert.Equal(t, "jane", q.Search)
	assert.Equal(t, map[string][]string{"status": {"active", "closed", "inactive"}}, q.Filters)
	assert.True(t, q.SortByDate)
	assert.Equal(t, 2, q.Page)
	assert.Equal(t, 10, q.Limit)
}
