package listview

import (
	"net/url"
	"strconv"
	"strings"
)

// ParseQuery reads search, category filters, sort and paging from URL query values.
// Category values may be repeated or comma separated: ?status=active,closed&status=inactive
func ParseQuery(values url.Values, categories []string) Query {
	q := Query{
		Search:  values.Get("search"),
		Filters: make(map[string][]string),
	}
	if q.Search == "" {
		q.Search = values.Get("q")
	}
	for _, name := range categories {
		for _, raw := range values[name] {
			for _, v := range strings.Split(raw, ",") {
				if v = strings.TrimSpace(v); v != "" {
					q.Filters[name] = append(q.Filters[name], v)
				}
			}
		}
	}
	q.SortByDate = values.Get("sort") == "date"
	q.Page, _ = strconv.Atoi(values.Get("page"))
	q.Limit, _ = strconv.Atoi(values.Get("limit"))
	return q
}
