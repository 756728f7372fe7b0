// Package listutil parses list-view query parameters (search, filters,
// sorting, pagination) and slices in-memory result sets into pages.
package listutil

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// DefaultPerPage is the page size used when per_page is missing or not allowed.
const DefaultPerPage = 20

// PerPageOptions are the allowed rows-per-page values.
var PerPageOptions = []int{10, 20, 50, 100}

// Params is everything a list view reads from its query string.
type Params struct {
	Search  string            // "q", trimmed
	Filters map[string]string // exact-match filters, recognised keys only
	Sort    string            // "" when the column is not sortable
	Desc    bool              // dir=desc
	Page    int               // 1-indexed
	PerPage int
}

// Parse reads q, filterKeys, sort, dir, page and per_page from the query.
// PRE: sortable and filterKeys list the accepted names
// POST: Page >= 1; PerPage is one of PerPageOptions; unknown sort columns are dropped
func Parse(q url.Values, sortable, filterKeys []string) Params {
	p := Params{
		Search:  strings.TrimSpace(q.Get("q")),
		Filters: make(map[string]string),
		Desc:    q.Get("dir") == "desc",
	}
	for _, key := range filterKeys {
		if v := strings.TrimSpace(q.Get(key)); v != "" {
			p.Filters[key] = v
		}
	}
	if s := q.Get("sort"); slices.Contains(sortable, s) {
		p.Sort = s
	}
	p.Page, _ = strconv.Atoi(q.Get("page"))
	if p.Page < 1 {
		p.Page = 1
	}
	p.PerPage, _ = strconv.Atoi(q.Get("per_page"))
	if !slices.Contains(PerPageOptions, p.PerPage) {
		p.PerPage = DefaultPerPage
	}
	return p
}

// Query re-encodes p so templates can build links that keep the current
// search and filters while changing one value (usually page).
func (p Params) Query(overrides ...string) string {
	v := url.Values{}
	if p.Search != "" {
		v.Set("q", p.Search)
	}
	for k, f := range p.Filters {
		v.Set(k, f)
	}
	if p.Sort != "" {
		v.Set("sort", p.Sort)
		if p.Desc {
			v.Set("dir", "desc")
		}
	}
	if p.PerPage != DefaultPerPage {
		v.Set("per_page", strconv.Itoa(p.PerPage))
	}
	for i := 0; i+1 < len(overrides); i += 2 {
		v.Set(overrides[i], overrides[i+1])
	}
	return v.Encode()
}

// PageInfo is pagination metadata for rendering.
type PageInfo struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// NewPageInfo computes pagination metadata.
// PRE: total >= 0
// POST: TotalPages >= 1; Page is clamped to [1, TotalPages]
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	totalPages := max((total+perPage-1)/perPage, 1)
	return PageInfo{
		Page:       min(max(page, 1), totalPages),
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Offset returns the index of the first row on the current page.
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// HasPrev reports whether a previous page exists.
func (p PageInfo) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a following page exists.
func (p PageInfo) HasNext() bool { return p.Page < p.TotalPages }

// Paginate returns the rows of items that fall on the requested page.
// POST: the returned slice aliases items; PageInfo.Total == len(items)
func Paginate[T any](items []T, page, perPage int) ([]T, PageInfo) {
	info := NewPageInfo(page, perPage, len(items))
	start := info.Offset()
	end := min(start+info.PerPage, len(items))
	return items[start:end], info
}

// PrevPage returns the previous page number, or 1.
func (p PageInfo) PrevPage() int { return max(p.Page-1, 1) }

// NextPage returns the next page number, or the last page.
func (p PageInfo) NextPage() int { return min(p.Page+1, p.TotalPages) }
