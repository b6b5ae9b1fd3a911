package pbapi

import (
	"net/url"
	"strconv"
	"strings"
)

// QueryParams represents the list options accepted by the records API.
type QueryParams struct {
	Page      int
	PerPage   int
	Filter    string
	Sort      string
	Expand    []string
	Fields    []string
	SkipTotal bool
}

// NewQueryParams creates empty query parameters.
func NewQueryParams() *QueryParams {
	return &QueryParams{}
}

// ToValues converts the parameters to URL values.
//
// Zero values are omitted; list values are joined with commas.
func (q *QueryParams) ToValues() url.Values {
	values := url.Values{}

	if q == nil {
		return values
	}

	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}

	if q.PerPage > 0 {
		values.Set("perPage", strconv.Itoa(q.PerPage))
	}

	if q.Filter != "" {
		values.Set("filter", q.Filter)
	}

	if q.Sort != "" {
		values.Set("sort", q.Sort)
	}

	if len(q.Expand) > 0 {
		values.Set("expand", strings.Join(q.Expand, ","))
	}

	if len(q.Fields) > 0 {
		values.Set("fields", strings.Join(q.Fields, ","))
	}

	if q.SkipTotal {
		values.Set("skipTotal", "true")
	}

	return values
}

// Clone returns a deep copy of the parameters. A nil receiver yields empty parameters.
func (q *QueryParams) Clone() *QueryParams {
	if q == nil {
		return NewQueryParams()
	}

	clone := *q
	clone.Expand = append([]string(nil), q.Expand...)
	clone.Fields = append([]string(nil), q.Fields...)

	return &clone
}

// WithPage sets the page number.
func (q *QueryParams) WithPage(page int) *QueryParams {
	q.Page = page

	return q
}

// WithPerPage sets the page size.
func (q *QueryParams) WithPerPage(perPage int) *QueryParams {
	q.PerPage = perPage

	return q
}

// WithFilter sets the filter expression.
func (q *QueryParams) WithFilter(filter string) *QueryParams {
	q.Filter = filter

	return q
}

// WithSort sets the sort expression.
func (q *QueryParams) WithSort(sort string) *QueryParams {
	q.Sort = sort

	return q
}

// WithExpand appends relations to expand.
func (q *QueryParams) WithExpand(relations ...string) *QueryParams {
	q.Expand = append(q.Expand, relations...)

	return q
}

// WithFields replaces the field selection.
func (q *QueryParams) WithFields(fields ...string) *QueryParams {
	q.Fields = fields

	return q
}

// WithSkipTotal skips the total counts query on the backend.
func (q *QueryParams) WithSkipTotal(skip bool) *QueryParams {
	q.SkipTotal = skip

	return q
}
