package query

import (
	"net/url"
	"strconv"
	"strings"
)

// ListQuery is the page/limit/search triple sent on every list request.
type ListQuery struct {
	Page   int
	Limit  int
	Search string
}

type Option func(*ListQuery)

func WithPage(page, limit int) Option {
	return func(q *ListQuery) {
		q.Page = page
		q.Limit = limit
	}
}

func WithSearch(search string) Option {
	return func(q *ListQuery) {
		q.Search = search
	}
}

// NewListQuery returns page 1 with the given limit.
func NewListQuery(limit int, opts ...Option) ListQuery {
	q := ListQuery{Page: 1, Limit: limit}
	for _, opt := range opts {
		opt(&q)
	}
	return q
}

// Values encodes the query, skipping empty parameters.
func (q ListQuery) Values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		v.Set("search", s)
	}
	return v
}
