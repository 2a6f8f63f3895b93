package apiclient

import (
	"net/url"
	"strconv"
)

// Page is the paged envelope every list endpoint returns.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// TotalPages returns ceil(Count/pageSize).
func (p *Page[T]) TotalPages(pageSize int) int {
	if p == nil || pageSize <= 0 || p.Count <= 0 {
		return 0
	}
	return (p.Count + pageSize - 1) / pageSize
}

// Query is the list request state sent to the backend.
type Query struct {
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	Search   string            `json:"search,omitempty"`
	Filters  map[string]string `json:"filters,omitempty"`
}

// Values encodes q, leaving out empty search and filter values.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(q.PageSize))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	for name, value := range q.Filters {
		if value != "" {
			v.Set(name, value)
		}
	}
	return v
}

// Clone returns a copy of q that shares no map with it.
func (q Query) Clone() Query {
	out := q
	if q.Filters != nil {
		out.Filters = make(map[string]string, len(q.Filters))
		for k, v := range q.Filters {
			out.Filters[k] = v
		}
	}
	return out
}
