// Package pagination splits ordered result sets into fixed-size 1-based pages.
//
// The contract is lenient: page numbers that are non-numeric, below 1 or past
// the last page never fail, they clamp to the nearest valid page. An empty
// result set still has one (empty) page so page math never divides by zero.
package pagination

import "strconv"

// ParseNumber interprets a raw page query value. Anything that does not parse
// as an integer means the first page.
func ParseNumber(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 1
	}
	return n
}

// Paginator computes page boundaries over a counted, already-ordered result
// set. It never re-sorts and is oblivious to what produced the ordering.
type Paginator struct {
	totalItems int64
	perPage    int
}

// New returns a Paginator for totalItems items split into perPage-sized pages.
func New(totalItems int64, perPage int) Paginator {
	if perPage < 1 {
		perPage = 1
	}
	if totalItems < 0 {
		totalItems = 0
	}
	return Paginator{totalItems: totalItems, perPage: perPage}
}

// TotalPages returns the number of pages, at least 1. The last page holds the
// remainder.
func (p Paginator) TotalPages() int {
	if p.totalItems == 0 {
		return 1
	}
	return int((p.totalItems + int64(p.perPage) - 1) / int64(p.perPage))
}

// Clamp snaps a requested page number into the valid range.
func (p Paginator) Clamp(n int) int {
	if n < 1 {
		return 1
	}
	if last := p.TotalPages(); n > last {
		return last
	}
	return n
}

// Offset returns the item offset of the (clamped) page.
func (p Paginator) Offset(n int) int {
	return (p.Clamp(n) - 1) * p.perPage
}

// PerPage returns the configured page size.
func (p Paginator) PerPage() int {
	return p.perPage
}

// Meta is the page metadata returned alongside every feed page.
type Meta struct {
	Number     int   `json:"number"`
	TotalPages int   `json:"total_pages"`
	TotalItems int64 `json:"total_items"`
	PerPage    int   `json:"per_page"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// MetaFor builds the metadata for a requested page number, clamping it first.
func (p Paginator) MetaFor(n int) Meta {
	page := p.Clamp(n)
	total := p.TotalPages()
	return Meta{
		Number:     page,
		TotalPages: total,
		TotalItems: p.totalItems,
		PerPage:    p.perPage,
		HasNext:    page < total,
		HasPrev:    page > 1,
	}
}
