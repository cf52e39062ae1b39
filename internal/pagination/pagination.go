// Package pagination slices filtered lists into fixed-size pages and
// builds the compact page-number window shown under the transaction table.
package pagination

import "math"

// Ellipsis is the gap marker emitted by Window. Page numbers are
// positive, so the zero value is free to carry the marker.
const Ellipsis = 0

// Page is one visible slice of a larger list.
//
// First and Last are zero-based half-open bounds into the source list
// (Last is exclusive), so an empty list yields First == Last == 0.
type Page[T any] struct {
	Items []T
	First int
	Last  int
}

// TotalPages returns ceil(total/perPage), never less than 1 so that an
// empty list still renders as a single (empty) page.
func TotalPages(total, perPage int) int {
	if perPage < 1 {
		return 1
	}
	pages := int(math.Ceil(float64(total) / float64(perPage)))
	if pages < 1 {
		return 1
	}
	return pages
}

// Paginate returns the slice of list visible on the given 1-based page.
// Out-of-range pages clamp to the nearest valid page; the navigation UI
// never constructs them, but the guard keeps the function total.
func Paginate[T any](list []T, page, perPage int) Page[T] {
	if perPage < 1 {
		perPage = 1
	}
	total := TotalPages(len(list), perPage)
	if page < 1 {
		page = 1
	}
	if page > total {
		page = total
	}

	first := (page - 1) * perPage
	if first > len(list) {
		first = len(list)
	}
	last := first + perPage
	if last > len(list) {
		last = len(list)
	}
	return Page[T]{Items: list[first:last], First: first, Last: last}
}

// Window builds the page-number strip: the current page ±1, always page 1
// and the last page, with Ellipsis wherever the window is non-adjacent to
// an edge. current=5, total=10 -> [1 0 4 5 6 0 10].
func Window(current, total int) []int {
	if total < 1 {
		total = 1
	}
	if current < 1 {
		current = 1
	}
	if current > total {
		current = total
	}

	start := current - 1
	if start < 1 {
		start = 1
	}
	end := current + 1
	if end > total {
		end = total
	}

	var pages []int
	if start > 1 {
		pages = append(pages, 1)
	}
	if start > 2 {
		pages = append(pages, Ellipsis)
	}
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	if end < total-1 {
		pages = append(pages, Ellipsis)
	}
	if end < total {
		pages = append(pages, total)
	}
	return pages
}

// PerPage derives the page size from the terminal height using the same
// proportion the original layout used for the viewport, clamped to
// [min, max].
func PerPage(viewportHeight, min, max int) int {
	n := int(math.Round(float64(viewportHeight) * 7.0 / 1030.0))
	if n < min {
		n = min
	}
	if n > max {
		n = max
	}
	return n
}
