// Package pagination splits ordered sequences into numbered pages.
// It never fails: out-of-range or malformed page numbers are clamped.
package pagination

import (
	"strconv"
	"strings"
)

// DefaultPageSize is used when a caller passes a non-positive page size.
const DefaultPageSize = 10

// Page is one page of a sequence. Number is 1-indexed.
type Page[T any] struct {
	Items    []T
	Number   int
	NumPages int
	Count    int
	PageSize int
}

// HasNext reports whether a page follows this one.
func (p Page[T]) HasNext() bool { return p.Number < p.NumPages }

// HasPrevious reports whether a page precedes this one.
func (p Page[T]) HasPrevious() bool { return p.Number > 1 }

// NextNumber returns the next page number, or 0 when there is none.
func (p Page[T]) NextNumber() int {
	if !p.HasNext() {
		return 0
	}
	return p.Number + 1
}

// PreviousNumber returns the previous page number, or 0 when there is none.
func (p Page[T]) PreviousNumber() int {
	if !p.HasPrevious() {
		return 0
	}
	return p.Number - 1
}

// StartIndex is the 1-based position of the first item, 0 for an empty page.
func (p Page[T]) StartIndex() int {
	if p.Count == 0 {
		return 0
	}
	return (p.Number-1)*p.PageSize + 1
}

// EndIndex is the 1-based position of the last item, 0 for an empty page.
func (p Page[T]) EndIndex() int {
	if p.Count == 0 {
		return 0
	}
	return p.StartIndex() + len(p.Items) - 1
}

// Paginate returns the requested page of items. number is the raw page
// parameter from the request; anything that is not a positive integer
// selects the first page and numbers past the end select the last page.
func Paginate[T any](items []T, pageSize int, number string) Page[T] {
	n, err := strconv.Atoi(strings.TrimSpace(number))
	if err != nil {
		n = 1
	}
	return PaginateInt(items, pageSize, n)
}

// PaginateInt is Paginate for an already-parsed page number.
func PaginateInt[T any](items []T, pageSize int, number int) Page[T] {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	count := len(items)
	numPages := (count + pageSize - 1) / pageSize
	if numPages < 1 {
		numPages = 1
	}

	if number < 1 {
		number = 1
	}
	if number > numPages {
		number = numPages
	}

	start := (number - 1) * pageSize
	end := start + pageSize
	if end > count {
		end = count
	}

	pageItems := make([]T, 0, end-start)
	pageItems = append(pageItems, items[start:end]...)

	return Page[T]{
		Items:    pageItems,
		Number:   number,
		NumPages: numPages,
		Count:    count,
		PageSize: pageSize,
	}
}

// Map converts a page's items while keeping its position.
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	items := make([]U, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, fn(item))
	}
	return Page[U]{
		Items:    items,
		Number:   p.Number,
		NumPages: p.NumPages,
		Count:    p.Count,
		PageSize: p.PageSize,
	}
}
