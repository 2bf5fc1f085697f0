// Package paginator slices ordered collections into fixed-size pages.
//
// A requested page that is absent or not an integer resolves to the first page;
// an integer outside [1, NumPages] resolves to the last page. An empty
// collection still has one (empty) page.
package paginator

import (
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

type Paginator struct {
	Count   int64
	PerPage int
}

func New(count int64, perPage int) *Paginator {
	if perPage < 1 {
		perPage = 1
	}
	if count < 0 {
		count = 0
	}
	return &Paginator{Count: count, PerPage: perPage}
}

func (p *Paginator) NumPages() int {
	if p.Count == 0 {
		return 1
	}
	per := int64(p.PerPage)
	return int((p.Count + per - 1) / per)
}

// GetPage resolves the raw ?page= value into a valid page.
func (p *Paginator) GetPage(raw string) Page {
	num := p.NumPages()
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	switch {
	case err != nil:
		n = 1
	case n < 1 || n > num:
		n = num
	}
	return Page{Number: n, NumPages: num, Count: p.Count, PerPage: p.PerPage}
}

type Page struct {
	Number   int
	NumPages int
	Count    int64
	PerPage  int
}

func (p Page) Offset() int { return (p.Number - 1) * p.PerPage }
func (p Page) Limit() int  { return p.PerPage }

// Len is the number of items on this page.
func (p Page) Len() int {
	rest := p.Count - int64(p.Offset())
	if rest <= 0 {
		return 0
	}
	if rest < int64(p.PerPage) {
		return int(rest)
	}
	return p.PerPage
}

func (p Page) HasNext() bool       { return p.Number < p.NumPages }
func (p Page) HasPrevious() bool   { return p.Number > 1 }
func (p Page) HasOtherPages() bool { return p.HasNext() || p.HasPrevious() }

func (p Page) NextPageNumber() int {
	if !p.HasNext() {
		return p.Number
	}
	return p.Number + 1
}

func (p Page) PreviousPageNumber() int {
	if !p.HasPrevious() {
		return p.Number
	}
	return p.Number - 1
}

// StartIndex is the 1-based position of the first item on the page, 0 when
// the collection is empty.
func (p Page) StartIndex() int {
	if p.Count == 0 {
		return 0
	}
	return p.Offset() + 1
}

func (p Page) EndIndex() int {
	return p.Offset() + p.Len()
}

func (p Page) PageRange() []int {
	r := make([]int, p.NumPages)
	for i := range r {
		r[i] = i + 1
	}
	return r
}

func (p Page) String() string {
	return fmt.Sprintf("<Page %d of %d>", p.Number, p.NumPages)
}

// Slice returns the items of an in-memory ordered collection that fall on page p.
func Slice[T any](items []T, p Page) []T {
	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + p.PerPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// FromQuery counts the rows matched by tx and returns the page selected by raw
// together with tx narrowed to that page. Ordering must be added by the caller
// on the returned query.
func FromQuery(tx *gorm.DB, raw string, perPage int) (Page, *gorm.DB, error) {
	q := tx.Session(&gorm.Session{})
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return Page{}, nil, fmt.Errorf("count: %w", err)
	}
	page := New(count, perPage).GetPage(raw)
	return page, q.Offset(page.Offset()).Limit(page.Limit()), nil
}
