package domain

import "strings"

// PageRequest selects one page of a listing. Pages are numbered from 1.
type PageRequest struct {
	Page int
	Size int
}

// Offset returns the number of records preceding the requested page.
func (p PageRequest) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Size
}

// InRange reports whether the page exists in a listing of count records.
// The first page always exists, even when the listing is empty.
func (p PageRequest) InRange(count int64) bool {
	if p.Page <= 1 {
		return true
	}
	return int64(p.Offset()) < count
}

// HasNext reports whether another page follows this one.
func (p PageRequest) HasNext(count int64) bool {
	return int64(p.Offset()+p.Size) < count
}

// SearchTerms splits a search query into its terms. Terms are separated by
// whitespace or commas, and a listing matches only if every term matches.
func SearchTerms(query string) []string {
	return strings.FieldsFunc(query, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}

// PageResult is one page of a listing as returned to clients. Next and
// Previous hold the URLs of the neighbouring pages, or nil at either end.
type PageResult[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}
