package http

import (
	"math"
	"net/http"
	"strconv"

	"github.com/lobodInI/API-Social-Media/domain"
	"github.com/lobodInI/API-Social-Media/errs"
)

// pageRequest reads the page and page_size query parameters. An unusable
// page_size falls back to the default, a larger one is capped.
func (s *Server) pageRequest(r *http.Request) (domain.PageRequest, error) {
	q := r.URL.Query()

	size := s.pageSize
	if v := q.Get("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			size = min(n, s.maxPageSize)
		}
	}

	page := 1
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		// Pages whose end offset overflows an int can't exist.
		if err != nil || n < 1 || n > math.MaxInt/size {
			return domain.PageRequest{}, errs.Errorf(errs.ENOTFOUND, "Invalid page.")
		}
		page = n
	}
	return domain.PageRequest{Page: page, Size: size}, nil
}

// newPageResult wraps one page of results with the total count and the
// links to the neighbouring pages.
func newPageResult[T any](r *http.Request, page domain.PageRequest, count int64, results []T) domain.PageResult[T] {
	res := domain.PageResult[T]{
		Count:   count,
		Results: results,
	}
	if res.Results == nil {
		res.Results = []T{}
	}
	if page.HasNext(count) {
		next := pageURL(r, page.Page+1)
		res.Next = &next
	}
	if page.Page > 1 {
		prev := pageURL(r, page.Page-1)
		res.Previous = &prev
	}
	return res
}

// pageURL returns the absolute URL of the request with the page parameter
// replaced. The first page is linked without a page parameter.
func pageURL(r *http.Request, page int) string {
	u := *r.URL
	u.Scheme = "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		u.Scheme = "https"
	}
	u.Host = r.Host

	q := u.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	return u.String()
}
