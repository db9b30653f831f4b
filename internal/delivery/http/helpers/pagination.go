package helpers

import (
	"net/http"
	"net/url"
	"strconv"

	"evently/internal/domain"
)

// PageLimits bounds the page_size a client may ask for.
type PageLimits struct {
	DefaultSize int
	MaxSize     int
}

// EventGridLimits fits the event grid of the browse page: two rows of three cards.
var EventGridLimits = PageLimits{DefaultSize: 6, MaxSize: 24}

// ParsePagination reads page and page_size from the query string.
// Missing or invalid values fall back to page 1 and limits.DefaultSize; sizes are capped at limits.MaxSize.
func ParsePagination(r *http.Request, limits PageLimits) domain.PaginationParams {
	q := r.URL.Query()
	params := domain.PaginationParams{Page: 1, PageSize: limits.DefaultSize}
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v >= 1 {
		params.Page = v
	}
	if v, err := strconv.Atoi(q.Get("page_size")); err == nil && v >= 1 {
		params.PageSize = min(v, limits.MaxSize)
	}
	return params
}

// Pager is the page navigation rendered under a paginated list.
// PrevURL and NextURL are empty at the ends.
type Pager struct {
	Page       int
	TotalPages int
	PrevURL    string
	NextURL    string
}

// NewPager links the pages around params for a list of total items.
// The links keep the rest of the request's query.
func NewPager(r *http.Request, params domain.PaginationParams, total int) Pager {
	p := Pager{Page: params.Page, TotalPages: params.PageCount(total)}
	if p.Page > 1 {
		p.PrevURL = pageURL(r, min(p.Page-1, p.TotalPages))
	}
	if p.Page < p.TotalPages {
		p.NextURL = pageURL(r, p.Page+1)
	}
	return p
}

func pageURL(r *http.Request, page int) string {
	q := r.URL.Query()
	q.Set("page", strconv.Itoa(page))
	u := url.URL{Path: r.URL.Path, RawQuery: q.Encode()}
	return u.String()
}
