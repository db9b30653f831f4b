package domain

// PaginationParams selects one page of a list. Page is 1-based.
type PaginationParams struct {
	Page     int
	PageSize int
}

// Offset returns the number of items before the page.
func (p PaginationParams) Offset() int {
	if p.Page < 1 || p.PageSize < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// PageCount returns how many pages hold total items. An empty list still has one page.
func (p PaginationParams) PageCount(total int) int {
	if p.PageSize < 1 || total <= p.PageSize {
		return 1
	}
	return (total + p.PageSize - 1) / p.PageSize
}
