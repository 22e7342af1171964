package utils

const pageSizeDefault = 20
const pageSizeMax = 100

// Pagination bounds the page sizes served by list endpoints.
type Pagination struct {
	DefaultLimit int
	MaxLimit     int
}

// DefaultPagination is used when no limits are configured.
var DefaultPagination = Pagination{DefaultLimit: pageSizeDefault, MaxLimit: pageSizeMax}

// Params calculates the offset and limit for a page. Nil or negative offsets start at zero,
// a nil or non-positive limit falls back to DefaultLimit, and limits are capped at MaxLimit.
// A zero Pagination behaves like DefaultPagination.
func (p Pagination) Params(offset *int, limit *int) (int, int) {
	if p.DefaultLimit <= 0 {
		p.DefaultLimit = pageSizeDefault
	}
	if p.MaxLimit < p.DefaultLimit {
		p.MaxLimit = max(p.DefaultLimit, pageSizeMax)
	}

	finalOffset := 0
	finalLimit := p.DefaultLimit

	if offset != nil && *offset >= 0 {
		finalOffset = *offset
	}

	if limit != nil && *limit > 0 {
		finalLimit = min(*limit, p.MaxLimit)
	}

	return finalOffset, finalLimit
}

// GetPaginationParams applies DefaultPagination.
func GetPaginationParams(offset *int, limit *int) (int, int) {
	return DefaultPagination.Params(offset, limit)
}
