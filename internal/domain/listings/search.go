package listings

// Pagination bounds are an explicit policy, not an accident: pages are forced
// into [1,10] and page sizes into [10,20].
const (
	MinPage         = 1
	MaxPage         = 10
	MinPageSize     = 10
	MaxPageSize     = 20
	DefaultPage     = MinPage
	DefaultPageSize = MinPageSize
)

// SearchParams describe catalog filters and paging. Each bound is optional
// and inclusive; nil imposes no constraint. Min/max pairs are independent, so
// an inverted pair simply matches nothing.
type SearchParams struct {
	MinLat   *float64
	MaxLat   *float64
	MinLng   *float64
	MaxLng   *float64
	MinPrice *float64
	MaxPrice *float64
	Page     int
	PageSize int
}

// Normalized returns a copy with page and page size clamped into policy
// bounds. Filters pass through untouched.
func (p SearchParams) Normalized() SearchParams {
	normalized := p
	if normalized.Page < MinPage {
		normalized.Page = DefaultPage
	}
	if normalized.Page > MaxPage {
		normalized.Page = MaxPage
	}
	if normalized.PageSize < MinPageSize {
		normalized.PageSize = DefaultPageSize
	}
	if normalized.PageSize > MaxPageSize {
		normalized.PageSize = MaxPageSize
	}
	return normalized
}

// Offset computes the row offset for the normalized page.
func (p SearchParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Matches applies every present filter against a listing.
func (p SearchParams) Matches(l *Listing) bool {
	if l == nil {
		return false
	}
	if p.MinLat != nil && l.Lat < *p.MinLat {
		return false
	}
	if p.MaxLat != nil && l.Lat > *p.MaxLat {
		return false
	}
	if p.MinLng != nil && l.Lng < *p.MinLng {
		return false
	}
	if p.MaxLng != nil && l.Lng > *p.MaxLng {
		return false
	}
	if p.MinPrice != nil && l.Price < *p.MinPrice {
		return false
	}
	if p.MaxPrice != nil && l.Price > *p.MaxPrice {
		return false
	}
	return true
}

// SearchResult wraps one page of hits with the total match count.
type SearchResult struct {
	Items []*Listing
	Total int
}
