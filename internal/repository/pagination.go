package repository

// DefaultPageLimit is the page size used when the caller gives none.
const DefaultPageLimit = 10

// Pagination is an offset window over the store's natural order.
type Pagination struct {
	Limit  int
	Offset int
}

// Normalize applies the default limit and clamps a negative offset to zero.
func (p Pagination) Normalize() Pagination {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// Window returns the [start, end) bounds of the page within n ordered items.
// An offset past the end yields an empty window.
func (p Pagination) Window(n int) (start, end int) {
	start = min(max(p.Offset, 0), n)
	end = n
	if p.Limit > 0 {
		end = min(start+p.Limit, n)
	}
	return start, end
}
