package model

// Paging bounds for the read API.
const (
	DefaultPerPage = 10
	MinPerPage     = 1
	MaxPerPage     = 100
)

// ListParams describes one page of a graduate listing.
type ListParams struct {
	Page    int // 1-based
	PerPage int
	Search  string
	OrderBy OrderBy
	Order   SortOrder
}

// PagedResult is one page of graduates plus the totals needed for paging links.
type PagedResult struct {
	Items      []Graduate
	TotalCount int
	TotalPages int
	Page       int
	PerPage    int
}

// HasPrev reports whether a previous page link should be produced.
func (r PagedResult) HasPrev() bool {
	return r.Page > 1
}

// HasNext reports whether a next page link should be produced. Pages past the
// end never have a next link.
func (r PagedResult) HasNext() bool {
	return r.Page < r.TotalPages
}

// TotalPagesFor returns ceil(total/perPage), or 0 when perPage is not positive.
func TotalPagesFor(total, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

// EntityQuery is the query accepted by the entity store. PerPage of -1 means
// no limit.
type EntityQuery struct {
	PostType   string
	Status     PostStatus
	PerPage    int
	Page       int
	OrderBy    OrderBy
	Order      SortOrder
	SearchTerm string
}

// EntityQueryResult is what the entity store returns for an EntityQuery.
type EntityQueryResult struct {
	Posts      []Graduate
	FoundCount int
	MaxPages   int
}
