package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/ericfisherdev/graduates/internal/domain/model"
	"github.com/ericfisherdev/graduates/internal/domain/port/driven"
	"github.com/ericfisherdev/graduates/internal/metrics"
)

// ListingQuery turns paging, search and sort parameters into a bounded query
// against the graduate store and shapes the paged result.
type ListingQuery struct {
	store driven.GraduateStore
}

// NewListingQuery creates a ListingQuery over the given store.
func NewListingQuery(store driven.GraduateStore) *ListingQuery {
	return &ListingQuery{store: store}
}

// NormalizeListParams fills defaults and clamps PerPage to [MinPerPage, MaxPerPage].
// Page values below 1 become 1; page values past the last page are kept.
func NormalizeListParams(p model.ListParams) model.ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	switch {
	case p.PerPage == 0:
		p.PerPage = model.DefaultPerPage
	case p.PerPage < model.MinPerPage:
		p.PerPage = model.MinPerPage
	case p.PerPage > model.MaxPerPage:
		p.PerPage = model.MaxPerPage
	}
	if !p.OrderBy.Valid() {
		p.OrderBy = model.OrderByTitle
	}
	if !p.Order.Valid() {
		p.Order = model.SortAsc
	}
	p.Search = strings.TrimSpace(p.Search)
	return p
}

// List returns one page of published graduates. A page beyond the last one
// yields an empty Items slice, not an error.
func (q *ListingQuery) List(ctx context.Context, params model.ListParams) (model.PagedResult, error) {
	p := NormalizeListParams(params)

	searched := "no"
	if p.Search != "" {
		searched = "yes"
	}
	metrics.ListingQueries.WithLabelValues(searched).Inc()

	res, err := q.store.Query(ctx, model.EntityQuery{
		PostType:   model.PostTypeGraduate,
		Status:     model.PostStatusPublish,
		PerPage:    p.PerPage,
		Page:       p.Page,
		OrderBy:    p.OrderBy,
		Order:      p.Order,
		SearchTerm: p.Search,
	})
	if err != nil {
		return model.PagedResult{}, fmt.Errorf("query graduates: %w", err)
	}

	items := res.Posts
	if items == nil {
		items = []model.Graduate{}
	}
	metrics.ListingResults.Observe(float64(len(items)))

	return model.PagedResult{
		Items:      items,
		TotalCount: res.FoundCount,
		TotalPages: model.TotalPagesFor(res.FoundCount, p.PerPage),
		Page:       p.Page,
		PerPage:    p.PerPage,
	}, nil
}
