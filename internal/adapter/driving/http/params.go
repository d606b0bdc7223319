package httphandler

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/ericfisherdev/graduates/internal/domain/model"
)

// parseListParams reads the listing query parameters. Out-of-range or
// malformed values are rejected here rather than clamped.
func parseListParams(q url.Values) (model.ListParams, error) {
	p := model.ListParams{
		Page:    1,
		PerPage: model.DefaultPerPage,
		Search:  q.Get("search"),
		OrderBy: model.OrderByTitle,
		Order:   model.SortAsc,
	}

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, fmt.Errorf("page must be a positive integer, got %q", v)
		}
		p.Page = n
	}

	if v := q.Get("per_page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < model.MinPerPage || n > model.MaxPerPage {
			return p, fmt.Errorf("per_page must be between %d and %d, got %q", model.MinPerPage, model.MaxPerPage, v)
		}
		p.PerPage = n
	}

	if v := q.Get("orderby"); v != "" {
		p.OrderBy = model.OrderBy(v)
		if !p.OrderBy.Valid() {
			return p, fmt.Errorf("orderby must be one of title, date, id, got %q", v)
		}
	}

	if v := q.Get("order"); v != "" {
		p.Order = model.SortOrder(v)
		if !p.Order.Valid() {
			return p, fmt.Errorf("order must be asc or desc, got %q", v)
		}
	}

	return p, nil
}
