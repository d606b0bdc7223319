package httphandler

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/graduates/internal/domain/model"
)

func TestParseListParams_Defaults(t *testing.T) {
	p, err := parseListParams(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, model.ListParams{
		Page:    1,
		PerPage: model.DefaultPerPage,
		OrderBy: model.OrderByTitle,
		Order:   model.SortAsc,
	}, p)
}

func TestParseListParams_AllSet(t *testing.T) {
	q := url.Values{
		"page":     {"3"},
		"per_page": {"25"},
		"search":   {"ada"},
		"orderby":  {"date"},
		"order":    {"desc"},
	}

	p, err := parseListParams(q)
	require.NoError(t, err)
	assert.Equal(t, model.ListParams{
		Page:    3,
		PerPage: 25,
		Search:  "ada",
		OrderBy: model.OrderByDate,
		Order:   model.SortDesc,
	}, p)
}

func TestParseListParams_PerPageEdges(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{value: "0", wantErr: true},
		{value: "1"},
		{value: "100"},
		{value: "101", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.value, func(t *testing.T) {
			_, err := parseListParams(url.Values{"per_page": {tc.value}})
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
