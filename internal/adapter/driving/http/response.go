package httphandler

import (
	"encoding/json"
	"html"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ericfisherdev/graduates/internal/application"
	"github.com/ericfisherdev/graduates/internal/domain/model"
)

// Error codes carried in error.code.
const (
	codeMissingAPIKey = "missing_api_key"
	codeInvalidAPIKey = "invalid_api_key"
	codeInvalidParam  = "invalid_param"
	codeNotFound      = "not_found"
	codeInternal      = "internal_error"
)

// wpDateLayout is the zone-less timestamp format used in graduate projections.
const wpDateLayout = "2006-01-02T15:04:05"

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":"internal_error","message":"internal server error","status":500}}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status, code and message.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: errorBody{Code: code, Message: message, Status: status}})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// Rendered wraps an HTML fragment.
type Rendered struct {
	Rendered string `json:"rendered"`
}

// LinkRef is a single hypermedia link.
type LinkRef struct {
	Href string `json:"href"`
}

// GraduateLinks holds the self and collection links of a projection.
type GraduateLinks struct {
	Self       []LinkRef `json:"self"`
	Collection []LinkRef `json:"collection"`
}

// GraduateResponse is the JSON projection of a graduate.
type GraduateResponse struct {
	ID            int64         `json:"id"`
	Title         Rendered      `json:"title"`
	FirstName     string        `json:"first_name"`
	LastName      string        `json:"last_name"`
	Content       Rendered      `json:"content"`
	Excerpt       Rendered      `json:"excerpt"`
	Date          string        `json:"date"`
	DateGMT       string        `json:"date_gmt"`
	Modified      string        `json:"modified"`
	ModifiedGMT   string        `json:"modified_gmt"`
	Status        string        `json:"status"`
	FeaturedMedia int64         `json:"featured_media"`
	Link          string        `json:"link"`
	Links         GraduateLinks `json:"_links"`
}

// HealthResponse is the JSON body returned by the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// toGraduateResponse projects g. baseURL has no trailing slash.
func toGraduateResponse(g model.Graduate, baseURL string) GraduateResponse {
	return GraduateResponse{
		ID:            g.ID,
		Title:         Rendered{Rendered: html.EscapeString(g.Title)},
		FirstName:     g.FirstName,
		LastName:      g.LastName,
		Content:       Rendered{Rendered: application.RenderContent(g.Content)},
		Excerpt:       Rendered{Rendered: application.RenderExcerpt(g)},
		Date:          formatDate(g.Date),
		DateGMT:       formatDate(g.DateGMT),
		Modified:      formatDate(g.Modified),
		ModifiedGMT:   formatDate(g.ModifiedGMT),
		Status:        string(g.Status),
		FeaturedMedia: g.FeaturedMediaID,
		Link:          permalink(baseURL, g),
		Links: GraduateLinks{
			Self:       []LinkRef{{Href: baseURL + collectionPath + "/" + strconv.FormatInt(g.ID, 10)}},
			Collection: []LinkRef{{Href: baseURL + collectionPath}},
		},
	}
}

// permalink returns the public URL of a graduate: the slug when set,
// otherwise the id query form.
func permalink(baseURL string, g model.Graduate) string {
	if g.Slug != "" {
		return baseURL + "/graduate/" + g.Slug + "/"
	}
	return baseURL + "/?graduate=" + strconv.FormatInt(g.ID, 10)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(wpDateLayout)
}

// setPaginationHeaders writes X-WP-Total, X-WP-TotalPages and one Link
// header per available prev/next page. Other query parameters are preserved.
func setPaginationHeaders(w http.ResponseWriter, r *http.Request, baseURL string, res model.PagedResult) {
	w.Header().Set("X-WP-Total", strconv.Itoa(res.TotalCount))
	w.Header().Set("X-WP-TotalPages", strconv.Itoa(res.TotalPages))

	pageURL := func(page int) string {
		q := r.URL.Query()
		q.Set("page", strconv.Itoa(page))
		return strings.TrimRight(baseURL, "/") + r.URL.Path + "?" + q.Encode()
	}

	if res.HasPrev() {
		// A request past the end links back to the last real page.
		prev := min(res.Page-1, max(res.TotalPages, 1))
		w.Header().Add("Link", "<"+pageURL(prev)+`>; rel="prev"`)
	}
	if res.HasNext() {
		w.Header().Add("Link", "<"+pageURL(res.Page+1)+`>; rel="next"`)
	}
}
