package httphandler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ericfisherdev/graduates/internal/application"
	"github.com/ericfisherdev/graduates/internal/domain/model"
)

// collectionPath is the read API's graduate collection route.
const collectionPath = "/graduates/v1/graduates"

// Handler is the HTTP driving adapter that serves the read API.
type Handler struct {
	listing   *application.ListingQuery
	graduates *application.GraduateService
	guard     *application.AccessGuard
	baseURL   string
	logger    *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. baseURL is
// the externally visible origin used in links and pagination headers.
func NewHandler(
	listing *application.ListingQuery,
	graduates *application.GraduateService,
	guard *application.AccessGuard,
	baseURL string,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		listing:   listing,
		graduates: graduates,
		guard:     guard,
		baseURL:   strings.TrimRight(baseURL, "/"),
		logger:    logger,
	}
}

// RegisterAPIRoutes registers the read API, health and metrics routes on mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler, gatherer prometheus.Gatherer) {
	mux.HandleFunc("GET "+collectionPath, h.requireAPIKey(h.ListGraduates))
	mux.HandleFunc("GET "+collectionPath+"/{id}", h.requireAPIKey(h.GetGraduate))
	mux.HandleFunc("GET /graduates/v1/health", h.Health)
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}

// ApplyMiddleware wraps next with request ID, logging and recovery middleware.
func ApplyMiddleware(next http.Handler, logger *slog.Logger) http.Handler {
	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, next)
	wrapped = loggingMiddleware(logger, wrapped)
	wrapped = requestIDMiddleware(wrapped)

	return wrapped
}

// NewServeMux creates an http.Handler serving only the API routes, wrapped
// with the standard middleware.
func NewServeMux(h *Handler, gatherer prometheus.Gatherer, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	RegisterAPIRoutes(mux, h, gatherer)
	return ApplyMiddleware(mux, logger)
}

// ListGraduates returns one page of published graduates.
func (h *Handler) ListGraduates(w http.ResponseWriter, r *http.Request) {
	params, err := parseListParams(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidParam, err.Error())
		return
	}

	res, err := h.listing.List(r.Context(), params)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list graduates", "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "internal server error")
		return
	}

	resp := make([]GraduateResponse, 0, len(res.Items))
	for _, g := range res.Items {
		resp = append(resp, toGraduateResponse(g, h.baseURL))
	}

	setPaginationHeaders(w, r, h.baseURL, res)
	writeJSON(w, http.StatusOK, resp)
}

// GetGraduate returns a single published graduate by id.
func (h *Handler) GetGraduate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, codeInvalidParam, "invalid graduate id")
		return
	}

	g, err := h.graduates.Get(r.Context(), id)
	if errors.Is(err, model.ErrNotFound) || (err == nil && g.Status != model.PostStatusPublish) {
		writeError(w, http.StatusNotFound, codeNotFound, "graduate not found")
		return
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to get graduate", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toGraduateResponse(*g, h.baseURL))
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}
