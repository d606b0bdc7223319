// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/ericfisherdev/graduates/internal/adapter/driving/web/templates"
	vm "github.com/ericfisherdev/graduates/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/graduates/internal/application"
	"github.com/ericfisherdev/graduates/internal/domain/model"
)

const (
	settingsPath  = "/admin/api-settings"
	generatePath  = "/admin/api-settings/generate"
	graduatesPath = "/admin/graduates"
)

// Handler is the web GUI driving adapter that serves HTML via templ components.
type Handler struct {
	credentials *application.CredentialManager
	graduates   *application.GraduateService
	operators   *application.OperatorGate
	baseURL     string
	logger      *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	credentials *application.CredentialManager,
	graduates *application.GraduateService,
	operators *application.OperatorGate,
	baseURL string,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		credentials: credentials,
		graduates:   graduates,
		operators:   operators,
		baseURL:     strings.TrimRight(baseURL, "/"),
		logger:      logger,
	}
}

// APISettings renders the API security settings screen.
func (h *Handler) APISettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	enabled, err := h.credentials.IsEnabled(ctx)
	if err != nil {
		h.serverError(w, r, "failed to read API settings", err)
		return
	}

	var key string
	if enabled {
		if key, err = h.credentials.Credential(ctx); err != nil {
			h.serverError(w, r, "failed to read API key", err)
			return
		}
	}

	m := vm.APISettingsViewModel{
		Enabled:      enabled,
		APIKey:       key,
		HeaderName:   model.CredentialHeaderName,
		ExampleURL:   h.baseURL + "/graduates/v1/graduates",
		CSRFToken:    csrfToken(w, r),
		ActionPath:   settingsPath,
		GeneratePath: generatePath,
	}
	q := r.URL.Query()
	if q.Get("key-generated") == "1" {
		m.Notices = append(m.Notices, vm.Notice{Kind: "success", Message: "API key generated successfully."})
	}
	if q.Get("settings-updated") == "true" {
		m.Notices = append(m.Notices, vm.Notice{Kind: "success", Message: "API settings updated successfully."})
	}

	h.render(w, r, "Graduates API Settings", templates.APISettings(m))
}

// SaveAPISettings stores the enabled flag from the settings form.
func (h *Handler) SaveAPISettings(w http.ResponseWriter, r *http.Request) {
	if !h.checkCSRF(w, r) {
		return
	}

	enabled := r.FormValue("graduates_api_enabled") == "1"
	if err := h.credentials.SetEnabled(r.Context(), enabled); err != nil {
		h.serverError(w, r, "failed to save API settings", err)
		return
	}

	h.logger.InfoContext(r.Context(), "API settings saved", "enabled", enabled)
	http.Redirect(w, r, settingsPath+"?settings-updated=true", http.StatusSeeOther)
}

// GenerateAPIKey replaces the stored credential with a new one.
func (h *Handler) GenerateAPIKey(w http.ResponseWriter, r *http.Request) {
	if !h.checkCSRF(w, r) {
		return
	}

	if _, err := h.credentials.Regenerate(r.Context()); err != nil {
		h.serverError(w, r, "failed to generate API key", err)
		return
	}

	http.Redirect(w, r, settingsPath+"?key-generated=1", http.StatusSeeOther)
}

// AdminGraduates renders the admin list of all graduates.
func (h *Handler) AdminGraduates(w http.ResponseWriter, r *http.Request) {
	graduates, err := h.graduates.ListForAdmin(r.Context())
	if err != nil {
		h.serverError(w, r, "failed to list graduates", err)
		return
	}

	m := vm.GraduateListViewModel{
		Rows:    toGraduateRowViewModels(graduates),
		NewPath: graduatesPath + "/new",
	}
	if r.URL.Query().Get("saved") == "1" {
		m.Notices = append(m.Notices, vm.Notice{Kind: "success", Message: "Graduate saved."})
	}

	h.render(w, r, "Graduates", templates.GraduateList(m))
}

// NewGraduate renders an empty editor form.
func (h *Handler) NewGraduate(w http.ResponseWriter, r *http.Request) {
	m := newGraduateFormViewModel()
	m.CSRFToken = csrfToken(w, r)
	h.render(w, r, m.Heading, templates.GraduateForm(m))
}

// EditGraduate renders the editor form for an existing graduate.
func (h *Handler) EditGraduate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	g, err := h.graduates.Get(r.Context(), id)
	if errors.Is(err, model.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.serverError(w, r, "failed to load graduate", err)
		return
	}

	m := toGraduateFormViewModel(*g)
	m.CSRFToken = csrfToken(w, r)
	h.render(w, r, m.Heading, templates.GraduateForm(m))
}

// CreateGraduate saves a new graduate from the editor form.
func (h *Handler) CreateGraduate(w http.ResponseWriter, r *http.Request) {
	h.saveGraduate(w, r, 0)
}

// UpdateGraduate saves changes to an existing graduate.
func (h *Handler) UpdateGraduate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	h.saveGraduate(w, r, id)
}

func (h *Handler) saveGraduate(w http.ResponseWriter, r *http.Request, id int64) {
	if !h.checkCSRF(w, r) {
		return
	}

	in := application.GraduateInput{
		ID:        id,
		FirstName: r.FormValue("graduate_first_name"),
		LastName:  r.FormValue("graduate_last_name"),
		Content:   r.FormValue("graduate_content"),
		Excerpt:   r.FormValue("graduate_excerpt"),
		Status:    model.PostStatus(r.FormValue("graduate_status")),
	}
	if v := strings.TrimSpace(r.FormValue("graduate_featured_media")); v != "" {
		media, err := strconv.ParseInt(v, 10, 64)
		if err != nil || media < 0 {
			h.rerenderForm(w, r, in, "Photo must be a media ID.")
			return
		}
		in.FeaturedMediaID = media
	}

	_, err := h.graduates.Save(r.Context(), in)
	switch {
	case errors.Is(err, application.ErrInvalidGraduate):
		h.rerenderForm(w, r, in, "Enter a first or last name.")
		return
	case errors.Is(err, model.ErrNotFound):
		http.NotFound(w, r)
		return
	case err != nil:
		h.serverError(w, r, "failed to save graduate", err)
		return
	}

	http.Redirect(w, r, graduatesPath+"?saved=1", http.StatusSeeOther)
}

// rerenderForm shows the submitted values again with an error notice.
func (h *Handler) rerenderForm(w http.ResponseWriter, r *http.Request, in application.GraduateInput, message string) {
	m := newGraduateFormViewModel()
	if in.ID != 0 {
		m.ID = in.ID
		m.Heading = "Edit Graduate"
		m.ActionPath = graduatesPath + "/" + strconv.FormatInt(in.ID, 10)
	}
	m.FirstName = in.FirstName
	m.LastName = in.LastName
	m.Content = in.Content
	m.Excerpt = in.Excerpt
	m.Status = string(in.Status)
	m.FeaturedMediaID = r.FormValue("graduate_featured_media")
	m.CSRFToken = csrfToken(w, r)
	m.Notices = []vm.Notice{{Kind: "error", Message: message}}

	h.renderStatus(w, r, http.StatusUnprocessableEntity, m.Heading, templates.GraduateForm(m))
}

// PublicGraduates renders all published graduates, oldest first.
func (h *Handler) PublicGraduates(w http.ResponseWriter, r *http.Request) {
	graduates, err := h.graduates.ListPublished(r.Context())
	if err != nil {
		h.serverError(w, r, "failed to list published graduates", err)
		return
	}

	h.render(w, r, "Graduates", templates.GraduatesList(toPublicGraduateViewModels(graduates)))
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, title string, body templ.Component) {
	h.renderStatus(w, r, http.StatusOK, title, body)
}

func (h *Handler) renderStatus(w http.ResponseWriter, r *http.Request, status int, title string, body templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.Layout(title, body).Render(r.Context(), w); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render page", "title", title, "error", err)
	}
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.ErrorContext(r.Context(), msg, "path", r.URL.Path, "error", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}
