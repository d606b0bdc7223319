package web

import (
	"io/fs"
	"net/http"

	"github.com/ericfisherdev/graduates/internal/domain/model"
)

// RegisterRoutes registers all web GUI routes on the provided mux.
// Admin screens live under /admin/, the public listing at /graduates.
// Static assets are served from the embedded filesystem at /static/*.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	// Static assets (embedded via go:embed).
	staticFS, _ := fs.Sub(StaticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	// Admin screens require the operator token; graduate editing also
	// needs the capability granted on install.
	mux.HandleFunc("GET /admin/api-settings", h.requireOperator("", h.APISettings))
	mux.HandleFunc("POST /admin/api-settings", h.requireOperator("", h.SaveAPISettings))
	mux.HandleFunc("POST /admin/api-settings/generate", h.requireOperator("", h.GenerateAPIKey))

	edit := model.CapabilityEditGraduates
	mux.HandleFunc("GET /admin/graduates", h.requireOperator(edit, h.AdminGraduates))
	mux.HandleFunc("GET /admin/graduates/new", h.requireOperator(edit, h.NewGraduate))
	mux.HandleFunc("POST /admin/graduates", h.requireOperator(edit, h.CreateGraduate))
	mux.HandleFunc("GET /admin/graduates/{id}/edit", h.requireOperator(edit, h.EditGraduate))
	mux.HandleFunc("POST /admin/graduates/{id}", h.requireOperator(edit, h.UpdateGraduate))

	// Public listing.
	mux.HandleFunc("GET /graduates", h.PublicGraduates)
	mux.HandleFunc("GET /{$}", h.PublicGraduates)
}
