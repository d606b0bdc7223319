package web

import (
	"crypto/rand"
	"crypto/subtle"
	"net/http"

	"github.com/ericfisherdev/graduates/internal/adapter/driving/web/templates"
)

// Every admin form posts the token back in csrfFormField; the cookie holds
// the same value (double-submit).
const (
	csrfCookieName = "graduates_csrf"
	csrfFormField  = templates.CSRFField
	csrfCookiePath = "/admin/"
)

// csrfToken returns the token already bound to the browser, or binds a new one.
func csrfToken(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(csrfCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	token := rand.Text()
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     csrfCookiePath,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   r.TLS != nil,
	})
	return token
}

// checkCSRF writes 403 and returns false unless the submitted form token
// matches the cookie.
func (h *Handler) checkCSRF(w http.ResponseWriter, r *http.Request) bool {
	cookie, err := r.Cookie(csrfCookieName)
	submitted := r.PostFormValue(csrfFormField)
	if err == nil && cookie.Value != "" && submitted != "" &&
		subtle.ConstantTimeCompare([]byte(submitted), []byte(cookie.Value)) == 1 {
		return true
	}

	h.logger.WarnContext(r.Context(), "rejected admin form with bad CSRF token", "path", r.URL.Path)
	http.Error(w, "Security check failed.", http.StatusForbidden)
	return false
}
