package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ericfisherdev/graduates/internal/application"
)

const operatorRealm = `Basic realm="graduates admin", charset="UTF-8"`

// operatorToken reads the operator token from Basic auth (password part) or
// an "Authorization: Bearer" header.
func operatorToken(r *http.Request) string {
	if _, password, ok := r.BasicAuth(); ok {
		return password
	}
	auth := r.Header.Get("Authorization")
	if len(auth) > len("Bearer ") && strings.EqualFold(auth[:len("Bearer ")], "Bearer ") {
		return strings.TrimSpace(auth[len("Bearer "):])
	}
	return ""
}

// requireOperator runs next only for an authenticated operator holding
// capability. An empty capability checks the token alone.
func (h *Handler) requireOperator(capability string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h.operators.Authorize(r.Context(), operatorToken(r), capability)
		switch {
		case err == nil:
			next(w, r)
		case errors.Is(err, application.ErrOperatorUnauthenticated):
			w.Header().Set("WWW-Authenticate", operatorRealm)
			http.Error(w, "Authentication required.", http.StatusUnauthorized)
		case errors.Is(err, application.ErrAdminDisabled), errors.Is(err, application.ErrOperatorForbidden):
			h.logger.WarnContext(r.Context(), "admin access denied", "path", r.URL.Path, "reason", err)
			http.Error(w, "Sorry, you are not allowed to access this page.", http.StatusForbidden)
		default:
			h.serverError(w, r, "failed to authorize operator", err)
		}
	}
}
