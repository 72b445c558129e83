package auth

import (
	"net/http"
	"slices"
	"strings"

	"github.com/ariefcatur/go-delivery-marketplace/internal/apperr"
	"github.com/ariefcatur/go-delivery-marketplace/internal/models"
)

// ErrorWriter renders a rejected request.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// Authenticate requires a valid "Authorization: Bearer <token>" header.
func Authenticate(iss *Issuer, fail ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				fail(w, r, apperr.Unauthorized("missing bearer token"))
				return
			}
			id, err := iss.Verify(strings.TrimSpace(raw))
			if err != nil {
				fail(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireType must run after Authenticate.
func RequireType(fail ErrorWriter, types ...models.UserType) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := FromContext(r.Context())
			if !ok {
				fail(w, r, apperr.Unauthorized("not authenticated"))
				return
			}
			if !slices.Contains(types, id.Type) {
				fail(w, r, apperr.Forbidden("this action requires a %s account", joinTypes(types)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func joinTypes(types []models.UserType) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = string(t)
	}
	return strings.Join(parts, " or ")
}
