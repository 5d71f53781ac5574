package middleware

import (
	"net/http"

	"icmasure/internal/sessions"
)

// AdminOnly wraps a single handler:
// r.Post("/path", middleware.AdminOnly(handler))
func AdminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := sessions.GetAdminID(r); !ok {
			http.Redirect(w, r, "/admin/login", http.StatusFound)
			return
		}
		next(w, r)
	}
}

// AdminOnlyMW is the chi-compatible variant:
// g.Use(middleware.AdminOnlyMW)
func AdminOnlyMW(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := sessions.GetAdminID(r); !ok {
			http.Redirect(w, r, "/admin/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}
