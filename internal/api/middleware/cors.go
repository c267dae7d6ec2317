package middleware

import "net/http"

// CORS reflects the request origin with credentials allowed; the frontend is
// served from a different site and sends cookies cross-origin.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" {
			header := w.Header()
			header.Set("Access-Control-Allow-Origin", origin)
			header.Set("Access-Control-Allow-Credentials", "true")
			header.Add("Vary", "Origin")
		}
		next.ServeHTTP(w, r)
	})
}
