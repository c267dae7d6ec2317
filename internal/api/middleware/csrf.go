package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/WidodoTrh/api-exordium/internal/service"
)

// CSRFConfig scopes the double-submit check. The auth exchange boundary is
// exempt (it is where the CSRF cookie gets minted), and SensitivePaths lets
// nominally-safe reads opt in to the check.
type CSRFConfig struct {
	ExemptPrefix   string
	SensitivePaths []string
}

// CSRF enforces double-submit protection: the XSRF-TOKEN cookie must match
// the X-CSRF-TOKEN header on every mutating request. A cross-site attacker
// can make the browser send the cookie but cannot read it to forge the
// header.
func CSRF(cfg CSRFConfig) func(http.Handler) http.Handler {
	sensitive := make(map[string]bool, len(cfg.SensitivePaths))
	for _, path := range cfg.SensitivePaths {
		sensitive[path] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Preflight requests carry no credentials and are always let
			// through with permissive headers.
			if r.Method == http.MethodOptions {
				origin := r.Header.Get("Origin")
				if origin == "" {
					origin = "*"
				}
				header := w.Header()
				header.Set("Access-Control-Allow-Origin", origin)
				header.Set("Access-Control-Allow-Credentials", "true")
				header.Set("Access-Control-Allow-Headers", "Content-Type, "+service.CSRFHeader+", x-requested-with")
				header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				w.WriteHeader(http.StatusOK)
				return
			}

			if cfg.ExemptPrefix != "" && strings.HasPrefix(r.URL.Path, cfg.ExemptPrefix) {
				next.ServeHTTP(w, r)
				return
			}

			if mutating(r.Method) || sensitive[r.URL.Path] {
				cookie, err := r.Cookie(service.CSRFCookie)
				header := r.Header.Get(service.CSRFHeader)
				if err != nil || header == "" || cookie.Value != header {
					log.Printf("ERROR [middleware.CSRF] token mismatch on %s %s", r.Method, r.URL.Path)
					http.Error(w, "CSRF token invalid", http.StatusForbidden)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
