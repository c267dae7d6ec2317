package handlers

import (
	"net/http"

	"github.com/WidodoTrh/api-exordium/internal/api/middleware"
)

type DataHandler struct{}

func NewDataHandler() *DataHandler {
	return &DataHandler{}
}

// Get serves the protected sample payload. The route is registered as
// CSRF-sensitive despite being a GET.
func (h *DataHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"msg":  "protected data",
		"user": user.Email,
	})
}
