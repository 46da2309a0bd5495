package controllers

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Helper functions for consistent response handling

func sendJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func sendError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// wantsJSON reports whether the response should be JSON rather than a page.
func wantsJSON(r *http.Request) bool {
	return r.Header.Get("Accept") == "application/json" || strings.HasPrefix(r.URL.Path, "/api")
}
