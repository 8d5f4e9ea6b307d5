package handlers

import (
	"net/http"
	"time"
)

func Health(service string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "ok",
			"service":   service,
			"timestamp": time.Now().UnixMilli(),
		})
	}
}
