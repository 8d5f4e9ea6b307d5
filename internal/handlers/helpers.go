package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/relink-app/relink/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// jsonError is the minimal {error, message} body used on the public
// redirect surface. No internal detail leaks here.
func jsonError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]string{"error": code, "message": msg})
}

// adminError may carry diagnostic detail; the management surface is
// authenticated, so the asymmetry with jsonError is intentional.
func adminError(w http.ResponseWriter, status int, msg string, err error) {
	body := map[string]string{"error": http.StatusText(status), "message": msg}
	if err != nil {
		body["details"] = err.Error()
	}
	writeJSON(w, status, body)
}

// modelError maps models sentinel errors to management-surface responses.
func modelError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		adminError(w, http.StatusNotFound, "not found", nil)
	case errors.Is(err, models.ErrValidation):
		adminError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, models.ErrConflict):
		adminError(w, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, models.ErrForbidden):
		adminError(w, http.StatusForbidden, "forbidden", nil)
	case errors.Is(err, models.ErrUnauthorized):
		adminError(w, http.StatusUnauthorized, "unauthorized", nil)
	case errors.Is(err, models.ErrConfiguration):
		adminError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		adminError(w, http.StatusInternalServerError, "internal error", err)
	}
}
