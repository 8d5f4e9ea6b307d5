package handlers

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/relink-app/relink/internal/config"
	"github.com/relink-app/relink/internal/models"
	"github.com/relink-app/relink/internal/shortcode"
)

type LinkHandler struct {
	DB  *sql.DB
	Cfg *config.Config
}

type createLinkRequest struct {
	ShortCode      string `json:"short_code"`
	DestinationURL string `json:"destination_url"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	ExpiresAt      *int64 `json:"expires_at"`
	Anonymous      bool   `json:"anonymous"`
}

type updateLinkRequest struct {
	DestinationURL *string `json:"destination_url"`
	Title          *string `json:"title"`
	Description    *string `json:"description"`
	ExpiresAt      *int64  `json:"expires_at"`
	ClearExpires   bool    `json:"clear_expires"`
	IsActive       *bool   `json:"is_active"`
}

type listResponse struct {
	Links []models.Link `json:"links"`
	Total int           `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

func (h *LinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	var req createLinkRequest
	if err := dec.Decode(&req); err != nil {
		adminError(w, http.StatusBadRequest, "invalid JSON", nil)
		return
	}

	if err := models.ValidateDestinationURL(req.DestinationURL); err != nil {
		modelError(w, err)
		return
	}

	// Generate a code when none is supplied. Collisions at this alphabet
	// and length are not an expected production outcome; exhausting the
	// retries is treated as unrecoverable, not a client error.
	if req.ShortCode == "" {
		for i := 0; i < 5; i++ {
			candidate, err := shortcode.Generate()
			if err != nil {
				adminError(w, http.StatusInternalServerError, "failed to generate short code", err)
				return
			}
			taken, err := models.ShortCodeTaken(h.DB, candidate)
			if err != nil {
				adminError(w, http.StatusInternalServerError, "internal error", err)
				return
			}
			if !taken {
				req.ShortCode = candidate
				break
			}
		}
		if req.ShortCode == "" {
			log.Printf("links: short code generation exhausted retries, code space may be saturated")
			adminError(w, http.StatusInternalServerError, "short code space exhausted", nil)
			return
		}
	}

	link := &models.Link{
		ShortCode:      req.ShortCode,
		DestinationURL: req.DestinationURL,
		Title:          req.Title,
		Description:    req.Description,
		ExpiresAt:      req.ExpiresAt,
	}
	if !req.Anonymous {
		principal := Principal(r.Context())
		link.OwnerID = &principal
	}

	if err := models.CreateLink(h.DB, link); err != nil {
		modelError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, link)
}

func (h *LinkHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 25
	}
	if limit > 100 {
		limit = 100
	}

	links, total, err := models.ListLinksByOwner(h.DB, Principal(r.Context()), limit, (page-1)*limit)
	if err != nil {
		modelError(w, err)
		return
	}
	if links == nil {
		links = []models.Link{}
	}
	writeJSON(w, http.StatusOK, listResponse{Links: links, Total: total, Page: page, Limit: limit})
}

func (h *LinkHandler) Get(w http.ResponseWriter, r *http.Request) {
	link, err := models.GetLinkByID(h.DB, chi.URLParam(r, "id"))
	if err != nil {
		modelError(w, err)
		return
	}
	if !models.CanModify(link.OwnerID, Principal(r.Context()), h.Cfg.AllowAnonymousEdit) {
		adminError(w, http.StatusForbidden, "forbidden", nil)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

func (h *LinkHandler) Update(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	var req updateLinkRequest
	if err := dec.Decode(&req); err != nil {
		adminError(w, http.StatusBadRequest, "invalid JSON", nil)
		return
	}

	patch := models.LinkPatch{
		DestinationURL: req.DestinationURL,
		Title:          req.Title,
		Description:    req.Description,
		ExpiresAt:      req.ExpiresAt,
		ClearExpires:   req.ClearExpires,
		IsActive:       req.IsActive,
	}
	link, err := models.UpdateLink(h.DB, chi.URLParam(r, "id"), patch, Principal(r.Context()), h.Cfg.AllowAnonymousEdit)
	if err != nil {
		modelError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

func (h *LinkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := models.DeleteLink(h.DB, chi.URLParam(r, "id"), Principal(r.Context()), h.Cfg.AllowAnonymousEdit)
	if err != nil {
		modelError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
