package handlers

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/relink-app/relink/internal/analytics"
	"github.com/relink-app/relink/internal/geo"
	"github.com/relink-app/relink/internal/models"
)

// RedirectHandler is the public resolution surface. Per request it walks a
// small state machine: not found → 404, archived → redirect to the fallback
// destination, expired → 410, active → record the click off-path and 302.
type RedirectHandler struct {
	DB            *sql.DB
	Recorder      *analytics.Recorder
	ArchivedURL   string
	LookupTimeout time.Duration
}

func (h *RedirectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		code = strings.TrimPrefix(r.URL.Path, "/")
	}
	if code == "" {
		jsonError(w, http.StatusNotFound, "not_found", "short link not found")
		return
	}

	ctx := r.Context()
	if h.LookupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.LookupTimeout)
		defer cancel()
	}

	link, err := models.GetLinkByShortCode(ctx, h.DB, code)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			jsonError(w, http.StatusNotFound, "not_found", "short link not found")
			return
		}
		// Fail closed rather than guess a destination.
		log.Printf("redirect: lookup %q: %v", code, err)
		jsonError(w, http.StatusServiceUnavailable, "unavailable", "temporarily unavailable")
		return
	}

	if !link.IsActive {
		// Archived links route to the fallback destination; no click.
		http.Redirect(w, r, h.ArchivedURL, http.StatusFound)
		return
	}

	if link.IsExpired(time.Now()) {
		jsonError(w, http.StatusGone, "gone", "short link has expired")
		return
	}

	loc := geo.FromHeaders(r)
	h.Recorder.Push(analytics.RawClick{
		LinkID:    link.ID,
		ShortCode: link.ShortCode,
		ClickedAt: time.Now().UTC(),
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
		Referrer:  r.Referer(),
		Country:   loc.Country,
		City:      loc.City,
	})

	http.Redirect(w, r, link.DestinationURL, http.StatusFound)
}

// clientIP prefers the edge-provided real IP, then the first forwarded-for
// hop, then the socket address.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		return ip
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
