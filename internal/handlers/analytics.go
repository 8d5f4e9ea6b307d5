package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/relink-app/relink/internal/config"
	"github.com/relink-app/relink/internal/models"
	"github.com/relink-app/relink/internal/retention"
)

type AnalyticsHandler struct {
	DB  *sql.DB
	Cfg *config.Config
}

type linkReport struct {
	ShortCode    string               `json:"short_code"`
	TotalClicks  int                  `json:"total_clicks"`
	ClicksByDate []models.DateCount   `json:"clicks_by_date"`
	Countries    []models.CountryCount `json:"countries"`
	Devices      []models.DeviceCount  `json:"devices"`
	Browsers     []models.BrowserCount `json:"browsers"`
	RecentClicks []models.ClickEvent  `json:"recent_clicks"`
}

type overallReport struct {
	StartDate    string              `json:"start_date"`
	EndDate      string              `json:"end_date"`
	TotalClicks  int                 `json:"total_clicks"`
	ActiveLinks  int                 `json:"active_links"`
	TotalLinks   int                 `json:"total_links"`
	ClicksByDate []models.DateCount  `json:"clicks_by_date"`
	TopLinks     []models.LinkClicks `json:"top_links"`
	Countries    []models.CountryCount `json:"countries"`
	Devices      []models.DeviceCount  `json:"devices"`
}

// LinkAnalytics is the full, owner-scoped per-link report.
func (h *AnalyticsHandler) LinkAnalytics(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	link, err := models.GetLinkByShortCode(r.Context(), h.DB, code)
	if err != nil {
		modelError(w, err)
		return
	}
	if !models.CanModify(link.OwnerID, Principal(r.Context()), h.Cfg.AllowAnonymousEdit) {
		adminError(w, http.StatusForbidden, "forbidden", nil)
		return
	}

	report := linkReport{ShortCode: link.ShortCode}
	if report.TotalClicks, err = models.ClickCountForLink(h.DB, link.ID); err != nil {
		modelError(w, err)
		return
	}
	since := time.Now().UTC().AddDate(0, 0, -30).UnixMilli()
	if report.ClicksByDate, err = models.ClicksByDateForLink(h.DB, link.ID, since); err != nil {
		modelError(w, err)
		return
	}
	if report.Countries, err = models.TopCountriesForLink(h.DB, link.ID, 10); err != nil {
		modelError(w, err)
		return
	}
	if report.Devices, err = models.DevicesForLink(h.DB, link.ID); err != nil {
		modelError(w, err)
		return
	}
	if report.Browsers, err = models.TopBrowsersForLink(h.DB, link.ID, 5); err != nil {
		modelError(w, err)
		return
	}
	if report.RecentClicks, err = models.RecentClickEvents(h.DB, link.ID, 20); err != nil {
		modelError(w, err)
		return
	}
	fillEmpty(&report)
	writeJSON(w, http.StatusOK, report)
}

// PublicStats is the unauthenticated, redacted variant: never the full
// report, only the headline numbers.
func (h *AnalyticsHandler) PublicStats(w http.ResponseWriter, r *http.Request) {
	link, err := models.GetLinkByShortCode(r.Context(), h.DB, chi.URLParam(r, "code"))
	if err != nil {
		modelError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"short_code":   link.ShortCode,
		"total_clicks": link.ClickCount,
		"created_at":   link.CreatedAt,
	})
}

// OverallStats aggregates across all of the owner's links over an inclusive
// date range, defaulting to the current UTC calendar month. An owner with
// zero links gets a zero-valued report.
func (h *AnalyticsHandler) OverallStats(w http.ResponseWriter, r *http.Request) {
	startMs, endMs, label, err := parseDateRange(r.URL.Query().Get("startDate"), r.URL.Query().Get("endDate"))
	if err != nil {
		adminError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	owner := Principal(r.Context())
	report := overallReport{StartDate: label[0], EndDate: label[1]}
	if report.TotalClicks, err = models.ClickCountForOwner(h.DB, owner, startMs, endMs); err != nil {
		modelError(w, err)
		return
	}
	if report.ActiveLinks, report.TotalLinks, err = models.LinkCountsForOwner(h.DB, owner); err != nil {
		modelError(w, err)
		return
	}
	if report.ClicksByDate, err = models.ClickTrendForOwner(h.DB, owner, startMs, endMs); err != nil {
		modelError(w, err)
		return
	}
	if report.TopLinks, err = models.TopLinksForOwner(h.DB, owner, startMs, endMs, 10); err != nil {
		modelError(w, err)
		return
	}
	if report.Countries, err = models.TopCountriesForOwner(h.DB, owner, startMs, endMs, 10); err != nil {
		modelError(w, err)
		return
	}
	if report.Devices, err = models.DevicesForOwner(h.DB, owner, startMs, endMs); err != nil {
		modelError(w, err)
		return
	}
	if report.ClicksByDate == nil {
		report.ClicksByDate = []models.DateCount{}
	}
	if report.TopLinks == nil {
		report.TopLinks = []models.LinkClicks{}
	}
	if report.Countries == nil {
		report.Countries = []models.CountryCount{}
	}
	if report.Devices == nil {
		report.Devices = []models.DeviceCount{}
	}
	writeJSON(w, http.StatusOK, report)
}

// Cleanup triggers a manual retention run. Bad bounds are a configuration
// error, rejected rather than retried.
func (h *AnalyticsHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	days := h.Cfg.RetentionDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			adminError(w, http.StatusBadRequest, "days must be an integer", nil)
			return
		}
		days = n
	}
	res, err := retention.Cleanup(h.DB, days)
	if err != nil {
		modelError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// parseDateRange validates startDate/endDate (YYYY-MM-DD, both or neither,
// start ≤ end) and returns a [start, end) range in epoch milliseconds plus
// the labels echoed back in the report.
func parseDateRange(startRaw, endRaw string) (int64, int64, [2]string, error) {
	var labels [2]string
	if (startRaw == "") != (endRaw == "") {
		return 0, 0, labels, errRange("startDate and endDate must be supplied together")
	}

	if startRaw == "" {
		now := time.Now().UTC()
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, 0)
		labels[0] = start.Format("2006-01-02")
		labels[1] = end.AddDate(0, 0, -1).Format("2006-01-02")
		return start.UnixMilli(), end.UnixMilli(), labels, nil
	}

	start, err := time.ParseInLocation("2006-01-02", startRaw, time.UTC)
	if err != nil {
		return 0, 0, labels, errRange("startDate must be YYYY-MM-DD")
	}
	end, err := time.ParseInLocation("2006-01-02", endRaw, time.UTC)
	if err != nil {
		return 0, 0, labels, errRange("endDate must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return 0, 0, labels, errRange("startDate must not be after endDate")
	}
	labels[0] = startRaw
	labels[1] = endRaw
	// Inclusive of the whole end date.
	return start.UnixMilli(), end.AddDate(0, 0, 1).UnixMilli(), labels, nil
}

type errRange string

func (e errRange) Error() string { return string(e) }

func fillEmpty(r *linkReport) {
	if r.ClicksByDate == nil {
		r.ClicksByDate = []models.DateCount{}
	}
	if r.Countries == nil {
		r.Countries = []models.CountryCount{}
	}
	if r.Devices == nil {
		r.Devices = []models.DeviceCount{}
	}
	if r.Browsers == nil {
		r.Browsers = []models.BrowserCount{}
	}
	if r.RecentClicks == nil {
		r.RecentClicks = []models.ClickEvent{}
	}
}
