package models

import (
	"database/sql"
	"fmt"
)

type DateCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type CountryCount struct {
	Country string `json:"country"`
	Count   int    `json:"count"`
}

type DeviceCount struct {
	DeviceType string `json:"device_type"`
	Count      int    `json:"count"`
}

type BrowserCount struct {
	Browser string `json:"browser"`
	Count   int    `json:"count"`
}

type LinkClicks struct {
	Link   Link `json:"link"`
	Clicks int  `json:"clicks"`
}

// clicked_at is epoch milliseconds; bucket to a UTC calendar date in SQL.
const dateExpr = `date(clicked_at / 1000, 'unixepoch')`

func ClickCountForLink(db *sql.DB, linkID string) (int, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM click_events WHERE link_id = ?`, linkID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("click count: %w", err)
	}
	return count, nil
}

// ClicksByDateForLink groups a link's clicks by calendar date from sinceMs
// onward, oldest first.
func ClicksByDateForLink(db *sql.DB, linkID string, sinceMs int64) ([]DateCount, error) {
	rows, err := db.Query(
		`SELECT `+dateExpr+` AS day, COUNT(*) FROM click_events
		 WHERE link_id = ? AND clicked_at >= ?
		 GROUP BY day ORDER BY day ASC`,
		linkID, sinceMs,
	)
	if err != nil {
		return nil, fmt.Errorf("clicks by date: %w", err)
	}
	return scanDateCounts(rows)
}

func TopCountriesForLink(db *sql.DB, linkID string, limit int) ([]CountryCount, error) {
	rows, err := db.Query(
		`SELECT country, COUNT(*) AS cnt FROM click_events
		 WHERE link_id = ? AND country IS NOT NULL AND country != ''
		 GROUP BY country ORDER BY cnt DESC LIMIT ?`,
		linkID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("top countries: %w", err)
	}
	return scanCountryCounts(rows)
}

func DevicesForLink(db *sql.DB, linkID string) ([]DeviceCount, error) {
	rows, err := db.Query(
		`SELECT device_type, COUNT(*) AS cnt FROM click_events
		 WHERE link_id = ? AND device_type IS NOT NULL AND device_type != ''
		 GROUP BY device_type ORDER BY cnt DESC`,
		linkID,
	)
	if err != nil {
		return nil, fmt.Errorf("devices: %w", err)
	}
	return scanDeviceCounts(rows)
}

func TopBrowsersForLink(db *sql.DB, linkID string, limit int) ([]BrowserCount, error) {
	rows, err := db.Query(
		`SELECT browser, COUNT(*) AS cnt FROM click_events
		 WHERE link_id = ? AND browser IS NOT NULL AND browser != ''
		 GROUP BY browser ORDER BY cnt DESC LIMIT ?`,
		linkID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("top browsers: %w", err)
	}
	return scanBrowserCounts(rows)
}

// Owner-wide queries take a [startMs, endMs) range in epoch milliseconds.

func ClickCountForOwner(db *sql.DB, ownerID string, startMs, endMs int64) (int, error) {
	var count int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM click_events c
		 JOIN links l ON l.id = c.link_id
		 WHERE l.owner_id = ? AND c.clicked_at >= ? AND c.clicked_at < ?`,
		ownerID, startMs, endMs,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("owner click count: %w", err)
	}
	return count, nil
}

func LinkCountsForOwner(db *sql.DB, ownerID string) (active, total int, err error) {
	err = db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(is_active), 0) FROM links WHERE owner_id = ?`,
		ownerID,
	).Scan(&total, &active)
	if err != nil {
		return 0, 0, fmt.Errorf("owner link counts: %w", err)
	}
	return active, total, nil
}

func ClickTrendForOwner(db *sql.DB, ownerID string, startMs, endMs int64) ([]DateCount, error) {
	rows, err := db.Query(
		`SELECT `+dateExpr+` AS day, COUNT(*) FROM click_events c
		 JOIN links l ON l.id = c.link_id
		 WHERE l.owner_id = ? AND c.clicked_at >= ? AND c.clicked_at < ?
		 GROUP BY day ORDER BY day ASC`,
		ownerID, startMs, endMs,
	)
	if err != nil {
		return nil, fmt.Errorf("owner click trend: %w", err)
	}
	return scanDateCounts(rows)
}

// TopLinksForOwner ranks the owner's links by clicks in range, joined back
// to link metadata for display.
func TopLinksForOwner(db *sql.DB, ownerID string, startMs, endMs int64, limit int) ([]LinkClicks, error) {
	rows, err := db.Query(
		`SELECT l.id, l.short_code, l.destination_url, l.owner_id, l.title, l.description,
		        l.created_at, l.updated_at, l.expires_at, l.is_active, l.click_count,
		        COUNT(c.id) AS cnt
		 FROM links l
		 JOIN click_events c ON c.link_id = l.id AND c.clicked_at >= ? AND c.clicked_at < ?
		 WHERE l.owner_id = ?
		 GROUP BY l.id ORDER BY cnt DESC LIMIT ?`,
		startMs, endMs, ownerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("top links: %w", err)
	}
	defer rows.Close()

	var results []LinkClicks
	for rows.Next() {
		var lc LinkClicks
		var owner sql.NullString
		var expires sql.NullInt64
		var active int
		if err := rows.Scan(
			&lc.Link.ID, &lc.Link.ShortCode, &lc.Link.DestinationURL, &owner, &lc.Link.Title, &lc.Link.Description,
			&lc.Link.CreatedAt, &lc.Link.UpdatedAt, &expires, &active, &lc.Link.ClickCount, &lc.Clicks,
		); err != nil {
			return nil, fmt.Errorf("scan top link: %w", err)
		}
		if owner.Valid {
			lc.Link.OwnerID = &owner.String
		}
		if expires.Valid {
			lc.Link.ExpiresAt = &expires.Int64
		}
		lc.Link.IsActive = active == 1
		results = append(results, lc)
	}
	return results, rows.Err()
}

func TopCountriesForOwner(db *sql.DB, ownerID string, startMs, endMs int64, limit int) ([]CountryCount, error) {
	rows, err := db.Query(
		`SELECT c.country, COUNT(*) AS cnt FROM click_events c
		 JOIN links l ON l.id = c.link_id
		 WHERE l.owner_id = ? AND c.clicked_at >= ? AND c.clicked_at < ?
		   AND c.country IS NOT NULL AND c.country != ''
		 GROUP BY c.country ORDER BY cnt DESC LIMIT ?`,
		ownerID, startMs, endMs, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("owner countries: %w", err)
	}
	return scanCountryCounts(rows)
}

func DevicesForOwner(db *sql.DB, ownerID string, startMs, endMs int64) ([]DeviceCount, error) {
	rows, err := db.Query(
		`SELECT c.device_type, COUNT(*) AS cnt FROM click_events c
		 JOIN links l ON l.id = c.link_id
		 WHERE l.owner_id = ? AND c.clicked_at >= ? AND c.clicked_at < ?
		   AND c.device_type IS NOT NULL AND c.device_type != ''
		 GROUP BY c.device_type ORDER BY cnt DESC`,
		ownerID, startMs, endMs,
	)
	if err != nil {
		return nil, fmt.Errorf("owner devices: %w", err)
	}
	return scanDeviceCounts(rows)
}

func scanDateCounts(rows *sql.Rows) ([]DateCount, error) {
	defer rows.Close()
	var results []DateCount
	for rows.Next() {
		var d DateCount
		if err := rows.Scan(&d.Date, &d.Count); err != nil {
			return nil, fmt.Errorf("scan date count: %w", err)
		}
		results = append(results, d)
	}
	return results, rows.Err()
}

func scanCountryCounts(rows *sql.Rows) ([]CountryCount, error) {
	defer rows.Close()
	var results []CountryCount
	for rows.Next() {
		var c CountryCount
		if err := rows.Scan(&c.Country, &c.Count); err != nil {
			return nil, fmt.Errorf("scan country count: %w", err)
		}
		results = append(results, c)
	}
	return results, rows.Err()
}

func scanDeviceCounts(rows *sql.Rows) ([]DeviceCount, error) {
	defer rows.Close()
	var results []DeviceCount
	for rows.Next() {
		var d DeviceCount
		if err := rows.Scan(&d.DeviceType, &d.Count); err != nil {
			return nil, fmt.Errorf("scan device count: %w", err)
		}
		results = append(results, d)
	}
	return results, rows.Err()
}

func scanBrowserCounts(rows *sql.Rows) ([]BrowserCount, error) {
	defer rows.Close()
	var results []BrowserCount
	for rows.Next() {
		var b BrowserCount
		if err := rows.Scan(&b.Browser, &b.Count); err != nil {
			return nil, fmt.Errorf("scan browser count: %w", err)
		}
		results = append(results, b)
	}
	return results, rows.Err()
}
