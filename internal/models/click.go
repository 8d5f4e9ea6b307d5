package models

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// ClickEvent is one immutable record of a resolved redirect. Attribution
// fields are nil when the request carried no usable signal.
type ClickEvent struct {
	ID         string  `json:"id"`
	LinkID     string  `json:"link_id"`
	ShortCode  string  `json:"short_code"`
	ClickedAt  int64   `json:"clicked_at"`
	IPAddress  *string `json:"ip_address"`
	Referrer   *string `json:"referrer"`
	Country    *string `json:"country"`
	City       *string `json:"city"`
	DeviceType *string `json:"device_type"`
	Browser    *string `json:"browser"`
	OS         *string `json:"os"`
}

func InsertClickEvent(db *sql.DB, c *ClickEvent) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := db.Exec(
		`INSERT INTO click_events (id, link_id, short_code, clicked_at, ip_address, referrer, country, city, device_type, browser, os)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.LinkID, c.ShortCode, c.ClickedAt,
		nullString(c.IPAddress), nullString(c.Referrer),
		nullString(c.Country), nullString(c.City),
		nullString(c.DeviceType), nullString(c.Browser), nullString(c.OS),
	)
	if err != nil {
		return fmt.Errorf("insert click event: %w", err)
	}
	return nil
}

// RecentClickEvents returns the newest events for a link, newest first.
func RecentClickEvents(db *sql.DB, linkID string, limit int) ([]ClickEvent, error) {
	rows, err := db.Query(
		`SELECT id, link_id, short_code, clicked_at, ip_address, referrer, country, city, device_type, browser, os
		 FROM click_events WHERE link_id = ? ORDER BY clicked_at DESC, id DESC LIMIT ?`,
		linkID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent clicks: %w", err)
	}
	defer rows.Close()

	var events []ClickEvent
	for rows.Next() {
		var c ClickEvent
		var ip, ref, country, city, device, browser, os sql.NullString
		if err := rows.Scan(&c.ID, &c.LinkID, &c.ShortCode, &c.ClickedAt, &ip, &ref, &country, &city, &device, &browser, &os); err != nil {
			return nil, fmt.Errorf("scan click event: %w", err)
		}
		c.IPAddress = fromNull(ip)
		c.Referrer = fromNull(ref)
		c.Country = fromNull(country)
		c.City = fromNull(city)
		c.DeviceType = fromNull(device)
		c.Browser = fromNull(browser)
		c.OS = fromNull(os)
		events = append(events, c)
	}
	return events, rows.Err()
}

func fromNull(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
