package models

import (
	"database/sql"
	"fmt"
)

// DeleteClickEventsBefore removes events older than cutoffMs and returns how
// many rows went away. Zero is a normal outcome.
func DeleteClickEventsBefore(db *sql.DB, cutoffMs int64) (int64, error) {
	res, err := db.Exec(`DELETE FROM click_events WHERE clicked_at < ?`, cutoffMs)
	if err != nil {
		return 0, fmt.Errorf("delete old clicks: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
