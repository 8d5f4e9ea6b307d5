package models

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/relink-app/relink/internal/shortcode"
)

type Link struct {
	ID             string  `json:"id"`
	ShortCode      string  `json:"short_code"`
	DestinationURL string  `json:"destination_url"`
	OwnerID        *string `json:"owner_id"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	CreatedAt      int64   `json:"created_at"`
	UpdatedAt      int64   `json:"updated_at"`
	ExpiresAt      *int64  `json:"expires_at"`
	IsActive       bool    `json:"is_active"`
	ClickCount     int64   `json:"click_count"`
}

// IsExpired reports whether the link has an expiry in the past.
func (l *Link) IsExpired(now time.Time) bool {
	return l.ExpiresAt != nil && *l.ExpiresAt <= now.UnixMilli()
}

// CanModify is the single authorization rule for link mutation. Owned links
// may only be touched by their owner; unowned links are open to any
// authenticated principal when allowAnonymous is set.
func CanModify(ownerID *string, principal string, allowAnonymous bool) bool {
	if ownerID == nil {
		return allowAnonymous
	}
	return principal == *ownerID
}

// ValidateDestinationURL accepts absolute http/https URLs and nothing else.
func ValidateDestinationURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("%w: destination_url is required", ErrValidation)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: destination_url is not a valid URL", ErrValidation)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: destination_url scheme must be http or https", ErrValidation)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: destination_url must be absolute", ErrValidation)
	}
	return nil
}

// CreateLink validates the destination and short code, enforces
// case-insensitive code uniqueness, and inserts the row. ID and timestamps
// are assigned here.
func CreateLink(db *sql.DB, l *Link) error {
	if err := ValidateDestinationURL(l.DestinationURL); err != nil {
		return err
	}
	if !shortcode.Valid(l.ShortCode) {
		return fmt.Errorf("%w: short_code must match %s", ErrValidation, shortcode.Pattern)
	}

	taken, err := ShortCodeTaken(db, l.ShortCode)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: %q", ErrConflict, l.ShortCode)
	}

	now := time.Now().UnixMilli()
	l.ID = uuid.NewString()
	l.CreatedAt = now
	l.UpdatedAt = now
	l.IsActive = true
	l.ClickCount = 0

	_, err = db.Exec(
		`INSERT INTO links (id, short_code, destination_url, owner_id, title, description, created_at, updated_at, expires_at, is_active, click_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1, 0)`,
		l.ID, l.ShortCode, l.DestinationURL, nullString(l.OwnerID), l.Title, l.Description, l.CreatedAt, l.UpdatedAt, nullInt(l.ExpiresAt),
	)
	if err != nil {
		// Two concurrent creates can both pass the taken-check; the unique
		// index settles the race and the loser gets a conflict, not a 500.
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %q", ErrConflict, l.ShortCode)
		}
		return fmt.Errorf("insert link: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// ShortCodeTaken reports whether any link already uses the code, ignoring case.
func ShortCodeTaken(db *sql.DB, code string) (bool, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM links WHERE lower(short_code) = lower(?)`, code).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("short code lookup: %w", err)
	}
	return count > 0, nil
}

// GetLinkByShortCode resolves a code to its link regardless of active state;
// the redirect handler decides what an archived link means. The lookup is
// exact-case and context-bound so the public surface can enforce a timeout.
func GetLinkByShortCode(ctx context.Context, db *sql.DB, code string) (*Link, error) {
	row := db.QueryRowContext(ctx,
		`SELECT id, short_code, destination_url, owner_id, title, description, created_at, updated_at, expires_at, is_active, click_count
		 FROM links WHERE short_code = ?`, code)
	return scanLink(row)
}

func GetLinkByID(db *sql.DB, id string) (*Link, error) {
	row := db.QueryRow(
		`SELECT id, short_code, destination_url, owner_id, title, description, created_at, updated_at, expires_at, is_active, click_count
		 FROM links WHERE id = ?`, id)
	return scanLink(row)
}

// LinkPatch carries partial updates. Nil pointers leave the field untouched;
// ClearExpires removes the expiry. Short codes are immutable by design.
type LinkPatch struct {
	DestinationURL *string
	Title          *string
	Description    *string
	ExpiresAt      *int64
	ClearExpires   bool
	IsActive       *bool
}

func UpdateLink(db *sql.DB, id string, patch LinkPatch, principal string, allowAnonymous bool) (*Link, error) {
	l, err := GetLinkByID(db, id)
	if err != nil {
		return nil, err
	}
	if !CanModify(l.OwnerID, principal, allowAnonymous) {
		return nil, fmt.Errorf("%w: link %s", ErrForbidden, id)
	}

	if patch.DestinationURL != nil {
		if err := ValidateDestinationURL(*patch.DestinationURL); err != nil {
			return nil, err
		}
		l.DestinationURL = *patch.DestinationURL
	}
	if patch.Title != nil {
		l.Title = *patch.Title
	}
	if patch.Description != nil {
		l.Description = *patch.Description
	}
	if patch.ClearExpires {
		l.ExpiresAt = nil
	} else if patch.ExpiresAt != nil {
		l.ExpiresAt = patch.ExpiresAt
	}
	if patch.IsActive != nil {
		l.IsActive = *patch.IsActive
	}
	l.UpdatedAt = time.Now().UnixMilli()

	_, err = db.Exec(
		`UPDATE links SET destination_url = ?, title = ?, description = ?, expires_at = ?, is_active = ?, updated_at = ? WHERE id = ?`,
		l.DestinationURL, l.Title, l.Description, nullInt(l.ExpiresAt), boolToInt(l.IsActive), l.UpdatedAt, l.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update link: %w", err)
	}
	return l, nil
}

// DeleteLink removes the link and, via the cascading foreign key, its click
// events, so aggregates never see orphaned rows.
func DeleteLink(db *sql.DB, id string, principal string, allowAnonymous bool) error {
	l, err := GetLinkByID(db, id)
	if err != nil {
		return err
	}
	if !CanModify(l.OwnerID, principal, allowAnonymous) {
		return fmt.Errorf("%w: link %s", ErrForbidden, id)
	}
	if _, err := db.Exec(`DELETE FROM links WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete link: %w", err)
	}
	return nil
}

// IncrementClickCount bumps the advisory counter with an atomic add at the
// store. Never read-modify-write this in application code.
func IncrementClickCount(db *sql.DB, id string) error {
	_, err := db.Exec(`UPDATE links SET click_count = click_count + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("increment click count: %w", err)
	}
	return nil
}

func ListLinksByOwner(db *sql.DB, ownerID string, limit, offset int) ([]Link, int, error) {
	var total int
	if err := db.QueryRow(`SELECT COUNT(*) FROM links WHERE owner_id = ?`, ownerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count links: %w", err)
	}

	rows, err := db.Query(
		`SELECT id, short_code, destination_url, owner_id, title, description, created_at, updated_at, expires_at, is_active, click_count
		 FROM links WHERE owner_id = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		ownerID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list links: %w", err)
	}
	defer rows.Close()

	var links []Link
	for rows.Next() {
		l, err := scanLinkRows(rows)
		if err != nil {
			return nil, 0, err
		}
		links = append(links, *l)
	}
	return links, total, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLink(row *sql.Row) (*Link, error) {
	l, err := scanFrom(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return l, err
}

func scanLinkRows(rows *sql.Rows) (*Link, error) {
	return scanFrom(rows)
}

func scanFrom(s rowScanner) (*Link, error) {
	var l Link
	var owner sql.NullString
	var expires sql.NullInt64
	var active int
	err := s.Scan(&l.ID, &l.ShortCode, &l.DestinationURL, &owner, &l.Title, &l.Description,
		&l.CreatedAt, &l.UpdatedAt, &expires, &active, &l.ClickCount)
	if err != nil {
		return nil, err
	}
	if owner.Valid {
		l.OwnerID = &owner.String
	}
	if expires.Valid {
		l.ExpiresAt = &expires.Int64
	}
	l.IsActive = active == 1
	return &l, nil
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullInt(n *int64) any {
	if n == nil {
		return nil
	}
	return *n
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
