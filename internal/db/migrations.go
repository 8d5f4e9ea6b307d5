package db

import "database/sql"

func Migrate(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}

// Timestamps are epoch milliseconds. Short codes are stored case-sensitively
// but must be unique case-insensitively, hence the expression index.
const schema = `
CREATE TABLE IF NOT EXISTS links (
    id              TEXT    PRIMARY KEY,
    short_code      TEXT    NOT NULL,
    destination_url TEXT    NOT NULL,
    owner_id        TEXT,
    title           TEXT    NOT NULL DEFAULT '',
    description     TEXT    NOT NULL DEFAULT '',
    created_at      INTEGER NOT NULL,
    updated_at      INTEGER NOT NULL,
    expires_at      INTEGER,
    is_active       INTEGER NOT NULL DEFAULT 1,
    click_count     INTEGER NOT NULL DEFAULT 0
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_links_short_code_nocase ON links(lower(short_code));
CREATE INDEX IF NOT EXISTS idx_links_owner_id ON links(owner_id);

CREATE TABLE IF NOT EXISTS click_events (
    id          TEXT    PRIMARY KEY,
    link_id     TEXT    NOT NULL,
    short_code  TEXT    NOT NULL,
    clicked_at  INTEGER NOT NULL,
    ip_address  TEXT,
    referrer    TEXT,
    country     TEXT,
    city        TEXT,
    device_type TEXT,
    browser     TEXT,
    os          TEXT,
    FOREIGN KEY (link_id) REFERENCES links(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_click_events_link_id ON click_events(link_id);
CREATE INDEX IF NOT EXISTS idx_click_events_clicked_at ON click_events(clicked_at);
`
