package db

import "testing"

func TestOpen_EnforcesForeignKeys(t *testing.T) {
	d, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	var on int
	if err := d.QueryRow(`PRAGMA foreign_keys`).Scan(&on); err != nil {
		t.Fatal(err)
	}
	if on != 1 {
		t.Error("foreign_keys not enabled; click-event cascade depends on it")
	}
}

func TestOpen_MigratesSchema(t *testing.T) {
	d, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	for _, table := range []string{"links", "click_events"} {
		var name string
		err := d.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}

	// Migrations are idempotent.
	if err := Migrate(d); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}
