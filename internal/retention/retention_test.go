package retention

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/relink-app/relink/internal/db"
	"github.com/relink-app/relink/internal/models"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func seedClick(t *testing.T, d *sql.DB, linkID, code string, at time.Time) {
	t.Helper()
	c := &models.ClickEvent{LinkID: linkID, ShortCode: code, ClickedAt: at.UnixMilli()}
	if err := models.InsertClickEvent(d, c); err != nil {
		t.Fatal(err)
	}
}

func TestCleanup_RejectsOutOfBoundsDays(t *testing.T) {
	d := testDB(t)
	for _, days := range []int{0, -5, 3651} {
		_, err := Cleanup(d, days)
		if !errors.Is(err, models.ErrConfiguration) {
			t.Errorf("days=%d: err = %v, want ErrConfiguration", days, err)
		}
	}
}

func TestCleanup_EmptyStoreDeletesNothing(t *testing.T) {
	d := testDB(t)
	res, err := Cleanup(d, 365)
	if err != nil {
		t.Fatal(err)
	}
	if res.DeletedCount != 0 {
		t.Errorf("deleted = %d, want 0", res.DeletedCount)
	}
	if res.Cutoff == 0 {
		t.Error("cutoff not set")
	}
}

func TestCleanup_DeletesOnlyOlderThanHorizon(t *testing.T) {
	d := testDB(t)
	l := &models.Link{ShortCode: "ret", DestinationURL: "https://example.com"}
	if err := models.CreateLink(d, l); err != nil {
		t.Fatal(err)
	}

	now := time.Now()
	seedClick(t, d, l.ID, l.ShortCode, now.AddDate(0, 0, -400))
	seedClick(t, d, l.ID, l.ShortCode, now.AddDate(0, 0, -366))
	seedClick(t, d, l.ID, l.ShortCode, now.AddDate(0, 0, -10))
	seedClick(t, d, l.ID, l.ShortCode, now)

	res, err := Cleanup(d, 365)
	if err != nil {
		t.Fatal(err)
	}
	if res.DeletedCount != 2 {
		t.Errorf("deleted = %d, want 2", res.DeletedCount)
	}

	remaining, err := models.ClickCountForLink(d, l.ID)
	if err != nil {
		t.Fatal(err)
	}
	if remaining != 2 {
		t.Errorf("remaining = %d, want 2", remaining)
	}
}

func TestCleanup_Idempotent(t *testing.T) {
	d := testDB(t)
	l := &models.Link{ShortCode: "idem", DestinationURL: "https://example.com"}
	if err := models.CreateLink(d, l); err != nil {
		t.Fatal(err)
	}
	seedClick(t, d, l.ID, l.ShortCode, time.Now().AddDate(0, 0, -400))

	first, err := Cleanup(d, 365)
	if err != nil {
		t.Fatal(err)
	}
	if first.DeletedCount != 1 {
		t.Errorf("first run deleted = %d, want 1", first.DeletedCount)
	}

	second, err := Cleanup(d, 365)
	if err != nil {
		t.Fatal(err)
	}
	if second.DeletedCount != 0 {
		t.Errorf("second run deleted = %d, want 0", second.DeletedCount)
	}
}

func TestCleanup_CutoffIsDayArithmetic(t *testing.T) {
	d := testDB(t)
	const days = 30

	before := time.Now().UnixMilli()
	res, err := Cleanup(d, days)
	if err != nil {
		t.Fatal(err)
	}
	after := time.Now().UnixMilli()

	span := int64(days) * 86_400_000
	if res.Cutoff < before-span || res.Cutoff > after-span {
		t.Errorf("cutoff = %d, want now minus exactly %d ms", res.Cutoff, span)
	}
}

func TestScheduler_RunsAndStops(t *testing.T) {
	d := testDB(t)
	l := &models.Link{ShortCode: "sch", DestinationURL: "https://example.com"}
	if err := models.CreateLink(d, l); err != nil {
		t.Fatal(err)
	}
	seedClick(t, d, l.ID, l.ShortCode, time.Now().AddDate(0, 0, -400))

	s := NewScheduler(d, 365, 10*time.Millisecond)
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		count, err := models.ClickCountForLink(d, l.ID)
		if err != nil {
			t.Fatal(err)
		}
		if count == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("scheduler never cleaned up the old click")
}
