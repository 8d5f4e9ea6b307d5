// Package retention deletes click events older than the configured horizon.
package retention

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/relink-app/relink/internal/models"
)

// MaxDays caps the retention horizon at ten years.
const MaxDays = 3650

type Result struct {
	DeletedCount int64 `json:"deleted_count"`
	Cutoff       int64 `json:"cutoff"`
}

// Cleanup deletes click events older than retentionDays. Out-of-bounds days
// is a configuration error and rejects the call; it is never retried here.
// Idempotent and safe to run concurrently with click recording.
func Cleanup(db *sql.DB, retentionDays int) (Result, error) {
	if retentionDays < 1 || retentionDays > MaxDays {
		return Result{}, fmt.Errorf("%w: retention days must be between 1 and %d, got %d",
			models.ErrConfiguration, MaxDays, retentionDays)
	}

	// Exact day arithmetic in epoch milliseconds; calendar math would shift
	// the cutoff by an hour across DST transitions.
	cutoff := time.Now().UnixMilli() - int64(retentionDays)*86_400_000
	deleted, err := models.DeleteClickEventsBefore(db, cutoff)
	if err != nil {
		return Result{}, err
	}
	return Result{DeletedCount: deleted, Cutoff: cutoff}, nil
}

// Scheduler runs Cleanup on a fixed interval. Failures are logged and
// swallowed: propagating them would invite the host to retry a partial
// delete on top of a previous partial success.
type Scheduler struct {
	db       *sql.DB
	days     int
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

func NewScheduler(db *sql.DB, retentionDays int, interval time.Duration) *Scheduler {
	s := &Scheduler{
		db:       db,
		days:     retentionDays,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
}

func (s *Scheduler) run() {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			res, err := Cleanup(s.db, s.days)
			if err != nil {
				log.Printf("retention: cleanup failed: %v", err)
				continue
			}
			log.Printf("retention: deleted %d click events older than %s",
				res.DeletedCount, time.UnixMilli(res.Cutoff).UTC().Format("2006-01-02"))
		case <-s.stop:
			return
		}
	}
}
