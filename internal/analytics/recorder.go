// Package analytics records attributed click events off the redirect hot
// path. The redirect handler enqueues a RawClick and returns; a single
// long-lived worker drains the queue and performs the writes, so the HTTP
// response never waits on the store.
package analytics

import (
	"database/sql"
	"log"
	"time"

	"github.com/relink-app/relink/internal/geo"
	"github.com/relink-app/relink/internal/models"
	"github.com/relink-app/relink/internal/ua"
)

// RawClick is what the redirect handler can cheaply extract from a request.
// Country/City come from edge headers when present; the worker falls back
// to a local geo lookup on the IP.
type RawClick struct {
	LinkID    string
	ShortCode string
	ClickedAt time.Time
	IPAddress string
	UserAgent string
	Referrer  string
	Country   string
	City      string
}

// IPChecker is satisfied by the datacenter checker; nil means no filtering.
type IPChecker interface {
	IsBlocked(ip string) bool
}

type Recorder struct {
	ch   chan RawClick
	stop chan struct{}
	done chan struct{}

	db         *sql.DB
	geo        *geo.Resolver
	classifier ua.Classifier
	filterBots bool
	checker    IPChecker
}

func NewRecorder(db *sql.DB, geoResolver *geo.Resolver, classifier ua.Classifier, bufferSize int) *Recorder {
	r := &Recorder{
		ch:         make(chan RawClick, bufferSize),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		db:         db,
		geo:        geoResolver,
		classifier: classifier,
	}
	go r.run()
	return r
}

// SetBotFilter enables skipping clicks from known bots. Off by default.
func (r *Recorder) SetBotFilter(on bool) { r.filterBots = on }

// SetIPChecker installs a datacenter/threat-IP filter. Nil disables it.
func (r *Recorder) SetIPChecker(c IPChecker) { r.checker = c }

// Push enqueues a click without blocking. When the buffer is full the click
// is dropped; analytics loss is acceptable, unbounded memory growth is not.
func (r *Recorder) Push(click RawClick) {
	select {
	case r.ch <- click:
	default:
		log.Printf("analytics: buffer full, dropping click for %s", click.ShortCode)
	}
}

// Shutdown drains queued clicks and returns once the worker has exited.
func (r *Recorder) Shutdown() {
	close(r.stop)
	<-r.done
}

func (r *Recorder) run() {
	defer close(r.done)
	for {
		select {
		case raw := <-r.ch:
			r.record(raw)
		case <-r.stop:
			for {
				select {
				case raw := <-r.ch:
					r.record(raw)
				default:
					return
				}
			}
		}
	}
}

// record builds and persists one click event, then bumps the link's
// advisory counter. The insert must complete before the increment is
// attempted; a failed insert means no increment. Failures are logged and
// dropped, never retried (a retry risks duplicate events).
func (r *Recorder) record(raw RawClick) {
	if r.filterBots && ua.IsBot(raw.UserAgent) {
		return
	}
	if r.checker != nil && raw.IPAddress != "" && r.checker.IsBlocked(raw.IPAddress) {
		return
	}

	event := models.ClickEvent{
		LinkID:    raw.LinkID,
		ShortCode: raw.ShortCode,
		ClickedAt: raw.ClickedAt.UnixMilli(),
	}
	if raw.IPAddress != "" {
		event.IPAddress = &raw.IPAddress
	}
	if raw.Referrer != "" {
		event.Referrer = &raw.Referrer
	}

	// A click with no User-Agent is still a valid event; classification
	// fields just stay null.
	if raw.UserAgent != "" {
		c := r.classifier.Classify(raw.UserAgent)
		event.DeviceType = &c.DeviceType
		event.Browser = &c.Browser
		event.OS = &c.OS
	}

	loc := geo.Location{Country: raw.Country, City: raw.City}
	if loc.Country == "" && raw.IPAddress != "" {
		loc = r.geo.Lookup(raw.IPAddress)
	}
	if loc.Country != "" {
		event.Country = &loc.Country
	}
	if loc.City != "" {
		event.City = &loc.City
	}

	if err := models.InsertClickEvent(r.db, &event); err != nil {
		log.Printf("analytics: record click for %s: %v", raw.ShortCode, err)
		return
	}
	if err := models.IncrementClickCount(r.db, raw.LinkID); err != nil {
		log.Printf("analytics: increment count for %s: %v", raw.ShortCode, err)
	}
}
