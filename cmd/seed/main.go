// Command seed populates a database with demo links and a weighted
// distribution of click events, for local dashboard and analytics work.
package main

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/relink-app/relink/internal/db"
	"github.com/relink-app/relink/internal/models"
	"github.com/relink-app/relink/internal/ua"
)

type seedLink struct {
	code  string
	dest  string
	title string
	// weight controls relative click volume (higher = more clicks)
	weight float64
}

var seedLinks = []seedLink{
	{"docs", "https://go.dev/doc/", "Go Documentation", 5.0},
	{"blog", "https://go.dev/blog/", "The Go Blog", 4.0},
	{"spec", "https://go.dev/ref/spec", "Language Spec", 3.0},
	{"tour", "https://go.dev/tour/", "A Tour of Go", 4.5},
	{"play", "https://go.dev/play/", "Playground", 3.5},
	{"pkg", "https://pkg.go.dev/", "Package Index", 4.2},
	{"wiki", "https://go.dev/wiki/", "Go Wiki", 1.8},
	{"talks", "https://go.dev/talks/", "Talks", 1.2},
	{"faq", "https://go.dev/doc/faq", "FAQ", 2.3},
	{"effective", "https://go.dev/doc/effective_go", "Effective Go", 2.9},
}

var userAgents = []struct {
	ua     string
	weight float64
}{
	{"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36", 30},
	{"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36", 18},
	{"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15", 10},
	{"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0", 8},
	{"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0", 6},
	{"Mozilla/5.0 (iPhone; CPU iPhone OS 17_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Mobile/15E148 Safari/604.1", 14},
	{"Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36", 12},
	{"Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0", 2},
}

var countries = []struct {
	code   string
	weight float64
}{
	{"US", 30}, {"IN", 15}, {"DE", 10}, {"GB", 9}, {"BR", 7},
	{"FR", 6}, {"CA", 5}, {"JP", 5}, {"NL", 4}, {"AU", 3},
}

var referrers = []struct {
	url    string
	weight float64
}{
	{"https://google.com/", 30},
	{"", 25}, // direct traffic
	{"https://github.com/", 15},
	{"https://news.ycombinator.com/", 8},
	{"https://reddit.com/r/golang", 7},
	{"https://twitter.com/", 5},
}

func main() {
	path := "./relink.db"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	database, err := db.Open(path)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer database.Close()

	classifier := ua.New(ua.FallbackUnknown)
	owner := "seed-user"
	totalClicks := 0

	for _, s := range seedLinks {
		link := &models.Link{
			ShortCode:      s.code,
			DestinationURL: s.dest,
			Title:          s.title,
			OwnerID:        &owner,
		}
		if err := models.CreateLink(database, link); err != nil {
			log.Fatalf("create %q: %v", s.code, err)
		}

		n := int(s.weight * float64(80+rand.Intn(60)))
		for i := 0; i < n; i++ {
			clickedAt := time.Now().Add(-time.Duration(rand.Intn(60*24)) * time.Hour)
			agent := pickUA()
			c := classifier.Classify(agent)
			country := pickCountry()
			ip := fmt.Sprintf("203.0.%d.%d", rand.Intn(256), rand.Intn(256))

			event := &models.ClickEvent{
				LinkID:     link.ID,
				ShortCode:  link.ShortCode,
				ClickedAt:  clickedAt.UnixMilli(),
				IPAddress:  &ip,
				Country:    &country,
				DeviceType: &c.DeviceType,
				Browser:    &c.Browser,
				OS:         &c.OS,
			}
			if ref := pickReferrer(); ref != "" {
				event.Referrer = &ref
			}
			if err := models.InsertClickEvent(database, event); err != nil {
				log.Fatalf("insert click: %v", err)
			}
			if err := models.IncrementClickCount(database, link.ID); err != nil {
				log.Fatalf("increment: %v", err)
			}
		}
		totalClicks += n
		log.Printf("seeded /%s with %d clicks", s.code, n)
	}

	log.Printf("done: %d links, %d clicks in %s", len(seedLinks), totalClicks, path)
}

func pickUA() string {
	total := 0.0
	for _, u := range userAgents {
		total += u.weight
	}
	r := rand.Float64() * total
	for _, u := range userAgents {
		r -= u.weight
		if r <= 0 {
			return u.ua
		}
	}
	return userAgents[0].ua
}

func pickCountry() string {
	total := 0.0
	for _, c := range countries {
		total += c.weight
	}
	r := rand.Float64() * total
	for _, c := range countries {
		r -= c.weight
		if r <= 0 {
			return c.code
		}
	}
	return countries[0].code
}

func pickReferrer() string {
	total := 0.0
	for _, ref := range referrers {
		total += ref.weight
	}
	r := rand.Float64() * total
	for _, ref := range referrers {
		r -= ref.weight
		if r <= 0 {
			return ref.url
		}
	}
	return ""
}
