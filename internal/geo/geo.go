package geo

import (
	"net"
	"net/http"

	"github.com/oschwald/maxminddb-golang"
)

type Location struct {
	Country string
	City    string
}

// Resolver answers country/city for a click. Edge-provided geolocation
// headers win; a local MaxMind database is the fallback when configured.
type Resolver struct {
	db *maxminddb.Reader
}

// Open opens a MaxMind .mmdb file. An empty path yields a header-only
// resolver rather than an error.
func Open(path string) (*Resolver, error) {
	if path == "" {
		return &Resolver{}, nil
	}
	db, err := maxminddb.Open(path)
	if err != nil {
		return nil, err
	}
	return &Resolver{db: db}, nil
}

func (r *Resolver) Close() {
	if r != nil && r.db != nil {
		r.db.Close()
	}
}

// FromHeaders reads edge-network geolocation headers off the request.
func FromHeaders(req *http.Request) Location {
	return Location{
		Country: req.Header.Get("CF-IPCountry"),
		City:    req.Header.Get("CF-IPCity"),
	}
}

// Lookup resolves an IP against the local database. Returns an empty
// Location when no database is loaded or the IP is unparseable.
func (r *Resolver) Lookup(ipStr string) Location {
	if r == nil || r.db == nil {
		return Location{}
	}
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return Location{}
	}

	var record struct {
		Country struct {
			ISOCode string `maxminddb:"iso_code"`
		} `maxminddb:"country"`
		City struct {
			Names map[string]string `maxminddb:"names"`
		} `maxminddb:"city"`
	}
	if err := r.db.Lookup(ip, &record); err != nil {
		return Location{}
	}
	return Location{
		Country: record.Country.ISOCode,
		City:    record.City.Names["en"],
	}
}
