// Package datacenter flags traffic that comes from hosting providers or
// known-bad IPs rather than from people. The click recorder consults it
// only when filtering is enabled.
package datacenter

import (
	"bufio"
	"encoding/csv"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	datacenterRangesURL = "https://raw.githubusercontent.com/jhassine/server-ip-addresses/master/data/datacenters.txt"
	digitalOceanCSVURL  = "https://www.digitalocean.com/geo/google.csv"
	torExitNodesURL     = "https://check.torproject.org/torbulkexitlist"

	refreshInterval = 24 * time.Hour
	fetchTimeout    = 30 * time.Second
)

// Checker holds datacenter CIDR ranges and a Tor exit-node set in memory,
// refreshed in the background once a day. Lookups are safe for concurrent
// use from request handlers.
type Checker struct {
	mu         sync.RWMutex
	ranges     []*net.IPNet
	blockedIPs map[string]bool
	stop       chan struct{}
	done       chan struct{}
}

// NewChecker starts the background refresher. The first fetch happens
// immediately; until it completes, IsBlocked reports false.
func NewChecker() *Checker {
	c := &Checker{
		blockedIPs: make(map[string]bool),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	go c.run()
	return c
}

func (c *Checker) Stop() {
	close(c.stop)
	<-c.done
}

// IsBlocked reports whether ip is a Tor exit node or inside a known
// datacenter range.
func (c *Checker) IsBlocked(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.blockedIPs[ip] {
		return true
	}
	for _, n := range c.ranges {
		if n.Contains(parsed) {
			return true
		}
	}
	return false
}

func (c *Checker) run() {
	defer close(c.done)
	c.refresh()

	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.refresh()
		case <-c.stop:
			return
		}
	}
}

func (c *Checker) refresh() {
	var ranges []*net.IPNet
	ranges = append(ranges, fetchCIDRLines(datacenterRangesURL)...)
	ranges = append(ranges, fetchDigitalOceanCIDRs(digitalOceanCSVURL)...)
	blocked := fetchIPList(torExitNodesURL)

	c.mu.Lock()
	if len(ranges) > 0 {
		c.ranges = ranges
	}
	if len(blocked) > 0 {
		c.blockedIPs = blocked
	}
	c.mu.Unlock()

	log.Printf("datacenter: loaded %d CIDR ranges, %d blocked IPs", len(ranges), len(blocked))
}

func fetchBody(url string) (io.ReadCloser, error) {
	client := &http.Client{Timeout: fetchTimeout}
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &httpError{url: url, status: resp.StatusCode}
	}
	return resp.Body, nil
}

type httpError struct {
	url    string
	status int
}

func (e *httpError) Error() string {
	return "fetch " + e.url + ": unexpected status"
}

// fetchCIDRLines reads one CIDR per line, ignoring blanks and comments.
func fetchCIDRLines(url string) []*net.IPNet {
	body, err := fetchBody(url)
	if err != nil {
		log.Printf("datacenter: %v", err)
		return nil
	}
	defer body.Close()

	var ranges []*net.IPNet
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, n, err := net.ParseCIDR(line); err == nil {
			ranges = append(ranges, n)
		}
	}
	return ranges
}

// fetchDigitalOceanCIDRs parses DigitalOcean's geo feed; the CIDR is the
// first CSV column.
func fetchDigitalOceanCIDRs(url string) []*net.IPNet {
	body, err := fetchBody(url)
	if err != nil {
		log.Printf("datacenter: %v", err)
		return nil
	}
	defer body.Close()

	var ranges []*net.IPNet
	r := csv.NewReader(body)
	r.FieldsPerRecord = -1
	for {
		record, err := r.Read()
		if err != nil {
			break
		}
		if len(record) == 0 {
			continue
		}
		if _, n, err := net.ParseCIDR(strings.TrimSpace(record[0])); err == nil {
			ranges = append(ranges, n)
		}
	}
	return ranges
}

// fetchIPList reads one bare IP per line into a set.
func fetchIPList(url string) map[string]bool {
	body, err := fetchBody(url)
	if err != nil {
		log.Printf("datacenter: %v", err)
		return nil
	}
	defer body.Close()

	ips := make(map[string]bool)
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if net.ParseIP(line) != nil {
			ips[line] = true
		}
	}
	return ips
}
