package datacenter

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
)

func mustCIDR(t *testing.T, s string) *net.IPNet {
	t.Helper()
	_, n, err := net.ParseCIDR(s)
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func TestIsBlocked(t *testing.T) {
	c := &Checker{
		ranges:     []*net.IPNet{mustCIDR(t, "198.51.100.0/24")},
		blockedIPs: map[string]bool{"203.0.113.7": true},
	}

	tests := []struct {
		ip   string
		want bool
	}{
		{"198.51.100.42", true},  // inside datacenter range
		{"198.51.101.42", false}, // just outside
		{"203.0.113.7", true},    // exact blocked IP
		{"203.0.113.8", false},
		{"not-an-ip", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := c.IsBlocked(tt.ip); got != tt.want {
			t.Errorf("IsBlocked(%q) = %v, want %v", tt.ip, got, tt.want)
		}
	}
}

func TestFetchCIDRLines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("# comment\n198.51.100.0/24\n\nnot a cidr\n203.0.113.0/25\n"))
	}))
	defer srv.Close()

	ranges := fetchCIDRLines(srv.URL)
	if len(ranges) != 2 {
		t.Fatalf("len = %d, want 2", len(ranges))
	}
	if ranges[0].String() != "198.51.100.0/24" {
		t.Errorf("first = %s", ranges[0])
	}
}

func TestFetchDigitalOceanCIDRs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("198.51.100.0/24,US,US-NY,New York\n203.0.113.0/25,NL,NL-NH,Amsterdam\nbogus,XX\n"))
	}))
	defer srv.Close()

	ranges := fetchDigitalOceanCIDRs(srv.URL)
	if len(ranges) != 2 {
		t.Fatalf("len = %d, want 2", len(ranges))
	}
}

func TestFetchIPList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("203.0.113.7\nnot-an-ip\n203.0.113.8\n\n"))
	}))
	defer srv.Close()

	ips := fetchIPList(srv.URL)
	if len(ips) != 2 {
		t.Fatalf("len = %d, want 2", len(ips))
	}
	if !ips["203.0.113.7"] || !ips["203.0.113.8"] {
		t.Errorf("ips = %v", ips)
	}
}

func TestFetchCIDRLines_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if ranges := fetchCIDRLines(srv.URL); ranges != nil {
		t.Errorf("ranges = %v, want nil on fetch failure", ranges)
	}
}
