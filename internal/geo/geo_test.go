package geo

import (
	"net/http/httptest"
	"testing"
)

func TestFromHeaders(t *testing.T) {
	req := httptest.NewRequest("GET", "/abc123", nil)
	req.Header.Set("CF-IPCountry", "DE")
	req.Header.Set("CF-IPCity", "Berlin")

	loc := FromHeaders(req)
	if loc.Country != "DE" || loc.City != "Berlin" {
		t.Errorf("loc = %+v, want DE/Berlin", loc)
	}
}

func TestFromHeaders_Absent(t *testing.T) {
	req := httptest.NewRequest("GET", "/abc123", nil)
	loc := FromHeaders(req)
	if loc.Country != "" || loc.City != "" {
		t.Errorf("loc = %+v, want empty", loc)
	}
}

func TestOpen_EmptyPathIsHeaderOnly(t *testing.T) {
	r, err := Open("")
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if loc := r.Lookup("203.0.113.9"); loc != (Location{}) {
		t.Errorf("lookup without db = %+v, want empty", loc)
	}
}

func TestLookup_UnparseableIP(t *testing.T) {
	r, err := Open("")
	if err != nil {
		t.Fatal(err)
	}
	if loc := r.Lookup("not-an-ip"); loc != (Location{}) {
		t.Errorf("loc = %+v, want empty", loc)
	}
}

func TestOpen_MissingFile(t *testing.T) {
	if _, err := Open("/no/such/file.mmdb"); err == nil {
		t.Fatal("expected error for missing database file")
	}
}
