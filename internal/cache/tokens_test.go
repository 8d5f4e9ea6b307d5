package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestPrincipalCache_SetGet(t *testing.T) {
	pc, err := NewPrincipalCache(8)
	if err != nil {
		t.Fatal(err)
	}

	pc.Set("tok-1", "alice", time.Now().Add(time.Hour))
	got, ok := pc.Get("tok-1")
	if !ok || got != "alice" {
		t.Errorf("Get = %q/%v, want alice/true", got, ok)
	}

	if _, ok := pc.Get("tok-missing"); ok {
		t.Error("Get returned a hit for an unknown token")
	}
}

func TestPrincipalCache_ExpiredEntryEvicted(t *testing.T) {
	pc, err := NewPrincipalCache(8)
	if err != nil {
		t.Fatal(err)
	}

	pc.Set("tok-exp", "alice", time.Now().Add(-time.Minute))
	if _, ok := pc.Get("tok-exp"); ok {
		t.Error("Get returned a hit for an expired token")
	}
}

func TestPrincipalCache_ZeroExpiryNeverExpires(t *testing.T) {
	pc, err := NewPrincipalCache(8)
	if err != nil {
		t.Fatal(err)
	}

	pc.Set("tok-forever", "alice", time.Time{})
	if _, ok := pc.Get("tok-forever"); !ok {
		t.Error("zero-expiry entry should stay cached")
	}
}

func TestPrincipalCache_LRUBound(t *testing.T) {
	pc, err := NewPrincipalCache(2)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 5; i++ {
		pc.Set(fmt.Sprintf("tok-%d", i), "alice", time.Now().Add(time.Hour))
	}
	if _, ok := pc.Get("tok-0"); ok {
		t.Error("oldest entry survived past the cache bound")
	}
	if _, ok := pc.Get("tok-4"); !ok {
		t.Error("newest entry missing")
	}
}
