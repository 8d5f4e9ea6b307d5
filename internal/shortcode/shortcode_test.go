package shortcode

import (
	"regexp"
	"strings"
	"testing"
)

func TestGenerate_Length(t *testing.T) {
	for i := 0; i < 100; i++ {
		s, err := Generate()
		if err != nil {
			t.Fatalf("iteration %d: unexpected error: %v", i, err)
		}
		if len(s) != GeneratedLength {
			t.Fatalf("iteration %d: len = %d, want %d (code=%q)", i, len(s), GeneratedLength, s)
		}
	}
}

func TestGenerate_MatchesValidationPattern(t *testing.T) {
	re := regexp.MustCompile(Pattern)
	for i := 0; i < 100; i++ {
		s, err := Generate()
		if err != nil {
			t.Fatalf("iteration %d: unexpected error: %v", i, err)
		}
		if !re.MatchString(s) {
			t.Fatalf("iteration %d: code %q does not match %s", i, s, Pattern)
		}
		if !Valid(s) {
			t.Fatalf("iteration %d: Valid(%q) = false", i, s)
		}
	}
}

func TestGenerate_AvoidsAmbiguousGlyphs(t *testing.T) {
	for i := 0; i < 200; i++ {
		s, err := Generate()
		if err != nil {
			t.Fatal(err)
		}
		if strings.ContainsAny(s, "0O1lIio") {
			t.Fatalf("code %q contains an ambiguous glyph", s)
		}
	}
}

func TestGenerate_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		s, err := Generate()
		if err != nil {
			t.Fatalf("iteration %d: unexpected error: %v", i, err)
		}
		if seen[s] {
			t.Fatalf("duplicate code %q at iteration %d", s, i)
		}
		seen[s] = true
	}
}

func TestValid(t *testing.T) {
	valid := []string{"abc", "ABC", "a1_", "my-code", "x2345678901234567890", "mycode"}
	for _, s := range valid {
		if !Valid(s) {
			t.Errorf("Valid(%q) = false, want true", s)
		}
	}

	invalid := []string{"", "ab", "x23456789012345678901", "has space", "sl/ash", "dot.", "ümlaut"}
	for _, s := range invalid {
		if Valid(s) {
			t.Errorf("Valid(%q) = true, want false", s)
		}
	}
}
