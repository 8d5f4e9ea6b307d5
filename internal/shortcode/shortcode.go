package shortcode

import (
	"crypto/rand"
	"math/big"
	"regexp"
)

// Alphabet for generated codes. Ambiguous glyphs (0/O, 1/l/I) are left out
// so codes survive being read aloud or retyped.
const charset = "23456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghjkmnpqrstuvwxyz"

// Pattern is the accepted format for caller-supplied codes.
const Pattern = `^[A-Za-z0-9_-]{3,20}$`

// GeneratedLength is the length of auto-generated codes.
const GeneratedLength = 6

var codeRe = regexp.MustCompile(Pattern)

var maxIdx = big.NewInt(int64(len(charset)))

// Generate returns a random 6-character code from the unambiguous alphabet.
func Generate() (string, error) {
	b := make([]byte, GeneratedLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, maxIdx)
		if err != nil {
			return "", err
		}
		b[i] = charset[n.Int64()]
	}
	return string(b), nil
}

// Valid reports whether a code matches the accepted format.
func Valid(code string) bool {
	return codeRe.MatchString(code)
}
