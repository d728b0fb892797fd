package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
	"unicode"
)

const base36Chars = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateKey returns prefix followed by n random lowercase base36 characters.
func GenerateKey(prefix string, n int) (string, error) {
	var sb strings.Builder
	sb.WriteString(prefix)

	for i := 0; i < n; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(base36Chars))))
		if err != nil {
			return "", err
		}
		sb.WriteByte(base36Chars[num.Int64()])
	}

	return sb.String(), nil
}

// Slugify lowercases name and collapses every run of non alphanumeric
// characters into a single dash. At most maxLen runes are kept.
func Slugify(name string, maxLen int) string {
	var sb strings.Builder
	dash := false
	n := 0
	for _, r := range strings.ToLower(name) {
		if n >= maxLen {
			break
		}
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			sb.WriteRune(r)
			dash = false
			n++
			continue
		}
		if !dash && sb.Len() > 0 {
			sb.WriteByte('-')
			dash = true
			n++
		}
	}
	return strings.TrimRight(sb.String(), "-")
}

// GenerateSlug builds a public url slug from a project name plus a random
// suffix, e.g. "my-landing-page-k3x9q2".
func GenerateSlug(name string) (string, error) {
	base := Slugify(name, 40)
	if base == "" {
		base = "site"
	}
	return GenerateKey(base+"-", 6)
}
