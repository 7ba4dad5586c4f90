package util

import (
	"crypto/rand"
	"encoding/base64"
	"regexp"
	"strings"
)

const minTokenBytes = 16

// GenerateToken returns a URL-safe random token built from n bytes of
// crypto/rand output. n is raised to 16 when smaller.
func GenerateToken(n int) (string, error) {
	if n < minTokenBytes {
		n = minTokenBytes
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsEmailShape accepts local-part@domain where the domain has at least one dot.
func IsEmailShape(email string) bool {
	return emailShape.MatchString(email)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
