package auth

import (
	"html"
	"net/mail"
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Sanitize trims whitespace, strips markup tags and escapes HTML special characters
func Sanitize(s string) string {
	return html.EscapeString(tagPattern.ReplaceAllString(strings.TrimSpace(s), ""))
}

// ValidEmail reports whether s is a bare address such as "a@b.com"
func ValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Name == "" && addr.Address == s && strings.Contains(s[strings.LastIndex(s, "@")+1:], ".")
}
