package slug

import (
	"regexp"
	"strings"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// Normalize lower-cases and trims a user supplied slug.
func Normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// IsValid expects an already normalized slug.
func IsValid(value string) bool {
	return len(value) >= 2 && len(value) <= 64 && slugPattern.MatchString(value)
}
