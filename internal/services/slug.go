package services

import (
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL-safe slug from a project name. It lowercases the
// name, collapses every run of characters outside [a-z0-9] into a single
// hyphen and trims hyphens from both ends.
func Slugify(name string) string {
	s := strings.ToLower(name)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
