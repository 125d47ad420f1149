package slug

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	invalidChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespace   = regexp.MustCompile(`\s+`)
	hyphenRuns   = regexp.MustCompile(`-+`)
)

// Generate derives a URL-safe identifier from a listing's title and city.
// The result contains only lowercase letters, digits and hyphens, with no
// leading or trailing hyphen. When nothing survives normalization, a
// time-based placeholder is returned so the caller always gets a usable slug.
func Generate(title, city string) string {
	base := strings.ToLower(title + " " + city)
	base = invalidChars.ReplaceAllString(base, "")
	base = whitespace.ReplaceAllString(base, "-")
	base = hyphenRuns.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-")
	if base == "" {
		return fmt.Sprintf("property-%d", time.Now().UnixMilli())
	}
	return base
}

// WithTimestamp appends a timestamp suffix, used to resolve collisions
// against an existing slug on create.
func WithTimestamp(s string) string {
	return fmt.Sprintf("%s-%d", s, time.Now().UnixMilli())
}
