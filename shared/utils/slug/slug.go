package slug

import (
	"fmt"
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Make normalizes a name into its base slug: lowercase, runs of
// non-alphanumeric characters collapsed to a single dash, leading and
// trailing dashes trimmed.
func Make(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Generate derives a unique slug from name, resolving collisions with a
// numeric suffix ("acme-inc", "acme-inc-2", "acme-inc-3", ...) scanned
// sequentially until free. The exists oracle is the organization table;
// the unique index remains the authority under concurrent creates.
func Generate(name string, exists func(slug string) (bool, error)) (string, error) {
	baseSlug := Make(name)
	candidate := baseSlug
	counter := 1

	for {
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		counter++
		candidate = fmt.Sprintf("%s-%d", baseSlug, counter)
	}
}
