package portal

import (
	"regexp"
	"sort"
	"strings"
)

// Product represents one purchased item from the account listing.
// Title is HTML-entity decoded; Links maps a lowercased format extension
// (e.g. "pdf", "epub") to its download URL.
type Product struct {
	Title string
	Links map[string]string
}

// unsafeChars matches runs of characters that are not allowed in the
// directory/file names derived from a product title.
var unsafeChars = regexp.MustCompile(`[^-a-zA-Z0-9_+()\[\]]+`)

// DirName derives a filesystem-safe directory name from the product title.
// Non-ASCII characters are discarded rather than transliterated, then every
// run of disallowed characters collapses into a single underscore.
func (p *Product) DirName() string {
	name := strings.Map(func(r rune) rune {
		if r > 127 {
			return -1
		}
		return r
	}, p.Title)

	name = strings.TrimSpace(name)

	return unsafeChars.ReplaceAllString(name, "_")
}

// Formats returns the product's format extensions in sorted order.
// The Links map itself carries no ordering guarantee.
func (p *Product) Formats() []string {
	formats := make([]string, 0, len(p.Links))
	for ext := range p.Links {
		formats = append(formats, ext)
	}
	sort.Strings(formats)
	return formats
}
