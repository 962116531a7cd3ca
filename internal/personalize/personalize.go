// Package personalize renders a message body for one recipient from a
// template plus the recipient's attribute map, and optionally applies a
// cosmetic variation so identical templates do not produce identical
// wire content.
package personalize

import (
	"math/rand"
	"regexp"
	"strings"
)

var placeholderRe = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// Suffixes are cosmetic only: plain punctuation, whitespace or invisible
// marks. None of them changes the semantic content of the message.
var suffixes = []string{
	" ",
	"  ",
	".",
	" .",
	"​", // zero-width space
	"⁠", // word joiner
}

// Render substitutes {name} with the recipient's display name and every
// other {placeholder} present in attrs, matching keys case-insensitively.
// Unmatched placeholders are left verbatim. Pure function, safe for
// concurrent use.
func Render(template, name string, attrs map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(template, func(ph string) string {
		key := strings.ToLower(ph[1 : len(ph)-1])
		if key == "name" {
			return name
		}
		for k, v := range attrs {
			if strings.ToLower(k) == key {
				return v
			}
		}
		return ph
	})
}

// Vary appends one random cosmetic suffix so two renders of the same
// template are textually distinguishable.
func Vary(content string) string {
	return content + suffixes[rand.Intn(len(suffixes))]
}
