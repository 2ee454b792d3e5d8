// Package template expands {name} placeholders in message templates.
package template

import (
	"regexp"
	"sort"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{([a-z_]+)\}`)

// Expand replaces every {key} in text with vars[key].
//
// Replacement is a single left-to-right pass: placeholders appearing inside
// substituted values are left as they are. Unknown placeholders stay verbatim.
func Expand(text string, vars map[string]string) string {
	if len(vars) == 0 {
		return text
	}
	pairs := make([]string, 0, len(vars)*2)
	for key, value := range vars {
		pairs = append(pairs, "{"+key+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// Placeholders lists the distinct placeholder names used in text, sorted.
func Placeholders(text string) []string {
	seen := map[string]bool{}
	for _, m := range placeholderPattern.FindAllStringSubmatch(text, -1) {
		seen[m[1]] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Unknown returns the placeholders in text that are not in allowed.
func Unknown(text string, allowed []string) []string {
	ok := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		ok[a] = true
	}
	var bad []string
	for _, name := range Placeholders(text) {
		if !ok[name] {
			bad = append(bad, name)
		}
	}
	return bad
}
