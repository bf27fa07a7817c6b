package skills

import (
	"fmt"
	"strings"
	"unicode"
)

// FormatName turns an underscore-separated package identifier into a
// human-readable label: each segment's first rune is upcased, the rest is
// left untouched, and segments are joined with single spaces.
// "phoenix_live_view" becomes "Phoenix Live View".
func FormatName(identifier string) string {
	segments := strings.Split(identifier, "_")
	for i, segment := range segments {
		segments[i] = capitalize(segment)
	}
	return strings.Join(segments, " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// Format produces the full SKILL.md text for a package: a YAML frontmatter
// header, a blank line, then the usage rules content byte-for-byte.
//
// The second argument is the package's declared description, accepted for
// parity with the package metadata but deliberately discarded: every
// generated skill carries the same fixed "Guidance on working with ..."
// description so assistants treat them uniformly.
func Format(name, _, content string) string {
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "name: %s\n", name)
	fmt.Fprintf(&b, "description: Guidance on working with %s\n", FormatName(name))
	b.WriteString("---\n")
	b.WriteString("\n")
	b.WriteString(content)
	return b.String()
}
