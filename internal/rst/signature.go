package rst

import (
	"regexp"
	"strings"
)

// pragmaRe matches a compiler pragma block: brace delimited, introduced and
// terminated by dots, possibly spanning multiple lines.
var pragmaRe = regexp.MustCompile(`(?s)\s*\{\..*?\.\}`)

// CleanSignature strips pragma blocks from a raw signature and trims the
// result. Code outside the matched blocks is left untouched; zero, one, or
// several blocks per signature are all handled.
func CleanSignature(code string) string {
	return strings.TrimSpace(pragmaRe.ReplaceAllString(code, ""))
}
