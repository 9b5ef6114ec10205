package rst

import (
	"strings"

	"golang.org/x/net/html"
)

// recognizedTags are the tags the conversion table handles explicitly.
// Anything else is stripped by the catch-all rule.
var recognizedTags = map[string]bool{
	"tt":     true,
	"span":   true, // styling wrappers inside literal spans
	"p":      true,
	"b":      true,
	"strong": true,
	"em":     true,
	"i":      true,
	"ul":     true,
	"li":     true,
}

// UnknownTags tokenizes a description fragment and reports the distinct tag
// names outside the recognized set, in first-seen order. It is a diagnostics
// helper for logging what the stripping rule discarded; it never affects
// conversion output.
func UnknownTags(fragment string) []string {
	if !strings.Contains(fragment, "<") {
		return nil
	}

	var unknown []string
	seen := make(map[string]bool)

	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			// End of fragment or malformed input; either way diagnostics
			// are best effort.
			return unknown
		}
		switch tt {
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if !recognizedTags[tag] && !seen[tag] {
				seen[tag] = true
				unknown = append(unknown, tag)
			}
		}
	}
}
