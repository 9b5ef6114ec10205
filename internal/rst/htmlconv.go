// Package rst turns exporter output (HTML description fragments and raw
// signatures) into RST reference pages.
package rst

import (
	"regexp"
	"strings"
)

// tagRe matches any remaining HTML tag. It is both the final stripping rule
// and the inner-tag remover for literal code spans.
var tagRe = regexp.MustCompile(`<[^>]+>`)

// rewriteRule is one ordered pattern substitution. Conversion is an explicit
// rule table applied in sequence, not an HTML parser; the order is load
// bearing (the literal-span rule must see the original nested tags before
// generic stripping runs).
type rewriteRule struct {
	name string
	re   *regexp.Regexp
	repl func(sub []string) string
}

// rewriteRules is the conversion table, in application order.
var rewriteRules = []rewriteRule{
	{
		// <tt class="docutils literal"><span class="pre">TEXT</span></tt> -> ``TEXT``
		name: "literal-span",
		re:   regexp.MustCompile(`(?s)<tt[^>]*>(.*?)</tt>`),
		repl: func(sub []string) string { return "``" + tagRe.ReplaceAllString(sub[1], "") + "``" },
	},
	{
		name: "paragraph",
		re:   regexp.MustCompile(`(?s)<p>(.*?)</p>`),
		repl: func(sub []string) string { return sub[1] + "\n\n" },
	},
	{
		name: "bold",
		re:   regexp.MustCompile(`<(?:b|strong)>(.*?)</(?:b|strong)>`),
		repl: func(sub []string) string { return "**" + sub[1] + "**" },
	},
	{
		name: "italic",
		re:   regexp.MustCompile(`<(?:em|i)>(.*?)</(?:em|i)>`),
		repl: func(sub []string) string { return "*" + sub[1] + "*" },
	},
	{
		name: "list-open",
		re:   regexp.MustCompile(`<ul[^>]*>`),
		repl: func([]string) string { return "\n" },
	},
	{
		name: "list-close",
		re:   regexp.MustCompile(`</ul>`),
		repl: func([]string) string { return "\n" },
	},
	{
		name: "list-item",
		re:   regexp.MustCompile(`(?s)<li>(.*?)</li>`),
		repl: func(sub []string) string { return "\n- " + sub[1] },
	},
	{
		name: "strip-remaining",
		re:   tagRe,
		repl: func([]string) string { return "" },
	},
}

// entityTable decodes the bounded set of HTML character entities the
// exporter emits, in this order. &amp; decodes after &lt;/&gt; so that
// double-escaped text degrades the same way the exporter's consumers expect.
var entityTable = []struct {
	entity  string
	literal string
}{
	{"&lt;", "<"},
	{"&gt;", ">"},
	{"&amp;", "&"},
	{"&quot;", `"`},
	{"&#39;", "'"},
	{"&nbsp;", " "},
}

var blankLinesRe = regexp.MustCompile(`\n{3,}`)

// Convert translates an embedded-HTML description fragment to RST. It is a
// total function: unparseable fragments degrade to stripped text, never an
// error, and plain text passes through unchanged.
func Convert(fragment string) string {
	if fragment == "" {
		return ""
	}

	text := fragment
	for _, rule := range rewriteRules {
		re := rule.re
		text = re.ReplaceAllStringFunc(text, func(match string) string {
			return rule.repl(re.FindStringSubmatch(match))
		})
	}

	for _, e := range entityTable {
		text = strings.ReplaceAll(text, e.entity, e.literal)
	}

	text = blankLinesRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
