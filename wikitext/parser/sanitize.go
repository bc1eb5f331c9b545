package parser

import "github.com/microcosm-cc/bluemonday"

// blockTags is the fixed HTML allow-list from §4.5 minus its void
// elements. Every element gets the global attributes (id, class, title,
// lang, dir); the extra per-element attributes are granted in
// newSanitizerPolicy.
var blockTags = []string{
	"abbr", "address", "aside", "b", "bdi", "bdo", "blockquote", "caption",
	"cite", "code", "col", "colgroup", "data", "dd", "del", "details",
	"dfn", "div", "dl", "dt", "em", "i", "ins", "kbd", "label", "li",
	"map", "mark", "meter", "nav", "ol", "p", "pre", "progress", "q",
	"rp", "rt", "ruby", "s", "samp", "section", "small", "span", "strong",
	"sub", "summary", "table", "tbody", "td", "template", "tfoot", "th",
	"thead", "time", "tr", "u", "ul", "var",
}

// voidTags is the allow-list's self-closing subset.
var voidTags = []string{"area", "br", "hr", "wbr"}

// newSanitizerPolicy builds the bluemonday policy enforcing §4.5's HTML
// sanitization phase: every allow-listed tag/attribute passes and
// anything else is stripped. A disallowed element's tags are removed
// (not escaped to "&lt;"); its text content is kept.
// Grounded on the teacher's getSanitizerPolicy(), generalized from its
// wiki-markdown subset to the full §4.5 allow-list plus the gallery/
// ref/references custom tags.
func newSanitizerPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	p.AllowStandardURLs()
	p.AllowAttrs("id", "class", "title", "lang", "dir").Globally()
	p.AllowAttrs("style").OnElements("span", "div")

	p.AllowElements(blockTags...)
	p.AllowElements(voidTags...)

	p.AllowElements("a")
	p.AllowAttrs("href", "target", "rel", "accesskey", "aria-disabled").OnElements("a")
	p.RequireNoFollowOnLinks(false)

	p.AllowElements("area")
	p.AllowAttrs("shape", "coords", "href", "alt").OnElements("area")
	p.AllowElements("map")
	p.AllowAttrs("name").OnElements("map")

	p.AllowTables()
	p.AllowAttrs("colspan", "rowspan", "headers", "scope").OnElements("td", "th")
	p.AllowAttrs("span").OnElements("col", "colgroup")

	p.AllowAttrs("datetime").OnElements("time", "ins", "del")
	p.AllowAttrs("value").OnElements("data", "li", "meter")
	p.AllowAttrs("min", "max", "low", "high", "optimum").OnElements("meter")
	p.AllowAttrs("min", "max", "value").OnElements("progress")
	p.AllowAttrs("cite").OnElements("blockquote", "q", "del", "ins")
	p.AllowAttrs("for").OnElements("label")

	// Custom tags (§4.5): ref/references footnotes and image galleries.
	p.AllowElements("ref", "references", "gallery")
	p.AllowAttrs("name", "group").OnElements("ref")
	p.AllowAttrs("group").OnElements("references")
	p.AllowAttrs("mode", "caption", "widths", "heights", "perrow", "showthumbnails").OnElements("gallery")

	return p
}

// Sanitize runs html through the fixed HTML allow-list, stripping any
// element or attribute not declared above.
func Sanitize(html string) string {
	return newSanitizerPolicy().Sanitize(html)
}
