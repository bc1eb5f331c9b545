// Package registry implements C6: the magic-variable and parser-function
// registries consumed by the wikicode parser (C5). Handlers are
// registered once, at process start, in tables keyed by name — not
// discovered via reflection or runtime subclass enumeration — per the
// "global mutable state" redesign note: the registries are read-only
// after init.
package registry

import (
	"time"

	"github.com/ottm-wiki/wiki/common/entities"
)

// Stats is the statistics surface NUMBER_OF_*/PAGES_IN_* variables read
// from; a real deployment backs it with the page repository, tests can
// supply a stub.
type Stats interface {
	NumberOfPages() int
	NumberOfArticles() int
	NumberOfFiles() int
	NumberOfEdits() int
	NumberOfUsers() int
	NumberOfActiveUsers(since time.Time) int
	NumberInGroup(group string) int
	PagesInNamespace(namespaceID int) int
	PagesInCategory(title, kind string) int
}

// Context is the read-only view into the current parse the registry's
// handlers are evaluated against.
type Context struct {
	Now         time.Time
	SiteName    string
	ServerURL   string
	ServerName  string
	StaticPath  string
	WikiPath    string
	WikiAPIPath string
	APIPath     string

	Namespace entities.Namespace
	Title     string
	Page      entities.Page
	// Revision is nil when no specific revision is in view; REVISION_*
	// variables then fall back to Now per spec §4.5.
	Revision *entities.Revision

	// Transcluded is true while this content is being expanded as part
	// of another page's parse (controls include_only/no_include).
	Transcluded bool

	Stats Stats

	// Directives accumulates the set-once content directives
	// (DISPLAY_TITLE, DEFAULT_SORT_KEY). Context is copied by value at
	// every scan step, so the directive state itself must live behind a
	// pointer the parser allocates once per Parse call and every copy
	// shares; without that indirection a handler's writes would only
	// ever reach its own local copy of Context.
	Directives *ContentDirectives

	// URLEncode renders a title the way titles.URLEncode does; injected
	// so that wikitext/registry does not import titles.
	URLEncode func(string) string
	// FormatNumber and FormatDate back the locale-aware parser
	// functions; both are injected so registry does not need to decide
	// which localization library to import directly.
	FormatNumber func(n float64, lang string) string
	FormatDate   func(isoDate, lang, layout string) (string, error)
	// PageExists reports whether a raw title resolves to an existing,
	// non-deleted page; backs the if_exists parser function.
	PageExists func(rawTitle string) bool

	// Transclude parses and returns another page's content, backing the
	// supplemental transclude template tag; it must apply the caller's
	// recursion-depth limit itself.
	Transclude func(rawTitle string) (string, error)

	// Placeholders and NextPlaceholder back the no_wiki built-in tag: its
	// Transform stashes the literal section under a fresh token here,
	// and the parser substitutes the escaped content back in during its
	// output pass. Shared (not copied) across a single parse run.
	Placeholders   map[string]string
	NextPlaceholder func() string
}

// revisionDate returns the context's revision date, falling back to Now.
func (c Context) revisionDate() time.Time {
	if c.Revision != nil {
		return c.Revision.Date
	}
	return c.Now
}

// ContentDirectives holds the values DISPLAY_TITLE and DEFAULT_SORT_KEY
// set during a parse. Shared by pointer across a parse's Context copies.
type ContentDirectives struct {
	DisplayTitle   *string
	DefaultSortKey *string
}
