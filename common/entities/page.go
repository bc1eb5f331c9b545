package entities

import "time"

// ContentType enumerates the kinds of content a page may hold.
type ContentType string

const (
	ContentWikipage ContentType = "wikipage"
	ContentModule   ContentType = "module"
	ContentCSS      ContentType = "css"
	ContentJS       ContentType = "js"
	ContentJSON     ContentType = "json"
)

// MIMEType returns the raw-content MIME type for this content type.
func (c ContentType) MIMEType() string {
	switch c {
	case ContentWikipage:
		return "text/plain"
	case ContentModule:
		return "text/x-python3"
	case ContentJS:
		return "text/javascript"
	case ContentCSS:
		return "text/css"
	case ContentJSON:
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

// RedirectTarget names the page a redirect page points to.
type RedirectTarget struct {
	NamespaceID int
	Title       string
}

// ParseCache holds the most recent successful parse of a page's latest
// revision. An invalidated cache is represented by a nil Page.Cache.
type ParseCache struct {
	HTML             string
	RevisionID       int64
	ParseDurationMS  int64
	ParseDate        time.Time
	ExpiryDate       time.Time
	SizeBefore       int
	SizeAfter        int
}

// Valid reports whether the cache is populated and not expired as of now.
func (c *ParseCache) Valid(now time.Time, latestRevisionID int64) bool {
	return c != nil && c.RevisionID != 0 && c.RevisionID == latestRevisionID && now.Before(c.ExpiryDate)
}

// Page is identified by (NamespaceID, Title). Pages are created on first
// saved revision and only ever logically deleted.
type Page struct {
	NamespaceID     int
	Title           string
	ContentType     ContentType
	ContentLanguage string
	Deleted         bool
	IsCategoryHidden *bool // only meaningful when NamespaceID is the Category namespace
	RedirectsTo     *RedirectTarget
	Cache           *ParseCache

	// Exists is true once at least one revision has been recorded for this
	// page; a deleted page keeps Exists true and has Deleted set. A
	// "shadow" Page returned for a title with
	// no revisions has Exists == false and all other fields zeroed.
	Exists bool
}

// Key identifies a page independent of its content.
type Key struct {
	NamespaceID int
	Title       string
}

// Key returns this page's identity key.
func (p Page) Key() Key {
	return Key{NamespaceID: p.NamespaceID, Title: p.Title}
}

// IsRedirect reports whether this page currently redirects elsewhere.
func (p Page) IsRedirect() bool {
	return p.RedirectsTo != nil
}
