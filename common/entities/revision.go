package entities

import "time"

// Revision is an immutable, append-only snapshot of a page's content.
// Revisions are ordered by Date ascending; no two revisions of the same
// page may share both the same Author and the same Date.
type Revision struct {
	ID            int64
	PageNamespaceID int
	PageTitle     string
	Date          time.Time
	Author        string // principal name; survives rename/mask by referencing the Revision.AuthorID too
	AuthorID      int64
	Comment       string
	Hidden        bool
	CommentHidden bool
	Minor         bool
	Bot           bool
	Tags          []string
	Content       string
	PageCreation  bool
}

// ByteSize returns the UTF-8 byte length of the revision's content.
func (r Revision) ByteSize() int {
	return len(r.Content)
}

// CanBeReadBy reports whether a principal without wiki_mask may see this
// revision's content.
func (r Revision) CanBeReadBy(hasWikiMask bool) bool {
	return !r.Hidden || hasWikiMask
}

// CommentCanBeReadBy reports whether a principal without wiki_mask may see
// this revision's comment.
func (r Revision) CommentCanBeReadBy(hasWikiMask bool) bool {
	return !r.CommentHidden || hasWikiMask
}
