// Package database defines the typed error kinds the page repository (C3)
// and authorization engine (C4) raise, plus the repository interface and
// an in-memory reference implementation of it. Mirrors the teacher's
// common/database package, which also centralizes the storage
// abstraction used by every domain service.
package database

import "fmt"

// The title errors (EmptyTitleError, BadTitleError) are declared in the
// titles package, not here; wiki_service returns them to its callers
// unchanged.

// MissingPermissionError means the principal lacks one or more required
// permissions.
type MissingPermissionError struct {
	Perms []string
}

func (e MissingPermissionError) Error() string {
	return fmt.Sprintf("missing permission(s): %v", e.Perms)
}

// BlockedError means the principal (or its IP) is under an active block.
type BlockedError struct{}

func (BlockedError) Error() string { return "principal is blocked" }

// ProtectedError means the page is protected above the principal's level.
type ProtectedError struct {
	NamespaceID int
	Title       string
}

func (e ProtectedError) Error() string {
	return fmt.Sprintf("page %d:%s is protected", e.NamespaceID, e.Title)
}

// PageDoesNotExistError means the referenced page has no revisions (or is
// logically deleted).
type PageDoesNotExistError struct {
	NamespaceID int
	Title       string
}

func (e PageDoesNotExistError) Error() string {
	return fmt.Sprintf("page %d:%s does not exist", e.NamespaceID, e.Title)
}

// TitleAlreadyExistsError means a rename's destination title is occupied.
type TitleAlreadyExistsError struct {
	NamespaceID int
	Title       string
}

func (e TitleAlreadyExistsError) Error() string {
	return fmt.Sprintf("page %d:%s already exists", e.NamespaceID, e.Title)
}

// ConcurrentEditError means the page's latest revision changed between the
// caller's snapshot and the edit's commit.
type ConcurrentEditError struct{}

func (ConcurrentEditError) Error() string { return "page was edited concurrently" }

// CannotEditPageError means the namespace/page cannot be edited at all
// (e.g. Special namespace).
type CannotEditPageError struct {
	FullTitle string
}

func (e CannotEditPageError) Error() string {
	return fmt.Sprintf("page %q cannot be edited", e.FullTitle)
}

// EditSpecialPageError means an edit was attempted on a Special page.
type EditSpecialPageError struct{}

func (EditSpecialPageError) Error() string { return "cannot edit a special page" }

// NoRevisionsError means a page has no revisions to operate on.
type NoRevisionsError struct{}

func (NoRevisionsError) Error() string { return "page has no revisions" }

// CannotMaskLastRevisionError means masking the requested set would leave
// no visible revision for some page.
type CannotMaskLastRevisionError struct {
	NamespaceID int
	Title       string
}

func (e CannotMaskLastRevisionError) Error() string {
	return fmt.Sprintf("cannot mask the only visible revision of %d:%s", e.NamespaceID, e.Title)
}

// PageRevisionDoesNotExistError means a revision id does not exist.
type PageRevisionDoesNotExistError struct {
	RevisionID int64
}

func (e PageRevisionDoesNotExistError) Error() string {
	return fmt.Sprintf("revision %d does not exist", e.RevisionID)
}

// FollowSpecialPageError means a caller tried to follow a page in the
// Special namespace.
type FollowSpecialPageError struct{}

func (FollowSpecialPageError) Error() string { return "cannot follow a special page" }
