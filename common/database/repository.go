package database

import (
	"time"

	"github.com/ottm-wiki/wiki/common/entities"
)

// MaskAction mirrors entities.RevisionMaskAction; re-exported here so
// callers that only import database for the repository contract do not
// also need to import entities for this one enum.
type MaskAction = entities.RevisionMaskAction

// EditRequest carries every caller-supplied field of a C3 edit.
type EditRequest struct {
	NamespaceID int
	Title       string
	Content     string
	Comment     string
	Minor       bool
	Bot         bool
	Follow      bool
	// SnapshotRevisionID is the id of the latest revision the caller
	// observed before starting the edit; 0 means "page did not exist
	// yet", used for the optimistic-concurrency check.
	SnapshotRevisionID int64
}

// PageRepository is the opaque storage boundary C3 describes: pages are
// looked up and mutated only through this interface, never through a
// concrete storage engine type.
type PageRepository interface {
	// Get always returns a value; non-existent pages come back with
	// Exists == false rather than an error.
	Get(namespaceID int, title string) (entities.Page, error)

	// Edit performs the storage part of the edit sequence described by
	// spec §4.3: optimistic-lock check, page creation, revision append,
	// follow-list update, redirect-target refresh, and cache
	// invalidation. authorID must name an existing principal; anonymous
	// account materialization happens in the caller.
	Edit(authorID int64, req EditRequest, now time.Time) (entities.Revision, error)

	Delete(performerID int64, namespaceID int, title string, reason string, now time.Time) error

	Rename(performerID int64, namespaceID int, title string, newTitle string, leaveRedirect bool, reason string, now time.Time) error

	Protect(performerID int64, namespaceID int, title string, level string, protectTalks bool, reason string, endDate *time.Time, now time.Time) error

	// SetContentLanguage and SetContentType back the ChangePageLanguage/
	// ChangePageContentType special pages; neither appends a revision,
	// matching the original's metadata-only updates.
	SetContentLanguage(namespaceID int, title string, language string) error
	SetContentType(namespaceID int, title string, contentType entities.ContentType) error

	// Protection returns the current protection record for (namespaceID,
	// title), if any, regardless of whether it is still active; callers
	// check IsActive themselves.
	Protection(namespaceID int, title string) (entities.PageProtection, bool)

	MaskRevisions(performerID int64, revisionIDs []int64, action MaskAction, reason string, now time.Time) error

	// Follow toggles the caller's follow status on a page. A no-op
	// returning false for anonymous users.
	Follow(userID int64, anonymous bool, namespaceID int, title string, follow bool, now time.Time) (bool, error)

	// FollowedPages lists every page userID currently follows, backing
	// the EditFollowList special page's "raw"/"clear" actions.
	FollowedPages(userID int64) []entities.PageFollowStatus

	Revisions(namespaceID int, title string) ([]entities.Revision, error)
	Revision(id int64) (entities.Revision, error)

	// Next and Previous traverse revisions of the same page as rev,
	// ordered by date; when skipHidden is true, revisions with Hidden
	// set are skipped over.
	Next(rev entities.Revision, skipHidden bool) (entities.Revision, bool)
	Previous(rev entities.Revision, skipHidden bool) (entities.Revision, bool)

	Categories(namespaceID int, title string) ([]entities.PageCategory, error)
	Links(namespaceID int, title string) ([]entities.PageLink, error)

	// SetDerivedIndexes replaces the stored category/link rows for a
	// page, called once C5 has parsed its latest revision.
	SetDerivedIndexes(namespaceID int, title string, categories []entities.PageCategory, links []entities.PageLink)

	// ExpireProtections, ExpireFollows, ExpireUserBlocks and
	// ExpireIPBlocks implement C8's hourly cleanup jobs; each returns
	// the count of rows removed.
	ExpireProtections(now time.Time) (int, error)
	ExpireFollows(now time.Time) (int, error)

	// RefreshExpiredCaches re-parses every non-deleted page whose cache
	// has expired, using render to turn (namespaceID, title, content)
	// into HTML. It returns the count of pages refreshed.
	RefreshExpiredCaches(now time.Time, render func(namespaceID int, title, content string) (html string, durationMS int64)) (int, error)
}

// StatsRepository exposes the site-wide counts the NUMBER_OF_*/PAGES_IN_*
// magic variables read through registry.Stats. It is a separate,
// optional interface rather than part of PageRepository/
// PrincipalRepository because those are defined by per-page and
// per-principal operations; a repository implementation is free to
// decline it if it cannot answer site-wide queries cheaply.
type StatsRepository interface {
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

// BrowseRepository backs the C7 special pages that list pages across
// the whole site rather than operate on one page at a time
// (RecentChanges, Contributions, Subpages, RandomPage). Optional for the
// same reason StatsRepository is: a repository implementation can
// decline it and the dispatcher degrades to an empty listing (for
// RandomPage, a NoPagesError) rather than failing.
type BrowseRepository interface {
	// RecentChanges returns up to limit revisions dated at or after
	// since, newest first.
	RecentChanges(since time.Time, limit int) []entities.Revision
	// ContributionsOf returns up to limit revisions by authorID, newest
	// first.
	ContributionsOf(authorID int64, limit int) []entities.Revision
	// Subpages returns the full titles of every existing, non-deleted
	// page whose title is a "title/..." descendant of title within
	// namespaceID.
	Subpages(namespaceID int, title string) []string
	// RandomPage returns a uniformly-chosen existing, non-deleted,
	// non-redirect page from namespaceID, or ok == false if none exist.
	RandomPage(namespaceID int) (page entities.Page, ok bool)
}

// PrincipalRepository manages users/anonymous principals, groups, and
// blocks — the pieces C4 needs besides the page repository.
type PrincipalRepository interface {
	GetPrincipal(id int64) (entities.Principal, bool)
	GetByName(name string) (entities.Principal, bool)

	// GetOrCreateAnonymous materializes (or fetches) the shadow account
	// keyed by IP address, per spec §4.3 step 3.
	GetOrCreateAnonymous(ip string, now time.Time) entities.Principal

	Groups() map[string]entities.UserGroup

	UserBlock(userID int64) (entities.UserBlock, bool)
	IPBlock(ip string) (entities.IPBlock, bool)

	ExpireUserBlocks(now time.Time) (int, error)
	ExpireIPBlocks(now time.Time) (int, error)

	// MuteUser toggles whether muterID has silenced talk-message
	// notifications from mutedID; consulted only by the Mute special
	// page (spec §3's MutedUser join).
	MuteUser(muterID, mutedID int64, mute bool)
	IsMuted(muterID, mutedID int64) bool
}
