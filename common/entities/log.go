package entities

import "time"

// LogEntry is the common header embedded by every log kind. Log entries
// are append-only and ordered by Date.
type LogEntry struct {
	ID        int64
	Date      time.Time
	Performer string
	Reason    string
}

// PageCreationLog records a page's first revision.
type PageCreationLog struct {
	LogEntry
	NamespaceID int
	Title       string
}

// PageDeletionLog records a page deletion.
type PageDeletionLog struct {
	LogEntry
	NamespaceID int
	Title       string
}

// PageProtectionLog records a protection upsert.
type PageProtectionLog struct {
	LogEntry
	NamespaceID     int
	Title           string
	ProtectionLevel string
	ProtectTalks    bool
	EndDate         *time.Time
}

// PageRenameLog records a page rename.
type PageRenameLog struct {
	LogEntry
	OldNamespaceID int
	OldTitle       string
	NewNamespaceID int
	NewTitle       string
	LeftRedirect   bool
}

// PageContentLanguageLog records a content-language change.
type PageContentLanguageLog struct {
	LogEntry
	NamespaceID int
	Title       string
	OldLanguage string
	NewLanguage string
}

// PageContentTypeLog records a content-type change.
type PageContentTypeLog struct {
	LogEntry
	NamespaceID int
	Title       string
	OldType     ContentType
	NewType     ContentType
}

// RevisionMaskAction enumerates the actions mask_revisions supports.
type RevisionMaskAction string

const (
	MaskFully              RevisionMaskAction = "mask_fully"
	MaskCommentsOnly       RevisionMaskAction = "mask_comments_only"
	UnmaskAll              RevisionMaskAction = "unmask_all"
	UnmaskAllButComments   RevisionMaskAction = "unmask_all_but_comments"
)

// PageRevisionMaskLog records a revision-visibility change.
type PageRevisionMaskLog struct {
	LogEntry
	RevisionID int64
	Action     RevisionMaskAction
}

// UserCreationLog records an account's creation.
type UserCreationLog struct {
	LogEntry
	Username string
}

// UserMaskLog records a username mask/unmask.
type UserMaskLog struct {
	LogEntry
	Username string
	Masked   bool
}

// UserRenameLog records a username change.
type UserRenameLog struct {
	LogEntry
	OldUsername string
	NewUsername string
}

// UserGroupLog records a group join or leave.
type UserGroupLog struct {
	LogEntry
	Username string
	Group    string
	Joined   bool
}

// UserBlockLog records a user block/unblock.
type UserBlockLog struct {
	LogEntry
	Username string
	Blocked  bool
	EndDate  *time.Time
}

// IPBlockLog records an IP block/unblock.
type IPBlockLog struct {
	LogEntry
	IP       string
	Blocked  bool
	EndDate  *time.Time
}
