package entities

import "time"

// PageProtection restricts edits on a (namespace, title) to principals
// holding the given protection level (a user group label).
type PageProtection struct {
	NamespaceID      int
	Title            string
	ProtectionLevel  string // a UserGroup label
	ProtectTalks     bool
	Reason           string
	CreatedAt        time.Time
	EndDate          *time.Time // nil == infinite
}

// IsActive reports whether the protection still applies at the given time.
func (p PageProtection) IsActive(now time.Time) bool {
	return p.EndDate == nil || p.EndDate.After(now)
}

// PageFollowStatus records that a user opted in to notifications for a page.
type PageFollowStatus struct {
	UserID      int64
	NamespaceID int
	Title       string
	EndDate     *time.Time
}

// PageCategory associates a page with a category title. The category page
// need not exist.
type PageCategory struct {
	PageNamespaceID int
	PageTitle       string
	CategoryTitle   string
	SortKey         *string
}

// PageLink records a link discovered while parsing a page. The target page
// need not exist.
type PageLink struct {
	SourceNamespaceID int
	SourceTitle       string
	TargetNamespaceID int
	TargetTitle       string
}
