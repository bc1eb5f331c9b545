package entities

import "time"

// Gender is used to pick gendered UI strings. The wiki core only carries
// the value; rendering gendered copy is a UI collaborator's job.
type Gender string

const (
	GenderNeutral   Gender = "neutral"
	GenderMasculine Gender = "masculine"
	GenderFeminine  Gender = "feminine"
)

// newAccountGracePeriod is how long after creation an account is "new".
const newAccountGracePeriod = 30 * 24 * time.Hour

// Preferences holds a principal's account settings.
type Preferences struct {
	Language           string
	Timezone           string
	DateFormat         string
	Gender             Gender
	DarkMode           bool
	FollowListAutoAdd  bool
	FollowListAutoAddOwnPages bool
	MaskEmail          bool
}

// Principal is either an authenticated user (identified by name) or an
// anonymous visitor (identified by IP address).
type Principal struct {
	ID          int64
	Name        string // username, or the caller's IP address when Anonymous
	Anonymous   bool
	CreatedAt   time.Time
	Groups      map[string]bool
	Preferences Preferences
	Block       *UserBlock // nil when not blocked
	IPBlock     *IPBlock   // nil when not blocked; only meaningful when Anonymous
}

// IsNew reports whether the principal is anonymous or its account is at
// most 30 days old.
func (p Principal) IsNew(now time.Time) bool {
	if p.Anonymous {
		return true
	}
	return now.Sub(p.CreatedAt) <= newAccountGracePeriod
}

// InGroup reports whether the principal belongs to the named group.
// Every principal, including anonymous ones, is implicitly in GroupAll.
func (p Principal) InGroup(label string) bool {
	if label == GroupAll {
		return true
	}
	return p.Groups[label]
}

// HasPermission reports whether any of the principal's groups grant perm.
func (p Principal) HasPermission(perm Permission, groups map[string]UserGroup) bool {
	for label := range p.Groups {
		if g, ok := groups[label]; ok && g.HasPermission(perm) {
			return true
		}
	}
	if g, ok := groups[GroupAll]; ok && g.HasPermission(perm) {
		return true
	}
	return false
}

// IsBlocked reports whether the principal (or, for anonymous principals,
// its IP) is subject to an active block as of now.
func (p Principal) IsBlocked(now time.Time) bool {
	if p.Block != nil && p.Block.IsActive(now) {
		return true
	}
	if p.Anonymous && p.IPBlock != nil && p.IPBlock.IsActive(now) {
		return true
	}
	return false
}
