package entities

import "time"

// UserBlock prohibits an authenticated principal from editing.
type UserBlock struct {
	ID                       int64
	Performer                string
	Reason                   string
	CreatedAt                time.Time
	EndDate                  *time.Time // nil == infinite
	AllowMessagesOnOwnUserPage bool
	AllowEditingOwnSettings  bool
}

// IsActive reports whether the block still applies at the given time.
func (b UserBlock) IsActive(now time.Time) bool {
	return b.EndDate == nil || b.EndDate.After(now)
}

// IPBlock prohibits an anonymous principal (identified by IP) from editing.
type IPBlock struct {
	ID                    int64
	IP                    string
	Performer             string
	Reason                string
	CreatedAt             time.Time
	EndDate               *time.Time
	AllowAccountCreation  bool
}

// IsActive reports whether the block still applies at the given time.
func (b IPBlock) IsActive(now time.Time) bool {
	return b.EndDate == nil || b.EndDate.After(now)
}
