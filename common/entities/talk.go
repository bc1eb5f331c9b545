package entities

import "time"

// TopicRevision is an immutable snapshot of a topic's title/text, mirroring
// how page revisions work (original_source keeps topics/messages
// revisioned the same way pages are).
type TopicRevision struct {
	ID      int64
	TopicID int64
	Date    time.Time
	Author  string
	Title   string
	Text    string
}

// Topic is a talk thread attached to a page.
type Topic struct {
	ID              int64
	PageNamespaceID int
	PageTitle       string
	Deleted         bool
	CreatedAt       time.Time
}

// MessageRevision is an immutable snapshot of a message's text.
type MessageRevision struct {
	ID        int64
	MessageID int64
	Date      time.Time
	Author    string
	Text      string
}

// Message is a post within a Topic, optionally replying to another Message.
type Message struct {
	ID        int64
	TopicID   int64
	ParentID  *int64
	Deleted   bool
	CreatedAt time.Time
}

// MutedUser records that Muter has silenced talk-message notifications
// from Muted. Consulted only by the Mute special-page handler.
type MutedUser struct {
	MuterID int64
	MutedID int64
}
