// Package store persists topics, their sections, and the append-only
// version history behind the review workflow.
package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a referenced topic or section does not
// exist. Handlers map it to a client error with no partial state change.
var ErrNotFound = errors.New("store: not found")

// Topic groups the sections of one generated document under a slug.
type Topic struct {
	ID        int64
	Slug      string
	Title     string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Section is one titled block of a topic's document. Content holds the
// current working render; ApprovedContent is the diff baseline.
type Section struct {
	ID              int64
	TopicID         int64
	OrderIndex      int
	Title           string
	Content         string
	ApprovedContent string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SectionVersion is an immutable snapshot of a section's content. Versions
// are only ever appended, and removed only when the owning section is
// deleted.
type SectionVersion struct {
	ID        int64
	SectionID int64
	Label     string
	Content   string
	CreatedAt time.Time
}

// NewSection is the input for (re)creating a topic's section list.
type NewSection struct {
	OrderIndex int
	Title      string
	Content    string
}

// HistoryRow is one display row of a section's version history.
type HistoryRow struct {
	Name      string `json:"name"`
	Timestamp string `json:"timestamp"`
}

const historyTimeLayout = "2006-01-02 15:04"
