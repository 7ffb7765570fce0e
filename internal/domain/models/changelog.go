package models

import "time"

// ChangelogEntryType classifies a single changelog line.
type ChangelogEntryType string

const (
	ChangelogNew      ChangelogEntryType = "NEW"
	ChangelogImproved ChangelogEntryType = "IMPROVED"
	ChangelogFixed    ChangelogEntryType = "FIXED"
)

// ChangelogEntry is one line of a release's changelog.
type ChangelogEntry struct {
	Type ChangelogEntryType `json:"type" yaml:"type"`
	Text string             `json:"text" yaml:"text"`
}

// Changelog is one released version with its ordered entry list.
// Entries are stored as a JSONB column.
type Changelog struct {
	ID         string           `json:"id" db:"id"`
	Version    string           `json:"version" db:"version"`
	ReleasedOn time.Time        `json:"date" db:"released_on"`
	Entries    []ChangelogEntry `json:"entries" db:"entries"`
}
