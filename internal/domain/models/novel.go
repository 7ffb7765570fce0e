package models

import "time"

// NovelStatus is the reader-facing visibility of a novel.
// Drafts are hidden from readers.
type NovelStatus string

const (
	NovelStatusDraft     NovelStatus = "DRAFT"
	NovelStatusPublished NovelStatus = "PUBLISHED"
)

type Novel struct {
	ID       string `json:"id" db:"id"`
	AuthorID string `json:"author_id" db:"author_id"`
	// AuthorName is denormalized from the author's profile so catalog
	// listings don't join against profiles.
	AuthorName  string      `json:"author_name" db:"author_name"`
	Title       string      `json:"title" db:"title"`
	Synopsis    string      `json:"synopsis" db:"synopsis"`
	Genre       string      `json:"genre" db:"genre"`
	Tags        []string    `json:"tags" db:"tags"`
	CoverURL    *string     `json:"cover_url" db:"cover_url"`
	Language    string      `json:"language" db:"language"`
	Status      NovelStatus `json:"status" db:"status"`
	Views       int64       `json:"views" db:"views"`
	Likes       int64       `json:"likes" db:"likes"`
	RatingAvg   float64     `json:"rating" db:"rating_avg"`
	RatingCount int64       `json:"rating_count" db:"rating_count"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}

// Published reports whether readers can see this novel.
func (n *Novel) Published() bool {
	return n.Status == NovelStatusPublished
}
