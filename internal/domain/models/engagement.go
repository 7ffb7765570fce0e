package models

import "time"

// Bookmark, Like, Rating and ReadingProgress are join records between a user
// and a novel, each upserted under a UNIQUE(user_id, novel_id) constraint.

type Bookmark struct {
	UserID    string    `json:"user_id" db:"user_id"`
	NovelID   string    `json:"novel_id" db:"novel_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Like struct {
	UserID    string    `json:"user_id" db:"user_id"`
	NovelID   string    `json:"novel_id" db:"novel_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Rating is a 1-5 star score. The novel's rating average is recomputed
// server-side in the same transaction as the upsert.
type Rating struct {
	UserID    string    `json:"user_id" db:"user_id"`
	NovelID   string    `json:"novel_id" db:"novel_id"`
	Score     int       `json:"score" db:"score"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ReadingProgress remembers the last chapter a user opened in a novel.
type ReadingProgress struct {
	UserID    string    `json:"user_id" db:"user_id"`
	NovelID   string    `json:"novel_id" db:"novel_id"`
	ChapterID string    `json:"chapter_id" db:"chapter_id"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// LikeState is the authoritative result of a like toggle, returned so
// optimistic client counters can reconcile (or roll back) against it.
type LikeState struct {
	Liked bool  `json:"liked"`
	Likes int64 `json:"likes"`
}

// RatingState is the authoritative result of a rating submit.
type RatingState struct {
	Score       int     `json:"score"`
	RatingAvg   float64 `json:"rating"`
	RatingCount int64   `json:"rating_count"`
}
