package models

import "time"

// Chapter belongs to exactly one novel. ChapterNumber is positional and
// unique within the novel; listings are always ordered by it.
type Chapter struct {
	ID            string    `json:"id" db:"id"`
	NovelID       string    `json:"novel_id" db:"novel_id"`
	ChapterNumber int       `json:"chapter_number" db:"chapter_number"`
	Title         string    `json:"title" db:"title"`
	Content       string    `json:"content" db:"content"`
	IsPublished   bool      `json:"is_published" db:"is_published"`
	Views         int64     `json:"views" db:"views"`
	Likes         int64     `json:"likes" db:"likes"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
