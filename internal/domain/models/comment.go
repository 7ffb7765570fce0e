package models

import "time"

// Comment is attached to a chapter. ParentID forms a self-referential reply
// tree; listings fetch top-level comments only, replies are loaded on demand.
type Comment struct {
	ID        string     `json:"id" db:"id"`
	ChapterID string     `json:"chapter_id" db:"chapter_id"`
	UserID    string     `json:"user_id" db:"user_id"`
	Username  string     `json:"username" db:"username"`
	ParentID  *string    `json:"parent_id" db:"parent_id"`
	Content   string     `json:"content" db:"content"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	Replies   []*Comment `json:"replies,omitempty"`
}
