package config

import "time"

const (
	// MaxUsernameLength is the maximum length for usernames.
	// Limited to 32 for reasonable display in reader-facing lists.
	MaxUsernameLength = 32

	// MaxPenNameLength is the maximum length for author pen names.
	MaxPenNameLength = 64

	// MaxBioLength is the maximum length for profile bios.
	MaxBioLength = 2000

	// MaxNovelTitleLength is the maximum length for novel titles.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255) and provide
	// reasonable UX (titles should be short and descriptive).
	MaxNovelTitleLength = 255

	// MaxChapterTitleLength is the maximum length for chapter titles.
	// Same as novel titles for consistency.
	MaxChapterTitleLength = 255

	// MaxSynopsisLength is the maximum length for a novel synopsis.
	MaxSynopsisLength = 5000

	// MaxTags is the maximum number of tags per novel.
	MaxTags = 20

	// MaxTagLength is the maximum length of a single tag.
	MaxTagLength = 40

	// MaxCommentLength is the maximum length for a single comment.
	MaxCommentLength = 4000

	// MinRatingScore and MaxRatingScore bound the 1-5 star scale.
	MinRatingScore = 1
	MaxRatingScore = 5
)

const (
	// DefaultAutosaveDebounce is the quiet period after the last edit before
	// the editor auto-save persists a draft. Only the last edit group within
	// a quiet window triggers a write (trailing debounce).
	DefaultAutosaveDebounce = 2 * time.Second

	// DefaultAutosaveRetryDelay is how long a failed auto-save waits before
	// re-entering the dirty state, which re-arms the debounce path.
	DefaultAutosaveRetryDelay = 2 * time.Second
)
