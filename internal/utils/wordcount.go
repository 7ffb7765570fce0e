package utils

import "strings"

// CountWords counts the words in chapter prose. Chapters are stored as plain
// text with light markdown, so markers are stripped before counting rather
// than counted as words of their own.
func CountWords(content string) int {
	count := 0
	for _, word := range strings.Fields(content) {
		if isMarker(word) {
			continue
		}
		count++
	}
	return count
}

// isMarker reports whether a whitespace-delimited token is markdown
// punctuation rather than prose: heading hashes, list bullets, rules and
// blockquote markers.
func isMarker(word string) bool {
	trimmed := strings.TrimLeft(word, "#*->_=`~")
	return trimmed == ""
}
