package utils

import "testing"

func TestCountWords(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"empty", "", 0},
		{"whitespace only", "  \n\t  ", 0},
		{"plain prose", "The harbor smelled of tar.", 5},
		{"heading marker skipped", "# Chapter One\n\nShe waited.", 4},
		{"list bullets skipped", "- first\n- second", 2},
		{"horizontal rule skipped", "before\n\n---\n\nafter", 2},
		{"bold words still count", "she **really** meant it", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountWords(tt.content); got != tt.want {
				t.Errorf("CountWords(%q) = %d, want %d", tt.content, got, tt.want)
			}
		})
	}
}
