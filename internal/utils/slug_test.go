package utils

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"PR Review Checklist", "pr-review-checklist"},
		{"  Standup   Summarizer  ", "standup-summarizer"},
		{"What's New?", "what-s-new"},
		{"already-slugged", "already-slugged"},
		{"Trailing!!!", "trailing"},
		{"123 Go", "123-go"},
		{"", ""},
		{"!!!", ""},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
