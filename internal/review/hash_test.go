package review

import "testing"

func TestContentHash(t *testing.T) {
	// sha256("") is a fixed vector.
	if got := ContentHash(""); got != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Fatalf("ContentHash(\"\") = %s", got)
	}

	a := ContentHash("# My Skill\n\nDo the thing.")
	b := ContentHash("# My Skill\n\nDo the thing.")
	if a != b {
		t.Fatal("identical content must hash identically")
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}

	// Whitespace-only edits still count as changes.
	if ContentHash("content") == ContentHash("content ") {
		t.Fatal("trailing whitespace must change the hash")
	}
}
