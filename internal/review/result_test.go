package review

import (
	"strings"
	"testing"
)

func TestResultValidateScoreRange(t *testing.T) {
	for _, score := range []int{0, -1, 11, 100} {
		r := resultWithScores(score, 7, 7)
		if err := r.Validate(); err == nil {
			t.Errorf("score %d should fail validation", score)
		}
	}
	for _, score := range []int{1, 5, 10} {
		r := resultWithScores(score, 7, 7)
		if err := r.Validate(); err != nil {
			t.Errorf("score %d should pass validation: %v", score, err)
		}
	}
}

func TestResultValidateTrimsSuggestions(t *testing.T) {
	r := resultWithScores(7, 7, 7)
	r.Clarity.Suggestions = []string{"one", "two", "three", "four"}
	if err := r.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(r.Clarity.Suggestions) != 2 {
		t.Fatalf("suggestions not trimmed to 2, got %d", len(r.Clarity.Suggestions))
	}
}

func TestResultValidateEmptySummary(t *testing.T) {
	r := resultWithScores(7, 7, 7)
	r.Summary = ""
	err := r.Validate()
	if err == nil {
		t.Fatal("empty summary should fail validation")
	}
	if !strings.Contains(err.Error(), "summary") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestResultScores(t *testing.T) {
	r := resultWithScores(8, 5, 9)
	s := r.Scores()
	if s.Quality != 8 || s.Clarity != 5 || s.Completeness != 9 {
		t.Fatalf("Scores() = %+v", s)
	}
}
