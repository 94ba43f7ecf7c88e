package review

import "fmt"

// CategoryScore is one scored review dimension.
type CategoryScore struct {
	Score       int      `json:"score"`
	Suggestions []string `json:"suggestions"`
}

// Result is the parsed output of one AI review.
type Result struct {
	Quality              CategoryScore `json:"quality"`
	Clarity              CategoryScore `json:"clarity"`
	Completeness         CategoryScore `json:"completeness"`
	Summary              string        `json:"summary"`
	SuggestedDescription string        `json:"suggestedDescription"`
}

// Validate checks score ranges and trims suggestion lists to the
// documented 1-2 items per category.
func (r *Result) Validate() error {
	for _, c := range []struct {
		name string
		cat  *CategoryScore
	}{
		{"quality", &r.Quality},
		{"clarity", &r.Clarity},
		{"completeness", &r.Completeness},
	} {
		if c.cat.Score < 1 || c.cat.Score > 10 {
			return fmt.Errorf("category %s: score %d out of range 1-10", c.name, c.cat.Score)
		}
		if len(c.cat.Suggestions) > 2 {
			c.cat.Suggestions = c.cat.Suggestions[:2]
		}
	}
	if r.Summary == "" {
		return fmt.Errorf("review summary is empty")
	}
	return nil
}

// Scores is the caller-facing flattened score triple.
type Scores struct {
	Quality      int `json:"quality"`
	Clarity      int `json:"clarity"`
	Completeness int `json:"completeness"`
}

func (r *Result) Scores() Scores {
	return Scores{
		Quality:      r.Quality.Score,
		Clarity:      r.Clarity.Score,
		Completeness: r.Completeness.Score,
	}
}
