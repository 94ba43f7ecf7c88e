package review

// DefaultApproveThreshold is the minimum per-category score required on
// all three categories for automatic publication.
const DefaultApproveThreshold = 7

// AutoApproved reports whether a review result clears the auto-approve
// bar: every category score must be >= threshold. No weighting, no
// partial credit.
func AutoApproved(r *Result, threshold int) bool {
	if r == nil {
		return false
	}
	if threshold <= 0 {
		threshold = DefaultApproveThreshold
	}
	return r.Quality.Score >= threshold &&
		r.Clarity.Score >= threshold &&
		r.Completeness.Score >= threshold
}
