package review

// Status is the review/publish lifecycle state of a skill.
type Status string

const (
	StatusDraft            Status = "draft"
	StatusPendingReview    Status = "pending_review"
	StatusAIReviewed       Status = "ai_reviewed"
	StatusApproved         Status = "approved"
	StatusRejected         Status = "rejected"
	StatusChangesRequested Status = "changes_requested"
	StatusPublished        Status = "published"
)

// transitions is the full allowed-transition table. published is
// terminal: edits to published content go through a fork, not a
// transition.
var transitions = map[Status][]Status{
	StatusDraft:            {StatusPendingReview},
	StatusPendingReview:    {StatusAIReviewed},
	StatusAIReviewed:       {StatusApproved, StatusRejected, StatusChangesRequested},
	StatusApproved:         {StatusPublished},
	StatusRejected:         {StatusDraft},
	StatusChangesRequested: {StatusDraft, StatusPendingReview},
	StatusPublished:        {},
}

// CanTransition reports whether from -> to is in the transition table.
// The submission retry path (already pending_review) is handled by the
// orchestrator, not here.
func CanTransition(from, to Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s is one of the known lifecycle states.
func ValidStatus(s Status) bool {
	_, ok := transitions[s]
	return ok
}
