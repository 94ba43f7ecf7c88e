package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/everyskill/everyskill-backend/internal/logger"
	"github.com/everyskill/everyskill-backend/internal/repos"
	"github.com/everyskill/everyskill-backend/internal/review"
)

type skillFixture struct {
	service  SkillService
	skills   *fakeSkillRepo
	versions *fakeVersionRepo
	tenantID uuid.UUID
	authorID uuid.UUID
}

func newSkillFixture(t *testing.T) *skillFixture {
	t.Helper()
	f := &skillFixture{
		skills:   newFakeSkillRepo(),
		versions: &fakeVersionRepo{},
		tenantID: uuid.New(),
		authorID: uuid.New(),
	}
	f.service = NewSkillService(testDB(t), logger.NewNop(), f.skills, f.versions)
	return f
}

func (f *skillFixture) ctx() context.Context {
	return authedCtx(f.tenantID, f.authorID)
}

func TestCreateSkill(t *testing.T) {
	f := newSkillFixture(t)

	skill, err := f.service.Create(f.ctx(), CreateSkillInput{
		Name:     "PR Review Checklist",
		Category: "prompt",
		Content:  "# PR Review Checklist\n\nCheck tests, naming, error paths.",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if skill.Slug != "pr-review-checklist" {
		t.Fatalf("slug = %q", skill.Slug)
	}
	if skill.Status != string(review.StatusDraft) {
		t.Fatalf("status = %s, want draft", skill.Status)
	}
	if skill.Visibility != "tenant" {
		t.Fatalf("visibility = %s, want tenant default", skill.Visibility)
	}
}

func TestCreateSkillValidation(t *testing.T) {
	f := newSkillFixture(t)

	cases := []struct {
		name string
		in   CreateSkillInput
	}{
		{"empty name", CreateSkillInput{Category: "prompt"}},
		{"bad category", CreateSkillInput{Name: "X", Category: "spreadsheet"}},
		{"bad visibility", CreateSkillInput{Name: "X", Category: "prompt", Visibility: "public"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.service.Create(f.ctx(), tc.in)
			var pre *PreconditionError
			if !errors.As(err, &pre) || pre.Code != CodeInvalidInput {
				t.Fatalf("err = %v, want invalid_input precondition", err)
			}
		})
	}
}

func TestCreateSkillDuplicateSlug(t *testing.T) {
	f := newSkillFixture(t)
	in := CreateSkillInput{Name: "Standup Summarizer", Category: "prompt", Content: "x"}

	if _, err := f.service.Create(f.ctx(), in); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := f.service.Create(f.ctx(), in)
	var pre *PreconditionError
	if !errors.As(err, &pre) || pre.Code != CodeInvalidInput {
		t.Fatalf("err = %v, want invalid_input for duplicate slug", err)
	}
}

func TestGetPersonalSkillHiddenFromOthers(t *testing.T) {
	f := newSkillFixture(t)
	skill := draftSkill(f.tenantID, f.authorID)
	skill.Visibility = "personal"
	f.skills.add(skill)

	if _, err := f.service.Get(f.ctx(), skill.ID); err != nil {
		t.Fatalf("author Get: %v", err)
	}

	colleague := authedCtx(f.tenantID, uuid.New())
	_, err := f.service.Get(colleague, skill.ID)
	var pre *PreconditionError
	if !errors.As(err, &pre) || pre.Code != CodeNotFound {
		t.Fatalf("err = %v, want not-found for non-author", err)
	}
}

func TestSearchFiltersPersonalSkills(t *testing.T) {
	f := newSkillFixture(t)
	mine := draftSkill(f.tenantID, f.authorID)
	mine.Slug = "mine"
	mine.Visibility = "personal"
	f.skills.add(mine)

	theirs := draftSkill(f.tenantID, uuid.New())
	theirs.ID = uuid.New()
	theirs.Slug = "theirs"
	theirs.Visibility = "personal"
	f.skills.add(theirs)

	shared := draftSkill(f.tenantID, uuid.New())
	shared.ID = uuid.New()
	shared.Slug = "shared"
	f.skills.add(shared)

	skills, err := f.service.Search(f.ctx(), repos.SkillSearchFilter{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(skills) != 2 {
		t.Fatalf("got %d skills, want 2 (own personal + shared)", len(skills))
	}
	for _, s := range skills {
		if s.Slug == "theirs" {
			t.Fatal("someone else's personal skill surfaced in search")
		}
	}
}

func TestUpdatePublishedSkillImmutable(t *testing.T) {
	f := newSkillFixture(t)
	skill := draftSkill(f.tenantID, f.authorID)
	skill.Status = string(review.StatusPublished)
	f.skills.add(skill)

	name := "New Name"
	_, err := f.service.Update(f.ctx(), skill.ID, UpdateSkillInput{Name: &name})
	var pre *PreconditionError
	if !errors.As(err, &pre) || pre.Code != CodeInvalidTransition {
		t.Fatalf("err = %v, want invalid_status_transition", err)
	}
	if f.skills.writes != 0 {
		t.Fatal("published skill must not be written")
	}
}

func TestUpdateContentSnapshotsVersion(t *testing.T) {
	f := newSkillFixture(t)
	skill := f.skills.add(draftSkill(f.tenantID, f.authorID))

	content := skill.Content + "\n\nExtra step."
	updated, err := f.service.Update(f.ctx(), skill.ID, UpdateSkillInput{Content: &content})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Content != content {
		t.Fatal("content not updated")
	}
	if len(f.versions.versions) != 1 {
		t.Fatalf("expected one snapshot, got %d", len(f.versions.versions))
	}
	if f.versions.versions[0].ContentHash != review.ContentHash(content) {
		t.Fatal("snapshot hash mismatch")
	}

	// Updating metadata only does not snapshot.
	desc := "better description"
	if _, err := f.service.Update(f.ctx(), skill.ID, UpdateSkillInput{Description: &desc}); err != nil {
		t.Fatalf("metadata update: %v", err)
	}
	if len(f.versions.versions) != 1 {
		t.Fatal("metadata-only update must not snapshot")
	}
}

func TestForkRecordsLineage(t *testing.T) {
	f := newSkillFixture(t)
	source := draftSkill(f.tenantID, uuid.New())
	source.Status = string(review.StatusPublished)
	f.skills.add(source)

	fork, err := f.service.Fork(f.ctx(), source.ID)
	if err != nil {
		t.Fatalf("Fork: %v", err)
	}
	if fork.Status != string(review.StatusDraft) {
		t.Fatalf("fork status = %s, want draft", fork.Status)
	}
	if fork.AuthorID != f.authorID {
		t.Fatal("fork must belong to the caller")
	}
	if fork.ForkedFromID == nil || *fork.ForkedFromID != source.ID {
		t.Fatal("fork lineage missing")
	}
	if fork.ForkedAtContentHash == nil || *fork.ForkedAtContentHash != review.ContentHash(source.Content) {
		t.Fatal("fork content hash missing or wrong")
	}
	if fork.Slug != source.Slug+"-fork" {
		t.Fatalf("fork slug = %q", fork.Slug)
	}

	// A second fork probes to the next free slug.
	fork2, err := f.service.Fork(f.ctx(), source.ID)
	if err != nil {
		t.Fatalf("second Fork: %v", err)
	}
	if fork2.Slug != source.Slug+"-fork-2" {
		t.Fatalf("second fork slug = %q", fork2.Slug)
	}
}

func TestDecideTransitions(t *testing.T) {
	cases := []struct {
		name     string
		from     review.Status
		decision string
		wantErr  bool
	}{
		{"approve reviewed", review.StatusAIReviewed, "approved", false},
		{"reject reviewed", review.StatusAIReviewed, "rejected", false},
		{"request changes", review.StatusAIReviewed, "changes_requested", false},
		{"publish approved", review.StatusApproved, "published", false},
		{"rejected back to draft", review.StatusRejected, "draft", false},
		{"resubmit after changes", review.StatusChangesRequested, "pending_review", false},
		{"cannot publish draft", review.StatusDraft, "published", true},
		{"cannot approve draft", review.StatusDraft, "approved", true},
		{"published is terminal", review.StatusPublished, "draft", true},
		{"unknown decision", review.StatusAIReviewed, "archived", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newSkillFixture(t)
			skill := draftSkill(f.tenantID, f.authorID)
			skill.Status = string(tc.from)
			f.skills.add(skill)

			updated, err := f.service.Decide(f.ctx(), skill.ID, tc.decision)
			if tc.wantErr {
				var pre *PreconditionError
				if !errors.As(err, &pre) {
					t.Fatalf("err = %v, want precondition error", err)
				}
				if got := f.skills.skills[skill.ID].Status; got != string(tc.from) {
					t.Fatalf("status changed to %s on rejected decision", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decide: %v", err)
			}
			if updated.Status != tc.decision {
				t.Fatalf("status = %s, want %s", updated.Status, tc.decision)
			}
		})
	}
}

func TestDecidePublishSnapshots(t *testing.T) {
	f := newSkillFixture(t)
	skill := draftSkill(f.tenantID, f.authorID)
	skill.Status = string(review.StatusApproved)
	f.skills.add(skill)

	updated, err := f.service.Decide(f.ctx(), skill.ID, "published")
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if updated.PublishedVersionID == nil {
		t.Fatal("publish decision must set published_version_id")
	}
	if len(f.versions.versions) != 1 {
		t.Fatalf("expected one publish snapshot, got %d", len(f.versions.versions))
	}
}

func TestDeleteOwnerOnly(t *testing.T) {
	f := newSkillFixture(t)
	skill := f.skills.add(draftSkill(f.tenantID, f.authorID))

	colleague := authedCtx(f.tenantID, uuid.New())
	err := f.service.Delete(colleague, skill.ID)
	var pre *PreconditionError
	if !errors.As(err, &pre) || pre.Code != CodeNotOwner {
		t.Fatalf("err = %v, want not_owner", err)
	}

	if err := f.service.Delete(f.ctx(), skill.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, ok := f.skills.skills[skill.ID]; ok {
		t.Fatal("skill not deleted")
	}
}
