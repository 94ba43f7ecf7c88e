package services

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/everyskill/everyskill-backend/internal/repos"
	"github.com/everyskill/everyskill-backend/internal/requestdata"
	"github.com/everyskill/everyskill-backend/internal/review"
	"github.com/everyskill/everyskill-backend/internal/types"
)

// testDB returns a bare in-memory database. The fakes below hold the
// actual state; the handle only backs the Transaction plumbing.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	return db
}

func authedCtx(tenantID, userID uuid.UUID) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		TenantID: tenantID,
		UserID:   userID,
	})
}

// fakeSkillRepo is an in-memory SkillRepo that counts writes so tests
// can assert "no state was touched".
type fakeSkillRepo struct {
	skills      map[uuid.UUID]*types.Skill
	writes      int
	failUpdates bool
}

func newFakeSkillRepo() *fakeSkillRepo {
	return &fakeSkillRepo{skills: make(map[uuid.UUID]*types.Skill)}
}

func (f *fakeSkillRepo) add(s *types.Skill) *types.Skill {
	cp := *s
	f.skills[s.ID] = &cp
	return &cp
}

func (f *fakeSkillRepo) Create(ctx context.Context, tx *gorm.DB, skills []*types.Skill) ([]*types.Skill, error) {
	f.writes++
	for _, s := range skills {
		cp := *s
		f.skills[s.ID] = &cp
	}
	return skills, nil
}

func (f *fakeSkillRepo) GetByID(ctx context.Context, tx *gorm.DB, tenantID, skillID uuid.UUID) (*types.Skill, error) {
	s, ok := f.skills[skillID]
	if !ok || s.TenantID != tenantID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSkillRepo) GetBySlug(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, slug string) (*types.Skill, error) {
	for _, s := range f.skills {
		if s.TenantID == tenantID && s.Slug == slug {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSkillRepo) SlugExists(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, slug string) (bool, error) {
	_, err := f.GetBySlug(ctx, tx, tenantID, slug)
	return err == nil, nil
}

func (f *fakeSkillRepo) Search(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, filter repos.SkillSearchFilter) ([]*types.Skill, error) {
	var out []*types.Skill
	for _, s := range f.skills {
		if s.TenantID != tenantID {
			continue
		}
		if filter.Category != "" && s.Category != filter.Category {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.AuthorID != nil && s.AuthorID != *filter.AuthorID {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (f *fakeSkillRepo) UpdateFields(ctx context.Context, tx *gorm.DB, tenantID, skillID uuid.UUID, fields map[string]any) error {
	if f.failUpdates {
		return fmt.Errorf("store down")
	}
	s, ok := f.skills[skillID]
	if !ok || s.TenantID != tenantID {
		return gorm.ErrRecordNotFound
	}
	f.writes++
	for key, val := range fields {
		switch key {
		case "status":
			s.Status = val.(string)
		case "status_message":
			if val == nil {
				s.StatusMessage = nil
			} else {
				msg := val.(string)
				s.StatusMessage = &msg
			}
		case "published_version_id":
			id := val.(uuid.UUID)
			s.PublishedVersionID = &id
		case "name":
			s.Name = val.(string)
		case "description":
			s.Description = val.(string)
		case "content":
			s.Content = val.(string)
		case "hours_saved":
			s.HoursSaved = val.(float64)
		case "visibility":
			s.Visibility = val.(string)
		default:
			return fmt.Errorf("fakeSkillRepo: unhandled field %q", key)
		}
	}
	return nil
}

func (f *fakeSkillRepo) Delete(ctx context.Context, tx *gorm.DB, tenantID, skillID uuid.UUID) error {
	s, ok := f.skills[skillID]
	if !ok || s.TenantID != tenantID {
		return gorm.ErrRecordNotFound
	}
	f.writes++
	delete(f.skills, skillID)
	return nil
}

type fakeReviewRepo struct {
	rows map[uuid.UUID]*types.SkillReview // keyed by skill id
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{rows: make(map[uuid.UUID]*types.SkillReview)}
}

func (f *fakeReviewRepo) Upsert(ctx context.Context, tx *gorm.DB, rev *types.SkillReview) (*types.SkillReview, error) {
	cp := *rev
	f.rows[rev.SkillID] = &cp
	return &cp, nil
}

func (f *fakeReviewRepo) GetBySkill(ctx context.Context, tx *gorm.DB, tenantID, skillID uuid.UUID) (*types.SkillReview, error) {
	r, ok := f.rows[skillID]
	if !ok || r.TenantID != tenantID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r
	return &cp, nil
}

type fakeVersionRepo struct {
	versions []*types.SkillVersion
}

func (f *fakeVersionRepo) Create(ctx context.Context, tx *gorm.DB, versions []*types.SkillVersion) ([]*types.SkillVersion, error) {
	for _, v := range versions {
		cp := *v
		f.versions = append(f.versions, &cp)
	}
	return versions, nil
}

func (f *fakeVersionRepo) ListBySkill(ctx context.Context, tx *gorm.DB, tenantID, skillID uuid.UUID) ([]*types.SkillVersion, error) {
	var out []*types.SkillVersion
	for _, v := range f.versions {
		if v.TenantID == tenantID && v.SkillID == skillID {
			cp := *v
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeVersionRepo) NextVersionNumber(ctx context.Context, tx *gorm.DB, skillID uuid.UUID) (int, error) {
	max := 0
	for _, v := range f.versions {
		if v.SkillID == skillID && v.VersionNumber > max {
			max = v.VersionNumber
		}
	}
	return max + 1, nil
}

type fakeAICallLogRepo struct {
	logs []*types.AICallLog
}

func (f *fakeAICallLogRepo) Create(ctx context.Context, tx *gorm.DB, logs []*types.AICallLog) ([]*types.AICallLog, error) {
	f.logs = append(f.logs, logs...)
	return logs, nil
}

// fakeLLM drives the review generator in service tests.
type fakeLLM struct {
	scores [3]int
	err    error
	calls  int
}

func (f *fakeLLM) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	category := func(score int) map[string]any {
		return map[string]any{
			"score":       score,
			"suggestions": []any{"could be tighter"},
		}
	}
	return map[string]any{
		"quality":              category(f.scores[0]),
		"clarity":              category(f.scores[1]),
		"completeness":         category(f.scores[2]),
		"summary":              "Reviewed.",
		"suggestedDescription": "A reviewed skill.",
	}, nil
}

func (f *fakeLLM) Model() string { return "test-model" }

func draftSkill(tenantID, authorID uuid.UUID) *types.Skill {
	return &types.Skill{
		ID:         uuid.New(),
		TenantID:   tenantID,
		AuthorID:   authorID,
		Name:       "Standup Summarizer",
		Slug:       "standup-summarizer",
		Category:   "prompt",
		Content:    "# Standup Summarizer\n\nSummarize yesterday, today, blockers.",
		Status:     string(review.StatusDraft),
		Visibility: "tenant",
	}
}
