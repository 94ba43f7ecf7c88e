package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/everyskill/everyskill-backend/internal/logger"
	"github.com/everyskill/everyskill-backend/internal/repos"
	"github.com/everyskill/everyskill-backend/internal/requestdata"
	"github.com/everyskill/everyskill-backend/internal/review"
	"github.com/everyskill/everyskill-backend/internal/types"
	"github.com/everyskill/everyskill-backend/internal/utils"
)

var skillCategories = map[string]bool{
	"prompt":   true,
	"workflow": true,
	"agent":    true,
	"mcp":      true,
}

type CreateSkillInput struct {
	Name        string
	Description string
	Category    string
	Content     string
	HoursSaved  float64
	Visibility  string
}

type UpdateSkillInput struct {
	Name        *string
	Description *string
	Content     *string
	HoursSaved  *float64
	Visibility  *string
}

type SkillService interface {
	Create(ctx context.Context, in CreateSkillInput) (*types.Skill, error)
	Get(ctx context.Context, skillID uuid.UUID) (*types.Skill, error)
	Search(ctx context.Context, filter repos.SkillSearchFilter) ([]*types.Skill, error)
	ListMine(ctx context.Context, limit, offset int) ([]*types.Skill, error)
	Update(ctx context.Context, skillID uuid.UUID, in UpdateSkillInput) (*types.Skill, error)
	Fork(ctx context.Context, skillID uuid.UUID) (*types.Skill, error)
	Decide(ctx context.Context, skillID uuid.UUID, decision string) (*types.Skill, error)
	Delete(ctx context.Context, skillID uuid.UUID) error
	ListVersions(ctx context.Context, skillID uuid.UUID) ([]*types.SkillVersion, error)
}

type skillService struct {
	db          *gorm.DB
	log         *logger.Logger
	skillRepo   repos.SkillRepo
	versionRepo repos.SkillVersionRepo
}

func NewSkillService(db *gorm.DB, log *logger.Logger, skillRepo repos.SkillRepo, versionRepo repos.SkillVersionRepo) SkillService {
	return &skillService{
		db:          db,
		log:         log.With("service", "SkillService"),
		skillRepo:   skillRepo,
		versionRepo: versionRepo,
	}
}

func (ss *skillService) Create(ctx context.Context, in CreateSkillInput) (*types.Skill, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, precondition(CodeUnauthenticated, "authentication required")
	}
	if in.Name == "" {
		return nil, precondition(CodeInvalidInput, "skill name is required")
	}
	if !skillCategories[in.Category] {
		return nil, precondition(CodeInvalidInput, "category must be one of prompt, workflow, agent, mcp")
	}
	visibility := in.Visibility
	if visibility == "" {
		visibility = "tenant"
	}
	if visibility != "tenant" && visibility != "personal" {
		return nil, precondition(CodeInvalidInput, "visibility must be tenant or personal")
	}

	slug := utils.Slugify(in.Name)
	if slug == "" {
		return nil, precondition(CodeInvalidInput, "skill name produces an empty slug")
	}
	exists, err := ss.skillRepo.SlugExists(ctx, nil, rd.TenantID, slug)
	if err != nil {
		return nil, fmt.Errorf("check slug: %w", err)
	}
	if exists {
		return nil, precondition(CodeInvalidInput, "a skill named %q already exists in this workspace", in.Name)
	}

	skill := &types.Skill{
		ID:          uuid.New(),
		TenantID:    rd.TenantID,
		AuthorID:    rd.UserID,
		Name:        in.Name,
		Slug:        slug,
		Description: in.Description,
		Category:    in.Category,
		Content:     in.Content,
		Status:      string(review.StatusDraft),
		HoursSaved:  in.HoursSaved,
		Visibility:  visibility,
	}
	if _, err := ss.skillRepo.Create(ctx, nil, []*types.Skill{skill}); err != nil {
		return nil, fmt.Errorf("create skill: %w", err)
	}
	ss.log.Info("Skill created", "skill_id", skill.ID, "slug", slug)
	return skill, nil
}

func (ss *skillService) Get(ctx context.Context, skillID uuid.UUID) (*types.Skill, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, precondition(CodeUnauthenticated, "authentication required")
	}
	skill, err := ss.skillRepo.GetByID(ctx, nil, rd.TenantID, skillID)
	if err != nil {
		return nil, precondition(CodeNotFound, "skill not found")
	}
	if skill.Visibility == "personal" && skill.AuthorID != rd.UserID {
		return nil, precondition(CodeNotFound, "skill not found")
	}
	return skill, nil
}

func (ss *skillService) Search(ctx context.Context, filter repos.SkillSearchFilter) ([]*types.Skill, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, precondition(CodeUnauthenticated, "authentication required")
	}
	skills, err := ss.skillRepo.Search(ctx, nil, rd.TenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("search skills: %w", err)
	}
	// Personal skills only surface for their author.
	visible := skills[:0]
	for _, sk := range skills {
		if sk.Visibility == "personal" && sk.AuthorID != rd.UserID {
			continue
		}
		visible = append(visible, sk)
	}
	return visible, nil
}

func (ss *skillService) ListMine(ctx context.Context, limit, offset int) ([]*types.Skill, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, precondition(CodeUnauthenticated, "authentication required")
	}
	return ss.skillRepo.Search(ctx, nil, rd.TenantID, repos.SkillSearchFilter{
		AuthorID: &rd.UserID,
		Limit:    limit,
		Offset:   offset,
	})
}

func (ss *skillService) Update(ctx context.Context, skillID uuid.UUID, in UpdateSkillInput) (*types.Skill, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, precondition(CodeUnauthenticated, "authentication required")
	}
	skill, err := ss.skillRepo.GetByID(ctx, nil, rd.TenantID, skillID)
	if err != nil {
		return nil, precondition(CodeNotFound, "skill not found")
	}
	if skill.AuthorID != rd.UserID {
		return nil, precondition(CodeNotOwner, "only the skill author can edit it")
	}
	if review.Status(skill.Status) == review.StatusPublished {
		return nil, precondition(CodeInvalidTransition, "published skills are immutable; fork to make changes")
	}

	fields := map[string]any{}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.HoursSaved != nil {
		fields["hours_saved"] = *in.HoursSaved
	}
	if in.Visibility != nil {
		if *in.Visibility != "tenant" && *in.Visibility != "personal" {
			return nil, precondition(CodeInvalidInput, "visibility must be tenant or personal")
		}
		fields["visibility"] = *in.Visibility
	}

	contentChanged := in.Content != nil && *in.Content != skill.Content
	if contentChanged {
		fields["content"] = *in.Content
	}
	if len(fields) == 0 {
		return skill, nil
	}

	err = ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if contentChanged {
			number, nErr := ss.versionRepo.NextVersionNumber(ctx, tx, skill.ID)
			if nErr != nil {
				return fmt.Errorf("next version number: %w", nErr)
			}
			version := &types.SkillVersion{
				ID:            uuid.New(),
				TenantID:      rd.TenantID,
				SkillID:       skill.ID,
				VersionNumber: number,
				Content:       *in.Content,
				ContentHash:   review.ContentHash(*in.Content),
				CreatedBy:     rd.UserID,
			}
			if _, vErr := ss.versionRepo.Create(ctx, tx, []*types.SkillVersion{version}); vErr != nil {
				return fmt.Errorf("create content snapshot: %w", vErr)
			}
		}
		return ss.skillRepo.UpdateFields(ctx, tx, rd.TenantID, skill.ID, fields)
	})
	if err != nil {
		return nil, err
	}
	return ss.skillRepo.GetByID(ctx, nil, rd.TenantID, skill.ID)
}

// Fork copies a skill into a new draft owned by the caller, recording
// the lineage and the content hash at fork time.
func (ss *skillService) Fork(ctx context.Context, skillID uuid.UUID) (*types.Skill, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, precondition(CodeUnauthenticated, "authentication required")
	}
	source, err := ss.Get(ctx, skillID)
	if err != nil {
		return nil, err
	}

	baseSlug := source.Slug + "-fork"
	slug := baseSlug
	for i := 2; ; i++ {
		exists, sErr := ss.skillRepo.SlugExists(ctx, nil, rd.TenantID, slug)
		if sErr != nil {
			return nil, fmt.Errorf("check slug: %w", sErr)
		}
		if !exists {
			break
		}
		slug = fmt.Sprintf("%s-%d", baseSlug, i)
	}

	hash := review.ContentHash(source.Content)
	fork := &types.Skill{
		ID:                  uuid.New(),
		TenantID:            rd.TenantID,
		AuthorID:            rd.UserID,
		Name:                source.Name + " (fork)",
		Slug:                slug,
		Description:         source.Description,
		Category:            source.Category,
		Content:             source.Content,
		Status:              string(review.StatusDraft),
		HoursSaved:          source.HoursSaved,
		Visibility:          source.Visibility,
		ForkedFromID:        &source.ID,
		ForkedAtContentHash: &hash,
	}
	if _, err := ss.skillRepo.Create(ctx, nil, []*types.Skill{fork}); err != nil {
		return nil, fmt.Errorf("create fork: %w", err)
	}
	ss.log.Info("Skill forked", "source_id", source.ID, "fork_id", fork.ID)
	return fork, nil
}

// Decide applies a human review decision. Auto-approved submissions
// never reach this path; everything below the threshold does.
func (ss *skillService) Decide(ctx context.Context, skillID uuid.UUID, decision string) (*types.Skill, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, precondition(CodeUnauthenticated, "authentication required")
	}
	target := review.Status(decision)
	if !review.ValidStatus(target) {
		return nil, precondition(CodeInvalidInput, "unknown decision %q", decision)
	}
	skill, err := ss.skillRepo.GetByID(ctx, nil, rd.TenantID, skillID)
	if err != nil {
		return nil, precondition(CodeNotFound, "skill not found")
	}
	if !review.CanTransition(review.Status(skill.Status), target) {
		return nil, precondition(CodeInvalidTransition, "invalid status transition: %s -> %s", skill.Status, decision)
	}

	if target == review.StatusPublished {
		err = ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			number, nErr := ss.versionRepo.NextVersionNumber(ctx, tx, skill.ID)
			if nErr != nil {
				return fmt.Errorf("next version number: %w", nErr)
			}
			version := &types.SkillVersion{
				ID:            uuid.New(),
				TenantID:      rd.TenantID,
				SkillID:       skill.ID,
				VersionNumber: number,
				Content:       skill.Content,
				ContentHash:   review.ContentHash(skill.Content),
				CreatedBy:     rd.UserID,
			}
			if _, vErr := ss.versionRepo.Create(ctx, tx, []*types.SkillVersion{version}); vErr != nil {
				return fmt.Errorf("create publish snapshot: %w", vErr)
			}
			return ss.skillRepo.UpdateFields(ctx, tx, rd.TenantID, skill.ID, map[string]any{
				"status":               string(review.StatusPublished),
				"status_message":       nil,
				"published_version_id": version.ID,
			})
		})
	} else {
		err = ss.skillRepo.UpdateFields(ctx, nil, rd.TenantID, skill.ID, map[string]any{
			"status":         string(target),
			"status_message": nil,
		})
	}
	if err != nil {
		return nil, err
	}
	return ss.skillRepo.GetByID(ctx, nil, rd.TenantID, skill.ID)
}

func (ss *skillService) Delete(ctx context.Context, skillID uuid.UUID) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return precondition(CodeUnauthenticated, "authentication required")
	}
	skill, err := ss.skillRepo.GetByID(ctx, nil, rd.TenantID, skillID)
	if err != nil {
		return precondition(CodeNotFound, "skill not found")
	}
	if skill.AuthorID != rd.UserID {
		return precondition(CodeNotOwner, "only the skill author can delete it")
	}
	return ss.skillRepo.Delete(ctx, nil, rd.TenantID, skillID)
}

func (ss *skillService) ListVersions(ctx context.Context, skillID uuid.UUID) ([]*types.SkillVersion, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, precondition(CodeUnauthenticated, "authentication required")
	}
	if _, err := ss.Get(ctx, skillID); err != nil {
		return nil, err
	}
	return ss.versionRepo.ListBySkill(ctx, nil, rd.TenantID, skillID)
}
