package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/everyskill/everyskill-backend/internal/logger"
	"github.com/everyskill/everyskill-backend/internal/repos"
	"github.com/everyskill/everyskill-backend/internal/requestdata"
	"github.com/everyskill/everyskill-backend/internal/review"
	"github.com/everyskill/everyskill-backend/internal/types"
)

// AdvisoryResult is the payload for the on-demand review_skill action.
type AdvisoryResult struct {
	SkillID   uuid.UUID      `json:"skillId"`
	SkillName string         `json:"skillName"`
	Scores    review.Scores  `json:"scores"`
	Review    *review.Result `json:"review"`
	ModelName string         `json:"modelName"`
}

// ReviewService serves advisory reviews: any authenticated tenant
// member may request one, and it never changes skill status.
type ReviewService interface {
	RequestReview(ctx context.Context, skillID uuid.UUID) (*AdvisoryResult, error)
	GetReview(ctx context.Context, skillID uuid.UUID) (*types.SkillReview, error)
}

type reviewService struct {
	db            *gorm.DB
	log           *logger.Logger
	skillRepo     repos.SkillRepo
	reviewRepo    repos.SkillReviewRepo
	aiCallLogRepo repos.AICallLogRepo
	generator     *review.Generator
}

func NewReviewService(
	db *gorm.DB,
	log *logger.Logger,
	skillRepo repos.SkillRepo,
	reviewRepo repos.SkillReviewRepo,
	aiCallLogRepo repos.AICallLogRepo,
	generator *review.Generator,
) ReviewService {
	return &reviewService{
		db:            db,
		log:           log.With("service", "ReviewService"),
		skillRepo:     skillRepo,
		reviewRepo:    reviewRepo,
		aiCallLogRepo: aiCallLogRepo,
		generator:     generator,
	}
}

func (rs *reviewService) RequestReview(ctx context.Context, skillID uuid.UUID) (*AdvisoryResult, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, precondition(CodeUnauthenticated, "authentication required")
	}
	if rs.generator == nil {
		return nil, precondition(CodeMissingCredential, "AI review is not configured: missing LLM credential")
	}

	skill, err := rs.skillRepo.GetByID(ctx, nil, rd.TenantID, skillID)
	if err != nil {
		return nil, precondition(CodeNotFound, "skill not found")
	}

	// Content-hash guard: a review of identical content is refused.
	currentHash := review.ContentHash(skill.Content)
	if existing, getErr := rs.reviewRepo.GetBySkill(ctx, nil, rd.TenantID, skill.ID); getErr == nil {
		if existing.ReviewedContentHash == currentHash {
			return nil, precondition(CodeContentUnchanged, "content has not changed since last review")
		}
	}

	start := time.Now()
	result, genErr := rs.generator.Generate(ctx, review.Input{
		Name:        skill.Name,
		Description: skill.Description,
		Content:     skill.Content,
		Category:    skill.Category,
	})

	logRow := &types.AICallLog{
		ID:         uuid.New(),
		TenantID:   &rd.TenantID,
		UserID:     &rd.UserID,
		SkillID:    &skill.ID,
		CallType:   "advisory_review",
		Model:      rs.generator.ModelName(),
		Success:    genErr == nil,
		DurationMS: time.Since(start).Milliseconds(),
	}
	if genErr != nil {
		logRow.Error = genErr.Error()
	}
	if _, logErr := rs.aiCallLogRepo.Create(ctx, nil, []*types.AICallLog{logRow}); logErr != nil {
		rs.log.Warn("Failed to write ai call log", "error", logErr)
	}
	if genErr != nil {
		return nil, fmt.Errorf("advisory review failed: %w", genErr)
	}

	categories, _ := json.Marshal(map[string]review.CategoryScore{
		"quality":      result.Quality,
		"clarity":      result.Clarity,
		"completeness": result.Completeness,
	})
	rev := &types.SkillReview{
		ID:                   uuid.New(),
		TenantID:             rd.TenantID,
		SkillID:              skill.ID,
		RequestedBy:          rd.UserID,
		Categories:           datatypes.JSON(categories),
		Summary:              result.Summary,
		SuggestedDescription: result.SuggestedDescription,
		ReviewedContentHash:  currentHash,
		ModelName:            rs.generator.ModelName(),
		IsVisible:            true,
		CreatedAt:            time.Now(),
	}
	if _, err := rs.reviewRepo.Upsert(ctx, nil, rev); err != nil {
		return nil, fmt.Errorf("persist advisory review: %w", err)
	}

	return &AdvisoryResult{
		SkillID:   skill.ID,
		SkillName: skill.Name,
		Scores:    result.Scores(),
		Review:    result,
		ModelName: rs.generator.ModelName(),
	}, nil
}

func (rs *reviewService) GetReview(ctx context.Context, skillID uuid.UUID) (*types.SkillReview, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, precondition(CodeUnauthenticated, "authentication required")
	}
	rev, err := rs.reviewRepo.GetBySkill(ctx, nil, rd.TenantID, skillID)
	if err != nil {
		return nil, precondition(CodeNotFound, "no review found for skill")
	}
	return rev, nil
}
