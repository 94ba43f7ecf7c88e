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

// SubmitResult is the caller-facing payload shared by the web API and
// the MCP tool surface.
type SubmitResult struct {
	Success      bool           `json:"success"`
	SkillID      uuid.UUID      `json:"skillId"`
	SkillName    string         `json:"skillName"`
	Status       string         `json:"status"`
	AutoApproved bool           `json:"autoApproved"`
	Scores       review.Scores  `json:"scores"`
	Review       *review.Result `json:"review"`
	Message      string         `json:"message"`
}

// SubmissionService runs the submit-for-review pipeline. One
// implementation serves both surfaces.
type SubmissionService interface {
	SubmitForReview(ctx context.Context, skillID uuid.UUID) (*SubmitResult, error)
}

type submissionService struct {
	db            *gorm.DB
	log           *logger.Logger
	skillRepo     repos.SkillRepo
	reviewRepo    repos.SkillReviewRepo
	versionRepo   repos.SkillVersionRepo
	aiCallLogRepo repos.AICallLogRepo
	generator     *review.Generator
	threshold     int
}

// NewSubmissionService accepts a nil generator: that models a missing
// LLM credential and is rejected as a precondition on every submit.
func NewSubmissionService(
	db *gorm.DB,
	log *logger.Logger,
	skillRepo repos.SkillRepo,
	reviewRepo repos.SkillReviewRepo,
	versionRepo repos.SkillVersionRepo,
	aiCallLogRepo repos.AICallLogRepo,
	generator *review.Generator,
	threshold int,
) SubmissionService {
	if threshold <= 0 {
		threshold = review.DefaultApproveThreshold
	}
	return &submissionService{
		db:            db,
		log:           log.With("service", "SubmissionService"),
		skillRepo:     skillRepo,
		reviewRepo:    reviewRepo,
		versionRepo:   versionRepo,
		aiCallLogRepo: aiCallLogRepo,
		generator:     generator,
		threshold:     threshold,
	}
}

// SubmitForReview drives a skill through pending_review -> AI review ->
// auto-publish or ai_reviewed hold.
//
// Precondition order is load-bearing: the LLM credential is checked
// before the first status write so a missing credential can never
// strand a skill in pending_review.
func (s *submissionService) SubmitForReview(ctx context.Context, skillID uuid.UUID) (*SubmitResult, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, precondition(CodeUnauthenticated, "authentication required")
	}
	if s.db == nil {
		return nil, precondition(CodeStoreUnavailable, "backing store unavailable")
	}
	if s.generator == nil {
		return nil, precondition(CodeMissingCredential, "AI review is not configured: missing LLM credential")
	}

	skill, err := s.skillRepo.GetByID(ctx, nil, rd.TenantID, skillID)
	if err != nil {
		return nil, precondition(CodeNotFound, "skill not found")
	}
	if skill.AuthorID != rd.UserID {
		return nil, precondition(CodeNotOwner, "only the skill author can submit it for review")
	}

	current := review.Status(skill.Status)
	retrying := current == review.StatusPendingReview
	if !retrying && !review.CanTransition(current, review.StatusPendingReview) {
		return nil, precondition(CodeInvalidTransition, "invalid status transition: %s -> pending_review", skill.Status)
	}

	// First state write. For a retry of a previously failed attempt we
	// only clear the stale failure message.
	fields := map[string]any{"status_message": nil}
	if !retrying {
		fields["status"] = string(review.StatusPendingReview)
	}
	if err := s.skillRepo.UpdateFields(ctx, nil, rd.TenantID, skill.ID, fields); err != nil {
		return nil, precondition(CodeStoreUnavailable, "failed to update skill status: %v", err)
	}

	result, genErr := s.generateAndLog(ctx, rd, skill, "submission_review")
	if genErr != nil {
		return nil, s.parkPipelineFailure(ctx, rd, skill.ID, genErr)
	}

	if _, err := s.reviewRepo.Upsert(ctx, nil, s.buildReviewRow(rd, skill, result)); err != nil {
		return nil, s.parkPipelineFailure(ctx, rd, skill.ID, fmt.Errorf("persist review: %w", err))
	}

	autoApproved := review.AutoApproved(result, s.threshold)
	finalStatus := review.StatusAIReviewed
	if autoApproved {
		finalStatus = review.StatusPublished
	}

	if autoApproved {
		// The pending_review -> ai_reviewed -> approved -> published
		// chain collapses to one terminal write plus the publish
		// snapshot.
		if err := s.publish(ctx, rd, skill); err != nil {
			return nil, s.parkPipelineFailure(ctx, rd, skill.ID, fmt.Errorf("publish skill: %w", err))
		}
	} else {
		if err := s.skillRepo.UpdateFields(ctx, nil, rd.TenantID, skill.ID, map[string]any{
			"status":         string(review.StatusAIReviewed),
			"status_message": nil,
		}); err != nil {
			return nil, s.parkPipelineFailure(ctx, rd, skill.ID, fmt.Errorf("update skill status: %w", err))
		}
	}

	message := "Review complete. The skill is awaiting a human decision."
	if autoApproved {
		message = "Review complete. The skill cleared the auto-approve bar and is now published."
	}
	s.log.Info("Skill submission finished",
		"skill_id", skill.ID,
		"status", string(finalStatus),
		"auto_approved", autoApproved,
	)
	return &SubmitResult{
		Success:      true,
		SkillID:      skill.ID,
		SkillName:    skill.Name,
		Status:       string(finalStatus),
		AutoApproved: autoApproved,
		Scores:       result.Scores(),
		Review:       result,
		Message:      message,
	}, nil
}

func (s *submissionService) generateAndLog(ctx context.Context, rd *requestdata.RequestData, skill *types.Skill, callType string) (*review.Result, error) {
	start := time.Now()
	result, err := s.generator.Generate(ctx, review.Input{
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
		CallType:   callType,
		Model:      s.generator.ModelName(),
		Success:    err == nil,
		DurationMS: time.Since(start).Milliseconds(),
	}
	if err != nil {
		logRow.Error = err.Error()
	}
	if _, logErr := s.aiCallLogRepo.Create(ctx, nil, []*types.AICallLog{logRow}); logErr != nil {
		s.log.Warn("Failed to write ai call log", "error", logErr)
	}
	return result, err
}

func (s *submissionService) buildReviewRow(rd *requestdata.RequestData, skill *types.Skill, result *review.Result) *types.SkillReview {
	categories, _ := json.Marshal(map[string]review.CategoryScore{
		"quality":      result.Quality,
		"clarity":      result.Clarity,
		"completeness": result.Completeness,
	})
	return &types.SkillReview{
		ID:                   uuid.New(),
		TenantID:             rd.TenantID,
		SkillID:              skill.ID,
		RequestedBy:          rd.UserID,
		Categories:           datatypes.JSON(categories),
		Summary:              result.Summary,
		SuggestedDescription: result.SuggestedDescription,
		ReviewedContentHash:  review.ContentHash(skill.Content),
		ModelName:            s.generator.ModelName(),
		IsVisible:            true,
		CreatedAt:            time.Now(),
	}
}

func (s *submissionService) publish(ctx context.Context, rd *requestdata.RequestData, skill *types.Skill) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.versionRepo.NextVersionNumber(ctx, tx, skill.ID)
		if err != nil {
			return fmt.Errorf("next version number: %w", err)
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
		if _, err := s.versionRepo.Create(ctx, tx, []*types.SkillVersion{version}); err != nil {
			return fmt.Errorf("create publish snapshot: %w", err)
		}
		return s.skillRepo.UpdateFields(ctx, tx, rd.TenantID, skill.ID, map[string]any{
			"status":               string(review.StatusPublished),
			"status_message":       nil,
			"published_version_id": version.ID,
		})
	})
}

// parkPipelineFailure leaves the skill in pending_review with a
// human-readable status_message so a resubmit re-enters via the retry
// path.
func (s *submissionService) parkPipelineFailure(ctx context.Context, rd *requestdata.RequestData, skillID uuid.UUID, cause error) error {
	message := fmt.Sprintf("AI review failed: %s", cause.Error())
	if err := s.skillRepo.UpdateFields(ctx, nil, rd.TenantID, skillID, map[string]any{
		"status_message": message,
	}); err != nil {
		s.log.Error("Failed to record pipeline failure on skill", "skill_id", skillID, "error", err)
	}
	s.log.Warn("Skill submission pipeline failed", "skill_id", skillID, "error", cause)
	return &PipelineError{Message: message, Retryable: true, Err: cause}
}
