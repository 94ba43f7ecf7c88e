package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/everyskill/everyskill-backend/internal/logger"
	"github.com/everyskill/everyskill-backend/internal/types"
)

type SkillReviewRepo interface {
	// Upsert keeps at most one live review row per (tenant, skill).
	Upsert(ctx context.Context, tx *gorm.DB, rev *types.SkillReview) (*types.SkillReview, error)
	GetBySkill(ctx context.Context, tx *gorm.DB, tenantID, skillID uuid.UUID) (*types.SkillReview, error)
}

type skillReviewRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSkillReviewRepo(db *gorm.DB, baseLog *logger.Logger) SkillReviewRepo {
	return &skillReviewRepo{db: db, log: baseLog.With("repo", "SkillReviewRepo")}
}

func (r *skillReviewRepo) Upsert(ctx context.Context, tx *gorm.DB, rev *types.SkillReview) (*types.SkillReview, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if rev.ID == uuid.Nil {
		rev.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tenant_id"}, {Name: "skill_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"requested_by",
				"categories",
				"summary",
				"suggested_description",
				"reviewed_content_hash",
				"model_name",
				"is_visible",
				"created_at",
				"updated_at",
			}),
		}).
		Create(rev).Error; err != nil {
		return nil, err
	}
	return rev, nil
}

func (r *skillReviewRepo) GetBySkill(ctx context.Context, tx *gorm.DB, tenantID, skillID uuid.UUID) (*types.SkillReview, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rev types.SkillReview
	if err := transaction.WithContext(ctx).
		Where("tenant_id = ? AND skill_id = ?", tenantID, skillID).
		First(&rev).Error; err != nil {
		return nil, err
	}
	return &rev, nil
}
