package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/everyskill/everyskill-backend/internal/logger"
	"github.com/everyskill/everyskill-backend/internal/types"
)

type SkillVersionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, versions []*types.SkillVersion) ([]*types.SkillVersion, error)
	ListBySkill(ctx context.Context, tx *gorm.DB, tenantID, skillID uuid.UUID) ([]*types.SkillVersion, error)
	NextVersionNumber(ctx context.Context, tx *gorm.DB, skillID uuid.UUID) (int, error)
}

type skillVersionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSkillVersionRepo(db *gorm.DB, baseLog *logger.Logger) SkillVersionRepo {
	return &skillVersionRepo{db: db, log: baseLog.With("repo", "SkillVersionRepo")}
}

func (r *skillVersionRepo) Create(ctx context.Context, tx *gorm.DB, versions []*types.SkillVersion) ([]*types.SkillVersion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(versions) == 0 {
		return []*types.SkillVersion{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&versions).Error; err != nil {
		return nil, err
	}
	return versions, nil
}

func (r *skillVersionRepo) ListBySkill(ctx context.Context, tx *gorm.DB, tenantID, skillID uuid.UUID) ([]*types.SkillVersion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var versions []*types.SkillVersion
	if err := transaction.WithContext(ctx).
		Where("tenant_id = ? AND skill_id = ?", tenantID, skillID).
		Order("version_number DESC").
		Find(&versions).Error; err != nil {
		return nil, err
	}
	return versions, nil
}

func (r *skillVersionRepo) NextVersionNumber(ctx context.Context, tx *gorm.DB, skillID uuid.UUID) (int, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var max int
	if err := transaction.WithContext(ctx).
		Model(&types.SkillVersion{}).
		Where("skill_id = ?", skillID).
		Select("COALESCE(MAX(version_number), 0)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	return max + 1, nil
}
