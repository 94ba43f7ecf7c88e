package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/everyskill/everyskill-backend/internal/logger"
	"github.com/everyskill/everyskill-backend/internal/types"
)

// SkillSearchFilter narrows tenant-scoped skill listings.
type SkillSearchFilter struct {
	Query    string
	Category string
	Status   string
	AuthorID *uuid.UUID
	Limit    int
	Offset   int
}

type SkillRepo interface {
	Create(ctx context.Context, tx *gorm.DB, skills []*types.Skill) ([]*types.Skill, error)
	GetByID(ctx context.Context, tx *gorm.DB, tenantID, skillID uuid.UUID) (*types.Skill, error)
	GetBySlug(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, slug string) (*types.Skill, error)
	SlugExists(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, slug string) (bool, error)
	Search(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, filter SkillSearchFilter) ([]*types.Skill, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, tenantID, skillID uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, tx *gorm.DB, tenantID, skillID uuid.UUID) error
}

type skillRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSkillRepo(db *gorm.DB, baseLog *logger.Logger) SkillRepo {
	return &skillRepo{db: db, log: baseLog.With("repo", "SkillRepo")}
}

func (r *skillRepo) Create(ctx context.Context, tx *gorm.DB, skills []*types.Skill) ([]*types.Skill, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(skills) == 0 {
		return []*types.Skill{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&skills).Error; err != nil {
		return nil, err
	}
	return skills, nil
}

func (r *skillRepo) GetByID(ctx context.Context, tx *gorm.DB, tenantID, skillID uuid.UUID) (*types.Skill, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var skill types.Skill
	if err := transaction.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, skillID).
		First(&skill).Error; err != nil {
		return nil, err
	}
	return &skill, nil
}

func (r *skillRepo) GetBySlug(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, slug string) (*types.Skill, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var skill types.Skill
	if err := transaction.WithContext(ctx).
		Where("tenant_id = ? AND slug = ?", tenantID, slug).
		First(&skill).Error; err != nil {
		return nil, err
	}
	return &skill, nil
}

func (r *skillRepo) SlugExists(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, slug string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Skill{}).
		Where("tenant_id = ? AND slug = ?", tenantID, slug).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *skillRepo) Search(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, filter SkillSearchFilter) ([]*types.Skill, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).
		Model(&types.Skill{}).
		Where("tenant_id = ?", tenantID)
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		q = q.Where("name ILIKE ? OR description ILIKE ?", like, like)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.AuthorID != nil {
		q = q.Where("author_id = ?", *filter.AuthorID)
	}
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var skills []*types.Skill
	if err := q.Order("updated_at DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&skills).Error; err != nil {
		return nil, err
	}
	return skills, nil
}

func (r *skillRepo) UpdateFields(ctx context.Context, tx *gorm.DB, tenantID, skillID uuid.UUID, fields map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Skill{}).
		Where("tenant_id = ? AND id = ?", tenantID, skillID).
		Updates(fields).Error
}

func (r *skillRepo) Delete(ctx context.Context, tx *gorm.DB, tenantID, skillID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, skillID).
		Delete(&types.Skill{}).Error
}
