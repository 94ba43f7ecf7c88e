package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/everyskill/everyskill-backend/internal/logger"
	"github.com/everyskill/everyskill-backend/internal/types"
)

type APIKeyRepo interface {
	Create(ctx context.Context, tx *gorm.DB, keys []*types.APIKey) ([]*types.APIKey, error)
	GetByHash(ctx context.Context, tx *gorm.DB, keyHash string) (*types.APIKey, error)
	ListByUser(ctx context.Context, tx *gorm.DB, tenantID, userID uuid.UUID) ([]*types.APIKey, error)
	TouchLastUsed(ctx context.Context, tx *gorm.DB, keyID uuid.UUID) error
	Delete(ctx context.Context, tx *gorm.DB, tenantID, keyID uuid.UUID) error
}

type apiKeyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAPIKeyRepo(db *gorm.DB, baseLog *logger.Logger) APIKeyRepo {
	return &apiKeyRepo{db: db, log: baseLog.With("repo", "APIKeyRepo")}
}

func (r *apiKeyRepo) Create(ctx context.Context, tx *gorm.DB, keys []*types.APIKey) ([]*types.APIKey, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(keys) == 0 {
		return []*types.APIKey{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

func (r *apiKeyRepo) GetByHash(ctx context.Context, tx *gorm.DB, keyHash string) (*types.APIKey, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var key types.APIKey
	if err := transaction.WithContext(ctx).
		Where("key_hash = ?", keyHash).
		First(&key).Error; err != nil {
		return nil, err
	}
	return &key, nil
}

func (r *apiKeyRepo) ListByUser(ctx context.Context, tx *gorm.DB, tenantID, userID uuid.UUID) ([]*types.APIKey, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var keys []*types.APIKey
	if err := transaction.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		Order("created_at DESC").
		Find(&keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

func (r *apiKeyRepo) TouchLastUsed(ctx context.Context, tx *gorm.DB, keyID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now()
	return transaction.WithContext(ctx).
		Model(&types.APIKey{}).
		Where("id = ?", keyID).
		Update("last_used_at", now).Error
}

func (r *apiKeyRepo) Delete(ctx context.Context, tx *gorm.DB, tenantID, keyID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, keyID).
		Delete(&types.APIKey{}).Error
}
