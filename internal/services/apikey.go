package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/everyskill/everyskill-backend/internal/logger"
	"github.com/everyskill/everyskill-backend/internal/repos"
	"github.com/everyskill/everyskill-backend/internal/requestdata"
	"github.com/everyskill/everyskill-backend/internal/types"
	"github.com/everyskill/everyskill-backend/internal/utils"
)

// CreatedAPIKey carries the raw key exactly once, at creation time.
type CreatedAPIKey struct {
	Key    *types.APIKey `json:"key"`
	RawKey string        `json:"raw_key"`
}

type APIKeyService interface {
	Create(ctx context.Context, name string) (*CreatedAPIKey, error)
	List(ctx context.Context) ([]*types.APIKey, error)
	Delete(ctx context.Context, keyID uuid.UUID) error
	// Resolve authenticates a raw bearer key for the MCP surface.
	Resolve(ctx context.Context, rawKey string) (*requestdata.RequestData, error)
}

type apiKeyService struct {
	db         *gorm.DB
	log        *logger.Logger
	apiKeyRepo repos.APIKeyRepo
}

func NewAPIKeyService(db *gorm.DB, log *logger.Logger, apiKeyRepo repos.APIKeyRepo) APIKeyService {
	return &apiKeyService{
		db:         db,
		log:        log.With("service", "APIKeyService"),
		apiKeyRepo: apiKeyRepo,
	}
}

func (as *apiKeyService) Create(ctx context.Context, name string) (*CreatedAPIKey, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, precondition(CodeUnauthenticated, "authentication required")
	}
	if name == "" {
		return nil, precondition(CodeInvalidInput, "key name is required")
	}

	raw, hash, err := utils.NewAPIKey()
	if err != nil {
		return nil, err
	}
	key := &types.APIKey{
		ID:       uuid.New(),
		TenantID: rd.TenantID,
		UserID:   rd.UserID,
		Name:     name,
		KeyHash:  hash,
	}
	if _, err := as.apiKeyRepo.Create(ctx, nil, []*types.APIKey{key}); err != nil {
		return nil, fmt.Errorf("create api key: %w", err)
	}
	return &CreatedAPIKey{Key: key, RawKey: raw}, nil
}

func (as *apiKeyService) List(ctx context.Context) ([]*types.APIKey, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, precondition(CodeUnauthenticated, "authentication required")
	}
	return as.apiKeyRepo.ListByUser(ctx, nil, rd.TenantID, rd.UserID)
}

func (as *apiKeyService) Delete(ctx context.Context, keyID uuid.UUID) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return precondition(CodeUnauthenticated, "authentication required")
	}
	return as.apiKeyRepo.Delete(ctx, nil, rd.TenantID, keyID)
}

func (as *apiKeyService) Resolve(ctx context.Context, rawKey string) (*requestdata.RequestData, error) {
	if rawKey == "" {
		return nil, precondition(CodeUnauthenticated, "missing api key")
	}
	key, err := as.apiKeyRepo.GetByHash(ctx, nil, utils.HashAPIKey(rawKey))
	if err != nil {
		return nil, precondition(CodeUnauthenticated, "invalid api key")
	}
	if err := as.apiKeyRepo.TouchLastUsed(ctx, nil, key.ID); err != nil {
		as.log.Warn("Failed to touch api key last_used_at", "error", err)
	}
	return &requestdata.RequestData{
		UserID:   key.UserID,
		TenantID: key.TenantID,
		APIKeyID: key.ID,
	}, nil
}
