package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SkillReview holds the latest AI review for a (tenant, skill) pair. At
// most one live row exists per pair; the review pipeline and the
// advisory review both upsert into it.
type SkillReview struct {
	ID                   uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TenantID             uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_skill_review_tenant_skill" json:"tenant_id"`
	SkillID              uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_skill_review_tenant_skill" json:"skill_id"`
	Skill                *Skill         `gorm:"constraint:OnDelete:CASCADE;foreignKey:SkillID;references:ID" json:"skill,omitempty"`
	RequestedBy          uuid.UUID      `gorm:"type:uuid;not null;index" json:"requested_by"`
	Categories           datatypes.JSON `gorm:"type:jsonb;column:categories" json:"categories"`
	Summary              string         `gorm:"column:summary;type:text" json:"summary"`
	SuggestedDescription string         `gorm:"column:suggested_description;type:text" json:"suggested_description"`
	ReviewedContentHash  string         `gorm:"column:reviewed_content_hash;not null" json:"reviewed_content_hash"`
	ModelName            string         `gorm:"column:model_name;not null" json:"model_name"`
	IsVisible            bool           `gorm:"column:is_visible;not null;default:true" json:"is_visible"`
	CreatedAt            time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt            time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (SkillReview) TableName() string { return "skill_review" }
