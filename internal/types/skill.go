package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Skill struct {
	ID                   uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TenantID             uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:idx_skill_tenant_slug" json:"tenant_id"`
	Tenant               *Tenant        `gorm:"constraint:OnDelete:CASCADE;foreignKey:TenantID;references:ID" json:"tenant,omitempty"`
	AuthorID             uuid.UUID      `gorm:"type:uuid;not null;index" json:"author_id"`
	Author               *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:AuthorID;references:ID" json:"author,omitempty"`
	Name                 string         `gorm:"column:name;not null" json:"name"`
	Slug                 string         `gorm:"column:slug;not null;uniqueIndex:idx_skill_tenant_slug" json:"slug"`
	Description          string         `gorm:"column:description" json:"description"`
	Category             string         `gorm:"column:category;not null;index" json:"category"` // prompt|workflow|agent|mcp
	Content              string         `gorm:"column:content;type:text" json:"content"`
	Status               string         `gorm:"column:status;not null;index" json:"status"` // draft|pending_review|ai_reviewed|approved|rejected|changes_requested|published
	StatusMessage        *string        `gorm:"column:status_message" json:"status_message,omitempty"`
	HoursSaved           float64        `gorm:"column:hours_saved;not null;default:0" json:"hours_saved"`
	Visibility           string         `gorm:"column:visibility;not null;default:tenant" json:"visibility"` // tenant|personal
	PublishedVersionID   *uuid.UUID     `gorm:"type:uuid;column:published_version_id" json:"published_version_id,omitempty"`
	ForkedFromID         *uuid.UUID     `gorm:"type:uuid;column:forked_from_id;index" json:"forked_from_id,omitempty"`
	ForkedAtContentHash  *string        `gorm:"column:forked_at_content_hash" json:"forked_at_content_hash,omitempty"`
	CreatedAt            time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt            time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Skill) TableName() string { return "skill" }
