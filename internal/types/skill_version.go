package types

import (
	"time"

	"github.com/google/uuid"
)

// SkillVersion is an append-only snapshot of skill content, written on
// content changes and on publish. Rows are never updated.
type SkillVersion struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TenantID      uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	SkillID       uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_skill_version_skill_number" json:"skill_id"`
	Skill         *Skill    `gorm:"constraint:OnDelete:CASCADE;foreignKey:SkillID;references:ID" json:"skill,omitempty"`
	VersionNumber int       `gorm:"column:version_number;not null;uniqueIndex:idx_skill_version_skill_number" json:"version_number"`
	Content       string    `gorm:"column:content;type:text" json:"content"`
	ContentHash   string    `gorm:"column:content_hash;not null" json:"content_hash"`
	CreatedBy     uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt     time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (SkillVersion) TableName() string { return "skill_version" }
