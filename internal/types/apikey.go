package types

import (
	"time"

	"github.com/google/uuid"
)

// APIKey authenticates the MCP tool server surface. Only the sha256
// digest of the raw key is stored.
type APIKey struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TenantID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"tenant_id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User       *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Name       string     `gorm:"column:name;not null" json:"name"`
	KeyHash    string     `gorm:"uniqueIndex;not null;column:key_hash" json:"-"`
	LastUsedAt *time.Time `gorm:"column:last_used_at" json:"last_used_at,omitempty"`
	CreatedAt  time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (APIKey) TableName() string {
	return "api_key"
}
