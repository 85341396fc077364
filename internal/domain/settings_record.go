package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SettingsRecord is one durable key/value row owned by a profile.
type SettingsRecord struct {
	ID      uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID string         `gorm:"column:owner_id;size:128;not null;uniqueIndex:idx_settings_owner_key" json:"owner_id"`
	Key     string         `gorm:"column:setting_key;size:128;not null;uniqueIndex:idx_settings_owner_key" json:"key"`
	Value   datatypes.JSON `gorm:"column:value;not null" json:"value"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;index" json:"updated_at"`
}

func (SettingsRecord) TableName() string { return "settings_records" }
