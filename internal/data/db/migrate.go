package db

import (
	"gorm.io/gorm"

	types "github.com/hphuyvu-stack/inclusing/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.SettingsRecord{},
	)
}
