package kv

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/hphuyvu-stack/inclusing/internal/domain"
	"github.com/hphuyvu-stack/inclusing/internal/platform/logger"
)

type gormStorage struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewGormStorage stores values in the settings_records table (Postgres or SQLite).
func NewGormStorage(db *gorm.DB, baseLog *logger.Logger) Storage {
	return &gormStorage{db: db, log: baseLog.With("repo", "SettingsRecordRepo")}
}

func (s *gormStorage) Get(ctx context.Context, owner, key string) ([]byte, bool, error) {
	if err := checkOwnerKey(owner, key); err != nil {
		return nil, false, err
	}
	var row types.SettingsRecord
	if err := s.db.WithContext(ctx).
		Where("owner_id = ? AND setting_key = ?", owner, key).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, false, err
	}
	if row.ID == uuid.Nil {
		return nil, false, nil
	}
	return []byte(row.Value), true, nil
}

func (s *gormStorage) Put(ctx context.Context, owner, key string, value []byte) error {
	if err := checkOwnerKey(owner, key); err != nil {
		return err
	}
	now := time.Now().UTC()
	row := &types.SettingsRecord{
		ID:        uuid.New(),
		OwnerID:   owner,
		Key:       key,
		Value:     datatypes.JSON(value),
		CreatedAt: now,
		UpdatedAt: now,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner_id"}, {Name: "setting_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(row).Error
}

func (s *gormStorage) Delete(ctx context.Context, owner, key string) error {
	if err := checkOwnerKey(owner, key); err != nil {
		return err
	}
	return s.db.WithContext(ctx).
		Where("owner_id = ? AND setting_key = ?", owner, key).
		Delete(&types.SettingsRecord{}).Error
}
