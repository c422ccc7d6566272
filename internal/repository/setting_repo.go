package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"wcircle.app/watchcircle/internal/model"
)

type SettingRepository interface {
	Get(ctx context.Context, key string) (*model.AppSetting, error)
	Upsert(ctx context.Context, setting *model.AppSetting) error
}

type settingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) Get(ctx context.Context, key string) (*model.AppSetting, error) {
	var settings []model.AppSetting
	err := r.db.WithContext(ctx).
		Where("key = ?", key).
		Limit(1).
		Find(&settings).Error
	if err != nil {
		return nil, err
	}
	if len(settings) == 0 {
		return nil, nil
	}
	return &settings[0], nil
}

func (r *settingRepository) Upsert(ctx context.Context, setting *model.AppSetting) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(setting).Error
}
