package repository

import (
	"errors"

	"github.com/mautops/payment-ledger/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConfigRepository 键值配置仓储接口
type ConfigRepository interface {
	Get(key string) (string, bool, error)
	Set(key string, value string) error
	Clear(keys ...string) error
}

// configRepository 键值配置仓储实现
type configRepository struct {
	db *gorm.DB
}

// NewConfigRepository 创建键值配置仓储
func NewConfigRepository(db *gorm.DB) ConfigRepository {
	return &configRepository{db: db}
}

// Get 读取配置值,第二个返回值表示键是否存在
func (r *configRepository) Get(key string) (string, bool, error) {
	var entry model.ConfigEntryModel
	err := r.db.Where("key = ?", key).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	if entry.Value == "" {
		return "", false, nil
	}
	return entry.Value, true, nil
}

// Set 覆写配置值(upsert)
func (r *configRepository) Set(key string, value string) error {
	entry := model.ConfigEntryModel{Key: key, Value: value}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&entry).Error
}

// Clear 清空指定配置键的值(保留键)
func (r *configRepository) Clear(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.db.Model(&model.ConfigEntryModel{}).
		Where("key IN ?", keys).
		Update("value", "").Error
}
