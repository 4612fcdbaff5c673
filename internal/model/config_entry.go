package model

import "errors"

// 配置键(角色与群绑定)
const (
	ConfigKeyInitiator = "initiator_id"
	ConfigKeyApprover  = "approver_id"
	ConfigKeyViewer    = "viewer_id"
	ConfigKeyGroup     = "group_id"
)

// ConfigEntryModel 键值配置数据模型
// 角色与群绑定直接覆写,不保留历史
type ConfigEntryModel struct {
	Key   string `gorm:"primaryKey;type:varchar(64)" json:"key"`
	Value string `gorm:"type:text" json:"value"`
}

// TableName 指定表名
func (ConfigEntryModel) TableName() string {
	return "config"
}

// Validate 验证配置模型
func (cm *ConfigEntryModel) Validate() error {
	if cm.Key == "" {
		return errors.New("config key is required")
	}
	return nil
}
