package model

import "errors"

// WhitelistMethods 永久保护的支付方式白名单,启动时保证存在,不可删除
var WhitelistMethods = []string{"Bank of Company", "USDT", "Cash"}

// MethodModel 支付方式数据模型
type MethodModel struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
}

// TableName 指定表名
func (MethodModel) TableName() string {
	return "methods"
}

// Validate 验证支付方式模型
func (mm *MethodModel) Validate() error {
	if mm.Name == "" {
		return errors.New("method name is required")
	}
	return nil
}

// IsWhitelisted 判断名称是否在保护白名单中
func IsWhitelisted(name string) bool {
	for _, m := range WhitelistMethods {
		if m == name {
			return true
		}
	}
	return false
}
