package model

import (
	"errors"
	"time"
)

// 审计动作标签
const (
	ActionCreate         = "CREATE"
	ActionCreateApproved = "CREATE_APPROVED"
	ActionApprove        = "APPROVE"
	ActionReject         = "REJECT"
	ActionPosted         = "POSTED"
)

// AuditEntryModel 审计日志数据模型
// 仅追加,永不更新或删除;每次状态变更写入一条,与支付变更同事务提交
type AuditEntryModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PaymentID uint      `gorm:"not null;index" json:"payment_id"`
	ActorID   int64     `gorm:"not null;index" json:"actor_id"` // 操作人 ID(系统动作为 0)
	Action    string    `gorm:"type:varchar(32);not null;index" json:"action"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	Payload   string    `gorm:"type:text" json:"payload,omitempty"` // 可选快照,如金额/方式
}

// TableName 指定表名
func (AuditEntryModel) TableName() string {
	return "audit_log"
}

// Validate 验证审计日志模型
func (am *AuditEntryModel) Validate() error {
	if am.PaymentID == 0 {
		return errors.New("payment ID is required")
	}
	if am.Action == "" {
		return errors.New("action is required")
	}
	return nil
}
