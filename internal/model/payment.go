package model

import (
	"errors"
	"time"
)

// 支付状态
const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// Currency 本部署固定使用的币种
const Currency = "THB"

// PaymentModel 支付申请数据模型
// ID 由数据库在提交时分配,单调递增,永不复用
type PaymentModel struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt   time.Time  `gorm:"not null;index" json:"created_at"`
	InitiatorID int64      `gorm:"not null;index" json:"initiator_id"` // 发起人 ID
	Amount      float64    `gorm:"not null" json:"amount"`
	Currency    string     `gorm:"type:varchar(8);not null" json:"currency"`
	Method      string     `gorm:"type:varchar(255);not null" json:"method"` // 支付方式名称
	Description string     `gorm:"type:text;not null" json:"description"`
	Category    string     `gorm:"type:varchar(32)" json:"category"` // 费用类别
	Status      string     `gorm:"type:varchar(16);not null;index" json:"status"`
	ApprovedBy  *int64     `json:"approved_by,omitempty"` // 审批人 ID(仅 APPROVED 时设置)
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	RejectedBy  *int64     `json:"rejected_by,omitempty"` // 拒绝人 ID(仅 REJECTED 时设置)
	RejectedAt  *time.Time `json:"rejected_at,omitempty"`
	GroupChatID *int64     `json:"group_chat_id,omitempty"` // 展示消息所在会话(提交后由适配层回写一次)
	GroupMsgID  *int64     `json:"group_msg_id,omitempty"`
}

// TableName 指定表名
func (PaymentModel) TableName() string {
	return "payments"
}

// Validate 验证支付模型
// 状态与决策元数据必须互斥: PENDING 两者皆空,APPROVED 仅审批元数据,REJECTED 仅拒绝元数据
func (pm *PaymentModel) Validate() error {
	if pm.InitiatorID == 0 {
		return errors.New("initiator ID is required")
	}
	if pm.Amount <= 0 {
		return errors.New("amount must be positive")
	}
	if pm.Currency == "" {
		return errors.New("currency is required")
	}
	if pm.Method == "" {
		return errors.New("payment method is required")
	}
	switch pm.Status {
	case StatusPending:
		if pm.ApprovedBy != nil || pm.RejectedBy != nil {
			return errors.New("pending payment must not carry decision metadata")
		}
	case StatusApproved:
		if pm.ApprovedBy == nil || pm.ApprovedAt == nil {
			return errors.New("approved payment requires approver and timestamp")
		}
		if pm.RejectedBy != nil {
			return errors.New("approved payment must not carry rejection metadata")
		}
	case StatusRejected:
		if pm.RejectedBy == nil || pm.RejectedAt == nil {
			return errors.New("rejected payment requires rejecter and timestamp")
		}
		if pm.ApprovedBy != nil {
			return errors.New("rejected payment must not carry approval metadata")
		}
	default:
		return errors.New("invalid payment status")
	}
	return nil
}

// IsFinal 判断是否为终态
func (pm *PaymentModel) IsFinal() bool {
	return pm.Status == StatusApproved || pm.Status == StatusRejected
}
