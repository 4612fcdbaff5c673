package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestPaymentModelTableName 测试表名
func TestPaymentModelTableName(t *testing.T) {
	assert.Equal(t, "payments", PaymentModel{}.TableName())
	assert.Equal(t, "audit_log", AuditEntryModel{}.TableName())
	assert.Equal(t, "methods", MethodModel{}.TableName())
	assert.Equal(t, "config", ConfigEntryModel{}.TableName())
}

// TestPaymentModelValidation 测试支付模型验证
func TestPaymentModelValidation(t *testing.T) {
	pm := &PaymentModel{
		InitiatorID: 100,
		Amount:      500,
		Currency:    Currency,
		Method:      "Cash",
		Description: "office chairs",
		Category:    "operating",
		Status:      StatusPending,
	}
	assert.NoError(t, pm.Validate())

	// 金额必须为正
	pmInvalidAmount := &PaymentModel{
		InitiatorID: 100,
		Amount:      0,
		Currency:    Currency,
		Method:      "Cash",
		Status:      StatusPending,
	}
	assert.Error(t, pmInvalidAmount.Validate())

	// 未知状态
	pmInvalidStatus := &PaymentModel{
		InitiatorID: 100,
		Amount:      500,
		Currency:    Currency,
		Method:      "Cash",
		Status:      "DRAFT",
	}
	assert.Error(t, pmInvalidStatus.Validate())
}

// TestPaymentModelDecisionExclusivity 测试决策元数据互斥不变量
func TestPaymentModelDecisionExclusivity(t *testing.T) {
	approver := int64(200)
	rejecter := int64(201)
	now := time.Now()

	// PENDING 不允许携带决策元数据
	pending := &PaymentModel{
		InitiatorID: 100,
		Amount:      500,
		Currency:    Currency,
		Method:      "Cash",
		Status:      StatusPending,
		ApprovedBy:  &approver,
	}
	assert.Error(t, pending.Validate())

	// APPROVED 需要审批元数据,且不允许拒绝元数据
	approved := &PaymentModel{
		InitiatorID: 100,
		Amount:      500,
		Currency:    Currency,
		Method:      "Cash",
		Status:      StatusApproved,
		ApprovedBy:  &approver,
		ApprovedAt:  &now,
	}
	assert.NoError(t, approved.Validate())

	approved.RejectedBy = &rejecter
	assert.Error(t, approved.Validate())

	// REJECTED 需要拒绝元数据
	rejected := &PaymentModel{
		InitiatorID: 100,
		Amount:      500,
		Currency:    Currency,
		Method:      "Cash",
		Status:      StatusRejected,
	}
	assert.Error(t, rejected.Validate())

	rejected.RejectedBy = &rejecter
	rejected.RejectedAt = &now
	assert.NoError(t, rejected.Validate())
}

// TestPaymentModelIsFinal 测试终态判断
func TestPaymentModelIsFinal(t *testing.T) {
	assert.False(t, (&PaymentModel{Status: StatusPending}).IsFinal())
	assert.True(t, (&PaymentModel{Status: StatusApproved}).IsFinal())
	assert.True(t, (&PaymentModel{Status: StatusRejected}).IsFinal())
}

// TestIsWhitelisted 测试白名单判断
func TestIsWhitelisted(t *testing.T) {
	assert.True(t, IsWhitelisted("Cash"))
	assert.True(t, IsWhitelisted("USDT"))
	assert.True(t, IsWhitelisted("Bank of Company"))
	assert.False(t, IsWhitelisted("PayPal"))
}

// TestAuditEntryValidation 测试审计日志模型验证
func TestAuditEntryValidation(t *testing.T) {
	entry := &AuditEntryModel{PaymentID: 1, ActorID: 100, Action: ActionCreate}
	assert.NoError(t, entry.Validate())

	assert.Error(t, (&AuditEntryModel{Action: ActionCreate}).Validate())
	assert.Error(t, (&AuditEntryModel{PaymentID: 1}).Validate())
}
