package repository

import (
	"time"

	"github.com/mautops/payment-ledger/internal/model"
	"gorm.io/gorm"
)

// AuditRepository 审计日志仓储接口
// 仅追加,没有更新或删除操作
type AuditRepository interface {
	Append(tx *gorm.DB, entry *model.AuditEntryModel) error
	FindByPaymentID(paymentID uint) ([]*model.AuditEntryModel, error)
	CountByAction(action string) (int64, error)
}

// auditRepository 审计日志仓储实现
type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository 创建审计日志仓储
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

// Append 追加审计日志
// 必须在调用方事务 tx 内执行,与对应的支付变更同生共死
func (r *auditRepository) Append(tx *gorm.DB, entry *model.AuditEntryModel) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	return tx.Create(entry).Error
}

// FindByPaymentID 查找支付的审计日志,按时间顺序
func (r *auditRepository) FindByPaymentID(paymentID uint) ([]*model.AuditEntryModel, error) {
	var entries []*model.AuditEntryModel
	err := r.db.Where("payment_id = ?", paymentID).Order("id ASC").Find(&entries).Error
	return entries, err
}

// CountByAction 统计指定动作的审计日志条数
func (r *auditRepository) CountByAction(action string) (int64, error) {
	var count int64
	err := r.db.Model(&model.AuditEntryModel{}).Where("action = ?", action).Count(&count).Error
	return count, err
}
