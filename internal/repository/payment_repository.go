package repository

import (
	"errors"
	"time"

	"github.com/mautops/payment-ledger/internal/model"
	"gorm.io/gorm"
)

// ErrStaleStatus 条件更新未命中: 记录存在但状态已不是期望值
var ErrStaleStatus = errors.New("payment status changed concurrently")

// PaymentRepository 支付仓储接口
type PaymentRepository interface {
	Create(tx *gorm.DB, payment *model.PaymentModel) error
	FindByID(id uint) (*model.PaymentModel, error)
	FindPending(limit int) ([]*model.PaymentModel, error)
	FindByInitiator(initiatorID int64, limit int) ([]*model.PaymentModel, error)
	FindApproved() ([]*model.PaymentModel, error)
	Transition(tx *gorm.DB, id uint, expectedStatus string, fields map[string]interface{}) error
	SetGroupMessage(tx *gorm.DB, id uint, chatID int64, msgID int64) (bool, error)
	CountByMethod(name string) (int64, error)
}

// paymentRepository 支付仓储实现
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 创建支付仓储
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// Create 持久化新支付记录,数据库分配 ID
// 必须在调用方事务 tx 内执行,与审计追加同生共死
func (r *paymentRepository) Create(tx *gorm.DB, payment *model.PaymentModel) error {
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now()
	}
	return tx.Create(payment).Error
}

// FindByID 根据 ID 查找支付
func (r *paymentRepository) FindByID(id uint) (*model.PaymentModel, error) {
	var payment model.PaymentModel
	if err := r.db.Where("id = ?", id).First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// FindPending 查找待审批支付,按创建顺序倒序
func (r *paymentRepository) FindPending(limit int) ([]*model.PaymentModel, error) {
	var payments []*model.PaymentModel
	err := r.db.Where("status = ?", model.StatusPending).
		Order("id DESC").
		Limit(limit).
		Find(&payments).Error
	return payments, err
}

// FindByInitiator 查找发起人的支付(任意状态),按创建顺序倒序
func (r *paymentRepository) FindByInitiator(initiatorID int64, limit int) ([]*model.PaymentModel, error) {
	var payments []*model.PaymentModel
	err := r.db.Where("initiator_id = ?", initiatorID).
		Order("id DESC").
		Limit(limit).
		Find(&payments).Error
	return payments, err
}

// FindApproved 查找所有已审批支付,按 ID 升序(导出用)
func (r *paymentRepository) FindApproved() ([]*model.PaymentModel, error) {
	var payments []*model.PaymentModel
	err := r.db.Where("status = ?", model.StatusApproved).
		Order("id ASC").
		Find(&payments).Error
	return payments, err
}

// Transition 条件状态更新(compare-and-set)
// 仅当存储状态仍等于 expectedStatus 时更新;并发竞争中先提交者胜出,
// 败者得到 ErrStaleStatus(记录存在)或 gorm.ErrRecordNotFound(记录不存在)
func (r *paymentRepository) Transition(tx *gorm.DB, id uint, expectedStatus string, fields map[string]interface{}) error {
	res := tx.Model(&model.PaymentModel{}).
		Where("id = ? AND status = ?", id, expectedStatus).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&model.PaymentModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
		return ErrStaleStatus
	}
	return nil
}

// SetGroupMessage 回写展示消息引用,仅在尚未设置时生效
// 返回 false 表示引用已存在
func (r *paymentRepository) SetGroupMessage(tx *gorm.DB, id uint, chatID int64, msgID int64) (bool, error) {
	res := tx.Model(&model.PaymentModel{}).
		Where("id = ? AND group_msg_id IS NULL", id).
		Updates(map[string]interface{}{"group_chat_id": chatID, "group_msg_id": msgID})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CountByMethod 统计引用指定支付方式的支付数(任意状态)
func (r *paymentRepository) CountByMethod(name string) (int64, error) {
	var count int64
	err := r.db.Model(&model.PaymentModel{}).Where("method = ?", name).Count(&count).Error
	return count, err
}
