package repository

import (
	"github.com/mautops/payment-ledger/internal/model"
	"gorm.io/gorm"
)

// MethodRepository 支付方式仓储接口
type MethodRepository interface {
	FindAll() ([]*model.MethodModel, error)
	FindByID(id uint) (*model.MethodModel, error)
	FindByName(name string) (*model.MethodModel, error)
	Create(method *model.MethodModel) error
	Delete(id uint) error
}

// methodRepository 支付方式仓储实现
type methodRepository struct {
	db *gorm.DB
}

// NewMethodRepository 创建支付方式仓储
func NewMethodRepository(db *gorm.DB) MethodRepository {
	return &methodRepository{db: db}
}

// FindAll 查找所有支付方式,按 ID 升序
func (r *methodRepository) FindAll() ([]*model.MethodModel, error) {
	var methods []*model.MethodModel
	err := r.db.Order("id ASC").Find(&methods).Error
	return methods, err
}

// FindByID 根据 ID 查找支付方式
func (r *methodRepository) FindByID(id uint) (*model.MethodModel, error) {
	var method model.MethodModel
	if err := r.db.Where("id = ?", id).First(&method).Error; err != nil {
		return nil, err
	}
	return &method, nil
}

// FindByName 根据名称查找支付方式
func (r *methodRepository) FindByName(name string) (*model.MethodModel, error) {
	var method model.MethodModel
	if err := r.db.Where("name = ?", name).First(&method).Error; err != nil {
		return nil, err
	}
	return &method, nil
}

// Create 创建支付方式
func (r *methodRepository) Create(method *model.MethodModel) error {
	return r.db.Create(method).Error
}

// Delete 删除支付方式
func (r *methodRepository) Delete(id uint) error {
	return r.db.Where("id = ?", id).Delete(&model.MethodModel{}).Error
}
