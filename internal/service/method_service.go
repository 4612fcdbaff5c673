package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mautops/payment-ledger/internal/model"
	"github.com/mautops/payment-ledger/internal/repository"
	"gorm.io/gorm"
)

// MethodService 支付方式目录服务接口
type MethodService interface {
	List() ([]*model.MethodModel, error)
	ListCustom() ([]*model.MethodModel, error)
	Get(id uint) (*model.MethodModel, error)
	Add(name string) (*model.MethodModel, error)
	Remove(id uint) error
	EnsureWhitelist() error
	PruneUnreferenced() (int, error)
}

// methodService 支付方式目录服务实现
type methodService struct {
	methodRepo  repository.MethodRepository
	paymentRepo repository.PaymentRepository
}

// NewMethodService 创建支付方式服务
func NewMethodService(methodRepo repository.MethodRepository, paymentRepo repository.PaymentRepository) MethodService {
	return &methodService{
		methodRepo:  methodRepo,
		paymentRepo: paymentRepo,
	}
}

// List 列出所有支付方式
func (s *methodService) List() ([]*model.MethodModel, error) {
	return s.methodRepo.FindAll()
}

// ListCustom 列出白名单之外的自定义支付方式
func (s *methodService) ListCustom() ([]*model.MethodModel, error) {
	all, err := s.methodRepo.FindAll()
	if err != nil {
		return nil, err
	}
	custom := make([]*model.MethodModel, 0, len(all))
	for _, m := range all {
		if !model.IsWhitelisted(m.Name) {
			custom = append(custom, m)
		}
	}
	return custom, nil
}

// Get 根据 ID 查找支付方式
func (s *methodService) Get(id uint) (*model.MethodModel, error) {
	method, err := s.methodRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return method, nil
}

// Add 添加支付方式
// 幂等: 名称已存在时返回现有记录而非报错
func (s *methodService) Add(name string) (*model.MethodModel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("method name cannot be empty")
	}

	existing, err := s.methodRepo.FindByName(name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	method := &model.MethodModel{Name: name}
	if err := s.methodRepo.Create(method); err != nil {
		// 并发插入撞上唯一索引时回退到查找
		if existing, lookupErr := s.methodRepo.FindByName(name); lookupErr == nil {
			return existing, nil
		}
		return nil, fmt.Errorf("failed to create method: %w", err)
	}
	return method, nil
}

// Remove 删除支付方式
// 白名单方式拒绝删除;被任何支付引用(任意状态)的方式拒绝删除
func (s *methodService) Remove(id uint) error {
	method, err := s.methodRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if model.IsWhitelisted(method.Name) {
		return ErrProtectedMethod
	}

	count, err := s.paymentRepo.CountByMethod(method.Name)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %d payment(s)", ErrMethodInUse, count)
	}

	return s.methodRepo.Delete(id)
}

// EnsureWhitelist 启动时保证白名单方式存在
func (s *methodService) EnsureWhitelist() error {
	for _, name := range model.WhitelistMethods {
		if _, err := s.Add(name); err != nil {
			return fmt.Errorf("failed to ensure whitelist method %q: %w", name, err)
		}
	}
	return nil
}

// PruneUnreferenced 管理维护: 删除白名单外且零引用的方式
// 返回删除条数;正常请求流程不调用
func (s *methodService) PruneUnreferenced() (int, error) {
	custom, err := s.ListCustom()
	if err != nil {
		return 0, err
	}

	pruned := 0
	for _, m := range custom {
		count, err := s.paymentRepo.CountByMethod(m.Name)
		if err != nil {
			return pruned, err
		}
		if count > 0 {
			continue
		}
		if err := s.methodRepo.Delete(m.ID); err != nil {
			return pruned, err
		}
		pruned++
	}
	return pruned, nil
}
