package service

import (
	"fmt"
	"strconv"

	"github.com/mautops/payment-ledger/internal/model"
	"github.com/mautops/payment-ledger/internal/repository"
)

// Roles 进程级角色配置快照
// 指针为 nil 表示该角色尚未配置
type Roles struct {
	InitiatorID *int64 `json:"initiator_id"`
	ApproverID  *int64 `json:"approver_id"`
	ViewerID    *int64 `json:"viewer_id"`
}

// RoleService 角色与群绑定服务接口
// 覆写式配置,不保留历史
type RoleService interface {
	GetRoles() (*Roles, error)
	SetInitiator(id int64) error
	SetApprover(id int64) error
	SetViewer(id int64) error
	SetAllTo(id int64) error
	SeedIfEmpty(approverID int64, viewerID int64) error
	BindGroup(chatID int64) error
	GetGroupID() (int64, bool, error)
}

// roleService 角色服务实现
type roleService struct {
	configRepo repository.ConfigRepository
}

// NewRoleService 创建角色服务
func NewRoleService(configRepo repository.ConfigRepository) RoleService {
	return &roleService{configRepo: configRepo}
}

// GetRoles 读取角色配置
func (s *roleService) GetRoles() (*Roles, error) {
	roles := &Roles{}

	initiator, err := s.getID(model.ConfigKeyInitiator)
	if err != nil {
		return nil, err
	}
	roles.InitiatorID = initiator

	approver, err := s.getID(model.ConfigKeyApprover)
	if err != nil {
		return nil, err
	}
	roles.ApproverID = approver

	viewer, err := s.getID(model.ConfigKeyViewer)
	if err != nil {
		return nil, err
	}
	roles.ViewerID = viewer

	return roles, nil
}

// SetInitiator 设置发起人
func (s *roleService) SetInitiator(id int64) error {
	return s.setID(model.ConfigKeyInitiator, id)
}

// SetApprover 设置审批人
func (s *roleService) SetApprover(id int64) error {
	return s.setID(model.ConfigKeyApprover, id)
}

// SetViewer 设置观察人(仅接收通知,无决策权)
func (s *roleService) SetViewer(id int64) error {
	return s.setID(model.ConfigKeyViewer, id)
}

// SetAllTo 将三个角色都指向同一身份(单人部署的快捷配置)
func (s *roleService) SetAllTo(id int64) error {
	if err := s.SetInitiator(id); err != nil {
		return err
	}
	if err := s.SetApprover(id); err != nil {
		return err
	}
	return s.SetViewer(id)
}

// SeedIfEmpty 为未配置的审批人/观察人写入默认值,已有配置不覆盖
func (s *roleService) SeedIfEmpty(approverID int64, viewerID int64) error {
	current, err := s.getID(model.ConfigKeyApprover)
	if err != nil {
		return err
	}
	if current == nil {
		if err := s.SetApprover(approverID); err != nil {
			return err
		}
	}

	current, err = s.getID(model.ConfigKeyViewer)
	if err != nil {
		return err
	}
	if current == nil {
		if err := s.SetViewer(viewerID); err != nil {
			return err
		}
	}
	return nil
}

// BindGroup 绑定目标群会话
func (s *roleService) BindGroup(chatID int64) error {
	return s.setID(model.ConfigKeyGroup, chatID)
}

// GetGroupID 读取群绑定
func (s *roleService) GetGroupID() (int64, bool, error) {
	id, err := s.getID(model.ConfigKeyGroup)
	if err != nil {
		return 0, false, err
	}
	if id == nil {
		return 0, false, nil
	}
	return *id, true, nil
}

func (s *roleService) getID(key string) (*int64, error) {
	value, ok, err := s.configRepo.Get(key)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", key, err)
	}
	if !ok {
		return nil, nil
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("config %s holds a non-numeric value: %w", key, err)
	}
	return &id, nil
}

func (s *roleService) setID(key string, id int64) error {
	return s.configRepo.Set(key, strconv.FormatInt(id, 10))
}
