package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mautops/payment-ledger/internal/metrics"
	"github.com/mautops/payment-ledger/internal/model"
	"github.com/mautops/payment-ledger/internal/repository"
	"github.com/mautops/payment-ledger/internal/staging"
	"gorm.io/gorm"
)

// Decision 审批决定
type Decision string

// 审批决定取值
const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// 费用类别(固定集合,未知类别归入 operating)
var Categories = map[string]string{
	"rent":      "Rent & Utilities",
	"salaries":  "Salaries & Employee Payments",
	"transport": "Transport & Logistics",
	"marketing": "Marketing & Advertising",
	"it":        "IT & Services",
	"operating": "Operating Expenses (Other)",
}

// DefaultCategory 兜底类别
const DefaultCategory = "operating"

// SubmitRequest 提交支付申请的请求参数
type SubmitRequest struct {
	InitiatorID int64   `json:"initiator_id"`
	Amount      float64 `json:"amount" binding:"required"`
	Currency    string  `json:"currency"`
	Method      string  `json:"method" binding:"required"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
}

// PaymentService 支付生命周期服务接口
// PaymentRequest 记录的唯一创建与转换入口;校验角色授权并保证状态机不变量
type PaymentService interface {
	Submit(ctx context.Context, req *SubmitRequest) (int64, error)
	SubmitCommitted(ctx context.Context, req *SubmitRequest) (*model.PaymentModel, error)
	Decide(ctx context.Context, id int64, actorID int64, decision Decision) (*model.PaymentModel, error)
	GetDraft(id int64) (*staging.Draft, bool)
	Get(id uint) (*model.PaymentModel, error)
	ListPending(limit int) ([]*model.PaymentModel, error)
	ListByInitiator(initiatorID int64, limit int) ([]*model.PaymentModel, error)
	ExportApproved() ([]*model.PaymentModel, error)
	History(id uint) ([]*model.AuditEntryModel, error)
	SetGroupMessage(ctx context.Context, id uint, chatID int64, msgID int64) error
}

// paymentService 支付生命周期服务实现
type paymentService struct {
	db          *gorm.DB
	paymentRepo repository.PaymentRepository
	auditRepo   repository.AuditRepository
	methodRepo  repository.MethodRepository
	roleSvc     RoleService
	drafts      *staging.Store
}

// NewPaymentService 创建支付生命周期服务
func NewPaymentService(
	db *gorm.DB,
	paymentRepo repository.PaymentRepository,
	auditRepo repository.AuditRepository,
	methodRepo repository.MethodRepository,
	roleSvc RoleService,
	drafts *staging.Store,
) PaymentService {
	return &paymentService{
		db:          db,
		paymentRepo: paymentRepo,
		auditRepo:   auditRepo,
		methodRepo:  methodRepo,
		roleSvc:     roleSvc,
		drafts:      drafts,
	}
}

// Submit 提交支付申请,暂存为草稿等待审批决定
// 返回草稿 ID;获批前不落库,拒绝或进程重启即丢弃
func (s *paymentService) Submit(ctx context.Context, req *SubmitRequest) (int64, error) {
	draft, err := s.validate(req)
	if err != nil {
		return 0, err
	}

	id := s.drafts.NextID()
	s.drafts.Put(id, draft)
	metrics.RecordDraftStaged()
	return id, nil
}

// SubmitCommitted 直接提交变体: 立即以 PENDING 状态落库并写 CREATE 审计
func (s *paymentService) SubmitCommitted(ctx context.Context, req *SubmitRequest) (*model.PaymentModel, error) {
	draft, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	payment := &model.PaymentModel{
		CreatedAt:   draft.CreatedAt,
		InitiatorID: draft.InitiatorID,
		Amount:      draft.Amount,
		Currency:    draft.Currency,
		Method:      draft.Method,
		Description: draft.Description,
		Category:    draft.Category,
		Status:      model.StatusPending,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.paymentRepo.Create(tx, payment); err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}
		return s.auditRepo.Append(tx, &model.AuditEntryModel{
			PaymentID: payment.ID,
			ActorID:   payment.InitiatorID,
			Action:    model.ActionCreate,
			Payload:   snapshot(payment),
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordPaymentCreated()
	return payment, nil
}

// Decide 审批或拒绝
// id 先按草稿解析,未命中则按已提交支付解析。
// 草稿获批: 原子地分配支付 ID、以 APPROVED 落库、写 CREATE_APPROVED + APPROVE 审计并消耗草稿;
// 落库失败时草稿放回暂存区,可重试。
// 草稿被拒: 直接丢弃,台账不留痕。
// 已提交支付: 条件更新仲裁并发竞争,败者得到 ErrAlreadyFinalized。
func (s *paymentService) Decide(ctx context.Context, id int64, actorID int64, decision Decision) (*model.PaymentModel, error) {
	if decision != DecisionApprove && decision != DecisionReject {
		return nil, fmt.Errorf("unknown decision %q", decision)
	}

	roles, err := s.roleSvc.GetRoles()
	if err != nil {
		return nil, err
	}
	if roles.ApproverID == nil || *roles.ApproverID != actorID {
		return nil, ErrNotAuthorized
	}

	if draft, ok := s.drafts.Pop(id); ok {
		payment, err := s.decideDraft(draft, actorID, decision)
		if err != nil {
			// 落库失败时放回草稿,提交人无需重新录入
			s.drafts.Put(id, draft)
			return nil, err
		}
		return payment, nil
	}

	if id <= 0 {
		return nil, ErrNotFound
	}
	return s.decideCommitted(uint(id), actorID, decision)
}

// decideDraft 处理暂存草稿的决定
func (s *paymentService) decideDraft(draft *staging.Draft, actorID int64, decision Decision) (*model.PaymentModel, error) {
	if decision == DecisionReject {
		// 草稿从未落库,拒绝不写台账审计
		metrics.RecordDecision(string(DecisionReject))
		return nil, nil
	}

	now := time.Now()
	payment := &model.PaymentModel{
		CreatedAt:   draft.CreatedAt,
		InitiatorID: draft.InitiatorID,
		Amount:      draft.Amount,
		Currency:    draft.Currency,
		Method:      draft.Method,
		Description: draft.Description,
		Category:    draft.Category,
		Status:      model.StatusApproved,
		ApprovedBy:  &actorID,
		ApprovedAt:  &now,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.paymentRepo.Create(tx, payment); err != nil {
			return fmt.Errorf("failed to commit approved payment: %w", err)
		}
		if err := s.auditRepo.Append(tx, &model.AuditEntryModel{
			PaymentID: payment.ID,
			ActorID:   payment.InitiatorID,
			Action:    model.ActionCreateApproved,
			Payload:   snapshot(payment),
		}); err != nil {
			return err
		}
		return s.auditRepo.Append(tx, &model.AuditEntryModel{
			PaymentID: payment.ID,
			ActorID:   actorID,
			Action:    model.ActionApprove,
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordPaymentCreated()
	metrics.RecordDecision(string(DecisionApprove))
	return payment, nil
}

// decideCommitted 处理已提交 PENDING 支付的决定
func (s *paymentService) decideCommitted(id uint, actorID int64, decision Decision) (*model.PaymentModel, error) {
	now := time.Now()

	var fields map[string]interface{}
	var action string
	if decision == DecisionApprove {
		fields = map[string]interface{}{
			"status":      model.StatusApproved,
			"approved_by": actorID,
			"approved_at": now,
		}
		action = model.ActionApprove
	} else {
		fields = map[string]interface{}{
			"status":      model.StatusRejected,
			"rejected_by": actorID,
			"rejected_at": now,
		}
		action = model.ActionReject
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.paymentRepo.Transition(tx, id, model.StatusPending, fields); err != nil {
			return err
		}
		return s.auditRepo.Append(tx, &model.AuditEntryModel{
			PaymentID: id,
			ActorID:   actorID,
			Action:    action,
		})
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, ErrAlreadyFinalized
		}
		return nil, err
	}

	metrics.RecordDecision(string(decision))
	return s.paymentRepo.FindByID(id)
}

// GetDraft 非破坏性读取暂存草稿(用于展示)
func (s *paymentService) GetDraft(id int64) (*staging.Draft, bool) {
	return s.drafts.Get(id)
}

// Get 获取支付详情
func (s *paymentService) Get(id uint) (*model.PaymentModel, error) {
	payment, err := s.paymentRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return payment, nil
}

// ListPending 列出待审批支付,最新在前
func (s *paymentService) ListPending(limit int) ([]*model.PaymentModel, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.paymentRepo.FindPending(limit)
}

// ListByInitiator 列出发起人的支付(任意状态),最新在前
func (s *paymentService) ListByInitiator(initiatorID int64, limit int) ([]*model.PaymentModel, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.paymentRepo.FindByInitiator(initiatorID, limit)
}

// ExportApproved 导出全部已审批支付
// 导出是已承诺支出的记录,刻意排除 PENDING 与 REJECTED
func (s *paymentService) ExportApproved() ([]*model.PaymentModel, error) {
	return s.paymentRepo.FindApproved()
}

// History 按时间顺序返回支付的审计日志,可回放重建完整历史
func (s *paymentService) History(id uint) ([]*model.AuditEntryModel, error) {
	if _, err := s.Get(id); err != nil {
		return nil, err
	}
	return s.auditRepo.FindByPaymentID(id)
}

// SetGroupMessage 回写展示消息引用并记录 POSTED 审计
// 引用只允许设置一次,重复调用返回 ErrAlreadyLinked
func (s *paymentService) SetGroupMessage(ctx context.Context, id uint, chatID int64, msgID int64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		ok, err := s.paymentRepo.SetGroupMessage(tx, id, chatID, msgID)
		if err != nil {
			return err
		}
		if !ok {
			if _, err := s.paymentRepo.FindByID(id); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotFound
				}
				return err
			}
			return ErrAlreadyLinked
		}
		return s.auditRepo.Append(tx, &model.AuditEntryModel{
			PaymentID: id,
			ActorID:   0,
			Action:    model.ActionPosted,
			Payload:   fmt.Sprintf("chat_id=%d, msg_id=%d", chatID, msgID),
		})
	})
}

// validate 校验提交参数并构造草稿
// 发起人未配置时,首个提交者自动成为发起人
func (s *paymentService) validate(req *SubmitRequest) (*staging.Draft, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	currency := req.Currency
	if currency == "" {
		currency = model.Currency
	}
	if currency != model.Currency {
		return nil, fmt.Errorf("unsupported currency %q, expected %s", currency, model.Currency)
	}

	if _, err := s.methodRepo.FindByName(req.Method); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownMethod
		}
		return nil, err
	}

	roles, err := s.roleSvc.GetRoles()
	if err != nil {
		return nil, err
	}
	if roles.InitiatorID == nil {
		if err := s.roleSvc.SetInitiator(req.InitiatorID); err != nil {
			return nil, err
		}
	} else if *roles.InitiatorID != req.InitiatorID {
		return nil, ErrNotAuthorized
	}

	category := req.Category
	if _, ok := Categories[category]; !ok {
		category = DefaultCategory
	}

	return &staging.Draft{
		InitiatorID: req.InitiatorID,
		Amount:      req.Amount,
		Currency:    currency,
		Method:      req.Method,
		Description: req.Description,
		Category:    category,
		CreatedAt:   time.Now(),
	}, nil
}

// snapshot 生成审计负载快照
func snapshot(p *model.PaymentModel) string {
	return fmt.Sprintf("%g %s %s | %s", p.Amount, p.Currency, p.Method, p.Category)
}
