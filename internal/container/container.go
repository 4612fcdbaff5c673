package container

import (
	"fmt"
	"time"

	"github.com/mautops/payment-ledger/internal/config"
	"github.com/mautops/payment-ledger/internal/database"
	"github.com/mautops/payment-ledger/internal/repository"
	"github.com/mautops/payment-ledger/internal/service"
	"github.com/mautops/payment-ledger/internal/staging"
	"gorm.io/gorm"
)

// Container 依赖注入容器
// 管理数据库连接、仓储、暂存区与各业务服务
type Container struct {
	db         *gorm.DB
	drafts     *staging.Store
	roleSvc    service.RoleService
	methodSvc  service.MethodService
	paymentSvc service.PaymentService
	exportSvc  service.ExportService
}

// NewContainer 创建依赖注入容器
// 根据配置初始化所有依赖组件
func NewContainer(cfg *config.Config) (*Container, error) {
	// 1. 初始化数据库(带重试机制,指数退避)
	db, err := database.ConnectWithRetry(cfg.Database, 3, time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// 执行数据库迁移
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// 2. 初始化仓储
	paymentRepo := repository.NewPaymentRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	methodRepo := repository.NewMethodRepository(db)
	configRepo := repository.NewConfigRepository(db)

	// 3. 初始化暂存区与服务
	drafts := staging.NewStore()
	roleSvc := service.NewRoleService(configRepo)
	methodSvc := service.NewMethodService(methodRepo, paymentRepo)
	paymentSvc := service.NewPaymentService(db, paymentRepo, auditRepo, methodRepo, roleSvc, drafts)
	exportSvc := service.NewExportService(paymentSvc)

	// 4. 启动对账: 白名单支付方式必须存在
	if err := methodSvc.EnsureWhitelist(); err != nil {
		return nil, fmt.Errorf("failed to reconcile method whitelist: %w", err)
	}

	return &Container{
		db:         db,
		drafts:     drafts,
		roleSvc:    roleSvc,
		methodSvc:  methodSvc,
		paymentSvc: paymentSvc,
		exportSvc:  exportSvc,
	}, nil
}

// DB 获取数据库连接
func (c *Container) DB() *gorm.DB {
	return c.db
}

// Drafts 获取暂存区
func (c *Container) Drafts() *staging.Store {
	return c.drafts
}

// RoleService 获取角色服务
func (c *Container) RoleService() service.RoleService {
	return c.roleSvc
}

// MethodService 获取支付方式服务
func (c *Container) MethodService() service.MethodService {
	return c.methodSvc
}

// PaymentService 获取支付生命周期服务
func (c *Container) PaymentService() service.PaymentService {
	return c.paymentSvc
}

// ExportService 获取导出服务
func (c *Container) ExportService() service.ExportService {
	return c.exportSvc
}

// Close 关闭容器,清理资源
func (c *Container) Close() error {
	if c.db != nil {
		sqlDB, err := c.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
	return nil
}
