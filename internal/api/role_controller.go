package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mautops/payment-ledger/internal/service"
)

// RoleController 角色与群绑定控制器
type RoleController struct {
	roleService service.RoleService
}

// NewRoleController 创建角色控制器
func NewRoleController(roleService service.RoleService) *RoleController {
	return &RoleController{roleService: roleService}
}

// Get 读取角色配置
func (c *RoleController) Get(ctx *gin.Context) {
	roles, err := c.roleService.GetRoles()
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, roles)
}

// setRoleRequest 设置角色的请求参数
type setRoleRequest struct {
	ID int64 `json:"id" binding:"required"`
}

// Set 设置指定角色
func (c *RoleController) Set(ctx *gin.Context) {
	kind := ctx.Param("kind")

	var req setRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	var err error
	switch kind {
	case "initiator":
		err = c.roleService.SetInitiator(req.ID)
	case "approver":
		err = c.roleService.SetApprover(req.ID)
	case "viewer":
		err = c.roleService.SetViewer(req.ID)
	default:
		Error(ctx, http.StatusBadRequest, "invalid role kind", "kind must be one of initiator, approver, viewer")
		return
	}
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, nil)
}

// SetAll 将全部角色指向同一身份
func (c *RoleController) SetAll(ctx *gin.Context) {
	var req setRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	if err := c.roleService.SetAllTo(req.ID); err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, nil)
}

// bindGroupRequest 绑定群会话的请求参数
type bindGroupRequest struct {
	ChatID int64 `json:"chat_id" binding:"required"`
}

// BindGroup 绑定目标群会话
func (c *RoleController) BindGroup(ctx *gin.Context) {
	var req bindGroupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	if err := c.roleService.BindGroup(req.ChatID); err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, nil)
}
