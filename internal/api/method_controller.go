package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mautops/payment-ledger/internal/service"
)

// MethodController 支付方式控制器
type MethodController struct {
	methodService service.MethodService
}

// NewMethodController 创建支付方式控制器
func NewMethodController(methodService service.MethodService) *MethodController {
	return &MethodController{methodService: methodService}
}

// List 列出支付方式
func (c *MethodController) List(ctx *gin.Context) {
	methods, err := c.methodService.List()
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, methods)
}

// addMethodRequest 添加支付方式的请求参数
type addMethodRequest struct {
	Name string `json:"name" binding:"required"`
}

// Add 添加支付方式(名称已存在时返回现有记录)
func (c *MethodController) Add(ctx *gin.Context) {
	var req addMethodRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	method, err := c.methodService.Add(req.Name)
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, method)
}

// Remove 删除支付方式
func (c *MethodController) Remove(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		Error(ctx, http.StatusBadRequest, "invalid method ID", "id must be a positive integer")
		return
	}

	if err := c.methodService.Remove(uint(id)); err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, nil)
}
