package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mautops/payment-ledger/internal/service"
)

// PaymentController 支付控制器
type PaymentController struct {
	paymentService service.PaymentService
	exportService  service.ExportService
}

// NewPaymentController 创建支付控制器
func NewPaymentController(paymentService service.PaymentService, exportService service.ExportService) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
		exportService:  exportService,
	}
}

// actorID 从 X-Actor-ID 请求头解析操作人身份
func actorID(ctx *gin.Context) (int64, bool) {
	raw := ctx.GetHeader("X-Actor-ID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id == 0 {
		Error(ctx, http.StatusBadRequest, "invalid actor", "X-Actor-ID header must be a non-zero integer")
		return 0, false
	}
	return id, true
}

// paymentID 解析路径中的支付/草稿 ID
func paymentID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		Error(ctx, http.StatusBadRequest, "invalid payment ID", "id must be a positive integer")
		return 0, false
	}
	return id, true
}

// Submit 提交支付申请(暂存草稿)
func (c *PaymentController) Submit(ctx *gin.Context) {
	actor, ok := actorID(ctx)
	if !ok {
		return
	}

	var req service.SubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	req.InitiatorID = actor

	draftID, err := c.paymentService.Submit(ctx.Request.Context(), &req)
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, gin.H{"draft_id": draftID})
}

// SubmitDirect 直接提交变体(立即以 PENDING 落库)
func (c *PaymentController) SubmitDirect(ctx *gin.Context) {
	actor, ok := actorID(ctx)
	if !ok {
		return
	}

	var req service.SubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	req.InitiatorID = actor

	payment, err := c.paymentService.SubmitCommitted(ctx.Request.Context(), &req)
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, payment)
}

// Approve 审批同意
func (c *PaymentController) Approve(ctx *gin.Context) {
	c.decide(ctx, service.DecisionApprove)
}

// Reject 审批拒绝
func (c *PaymentController) Reject(ctx *gin.Context) {
	c.decide(ctx, service.DecisionReject)
}

// decide 处理审批决定
func (c *PaymentController) decide(ctx *gin.Context, decision service.Decision) {
	actor, ok := actorID(ctx)
	if !ok {
		return
	}
	id, ok := paymentID(ctx)
	if !ok {
		return
	}

	payment, err := c.paymentService.Decide(ctx.Request.Context(), id, actor, decision)
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	// 草稿被拒时没有支付记录可返回
	Success(ctx, payment)
}

// Get 获取支付详情
func (c *PaymentController) Get(ctx *gin.Context) {
	id, ok := paymentID(ctx)
	if !ok {
		return
	}

	payment, err := c.paymentService.Get(uint(id))
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, payment)
}

// History 获取支付的审计日志
func (c *PaymentController) History(ctx *gin.Context) {
	id, ok := paymentID(ctx)
	if !ok {
		return
	}

	entries, err := c.paymentService.History(uint(id))
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, entries)
}

// ListPending 列出待审批支付
func (c *PaymentController) ListPending(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	payments, err := c.paymentService.ListPending(limit)
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, payments)
}

// ListMine 列出操作人自己发起的支付
func (c *PaymentController) ListMine(ctx *gin.Context) {
	actor, ok := actorID(ctx)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	payments, err := c.paymentService.ListByInitiator(actor, limit)
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, payments)
}

// Export 导出已审批支付为 CSV
func (c *PaymentController) Export(ctx *gin.Context) {
	ctx.Header("Content-Type", "text/csv; charset=utf-8")
	ctx.Header("Content-Disposition", `attachment; filename="payments_export.csv"`)

	if _, err := c.exportService.WriteApprovedCSV(ctx.Writer); err != nil {
		// 表头可能已写出,只能记录错误
		_ = ctx.Error(err)
	}
}

// linkMessageRequest 回写展示消息引用的请求参数
type linkMessageRequest struct {
	ChatID int64 `json:"chat_id" binding:"required"`
	MsgID  int64 `json:"msg_id" binding:"required"`
}

// LinkMessage 回写展示消息引用(适配层回调,设置一次)
func (c *PaymentController) LinkMessage(ctx *gin.Context) {
	id, ok := paymentID(ctx)
	if !ok {
		return
	}

	var req linkMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	if err := c.paymentService.SetGroupMessage(ctx.Request.Context(), uint(id), req.ChatID, req.MsgID); err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, nil)
}
