package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mautops/payment-ledger/internal/config"
	"github.com/mautops/payment-ledger/internal/model"
	"github.com/mautops/payment-ledger/internal/repository"
	"github.com/mautops/payment-ledger/internal/service"
	"github.com/mautops/payment-ledger/internal/staging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	testInitiatorID = int64(100)
	testApproverID  = int64(200)
)

// setupTestRouter 搭建完整路由用于 API 测试
func setupTestRouter(t *testing.T) *gin.Engine {
	return setupTestRouterWithConfig(t, config.Default())
}

func setupTestRouterWithConfig(t *testing.T, cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.ConfigEntryModel{},
		&model.MethodModel{},
		&model.PaymentModel{},
		&model.AuditEntryModel{},
	))

	paymentRepo := repository.NewPaymentRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	methodRepo := repository.NewMethodRepository(db)
	configRepo := repository.NewConfigRepository(db)

	drafts := staging.NewStore()
	roleSvc := service.NewRoleService(configRepo)
	methodSvc := service.NewMethodService(methodRepo, paymentRepo)
	paymentSvc := service.NewPaymentService(db, paymentRepo, auditRepo, methodRepo, roleSvc, drafts)
	exportSvc := service.NewExportService(paymentSvc)

	require.NoError(t, methodSvc.EnsureWhitelist())
	require.NoError(t, roleSvc.SetApprover(testApproverID))

	ctrls := &Controllers{
		Payment: NewPaymentController(paymentSvc, exportSvc),
		Method:  NewMethodController(methodSvc),
		Role:    NewRoleController(roleSvc),
	}
	return SetupRoutes(db, ctrls, cfg)
}

// doJSON 发送 JSON 请求
func doJSON(router *gin.Engine, method, path string, actor int64, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if actor != 0 {
		req.Header.Set("X-Actor-ID", fmt.Sprintf("%d", actor))
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, _ := resp.Data.(map[string]interface{})
	return data
}

// decodeDraftID 草稿 ID 超出 float64 精度范围,必须按 json.Number 解码
func decodeDraftID(t *testing.T, w *httptest.ResponseRecorder) int64 {
	dec := json.NewDecoder(bytes.NewReader(w.Body.Bytes()))
	dec.UseNumber()
	var resp Response
	require.NoError(t, dec.Decode(&resp))
	data := resp.Data.(map[string]interface{})
	id, err := data["draft_id"].(json.Number).Int64()
	require.NoError(t, err)
	return id
}

// TestAPISubmitAndApprove 测试暂存提交与审批的完整 HTTP 流程
func TestAPISubmitAndApprove(t *testing.T) {
	router := setupTestRouter(t)

	// 提交草稿
	w := doJSON(router, http.MethodPost, "/api/v1/payments", testInitiatorID, gin.H{
		"amount": 500, "method": "Cash", "description": "office chairs",
	})
	require.Equal(t, http.StatusOK, w.Code)
	draftID := decodeDraftID(t, w)
	require.NotZero(t, draftID)

	// 审批人同意
	w = doJSON(router, http.MethodPost, fmt.Sprintf("/api/v1/payments/%d/approve", draftID), testApproverID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	payment := decodeData(t, w)
	assert.Equal(t, model.StatusApproved, payment["status"])
	assert.Equal(t, float64(testApproverID), payment["approved_by"])
}

// TestAPISubmitRequiresActor 测试缺失或非法的 X-Actor-ID
func TestAPISubmitRequiresActor(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/v1/payments", 0, gin.H{
		"amount": 500, "method": "Cash",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestAPIDecisionErrors 测试审批错误映射
func TestAPIDecisionErrors(t *testing.T) {
	router := setupTestRouter(t)

	// 直接提交一条 PENDING
	w := doJSON(router, http.MethodPost, "/api/v1/payments/direct", testInitiatorID, gin.H{
		"amount": 500, "method": "Cash",
	})
	require.Equal(t, http.StatusOK, w.Code)
	id := int64(decodeData(t, w)["id"].(float64))

	// 非审批人 -> 403
	w = doJSON(router, http.MethodPost, fmt.Sprintf("/api/v1/payments/%d/approve", id), testInitiatorID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 审批人同意 -> 200
	w = doJSON(router, http.MethodPost, fmt.Sprintf("/api/v1/payments/%d/approve", id), testApproverID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// 重复决定 -> 409
	w = doJSON(router, http.MethodPost, fmt.Sprintf("/api/v1/payments/%d/reject", id), testApproverID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// 不存在的记录 -> 404
	w = doJSON(router, http.MethodPost, "/api/v1/payments/99999/approve", testApproverID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestAPISubmitValidationErrors 测试提交参数错误映射
func TestAPISubmitValidationErrors(t *testing.T) {
	router := setupTestRouter(t)

	// 未知支付方式 -> 400
	w := doJSON(router, http.MethodPost, "/api/v1/payments", testInitiatorID, gin.H{
		"amount": 500, "method": "PayPal",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 金额缺失被 binding 拒绝 -> 400
	w = doJSON(router, http.MethodPost, "/api/v1/payments", testInitiatorID, gin.H{
		"method": "Cash",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestAPIHistoryAndGet 测试详情与审计历史端点
func TestAPIHistoryAndGet(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/v1/payments/direct", testInitiatorID, gin.H{
		"amount": 500, "method": "USDT",
	})
	require.Equal(t, http.StatusOK, w.Code)
	id := int64(decodeData(t, w)["id"].(float64))

	w = doJSON(router, http.MethodGet, fmt.Sprintf("/api/v1/payments/%d", id), 0, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.StatusPending, decodeData(t, w)["status"])

	w = doJSON(router, http.MethodGet, fmt.Sprintf("/api/v1/payments/%d/history", id), 0, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	entries, ok := resp.Data.([]interface{})
	require.True(t, ok)
	assert.Len(t, entries, 1)

	w = doJSON(router, http.MethodGet, "/api/v1/payments/99999", 0, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestAPIExportCSV 测试 CSV 导出端点
func TestAPIExportCSV(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/v1/payments/direct", testInitiatorID, gin.H{
		"amount": 1500, "method": "Cash", "category": "transport",
	})
	require.Equal(t, http.StatusOK, w.Code)
	id := int64(decodeData(t, w)["id"].(float64))

	w = doJSON(router, http.MethodPost, fmt.Sprintf("/api/v1/payments/%d/approve", id), testApproverID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/payments/export", 0, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "payments_export.csv")

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "1500")
	assert.Contains(t, lines[1], "transport")
}

// TestAPIMethods 测试支付方式目录端点
func TestAPIMethods(t *testing.T) {
	router := setupTestRouter(t)

	// 添加自定义方式
	w := doJSON(router, http.MethodPost, "/api/v1/methods", 0, gin.H{"name": "PromptPay"})
	require.Equal(t, http.StatusOK, w.Code)
	id := int64(decodeData(t, w)["id"].(float64))

	// 列表含白名单 + 新方式
	w = doJSON(router, http.MethodGet, "/api/v1/methods", 0, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	methods := resp.Data.([]interface{})
	assert.Len(t, methods, len(model.WhitelistMethods)+1)

	// 删除白名单方式 -> 409
	w = doJSON(router, http.MethodGet, "/api/v1/methods", 0, nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	var cashID int64
	for _, m := range resp.Data.([]interface{}) {
		entry := m.(map[string]interface{})
		if entry["name"] == "Cash" {
			cashID = int64(entry["id"].(float64))
		}
	}
	require.NotZero(t, cashID)
	w = doJSON(router, http.MethodDelete, fmt.Sprintf("/api/v1/methods/%d", cashID), 0, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// 删除无引用的自定义方式 -> 200
	w = doJSON(router, http.MethodDelete, fmt.Sprintf("/api/v1/methods/%d", id), 0, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

// TestAPIRoles 测试角色配置端点
func TestAPIRoles(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(router, http.MethodPut, "/api/v1/roles/viewer", 0, gin.H{"id": 300})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodPut, "/api/v1/roles/owner", 0, gin.H{"id": 300})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/roles", 0, nil)
	require.Equal(t, http.StatusOK, w.Code)
	roles := decodeData(t, w)
	assert.Equal(t, float64(300), roles["viewer_id"])
	assert.Equal(t, float64(testApproverID), roles["approver_id"])

	w = doJSON(router, http.MethodPost, "/api/v1/roles/all", 0, gin.H{"id": 777})
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(router, http.MethodGet, "/api/v1/roles", 0, nil)
	roles = decodeData(t, w)
	assert.Equal(t, float64(777), roles["initiator_id"])

	w = doJSON(router, http.MethodPost, "/api/v1/group", 0, gin.H{"chat_id": -1001234})
	assert.Equal(t, http.StatusOK, w.Code)
}

// TestAPIRateLimit 测试限流与运维端点豁免
func TestAPIRateLimit(t *testing.T) {
	cfg := config.Default()
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.RPS = 0.001
	cfg.RateLimit.Burst = 1
	router := setupTestRouterWithConfig(t, cfg)

	// 突发额度耗尽后业务请求被限流
	w := doJSON(router, http.MethodGet, "/api/v1/methods", 0, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(router, http.MethodGet, "/api/v1/methods", 0, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// 运维端点不参与限流
	for i := 0; i < 5; i++ {
		w = doJSON(router, http.MethodGet, "/health", 0, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	// 热更新放宽限流后恢复
	SetRateLimit(1000, 1000)
	time.Sleep(50 * time.Millisecond)
	w = doJSON(router, http.MethodGet, "/api/v1/methods", 0, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

// TestAPINoRoute 测试未匹配路由返回 JSON 404
func TestAPINoRoute(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(router, http.MethodGet, "/api/v1/unknown", 0, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "route not found")
}

// TestAPIHealth 测试健康检查端点
func TestAPIHealth(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(router, http.MethodGet, "/health", 0, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
