package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// ExportService 支付导出服务接口
type ExportService interface {
	WriteApprovedCSV(w io.Writer) (int, error)
}

// exportService 支付导出服务实现
type exportService struct {
	paymentSvc PaymentService
}

// NewExportService 创建导出服务
func NewExportService(paymentSvc PaymentService) ExportService {
	return &exportService{paymentSvc: paymentSvc}
}

// csvHeader 导出列,与 payments 表结构对应
var csvHeader = []string{
	"id", "created_at", "initiator_id", "amount", "currency",
	"method", "description", "category", "status",
	"approved_by", "approved_at",
}

// WriteApprovedCSV 将所有已审批支付写为带表头的 CSV,按 ID 升序
// 返回导出行数(不含表头)
func (s *exportService) WriteApprovedCSV(w io.Writer) (int, error) {
	payments, err := s.paymentSvc.ExportApproved()
	if err != nil {
		return 0, fmt.Errorf("failed to load approved payments: %w", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return 0, err
	}

	for _, p := range payments {
		record := []string{
			strconv.FormatUint(uint64(p.ID), 10),
			p.CreatedAt.Format(time.DateTime),
			strconv.FormatInt(p.InitiatorID, 10),
			strconv.FormatFloat(p.Amount, 'f', -1, 64),
			p.Currency,
			p.Method,
			p.Description,
			p.Category,
			p.Status,
			formatID(p.ApprovedBy),
			formatTime(p.ApprovedAt),
		}
		if err := writer.Write(record); err != nil {
			return 0, err
		}
	}

	writer.Flush()
	return len(payments), writer.Error()
}

func formatID(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.DateTime)
}
