package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mautops/payment-ledger/internal/service"
)

// APIError API 错误
type APIError struct {
	Code    int
	Message string
	Detail  string
}

func (e *APIError) Error() string {
	return e.Message
}

// ErrorHandlerMiddleware 错误处理中间件
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()

			var apiErr *APIError
			if errors.As(err, &apiErr) {
				Error(c, apiErr.Code, apiErr.Message, apiErr.Detail)
			} else {
				Error(c, http.StatusInternalServerError, "internal server error", err.Error())
			}
		}
	}
}

// ServiceError 将服务层错误翻译为统一错误响应
func ServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotAuthorized):
		Error(c, http.StatusForbidden, "not authorized", err.Error())
	case errors.Is(err, service.ErrNotFound):
		Error(c, http.StatusNotFound, "not found", err.Error())
	case errors.Is(err, service.ErrAlreadyFinalized):
		Error(c, http.StatusConflict, "already finalized", err.Error())
	case errors.Is(err, service.ErrAlreadyLinked):
		Error(c, http.StatusConflict, "already linked", err.Error())
	case errors.Is(err, service.ErrInvalidAmount), errors.Is(err, service.ErrUnknownMethod):
		Error(c, http.StatusBadRequest, "invalid request", err.Error())
	case errors.Is(err, service.ErrProtectedMethod), errors.Is(err, service.ErrMethodInUse):
		Error(c, http.StatusConflict, "method cannot be removed", err.Error())
	default:
		Error(c, http.StatusInternalServerError, "internal server error", err.Error())
	}
}
