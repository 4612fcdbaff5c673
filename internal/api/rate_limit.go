package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

var defaultLimiter *rate.Limiter

// RateLimitMiddleware 限流中间件
// 运维端点(/health, /metrics)不参与限流,探活与指标抓取不受突发流量影响
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	defaultLimiter = limiter

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == "/health" || path == "/metrics" {
			c.Next()
			return
		}

		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, ErrorResponse{
				Code:    429,
				Message: "too many requests",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// SetRateLimit 运行时调整限流参数(配置热更新回调调用)
func SetRateLimit(rps float64, burst int) {
	if defaultLimiter == nil {
		return
	}
	defaultLimiter.SetLimit(rate.Limit(rps))
	defaultLimiter.SetBurst(burst)
}
