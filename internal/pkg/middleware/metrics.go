package middleware

import (
	"net/http"
	"time"

	"github.com/chhengkhim/Junior-project-sub002/pkg/logger"
	"github.com/chhengkhim/Junior-project-sub002/pkg/metrics"
	"github.com/chhengkhim/Junior-project-sub002/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MetricsMiddleware 记录 HTTP 指标，endpoint 使用路由模板以控制基数
func MetricsMiddleware(mc *metrics.MetricsCollector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		mc.RecordHTTPRequest(c.Request.Method, endpoint, c.Writer.Status(), time.Since(start), c.Writer.Size())
	}
}

// RecoveryMiddleware 捕获 panic 并返回统一错误结构
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Log.Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString(RequestIDKey)),
		)
		response.Abort(c, http.StatusInternalServerError, response.ErrServerInternal, "internal server error")
	})
}
