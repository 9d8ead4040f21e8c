package response

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Response 网关自身产生的错误响应，上游响应不经过这里
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// Error 错误响应
func Error(c *gin.Context, httpCode int, errCode int, msg string) {
	c.JSON(httpCode, Response{
		Code:    errCode,
		Message: msg,
		Data:    nil,
	})
}

// Abort 错误响应并终止后续 handler，用于中间件
func Abort(c *gin.Context, httpCode int, errCode int, msg string) {
	Error(c, httpCode, errCode, msg)
	c.Abort()
}

// BadGateway 后端不可达
func BadGateway(c *gin.Context) {
	Error(c, http.StatusBadGateway, ErrUpstreamUnavailable, "backend unavailable")
}

// MethodNotAllowed 附带 Allow 头
func MethodNotAllowed(c *gin.Context, allowed []string) {
	c.Header("Allow", strings.Join(allowed, ", "))
	Error(c, http.StatusMethodNotAllowed, ErrMethodNotAllowed, "method not allowed")
}
