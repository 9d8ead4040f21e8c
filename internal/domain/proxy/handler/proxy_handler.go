package handler

import (
	"net/http"
	"slices"
	"strings"

	"github.com/chhengkhim/Junior-project-sub002/internal/domain/proxy/service"
	"github.com/chhengkhim/Junior-project-sub002/internal/pkg/middleware"
	"github.com/chhengkhim/Junior-project-sub002/pkg/logger"
	"github.com/chhengkhim/Junior-project-sub002/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProxyHandler struct {
	service service.ProxyService
}

func NewProxyHandler(s service.ProxyService) *ProxyHandler {
	return &ProxyHandler{service: s}
}

// AllowedMethods 代理支持的方法，其余返回 405
var AllowedMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
}

// Forward 转发任意请求到后端 API
// @Summary 后端 API 代理
// @Tags Proxy
// @Param path path string true "上游子路径"
// @Success 200 {object} object "上游 JSON，或 {raw: string}"
// @Router /api/proxy/{path} [get]
func (h *ProxyHandler) Forward(c *gin.Context) {
	method := c.Request.Method
	if !slices.Contains(AllowedMethods, method) {
		response.MethodNotAllowed(c, AllowedMethods)
		return
	}

	in := service.Inbound{
		Method:        method,
		SubPath:       strings.TrimPrefix(c.Param("path"), "/"),
		RawQuery:      c.Request.URL.RawQuery,
		ContentType:   c.GetHeader("Content-Type"),
		Authorization: c.GetHeader("Authorization"),
		ContentLength: c.Request.ContentLength,
	}
	if service.HasBody(method) {
		in.Body = c.Request.Body
	}

	out, err := h.service.Forward(c.Request.Context(), in)
	if err != nil {
		logger.Log.Error("proxy forward failed",
			zap.String("method", method),
			zap.String("path", in.SubPath),
			zap.String("request_id", c.GetString(middleware.RequestIDKey)),
			zap.Error(err),
		)
		_ = c.Error(err)
		response.BadGateway(c)
		return
	}

	if out.Raw {
		logger.Log.Debug("upstream returned non-JSON body",
			zap.String("path", in.SubPath),
			zap.Int("status", out.Status),
		)
	}

	c.Data(out.Status, "application/json; charset=utf-8", out.Body)
}

// NoStore 代理响应一律不缓存
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store, max-age=0")
		c.Next()
	}
}
