package common

import (
	"net/http"
	"time"

	"github.com/chhengkhim/Junior-project-sub002/internal/pkg/registry"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CommonModule 通用功能模块：健康检查与指标
type CommonModule struct {
	started time.Time
}

func init() {
	registry.Register(&CommonModule{started: time.Now()})
}

func (m *CommonModule) Name() string {
	return "common"
}

func (m *CommonModule) Priority() int {
	return 100 // 最后初始化
}

func (m *CommonModule) Init(ctx *registry.ModuleContext) error {
	setupRoutes(ctx.Router, m.health)
	return nil
}

func (m *CommonModule) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(m.started).Round(time.Second).String(),
	})
}

func setupRoutes(r *gin.Engine, health gin.HandlerFunc) {
	r.GET("/health", health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
