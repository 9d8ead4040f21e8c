package proxy

import (
	"net/http"
	"time"

	"github.com/chhengkhim/Junior-project-sub002/internal/domain/proxy/handler"
	"github.com/chhengkhim/Junior-project-sub002/internal/domain/proxy/service"
	"github.com/chhengkhim/Junior-project-sub002/internal/pkg/middleware"
	"github.com/chhengkhim/Junior-project-sub002/internal/pkg/registry"
	"github.com/chhengkhim/Junior-project-sub002/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ProxyModule 后端 API 代理模块
type ProxyModule struct{}

func init() {
	registry.Register(&ProxyModule{})
}

func (m *ProxyModule) Name() string {
	return "proxy"
}

func (m *ProxyModule) Priority() int {
	return 10
}

func (m *ProxyModule) Init(ctx *registry.ModuleContext) error {
	cfg := ctx.Config

	// 1. 依赖注入
	client := &http.Client{Timeout: cfg.Backend.Timeout}
	pService := service.NewProxyService(cfg.Backend.URL, client, ctx.Metrics)
	pHandler := handler.NewProxyHandler(pService)

	// 2. 路由注册
	setupRoutes(ctx.Router, pHandler, buildLimiter(ctx))

	logger.Log.Info("proxy module ready", zap.String("backend", cfg.Backend.URL))
	return nil
}

func buildLimiter(ctx *registry.ModuleContext) gin.HandlerFunc {
	rl := ctx.Config.RateLimit
	if !rl.Enabled {
		return nil
	}
	if ctx.Redis != nil {
		// 多副本共享窗口，窗口内上限取 burst
		l := middleware.NewRedisRateLimiter(ctx.Redis, rl.Burst, rl.Window)
		return middleware.RateLimitMiddleware(l, ctx.Metrics)
	}

	l := middleware.NewIPRateLimiter(rate.Limit(rl.RPS), rl.Burst)
	if ctx.Ctx != nil {
		go l.RunSweeper(ctx.Ctx, time.Minute)
	}
	return middleware.RateLimitMiddleware(l, ctx.Metrics)
}

func setupRoutes(r *gin.Engine, h *handler.ProxyHandler, limiter gin.HandlerFunc) {
	g := r.Group("/api/proxy")
	g.Use(handler.NoStore())
	if limiter != nil {
		g.Use(limiter)
	}
	g.Any("/*path", h.Forward)
}
