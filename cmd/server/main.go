package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/chhengkhim/Junior-project-sub002/internal/domain/common"
	_ "github.com/chhengkhim/Junior-project-sub002/internal/domain/proxy"
	"github.com/chhengkhim/Junior-project-sub002/internal/pkg/config"
	"github.com/chhengkhim/Junior-project-sub002/internal/pkg/middleware"
	"github.com/chhengkhim/Junior-project-sub002/internal/pkg/registry"
	"github.com/chhengkhim/Junior-project-sub002/pkg/database"
	"github.com/chhengkhim/Junior-project-sub002/pkg/logger"
	"github.com/chhengkhim/Junior-project-sub002/pkg/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	cfg := &config.GlobalConfig

	if err := logger.Init(cfg.App.Env, cfg.App.LogLevel); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := database.InitRedis(ctx, cfg.Redis)
	if err != nil {
		// 限流退回进程内实现
		logger.Log.Warn("redis unavailable, using in-memory rate limiter", zap.Error(err))
	}
	if rdb != nil {
		defer rdb.Close()
	}

	gin.SetMode(cfg.Server.Mode)
	mc := metrics.GetGlobalCollector()

	r := gin.New()
	r.Use(
		middleware.RecoveryMiddleware(),
		middleware.RequestIDMiddleware(),
		middleware.CORSMiddleware(cfg.CORS),
		middleware.SubjectMiddleware(),
		middleware.LoggerMiddleware(),
		middleware.MetricsMiddleware(mc),
	)

	if err := registry.InitModules(&registry.ModuleContext{
		Ctx:     ctx,
		Config:  cfg,
		Router:  r,
		Redis:   rdb,
		Metrics: mc,
	}); err != nil {
		logger.Log.Fatal("init modules", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("server listening", zap.String("addr", srv.Addr), zap.String("backend", cfg.Backend.URL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("graceful shutdown failed", zap.Error(err))
	}
}
