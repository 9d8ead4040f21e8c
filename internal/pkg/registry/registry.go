package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/chhengkhim/Junior-project-sub002/internal/pkg/config"
	"github.com/chhengkhim/Junior-project-sub002/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// ModuleContext 模块初始化所需的上下文
type ModuleContext struct {
	Ctx     context.Context // 进程生命周期，用于后台协程
	Config  *config.Config
	Router  *gin.Engine
	Redis   *redis.Client // 未配置 Redis 时为 nil
	Metrics *metrics.MetricsCollector
}

// Module 模块接口
type Module interface {
	// Name 返回模块名称
	Name() string

	// Init 初始化模块（依赖注入、路由注册等）
	Init(ctx *ModuleContext) error

	// Priority 返回初始化优先级（数字越小越先初始化）
	Priority() int
}

var (
	mu             sync.RWMutex
	moduleRegistry = make(map[string]Module)
)

// Register 注册模块，同名模块后注册者覆盖
func Register(module Module) {
	mu.Lock()
	defer mu.Unlock()
	moduleRegistry[module.Name()] = module
}

// GetModules 获取所有已注册的模块
func GetModules() map[string]Module {
	mu.RLock()
	defer mu.RUnlock()
	out := make(map[string]Module, len(moduleRegistry))
	for k, v := range moduleRegistry {
		out[k] = v
	}
	return out
}

// Ordered 按优先级返回模块，优先级相同时按名称排序
func Ordered() []Module {
	mods := GetModules()
	modules := make([]Module, 0, len(mods))
	for _, m := range mods {
		modules = append(modules, m)
	}
	sort.Slice(modules, func(i, j int) bool {
		if modules[i].Priority() != modules[j].Priority() {
			return modules[i].Priority() < modules[j].Priority()
		}
		return modules[i].Name() < modules[j].Name()
	})
	return modules
}

// InitModules 按优先级初始化所有模块
func InitModules(ctx *ModuleContext) error {
	for _, module := range Ordered() {
		if err := module.Init(ctx); err != nil {
			return fmt.Errorf("init module %s: %w", module.Name(), err)
		}
	}
	return nil
}
