/*
 * @Author: AsisYu
 * @Date: 2025-08-12
 * @Description: 服务容器，统一管理所有服务组件
 */
package services

import (
	"os"
	"time"

	"whoiskit/pkg/logger"
	"whoiskit/pkg/whois"
	"whoiskit/types"

	"github.com/go-redis/redis/v8"
)

// ServiceContainer 服务容器，管理所有服务组件
type ServiceContainer struct {
	RedisClient   *redis.Client
	WorkerPool    *WorkerPool
	WhoisClient   *whois.Client
	WhoisService  *WhoisService
	HealthChecker *HealthChecker
	Limiter       *RateLimiter
}

// NewServiceContainer 创建新的服务容器
// provider为nil时使用默认的端口43提供商由调用方注入
func NewServiceContainer(redisClient *redis.Client, workerPoolSize int) *ServiceContainer {
	log := logger.Module("Container")

	container := &ServiceContainer{
		RedisClient: redisClient,
	}

	log.Infof("初始化工作池，大小: %d", workerPoolSize)
	container.WorkerPool = NewWorkerPool(workerPoolSize)
	container.WorkerPool.Start()

	// 服务器目录：优先使用环境变量指定的列表文件，否则用内置列表
	if path := os.Getenv("WHOIS_SERVERS_FILE"); path != "" {
		directory, err := whois.DirectoryFromFile(path)
		if err != nil {
			log.Fatalf("加载WHOIS服务器列表失败: %v", err)
		}
		log.Infof("已加载WHOIS服务器列表: %s (%d条)", path, directory.Len())
		container.WhoisClient = whois.NewClient(directory)
	} else {
		container.WhoisClient = whois.NewClient(nil)
		log.Infof("使用内置WHOIS服务器列表 (%d条)", container.WhoisClient.Directory().Len())
	}

	return container
}

// InitializeWhoisService 用给定提供商初始化WHOIS查询服务
func (sc *ServiceContainer) InitializeWhoisService(provider types.WhoisProvider) {
	sc.WhoisService = NewWhoisService(sc.RedisClient, provider)
}

// InitializeHealthChecker 初始化健康检查器
func (sc *ServiceContainer) InitializeHealthChecker() {
	sc.HealthChecker = NewHealthChecker(sc.RedisClient, sc.WhoisClient)
	sc.HealthChecker.Start()
	// 启动时立即执行一次检查
	go sc.HealthChecker.ForceRefresh()
}

// InitializeLimiter 初始化限流器
func (sc *ServiceContainer) InitializeLimiter(key string, rate int, period time.Duration) {
	sc.Limiter = NewRateLimiter(sc.RedisClient, key, rate, period)
}

// Shutdown 关闭所有服务
func (sc *ServiceContainer) Shutdown() {
	log := logger.Module("Container")

	if sc.WorkerPool != nil {
		log.Info("关闭工作池...")
		sc.WorkerPool.Stop()
	}

	if sc.HealthChecker != nil {
		log.Info("关闭健康检查器...")
		sc.HealthChecker.Stop()
	}

	if sc.RedisClient != nil {
		log.Info("关闭Redis客户端...")
		sc.RedisClient.Close()
	}

	log.Info("所有服务已关闭")
}
