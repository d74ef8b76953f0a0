/*
 * @Author: AsisYu 2773943729@qq.com
 * @Date: 2025-08-12
 * @Description: 健康检查器 - 周期性检查Redis与WHOIS查询链路
 */
package services

import (
	"context"
	"os"
	"sync"
	"time"

	"whoiskit/pkg/logger"
	"whoiskit/pkg/whois"

	"github.com/go-redis/redis/v8"
)

type HealthChecker struct {
	redis    *redis.Client
	client   *whois.Client
	interval time.Duration
	stop     chan struct{}
	stopOnce sync.Once

	mu       sync.RWMutex
	statuses map[string]map[string]interface{}
}

// NewHealthChecker 创建健康检查器
func NewHealthChecker(rdb *redis.Client, client *whois.Client) *HealthChecker {
	return &HealthChecker{
		redis:    rdb,
		client:   client,
		interval: 5 * time.Minute,
		stop:     make(chan struct{}),
		statuses: make(map[string]map[string]interface{}),
	}
}

// Start 启动周期检查
func (hc *HealthChecker) Start() {
	go func() {
		hc.runChecks()

		ticker := time.NewTicker(hc.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				hc.runChecks()
			case <-hc.stop:
				return
			}
		}
	}()
}

// Stop 停止周期检查
func (hc *HealthChecker) Stop() {
	hc.stopOnce.Do(func() { close(hc.stop) })
}

// ForceRefresh 立即执行一次检查
func (hc *HealthChecker) ForceRefresh() {
	hc.runChecks()
}

// GetHealthStatus 返回各组件的最近检查结果
func (hc *HealthChecker) GetHealthStatus() map[string]interface{} {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	out := make(map[string]interface{}, len(hc.statuses))
	for name, status := range hc.statuses {
		copied := make(map[string]interface{}, len(status))
		for k, v := range status {
			copied[k] = v
		}
		out[name] = copied
	}
	return out
}

func (hc *HealthChecker) runChecks() {
	log := logger.Module("HealthChecker")

	hc.checkRedis()

	// 目录检查是纯计算；实际连到公网WHOIS服务器的探测默认关闭
	hc.checkDirectory()
	if os.Getenv("HEALTH_LIVE_PROBE") == "true" {
		hc.checkLiveLookup()
	}

	log.Debugf("健康检查完成: %d个组件", len(hc.statuses))
}

func (hc *HealthChecker) checkRedis() {
	status := map[string]interface{}{"status": "up"}

	if hc.redis == nil {
		status["status"] = "down"
		status["error"] = "redis client not configured"
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		start := time.Now()
		if err := hc.redis.Ping(ctx).Err(); err != nil {
			status["status"] = "down"
			status["error"] = err.Error()
		} else {
			status["latencyMs"] = time.Since(start).Milliseconds()
		}
	}

	hc.setStatus("redis", status)
}

func (hc *HealthChecker) checkDirectory() {
	status := map[string]interface{}{"status": "up"}

	directory := hc.client.Directory()
	if directory.Len() == 0 {
		status["status"] = "down"
		status["error"] = "server directory is empty"
	} else {
		status["entries"] = directory.Len()
	}

	hc.setStatus("serverDirectory", status)
}

// checkLiveLookup 对一个稳定域名做真实的端口43探测
func (hc *HealthChecker) checkLiveLookup() {
	status := map[string]interface{}{"status": "up"}

	opts, err := whois.NewLookupOptions("example.com")
	if err == nil {
		opts.Timeout = 5 * time.Second
		opts.Follow = 0
		start := time.Now()
		if _, err = hc.client.Lookup(opts); err == nil {
			status["latencyMs"] = time.Since(start).Milliseconds()
		}
	}
	if err != nil {
		status["status"] = "down"
		status["error"] = err.Error()
	}

	hc.setStatus("port43", status)
}

func (hc *HealthChecker) setStatus(name string, status map[string]interface{}) {
	status["checkedAt"] = time.Now().UTC().Format(time.RFC3339)

	hc.mu.Lock()
	hc.statuses[name] = status
	hc.mu.Unlock()
}
