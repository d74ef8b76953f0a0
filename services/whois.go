/*
 * @Author: AsisYu 2773943729@qq.com
 * @Date: 2025-08-12
 * @Description: WHOIS查询服务 - Redis缓存 + 熔断保护
 */
package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"whoiskit/pkg/logger"
	"whoiskit/types"
	"whoiskit/utils"

	"github.com/go-redis/redis/v8"
)

// ErrCircuitOpen 熔断器处于打开状态，查询被短路
var ErrCircuitOpen = errors.New("whois service circuit is open")

type WhoisService struct {
	redis    *redis.Client
	provider types.WhoisProvider
	breaker  *CircuitBreaker
}

// NewWhoisService 创建WHOIS查询服务
// redis为nil时跳过缓存，只透传查询
func NewWhoisService(rdb *redis.Client, provider types.WhoisProvider) *WhoisService {
	breaker := NewCircuitBreaker(5, 30*time.Second)
	breaker.OnStateChange(func(from, to CircuitState) {
		logger.Module("WhoisService").Warnf("熔断器状态变化: %v -> %v", from, to)
	})

	return &WhoisService{
		redis:    rdb,
		provider: provider,
		breaker:  breaker,
	}
}

// GetWhoisInfo 查询目标的WHOIS信息，优先返回缓存
// 返回值中的bool表示结果是否来自缓存
func (s *WhoisService) GetWhoisInfo(ctx context.Context, target string) (*types.WhoisResponse, bool, error) {
	log := logger.FromContext(ctx, "WhoisService")
	cacheKey := utils.BuildCacheKey("cache", "whois", utils.SanitizeTarget(target))

	if s.redis != nil {
		if cachedData, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var whoisInfo types.WhoisResponse
			if err := json.Unmarshal([]byte(cachedData), &whoisInfo); err == nil {
				log.Debugf("缓存命中: %s", target)
				return &whoisInfo, true, nil
			}
		}
	}

	if !s.breaker.AllowRequest() {
		log.Warnf("查询被熔断器短路: %s", target)
		return nil, false, ErrCircuitOpen
	}

	response, err := s.provider.Query(ctx, target)
	s.breaker.RecordResult(err == nil)
	if err != nil {
		return response, false, err
	}

	if s.redis != nil {
		response.CachedAt = time.Now().Format(time.RFC3339)
		if jsonData, err := json.Marshal(response); err == nil {
			s.redis.Set(ctx, cacheKey, jsonData, s.calculateCacheDuration(response))
		}
	}

	return response, false, nil
}

// calculateCacheDuration 根据域名到期时间决定缓存时长
// 临近到期的记录状态变化快，缓存时间相应缩短
func (s *WhoisService) calculateCacheDuration(info *types.WhoisResponse) time.Duration {
	if info == nil || info.ExpiryDate == "" {
		return 24 * time.Hour
	}

	expiryDate, err := time.Parse("2006-01-02", info.ExpiryDate)
	if err != nil {
		return 24 * time.Hour
	}

	daysUntilExpiry := time.Until(expiryDate).Hours() / 24

	switch {
	case daysUntilExpiry <= 15:
		return 1 * time.Hour
	case daysUntilExpiry <= 30:
		return 6 * time.Hour
	case daysUntilExpiry <= 90:
		return 12 * time.Hour
	default:
		return 24 * time.Hour
	}
}
