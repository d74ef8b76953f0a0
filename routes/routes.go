/*
 * @Author: AsisYu
 * @Date: 2025-08-12
 * @Description: API路由注册
 */
package routes

import (
	"os"
	"time"

	"whoiskit/handlers"
	"whoiskit/middleware"
	"whoiskit/pkg/logger"
	"whoiskit/services"
	"whoiskit/utils"

	"github.com/gin-gonic/gin"
)

// targetValidationMiddleware 校验查询目标(域名或IP)并写入上下文
func targetValidationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 优先从路径参数获取，其次从查询参数获取
		target := c.Param("target")
		if target == "" {
			target = c.Query("target")
		}

		if target == "" {
			utils.ErrorResponse(c, 400, "MISSING_PARAMETER", "Target parameter is required")
			c.Abort()
			return
		}

		if !utils.IsValidTarget(target) {
			logger.WithRequest(c, "Routes").Warnf("无效的查询目标: %s", target)
			utils.ErrorResponse(c, 400, "INVALID_TARGET", "Target is not a valid domain or IP")
			c.Abort()
			return
		}

		c.Set("target", utils.SanitizeTarget(target))
		c.Next()
	}
}

// rateLimitMiddleware 基于Redis滑动窗口的按IP限流
func rateLimitMiddleware(limiter *services.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			// 限流器故障不应拖垮服务，放行并记录
			logger.WithRequest(c, "Routes").Warnf("限流检查失败: %v", err)
		} else if !allowed {
			utils.ErrorResponse(c, 429, "RATE_LIMITED", "Too many requests, please try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}

// RegisterAPIRoutes 注册所有API路由
func RegisterAPIRoutes(r *gin.Engine, serviceContainer *services.ServiceContainer) {
	log := logger.Module("Routes")

	if serviceContainer.Limiter == nil {
		serviceContainer.InitializeLimiter("limit:api", 60, time.Minute)
	}
	apiLimiter := serviceContainer.Limiter

	// 健康检查路由
	r.GET("/api/health", middleware.HealthCheckRateLimit(), handlers.HealthHandler)

	// 认证令牌路由 - 客户端获取短时效JWT
	r.POST("/api/auth/token", middleware.GenerateToken(serviceContainer.RedisClient))

	apiv1 := r.Group("/api/v1")

	if os.Getenv("DISABLE_API_SECURITY") != "true" {
		// 所有v1接口都要求有效的JWT令牌
		apiv1.Use(middleware.AuthRequired(serviceContainer.RedisClient))

		rateLimitConfig := middleware.DefaultRateLimitConfig()
		rateLimitConfig.RedisClient = serviceContainer.RedisClient
		apiv1.Use(middleware.RateLimitWithConfig(rateLimitConfig))
	} else {
		log.Warn("API安全限制已禁用! 任何人都可以访问API，这在生产环境中不安全")
	}

	// WHOIS查询路由
	whoisGroup := apiv1.Group("/whois")
	whoisGroup.Use(rateLimitMiddleware(apiLimiter))

	whoisGroup.GET("", targetValidationMiddleware(), handlers.WhoisHandler)
	whoisGroup.GET("/:target", targetValidationMiddleware(), handlers.WhoisHandler)

	// 原始记录透传路由
	whoisGroup.GET("/:target/raw", targetValidationMiddleware(), handlers.RawWhoisHandler)

	// 批量查询路由
	whoisGroup.POST("/batch", handlers.BatchWhoisHandler)
}
