/*
 * @Author: AsisYu
 * @Date: 2025-08-12
 * @Description: 服务注入中间件
 */
package middleware

import (
	"whoiskit/services"

	"github.com/gin-gonic/gin"
)

// ServiceMiddleware 把服务容器中的组件注入到请求上下文
func ServiceMiddleware(container *services.ServiceContainer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if container != nil {
			if container.WhoisService != nil {
				c.Set("whoisService", container.WhoisService)
			}
			if container.WhoisClient != nil {
				c.Set("whoisClient", container.WhoisClient)
			}
			if container.WorkerPool != nil {
				c.Set("workerPool", container.WorkerPool)
			}
			if container.HealthChecker != nil {
				c.Set("healthChecker", container.HealthChecker)
			}
			if container.RedisClient != nil {
				c.Set("redis", container.RedisClient)
			}
		}

		c.Next()
	}
}
