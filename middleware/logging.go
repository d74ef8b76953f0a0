/*
 * @Author: AsisYu 2773943729@qq.com
 * @Date: 2025-08-12
 * @Description: 请求日志中间件 - 基于zap的结构化访问日志
 */
package middleware

import (
	"time"

	"whoiskit/pkg/logger"

	"github.com/gin-gonic/gin"
)

// AccessLog 记录每个请求的结构化访问日志
// 慢请求和错误响应以更高级别输出
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		log := logger.WithRequest(c, "HTTP").With(
			"status", status,
			"latency", latency.String(),
			"method", c.Request.Method,
			"path", path,
			"query", query,
			"responseSize", c.Writer.Size(),
		)

		switch {
		case status >= 500:
			log.Errorf("请求失败: %s", c.Errors.String())
		case status >= 400 || latency > 500*time.Millisecond:
			log.Warn("请求完成")
		default:
			log.Info("请求完成")
		}
	}
}
