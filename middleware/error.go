/*
 * @Author: AsisYu 2773943729@qq.com
 * @Date: 2025-08-12
 * @Description: 错误处理中间件
 */
package middleware

import (
	"time"

	"whoiskit/pkg/logger"

	"github.com/gin-gonic/gin"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last()
			logger.WithRequest(c, "Error").Errorf("未处理的请求错误: %v", err)

			c.JSON(500, gin.H{
				"error":     "服务器内部错误",
				"requestId": c.GetString("request_id"),
				"timestamp": time.Now().Unix(),
				"path":      c.Request.URL.Path,
				"code":      "INTERNAL_SERVER_ERROR",
			})
		}
	}
}
