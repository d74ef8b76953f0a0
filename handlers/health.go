/*
 * @Author: AsisYu
 * @Date: 2025-08-12
 * @Description: 健康检查处理程序
 */
package handlers

import (
	"os"
	"time"

	"whoiskit/services"

	"github.com/gin-gonic/gin"
)

// HealthHandler 健康检查API处理程序
func HealthHandler(c *gin.Context) {
	response := gin.H{
		"status":  "up",
		"version": os.Getenv("APP_VERSION"),
		"time":    time.Now().UTC().Format(time.RFC3339),
	}

	if checkerObj, exists := c.Get("healthChecker"); exists {
		if checker, ok := checkerObj.(*services.HealthChecker); ok {
			serviceStatus := checker.GetHealthStatus()
			response["services"] = serviceStatus

			// 任一组件异常时整体降级
			for _, info := range serviceStatus {
				if m, ok := info.(map[string]interface{}); ok {
					if status, exists := m["status"]; exists && status != "up" {
						response["status"] = "degraded"
						break
					}
				}
			}
		}
	}

	c.JSON(200, response)
}
