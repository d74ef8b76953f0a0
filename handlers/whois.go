/*
 * @Author: AsisYu 2773943729@qq.com
 * @Date: 2025-08-12
 * @Description: WHOIS查询处理程序
 */
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"whoiskit/pkg/logger"
	"whoiskit/pkg/whois"
	"whoiskit/services"
	"whoiskit/utils"

	"github.com/gin-gonic/gin"
)

// WhoisHandler 查询目标的WHOIS信息，返回解析后的字段与原始文本
func WhoisHandler(c *gin.Context) {
	log := logger.WithRequest(c, "Whois")

	target := c.GetString("target")
	if target == "" {
		utils.ErrorResponse(c, 400, "MISSING_PARAMETER", "Target parameter is required")
		return
	}

	service, ok := getWhoisService(c)
	if !ok {
		log.Error("whoisService未注入上下文")
		utils.ErrorResponse(c, 500, "SERVICE_UNAVAILABLE", "Whois service is not available")
		return
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	response, cached, err := service.GetWhoisInfo(ctx, target)
	if err != nil {
		status, code := classifyLookupError(err)
		log.Warnf("查询失败: 目标=%s, 错误=%v", target, err)
		utils.ErrorResponse(c, status, code, err.Error())
		return
	}

	if cached {
		c.Header("X-Cache", "HIT")
	} else {
		c.Header("X-Cache", "MISS")
	}

	utils.SuccessResponse(c, response, &utils.MetaInfo{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		RequestID:  c.GetString("request_id"),
		Cached:     cached,
		CachedAt:   response.CachedAt,
		Processing: time.Since(start).Milliseconds(),
	})
}

// RawWhoisHandler 直接透传端口43的原始记录文本
// 可选参数: follow(转介深度)、timeout(秒)、server(显式服务器，跳过目录)
func RawWhoisHandler(c *gin.Context) {
	log := logger.WithRequest(c, "WhoisRaw")

	target := c.GetString("target")
	client, ok := getWhoisClient(c)
	if !ok {
		log.Error("whoisClient未注入上下文")
		utils.ErrorResponse(c, 500, "SERVICE_UNAVAILABLE", "Whois client is not available")
		return
	}

	opts, err := whois.NewLookupOptions(target)
	if err != nil {
		utils.ErrorResponse(c, 400, "INVALID_TARGET", "Target is not a valid domain or IP")
		return
	}

	if follow := c.Query("follow"); follow != "" {
		if n, err := strconv.Atoi(follow); err == nil && n >= 0 && n <= 10 {
			opts.Follow = n
		}
	}
	opts.Timeout = 10 * time.Second
	if timeout := c.Query("timeout"); timeout != "" {
		if n, err := strconv.Atoi(timeout); err == nil && n > 0 && n <= 60 {
			opts.Timeout = time.Duration(n) * time.Second
		}
	}
	if server := c.Query("server"); server != "" {
		override, err := whois.NewServer(server)
		if err != nil {
			utils.ErrorResponse(c, 400, "INVALID_SERVER", "Server override is not a valid host")
			return
		}
		opts.Server = override
	}

	raw, err := client.LookupContext(c.Request.Context(), opts)
	if err != nil {
		status, code := classifyLookupError(err)
		log.Warnf("原始查询失败: 目标=%s, 错误=%v", target, err)
		utils.ErrorResponse(c, status, code, err.Error())
		return
	}

	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(raw))
}

type batchRequest struct {
	Targets []string `json:"targets" binding:"required"`
}

type batchResult struct {
	Target   string      `json:"target"`
	Response interface{} `json:"response,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// BatchWhoisHandler 批量查询，经工作池并发执行
func BatchWhoisHandler(c *gin.Context) {
	log := logger.WithRequest(c, "WhoisBatch")

	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "INVALID_BODY", "Request body must contain a targets array")
		return
	}
	if len(req.Targets) == 0 || len(req.Targets) > 10 {
		utils.ErrorResponse(c, 400, "INVALID_BODY", "Targets must contain between 1 and 10 entries")
		return
	}

	service, ok := getWhoisService(c)
	if !ok {
		utils.ErrorResponse(c, 500, "SERVICE_UNAVAILABLE", "Whois service is not available")
		return
	}
	pool, ok := getWorkerPool(c)
	if !ok {
		utils.ErrorResponse(c, 500, "SERVICE_UNAVAILABLE", "Worker pool is not available")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	results := make([]batchResult, len(req.Targets))
	var wg sync.WaitGroup

	for i, target := range req.Targets {
		i, target := i, target

		if !utils.IsValidTarget(target) {
			results[i] = batchResult{Target: target, Error: "invalid target"}
			continue
		}

		wg.Add(1)
		task := func() {
			defer wg.Done()
			response, _, err := service.GetWhoisInfo(ctx, target)
			if err != nil {
				results[i] = batchResult{Target: target, Error: err.Error()}
				return
			}
			results[i] = batchResult{Target: target, Response: response}
		}

		if !pool.SubmitWithContext(ctx, task) {
			wg.Done()
			results[i] = batchResult{Target: target, Error: "request cancelled"}
		}
	}

	wg.Wait()
	log.Infof("批量查询完成: %d个目标", len(req.Targets))

	utils.SuccessResponse(c, results, &utils.MetaInfo{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RequestID: c.GetString("request_id"),
	})
}

func getWhoisService(c *gin.Context) (*services.WhoisService, bool) {
	obj, exists := c.Get("whoisService")
	if !exists {
		return nil, false
	}
	service, ok := obj.(*services.WhoisService)
	return service, ok
}

func getWhoisClient(c *gin.Context) (*whois.Client, bool) {
	obj, exists := c.Get("whoisClient")
	if !exists {
		return nil, false
	}
	client, ok := obj.(*whois.Client)
	return client, ok
}

func getWorkerPool(c *gin.Context) (*services.WorkerPool, bool) {
	obj, exists := c.Get("workerPool")
	if !exists {
		return nil, false
	}
	pool, ok := obj.(*services.WorkerPool)
	return pool, ok
}

// classifyLookupError 把库层错误映射为HTTP状态码与错误码
func classifyLookupError(err error) (int, string) {
	var connErr *whois.ConnectionError
	switch {
	case errors.Is(err, whois.ErrInvalidTarget):
		return 400, "INVALID_TARGET"
	case errors.Is(err, whois.ErrNoServer):
		return 404, "NO_SERVER_FOR_TARGET"
	case errors.Is(err, whois.ErrTimeout):
		return 504, "QUERY_TIMEOUT"
	case errors.Is(err, services.ErrCircuitOpen):
		return 503, "CIRCUIT_OPEN"
	case errors.As(err, &connErr):
		return 502, "CONNECTION_FAILED"
	case errors.Is(err, context.Canceled):
		return 499, "CLIENT_CLOSED_REQUEST"
	default:
		return 500, "QUERY_FAILED"
	}
}
