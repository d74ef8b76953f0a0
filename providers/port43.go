/*
 * @Author: AsisYu 2773943729@qq.com
 * @Date: 2025-08-12
 * @Description: 端口43 WHOIS提供商 - 基于服务器目录选路与转介跟随
 */
package providers

import (
	"context"
	"strings"
	"time"

	"whoiskit/pkg/logger"
	"whoiskit/pkg/whois"
	"whoiskit/types"
	"whoiskit/utils"
)

type Port43Provider struct {
	client  *whois.Client
	timeout time.Duration
}

// NewPort43Provider 创建端口43提供商；client为nil时使用内置服务器目录
func NewPort43Provider(client *whois.Client) *Port43Provider {
	if client == nil {
		client = whois.NewClient(nil)
	}
	return &Port43Provider{
		client:  client,
		timeout: 10 * time.Second,
	}
}

func (p *Port43Provider) Name() string {
	return "PORT43-WHOIS"
}

// Query 查询域名或IP的WHOIS记录并解析为统一响应结构
func (p *Port43Provider) Query(ctx context.Context, target string) (*types.WhoisResponse, error) {
	log := logger.FromContext(ctx, "Port43")

	opts, err := whois.NewLookupOptions(target)
	if err != nil {
		return &types.WhoisResponse{
			Domain:         target,
			StatusCode:     422,
			StatusMessage:  "无效的查询目标",
			SourceProvider: p.Name(),
		}, err
	}
	opts.Timeout = p.timeout

	raw, err := p.client.LookupContext(ctx, opts)
	if err != nil {
		log.Warnf("WHOIS查询失败: 目标=%s, 错误=%v", target, err)
		return &types.WhoisResponse{
			Domain:         target,
			StatusCode:     500,
			StatusMessage:  "WHOIS查询失败",
			SourceProvider: p.Name(),
		}, err
	}

	log.Infof("WHOIS查询成功: 目标=%s, 响应长度=%d字节", target, len(raw))
	log.Debugf("WHOIS原始响应: %s", utils.TruncateString(raw, 200))

	response := parseWhoisText(raw, target)
	response.RawText = raw
	response.SourceProvider = p.Name()
	return response, nil
}

// parseWhoisText 从原始WHOIS文本中提取常见字段
// 各注册局字段命名不统一，这里只扫描通用的键名
func parseWhoisText(text, target string) *types.WhoisResponse {
	response := &types.WhoisResponse{
		Domain:        target,
		Available:     false,
		StatusCode:    200,
		StatusMessage: "查询成功",
	}

	// 检查目标是否未注册
	lowerText := strings.ToLower(text)
	if strings.Contains(lowerText, "no match") ||
		strings.Contains(lowerText, "not found") ||
		strings.Contains(lowerText, "no data found") {
		response.Available = true
		response.StatusMessage = "目标未注册"
		return response
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "%") || strings.HasPrefix(line, ">>>") {
			continue
		}

		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(strings.ToLower(parts[0]))
		value := strings.TrimSpace(parts[1])
		if value == "" {
			continue
		}

		switch key {
		case "registrar", "sponsoring registrar":
			response.Registrar = value
		case "registrar whois server", "whois server":
			response.WhoisServer = value
		case "creation date", "created", "domain name commencement date", "created on":
			response.CreateDate = parseDate(value)
		case "registry expiry date", "expiry date", "expires", "expires on", "expiration date":
			response.ExpiryDate = parseDate(value)
		case "updated date", "last modified", "last updated", "modified":
			response.UpdateDate = parseDate(value)
		case "domain status", "status":
			response.Status = append(response.Status, value)
		case "name server", "nserver":
			response.NameServers = append(response.NameServers, value)
		case "registrant email", "admin email", "contact email":
			response.ContactEmail = value
		}
	}

	if response.CreateDate != "" {
		response.DomainAge = calculateDomainAge(response.CreateDate)
	}

	return response
}

// parseDate 把各注册局的日期格式统一为 2006-01-02
func parseDate(dateStr string) string {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return ""
	}

	// 去掉括号内的时区等后缀信息
	if idx := strings.Index(dateStr, "("); idx != -1 {
		dateStr = strings.TrimSpace(dateStr[:idx])
	}

	formats := []string{
		"2006-01-02T15:04:05Z",
		"2006-01-02T15:04:05.000Z",
		"2006-01-02 15:04:05",
		"2006-01-02",
		"02-Jan-2006",
		"2006.01.02",
		"02/01/2006",
		"01/02/2006",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t.Format("2006-01-02")
		}
	}

	// 无法解析时返回原始字符串
	return dateStr
}

// calculateDomainAge 按创建日期计算域名年龄(天)
func calculateDomainAge(createDateStr string) int {
	createDate, err := time.Parse("2006-01-02", createDateStr)
	if err != nil {
		return 0
	}
	return int(time.Since(createDate).Hours() / 24)
}
