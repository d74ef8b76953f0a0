/*
 * @Author: AsisYu 2773943729@qq.com
 * @Date: 2025-08-12
 * @Description: WHOIS查询类型定义
 */
package types

import "context"

// WhoisResponse 统一的WHOIS响应结构
type WhoisResponse struct {
	Available      bool     `json:"available"`
	Domain         string   `json:"domain"`
	Registrar      string   `json:"registrar"`
	CreateDate     string   `json:"creationDate"`
	ExpiryDate     string   `json:"expiryDate"`
	Status         []string `json:"status"`
	NameServers    []string `json:"nameServers"`
	UpdateDate     string   `json:"updatedDate"`
	WhoisServer    string   `json:"whoisServer,omitempty"`
	DomainAge      int      `json:"domainAge,omitempty"`
	ContactEmail   string   `json:"contactEmail,omitempty"`
	RawText        string   `json:"rawText,omitempty"`        // 端口43返回的原始记录文本
	SourceProvider string   `json:"sourceProvider,omitempty"` // 数据来源提供商
	StatusCode     int      `json:"statusCode"`               // 查询状态码
	StatusMessage  string   `json:"statusMessage,omitempty"`  // 状态描述信息
	CachedAt       string   `json:"cachedAt,omitempty"`       // 数据缓存时间
}

// WhoisProvider WHOIS数据提供者接口
type WhoisProvider interface {
	Query(ctx context.Context, target string) (*WhoisResponse, error)
	Name() string
}
