/*
 * @Author: AsisYu
 * @Date: 2025-08-12
 * @Description: 查询目标工具函数
 */
package utils

import (
	"net"
	"regexp"
	"strings"

	"golang.org/x/net/idna"
)

// 顶级标签接受纯字母或ACE形式(xn--)，以兼容国际化顶级域
var domainRegex = regexp.MustCompile(`^([a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?\.)+([a-zA-Z]{2,}|xn--[a-zA-Z0-9]([a-zA-Z0-9\-]*[a-zA-Z0-9])?)$`)

// IsValidDomain 验证域名是否有效
func IsValidDomain(domain string) bool {
	domain = strings.ToLower(stripURLParts(domain))
	if domainRegex.MatchString(domain) {
		return true
	}
	// 非ASCII域名先转成ACE形式再校验
	ascii, err := idna.ToASCII(domain)
	return err == nil && domainRegex.MatchString(ascii)
}

// IsValidIP 验证是否为合法的IPv4/IPv6字面量
func IsValidIP(s string) bool {
	return net.ParseIP(strings.TrimSpace(s)) != nil
}

// IsValidTarget 查询目标是否为合法域名或IP
func IsValidTarget(s string) bool {
	return IsValidIP(s) || IsValidDomain(s)
}

// SanitizeDomain 清理和标准化域名
func SanitizeDomain(domain string) string {
	return strings.ToLower(stripURLParts(domain))
}

// SanitizeTarget 清理查询目标；IP保持原样，域名走SanitizeDomain
func SanitizeTarget(target string) string {
	target = strings.TrimSpace(target)
	if IsValidIP(target) {
		return target
	}
	return SanitizeDomain(target)
}

// stripURLParts 去除协议前缀、端口和路径
func stripURLParts(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "http://"), "https://")

	if idx := strings.Index(s, "/"); idx != -1 {
		s = s[:idx]
	}
	// IPv6字面量里的冒号不是端口分隔符
	if strings.Count(s, ":") == 1 {
		if idx := strings.Index(s, ":"); idx != -1 {
			s = s[:idx]
		}
	}
	return s
}
