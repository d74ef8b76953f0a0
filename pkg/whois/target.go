/*
 * @Author: AsisYu 2773943729@qq.com
 * @Date: 2025-08-12
 * @Description: 查询目标解析与校验
 */
package whois

import (
	"net"
	"regexp"
	"strings"

	"golang.org/x/net/idna"
)

// 与 utils.IsValidDomain 相同的域名格式规则
// 顶级标签接受纯字母或ACE形式(xn--)，以兼容国际化顶级域
var domainRegex = regexp.MustCompile(`^([a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?\.)+([a-zA-Z]{2,}|xn--[a-zA-Z0-9]([a-zA-Z0-9\-]*[a-zA-Z0-9])?)$`)

// Target 一次查询的目标：域名或IP地址，构造后不可变
type Target struct {
	domain string
	ip     net.IP
}

// ParseTarget 解析并校验原始目标字符串
// 域名统一转为小写并去掉尾部的点；Unicode域名保留原文，
// 是否转为punycode由所选服务器条目的punycode标志决定
func ParseTarget(raw string) (Target, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Target{}, ErrInvalidTarget
	}

	if ip := net.ParseIP(s); ip != nil {
		return Target{ip: ip}, nil
	}

	domain := strings.ToLower(strings.TrimSuffix(s, "."))
	if !domainRegex.MatchString(domain) {
		// 非ASCII域名先转成ACE形式再校验
		ascii, err := idna.ToASCII(domain)
		if err != nil || !domainRegex.MatchString(ascii) {
			return Target{}, ErrInvalidTarget
		}
	}

	return Target{domain: domain}, nil
}

// IsIP 目标是否为IP地址
func (t Target) IsIP() bool {
	return t.ip != nil
}

// String 目标的文本形式：域名为小写点分字符串，IP为标准文本地址
func (t Target) String() string {
	if t.ip != nil {
		return t.ip.String()
	}
	return t.domain
}

// Labels 域名的标签序列；IP目标返回nil
func (t Target) Labels() []string {
	if t.domain == "" {
		return nil
	}
	return strings.Split(t.domain, ".")
}
