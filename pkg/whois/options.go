/*
 * @Author: AsisYu 2773943729@qq.com
 * @Date: 2025-08-12
 * @Description: 查询选项
 */
package whois

import "time"

const (
	// DefaultFollow 默认跟随转介的最大次数
	DefaultFollow = 2

	// DefaultTimeout 默认的单次查询超时
	DefaultTimeout = 60 * time.Second
)

// LookupOptions 单次查询的配置
type LookupOptions struct {
	// Target 查询目标
	Target Target

	// Server 显式指定的WHOIS服务器
	// 非nil时跳过目录解析，直接对该服务器执行查询
	Server *Server

	// Follow 跟随转介的最大次数，0表示不跟随
	Follow int

	// Timeout 单次查询(连接+写入+读取)的超时，0表示不限时
	Timeout time.Duration
}

// NewLookupOptions 从原始目标字符串构造查询选项，套用默认深度与超时
// 目标既不是合法域名也不是IP时返回ErrInvalidTarget
func NewLookupOptions(raw string) (LookupOptions, error) {
	target, err := ParseTarget(raw)
	if err != nil {
		return LookupOptions{}, err
	}
	return LookupOptions{
		Target:  target,
		Follow:  DefaultFollow,
		Timeout: DefaultTimeout,
	}, nil
}

// NewServer 从主机字符串构造服务器条目，用作LookupOptions.Server覆盖项
func NewServer(host string) (*Server, error) {
	return serverFromHost(host)
}
