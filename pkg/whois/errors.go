/*
 * @Author: AsisYu 2773943729@qq.com
 * @Date: 2025-08-12
 * @Description: WHOIS查询错误分类
 */
package whois

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTarget 查询目标既不是合法域名也不是IP字面量
	ErrInvalidTarget = errors.New("whois: target is not a valid domain or ip address")

	// ErrNoServer 服务器目录中没有匹配条目且没有默认回退
	ErrNoServer = errors.New("whois: no whois server is known for this kind of object")

	// ErrTimeout 单次查询(连接+写入+读取)超出限定时长
	ErrTimeout = errors.New("whois: query timed out")
)

// DirectoryError 服务器目录数据格式错误，仅在构造目录时产生
type DirectoryError struct {
	Reason string
}

func (e *DirectoryError) Error() string {
	return "whois: invalid server directory: " + e.Reason
}

// ConnectionError 无法建立或维持到目标服务器的连接
type ConnectionError struct {
	Host string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("whois: connect to %s: %v", e.Host, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}
