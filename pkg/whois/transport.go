/*
 * @Author: AsisYu 2773943729@qq.com
 * @Date: 2025-08-12
 * @Description: 端口43字节流传输 - 连接、写入查询、读到对端关闭
 */
package whois

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

// queryServer 对单个服务器执行一次完整查询
// WHOIS没有消息分帧，响应以对端关闭连接为结束标志；
// 连接、写入、读取共享同一个截止时间，连接在所有退出路径上都会关闭
func queryServer(ctx context.Context, addr string, payload []byte, timeout time.Duration) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return "", transportError(ctx, addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	// 调用方取消时关闭连接，让阻塞中的读写立即返回
	watchDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-watchDone:
		}
	}()
	defer close(watchDone)

	if _, err := conn.Write(payload); err != nil {
		return "", transportError(ctx, addr, err)
	}

	buffer := make([]byte, 4096)
	var response strings.Builder
	for {
		n, err := conn.Read(buffer)
		if n > 0 {
			response.Write(buffer[:n])
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", transportError(ctx, addr, err)
		}
	}

	// 注册局的编码五花八门，宽容解码：非法UTF-8序列替换为U+FFFD
	return strings.ToValidUTF8(response.String(), "�"), nil
}

// transportError 把底层网络错误归类为取消/超时/连接失败
func transportError(ctx context.Context, addr string, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return ctx.Err()
	}

	var netErr net.Error
	if errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("whois: query %s: %w", addr, ErrTimeout)
	}

	return &ConnectionError{Host: addr, Err: err}
}
