package whois

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// mockServer 进程内WHOIS服务器：读一行查询，按handler写响应后关闭连接
type mockServer struct {
	addr    string
	queries int32
}

func startMockServer(t *testing.T, handler func(query string) string) *mockServer {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	ms := &mockServer{addr: ln.Addr().String()}

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			atomic.AddInt32(&ms.queries, 1)
			go func(c net.Conn) {
				defer c.Close()
				buffer := make([]byte, 512)
				n, err := c.Read(buffer)
				if err != nil && err != io.EOF {
					return
				}
				query := strings.TrimSpace(string(buffer[:n]))
				io.WriteString(c, handler(query))
			}(conn)
		}
	}()

	return ms
}

func (ms *mockServer) queryCount() int32 {
	return atomic.LoadInt32(&ms.queries)
}

// directoryFor 构造一个把所有域名都指向addr的目录
func directoryFor(t *testing.T, addr string) *Directory {
	t.Helper()
	d, err := DirectoryFromString(fmt.Sprintf(`{"": "%s"}`, addr))
	if err != nil {
		t.Fatalf("DirectoryFromString: %v", err)
	}
	return d
}

func lookupOptions(t *testing.T, raw string) LookupOptions {
	t.Helper()
	opts, err := NewLookupOptions(raw)
	if err != nil {
		t.Fatalf("NewLookupOptions(%q): %v", raw, err)
	}
	opts.Timeout = 5 * time.Second
	return opts
}

func TestLookupSimple(t *testing.T) {
	server := startMockServer(t, func(query string) string {
		return "Domain Name: " + strings.ToUpper(query) + "\r\nRegistrar: Example Registrar\r\n"
	})

	client := NewClient(directoryFor(t, server.addr))
	response, err := client.Lookup(lookupOptions(t, "example.com"))
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !strings.Contains(response, "Domain Name: EXAMPLE.COM") {
		t.Errorf("unexpected response: %q", response)
	}
	if server.queryCount() != 1 {
		t.Errorf("query count = %d; want 1", server.queryCount())
	}
}

func TestLookupFollowsReferral(t *testing.T) {
	registrar := startMockServer(t, func(query string) string {
		return "Registrant: Someone\r\nDetail for " + query + "\r\n"
	})
	registry := startMockServer(t, func(query string) string {
		return "Registrar WHOIS Server: " + registrar.addr + "\r\n"
	})

	client := NewClient(directoryFor(t, registry.addr))
	response, err := client.Lookup(lookupOptions(t, "example.com"))
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !strings.Contains(response, "Registrant: Someone") {
		t.Errorf("referral was not followed, response: %q", response)
	}
	if registry.queryCount() != 1 || registrar.queryCount() != 1 {
		t.Errorf("query counts = (%d, %d); want (1, 1)", registry.queryCount(), registrar.queryCount())
	}
}

// 自指的转介在深度1处终止，返回该服务器的响应
func TestLookupSelfReferral(t *testing.T) {
	var server *mockServer
	server = startMockServer(t, func(query string) string {
		return "Whois Server: " + server.addr + "\r\nRegistrar: Loop Registrar\r\n"
	})

	client := NewClient(directoryFor(t, server.addr))
	response, err := client.Lookup(lookupOptions(t, "example.com"))
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !strings.Contains(response, "Loop Registrar") {
		t.Errorf("unexpected response: %q", response)
	}
	if server.queryCount() != 1 {
		t.Errorf("self-referencing server queried %d times; want 1", server.queryCount())
	}
}

// 两台服务器互相转介，已访问集合保证每台只被查询一次
func TestLookupReferralCycle(t *testing.T) {
	var a, b *mockServer
	a = startMockServer(t, func(query string) string {
		return "ReferralServer: whois://" + b.addr + "\r\nSource: A\r\n"
	})
	b = startMockServer(t, func(query string) string {
		return "ReferralServer: whois://" + a.addr + "\r\nSource: B\r\n"
	})

	opts := lookupOptions(t, "example.com")
	opts.Follow = 10

	client := NewClient(directoryFor(t, a.addr))
	response, err := client.Lookup(opts)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !strings.Contains(response, "Source: B") {
		t.Errorf("unexpected terminal response: %q", response)
	}
	if a.queryCount() != 1 || b.queryCount() != 1 {
		t.Errorf("query counts = (%d, %d); want (1, 1)", a.queryCount(), b.queryCount())
	}
}

// 转介链比Follow深时，在配置的深度处停止并返回最后一次成功响应
func TestLookupDepthLimit(t *testing.T) {
	var chain [4]*mockServer
	for i := 3; i >= 0; i-- {
		i := i
		if i == 3 {
			chain[i] = startMockServer(t, func(query string) string {
				return "Source: hop3\r\n"
			})
			continue
		}
		chain[i] = startMockServer(t, func(query string) string {
			return fmt.Sprintf("Whois Server: %s\r\nSource: hop%d\r\n", chain[i+1].addr, i)
		})
	}

	opts := lookupOptions(t, "example.com")
	opts.Follow = 2

	client := NewClient(directoryFor(t, chain[0].addr))
	response, err := client.Lookup(opts)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	// 跟随两跳：0 -> 1 -> 2，第3跳不再发起
	if !strings.Contains(response, "Source: hop2") {
		t.Errorf("unexpected terminal response: %q", response)
	}
	if chain[3].queryCount() != 0 {
		t.Errorf("hop beyond depth limit was queried %d times", chain[3].queryCount())
	}
}

// 首跳连接失败是整次查询的失败，错误中带目标地址
func TestLookupFirstHopFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close() // 释放端口，使连接被拒绝

	client := NewClient(directoryFor(t, addr))
	_, err = client.Lookup(lookupOptions(t, "example.com"))

	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("Lookup error = %v; want *ConnectionError", err)
	}
	if connErr.Host != addr {
		t.Errorf("ConnectionError.Host = %q; want %q", connErr.Host, addr)
	}
}

// 转介跳连接失败不拖垮查询，返回此前的成功响应
func TestLookupReferralHopFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen: %v", err)
	}
	deadAddr := ln.Addr().String()
	ln.Close()

	registry := startMockServer(t, func(query string) string {
		return "Registrar WHOIS Server: " + deadAddr + "\r\nSource: registry\r\n"
	})

	client := NewClient(directoryFor(t, registry.addr))
	response, err := client.Lookup(lookupOptions(t, "example.com"))
	if err != nil {
		t.Fatalf("Lookup should absorb referral-hop failure, got: %v", err)
	}
	if !strings.Contains(response, "Source: registry") {
		t.Errorf("unexpected response: %q", response)
	}
}

// 服务器挂起不关闭连接时，查询以ErrTimeout结束
func TestLookupTimeout(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				time.Sleep(3 * time.Second)
			}(conn)
		}
	}()

	opts := lookupOptions(t, "example.com")
	opts.Timeout = 200 * time.Millisecond

	client := NewClient(directoryFor(t, ln.Addr().String()))
	_, err = client.Lookup(opts)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Lookup error = %v; want ErrTimeout", err)
	}
}

// 调用方取消以context.Canceled上报，与超时区分
func TestLookupContextCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				time.Sleep(3 * time.Second)
			}(conn)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	client := NewClient(directoryFor(t, ln.Addr().String()))
	_, err = client.LookupContext(ctx, lookupOptions(t, "example.com"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("LookupContext error = %v; want context.Canceled", err)
	}
}

// Server覆盖项绕过目录解析，对指定主机使用默认查询
func TestLookupServerOverride(t *testing.T) {
	override := startMockServer(t, func(query string) string {
		return "Queried: " + query + "\r\n"
	})

	// 目录故意无法匹配任何目标
	d, err := DirectoryFromString(`{"arpa": "whois.iana.org"}`)
	if err != nil {
		t.Fatalf("DirectoryFromString: %v", err)
	}

	opts := lookupOptions(t, "example.com")
	opts.Server, err = NewServer(override.addr)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	client := NewClient(d)
	response, err := client.Lookup(opts)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !strings.Contains(response, "Queried: example.com") {
		t.Errorf("unexpected response: %q", response)
	}
}

// 渲染后的模板查询原样送达服务器
func TestLookupTemplateQueryOnWire(t *testing.T) {
	var received atomic.Value
	server := startMockServer(t, func(query string) string {
		received.Store(query)
		return "NetRange: 8.0.0.0 - 8.127.255.255\r\n"
	})

	d, err := DirectoryFromString(fmt.Sprintf(
		`{"_": {"ip": {"host": "%s", "query": "n + $addr\r\n"}}}`, server.addr))
	if err != nil {
		t.Fatalf("DirectoryFromString: %v", err)
	}

	client := NewClient(d)
	if _, err := client.Lookup(lookupOptions(t, "8.8.8.8")); err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got := received.Load(); got != "n + 8.8.8.8" {
		t.Errorf("server received %q; want %q", got, "n + 8.8.8.8")
	}
}

func TestLookupInvalidTarget(t *testing.T) {
	if _, err := NewLookupOptions("not a domain"); err != ErrInvalidTarget {
		t.Errorf("NewLookupOptions = %v; want ErrInvalidTarget", err)
	}
}
