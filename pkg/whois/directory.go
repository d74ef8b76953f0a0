/*
 * @Author: AsisYu 2773943729@qq.com
 * @Date: 2025-08-12
 * @Description: WHOIS服务器目录 - 从后缀/IP键到服务器条目的只读映射
 */
package whois

import (
	_ "embed"
	"encoding/json"
	"net"
	"os"
	"strings"
)

//go:embed servers.json
var defaultServerList []byte

// Server 目录中的一条WHOIS服务器记录
type Server struct {
	// Host 主机名或IP字面量，可带":端口"，端口缺省为43
	Host string
	// Query 查询模板，$addr为目标占位符；为空时使用默认查询 "$addr\r\n"
	Query string
	// Punycode 替换占位符前是否先把域名转为ACE编码
	Punycode bool
}

type serverObject struct {
	Host     string `json:"host"`
	Query    string `json:"query"`
	Punycode *bool  `json:"punycode"`
}

// Directory 从查询键到服务器记录的映射
// 构造完成后只读，可被任意数量的并发查询共享，无须加锁
type Directory struct {
	servers map[string]*Server
	ip      *Server
}

// DirectoryFromFile 从文件读取服务器列表(JSON)构造目录
func DirectoryFromFile(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DirectoryError{Reason: err.Error()}
	}
	return directoryFromBytes(data)
}

// DirectoryFromString 从字符串读取服务器列表(JSON)构造目录
func DirectoryFromString(s string) (*Directory, error) {
	return directoryFromBytes([]byte(s))
}

// DefaultDirectory 返回使用内置服务器列表的目录
func DefaultDirectory() *Directory {
	d, err := directoryFromBytes(defaultServerList)
	if err != nil {
		// 内置列表随二进制一起发布，解析失败属于构建错误
		panic(err)
	}
	return d
}

func directoryFromBytes(data []byte) (*Directory, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &DirectoryError{Reason: err.Error()}
	}

	d := &Directory{servers: make(map[string]*Server, len(raw))}

	for key, value := range raw {
		if isJSONNull(value) {
			continue
		}

		// "_" 是保留键，其下按地址族存放IP查询条目
		if key == "_" {
			var nested map[string]json.RawMessage
			if err := json.Unmarshal(value, &nested); err != nil {
				return nil, &DirectoryError{Reason: "`_` entry is not an object"}
			}
			ipValue, ok := nested["ip"]
			if !ok || isJSONNull(ipValue) {
				continue
			}
			server, err := parseServerValue(ipValue)
			if err != nil {
				return nil, err
			}
			d.ip = server
			continue
		}

		server, err := parseServerValue(value)
		if err != nil {
			return nil, err
		}

		normalized := strings.ToLower(key)
		if _, exists := d.servers[normalized]; exists {
			return nil, &DirectoryError{Reason: "duplicate key `" + normalized + "`"}
		}
		d.servers[normalized] = server
	}

	return d, nil
}

// parseServerValue 解析单条服务器记录：裸主机字符串或 {host, query, punycode} 对象
func parseServerValue(raw json.RawMessage) (*Server, error) {
	var host string
	if err := json.Unmarshal(raw, &host); err == nil {
		return serverFromHost(host)
	}

	var obj serverObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, &DirectoryError{Reason: "server entry is neither a host string nor an object"}
	}

	server, err := serverFromHost(obj.Host)
	if err != nil {
		return nil, err
	}
	server.Query = obj.Query
	if obj.Punycode != nil {
		server.Punycode = *obj.Punycode
	}
	return server, nil
}

// serverFromHost 从主机字符串构造服务器条目，punycode默认开启
func serverFromHost(host string) (*Server, error) {
	host = strings.TrimSpace(host)
	if host == "" || strings.ContainsAny(host, " \t\r\n/") {
		return nil, &DirectoryError{Reason: "`" + host + "` is not a valid host string"}
	}
	return &Server{Host: host, Punycode: true}, nil
}

// addr 返回可拨号的 host:port 地址，端口缺省为43
func (s *Server) addr() string {
	host := s.Host

	// 带方括号的IPv6字面量
	if strings.HasPrefix(host, "[") {
		if strings.Contains(host, "]:") {
			return host
		}
		return host + ":43"
	}

	// 裸IPv6字面量
	if ip := net.ParseIP(host); ip != nil && ip.To4() == nil {
		return "[" + host + "]:43"
	}

	if strings.Contains(host, ":") {
		return host
	}
	return host + ":43"
}

// Resolve 为目标选择服务器条目
// 域名按标签序列从最长后缀到最短后缀依次匹配，然后尝试空键回退；
// IP目标使用保留的IP条目。均无匹配时返回ErrNoServer
func (d *Directory) Resolve(target Target) (*Server, error) {
	if target.IsIP() {
		if d.ip == nil {
			return nil, ErrNoServer
		}
		return d.ip, nil
	}

	suffix := target.String()
	for {
		if server, ok := d.servers[suffix]; ok {
			return server, nil
		}
		if suffix == "" {
			return nil, ErrNoServer
		}
		if i := strings.IndexByte(suffix, '.'); i >= 0 {
			suffix = suffix[i+1:]
		} else {
			suffix = ""
		}
	}
}

// Len 目录中后缀条目的数量(不含IP条目)
func (d *Directory) Len() int {
	return len(d.servers)
}

func isJSONNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}
