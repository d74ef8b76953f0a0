/*
 * @Author: AsisYu 2773943729@qq.com
 * @Date: 2025-08-12
 * @Description: WHOIS解析引擎 - 目录选路、查询执行与转介跟随
 */
package whois

import "context"

// Client WHOIS查询客户端
// 持有的目录构造后只读，同一个Client可被任意数量的并发查询共享
type Client struct {
	directory *Directory
}

// NewClient 使用给定目录创建客户端；directory为nil时使用内置目录
func NewClient(directory *Directory) *Client {
	if directory == nil {
		directory = DefaultDirectory()
	}
	return &Client{directory: directory}
}

// Directory 返回客户端持有的服务器目录
func (c *Client) Directory() *Directory {
	return c.directory
}

// Lookup 阻塞式查询，语义与LookupContext一致
func (c *Client) Lookup(opts LookupOptions) (string, error) {
	return c.LookupContext(context.Background(), opts)
}

// LookupString 用默认选项查询一个原始目标字符串
func (c *Client) LookupString(raw string) (string, error) {
	opts, err := NewLookupOptions(raw)
	if err != nil {
		return "", err
	}
	return c.Lookup(opts)
}

// LookupContext 执行一次WHOIS查询并跟随转介
//
// 首跳失败直接作为本次查询的失败返回；转介跳失败不拖垮整次查询，
// 返回已取得的最后一次成功响应(部分数据好过彻底失败)。
// 终止由显式的深度计数和已访问地址集合共同保证：
// 无转介提示、自指、成环或深度耗尽都会停止跟随
func (c *Client) LookupContext(ctx context.Context, opts LookupOptions) (string, error) {
	server := opts.Server
	if server == nil {
		var err error
		server, err = c.directory.Resolve(opts.Target)
		if err != nil {
			return "", err
		}
	}

	text, err := queryText(server, opts.Target)
	if err != nil {
		return "", err
	}

	addr := server.addr()
	response, err := queryServer(ctx, addr, renderQuery(server, text), opts.Timeout)
	if err != nil {
		return "", err
	}

	visited := map[string]bool{addr: true}

	for follow := opts.Follow; follow > 0; follow-- {
		host, ok := detectReferral(response)
		if !ok {
			break
		}

		// 转介总是对新服务器使用默认查询，不带原服务器的模板
		next, err := serverFromHost(host)
		if err != nil {
			break
		}

		nextAddr := next.addr()
		if visited[nextAddr] {
			// 自指或成环，当前结果已是最优
			break
		}
		visited[nextAddr] = true

		nextText, err := queryText(next, opts.Target)
		if err != nil {
			break
		}

		followup, err := queryServer(ctx, nextAddr, renderQuery(next, nextText), opts.Timeout)
		if err != nil {
			// 调用方的取消不吞掉
			if ctx.Err() != nil {
				return "", err
			}
			// 转介服务器不可达，返回手上已有的数据
			break
		}
		response = followup
	}

	return response, nil
}
