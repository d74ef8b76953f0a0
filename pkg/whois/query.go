/*
 * @Author: AsisYu 2773943729@qq.com
 * @Date: 2025-08-12
 * @Description: 查询模板渲染与转介提示检测
 */
package whois

import (
	"regexp"
	"strings"

	"golang.org/x/net/idna"
)

// defaultQuery RFC 3912风格的单行查询，模板缺省时使用
const defaultQuery = "$addr\r\n"

// referralRegex 匹配响应中的转介服务器行
// 字段名大小写不敏感；可选的 whois:// 或 rwhois:// 前缀会被剥掉
var referralRegex = regexp.MustCompile(`(?i)(ReferralServer|Registrar Whois|Whois Server|WHOIS Server|Registrar WHOIS Server):[^\S\n]*(r?whois://)?(.*)`)

// queryText 根据服务器条目的punycode设置得到目标的发送文本
func queryText(server *Server, target Target) (string, error) {
	text := target.String()
	if server.Punycode && !target.IsIP() {
		ascii, err := idna.ToASCII(text)
		if err != nil {
			return "", ErrInvalidTarget
		}
		text = ascii
	}
	return text, nil
}

// renderQuery 渲染实际发送给服务器的查询字节
// 模板作者控制行终止符，这里不追加也不剥除任何字节
func renderQuery(server *Server, text string) []byte {
	template := server.Query
	if template == "" {
		template = defaultQuery
	}
	return []byte(strings.ReplaceAll(template, "$addr", text))
}

// detectReferral 在响应文本中查找指向更权威服务器的转介提示
// 返回提示的主机token；多行匹配时第一行生效，未找到不是错误
func detectReferral(response string) (string, bool) {
	m := referralRegex.FindStringSubmatch(response)
	if m == nil {
		return "", false
	}
	host := strings.TrimSpace(m[3])
	if host == "" {
		return "", false
	}
	return host, true
}
