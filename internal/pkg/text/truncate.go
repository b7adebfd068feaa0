// Package text 提供少量字符串处理工具。
package text

// Truncate 把超长字符串截断到 max 字节并追加省略号。max<=0 表示不截断。
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
