package text

// Truncate 截断到最多 max 个字符，超出部分以省略号收尾。
// 按 rune 截断，中文原文不会被切在半个字符上。
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
