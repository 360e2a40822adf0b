package utils

// TruncateText 按字符（非字节）截断文本，超出部分用省略号表示
func TruncateText(text string, maxLength int) string {
	runes := []rune(text)
	if maxLength <= 0 || len(runes) <= maxLength {
		return text
	}
	return string(runes[:maxLength]) + "..."
}
