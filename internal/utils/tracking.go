package utils

// 🕵️ TruncateUserAgent caps user agents stored with downloads.
func TruncateUserAgent(ua string) string {
	const max = 512
	if len(ua) > max {
		return ua[:max]
	}
	return ua
}
