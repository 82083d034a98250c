package base64

import (
	"encoding/base64"
)

// EncodeURLSafe encodes without padding so the result can sit in a query string.
func EncodeURLSafe(input string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(input))
}

// DecodeURLSafe reverses EncodeURLSafe.
func DecodeURLSafe(input string) (string, error) {
	data, err := base64.RawURLEncoding.DecodeString(input)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
