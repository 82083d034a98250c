package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"

	base64_ "cybersite/internal/utils/base64"
)

var ErrBadSignature = errors.New("signature mismatch")

// ComputeSignature returns the hex HMAC-SHA256 of the parts joined by "|".
func ComputeSignature(secret string, parts ...string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(h.Sum(nil))
}

// VerifySignature compares in constant time.
func VerifySignature(secret, signature string, parts ...string) bool {
	expected := ComputeSignature(secret, parts...)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// LinkSigner builds and checks the tracked redirect links placed in campaign emails.
type LinkSigner struct {
	secret  string
	baseURL string
}

func NewLinkSigner(secret, baseURL string) *LinkSigner {
	return &LinkSigner{secret: secret, baseURL: strings.TrimRight(baseURL, "/")}
}

// ClickURL wraps target in a signed redirect through the click endpoint.
func (s *LinkSigner) ClickURL(campaignID, target string) string {
	q := url.Values{}
	q.Set("u", base64_.EncodeURLSafe(target))
	q.Set("s", ComputeSignature(s.secret, campaignID, target))
	return fmt.Sprintf("%s/api/track/click/%s?%s", s.baseURL, url.PathEscape(campaignID), q.Encode())
}

// OpenURL is the address of the tracking pixel.
func (s *LinkSigner) OpenURL(campaignID string) string {
	return fmt.Sprintf("%s/api/track/open/%s", s.baseURL, url.PathEscape(campaignID))
}

// ResolveClick decodes and verifies a click link, returning the original target.
func (s *LinkSigner) ResolveClick(campaignID, encoded, signature string) (string, error) {
	target, err := base64_.DecodeURLSafe(encoded)
	if err != nil {
		return "", fmt.Errorf("decode target: %w", err)
	}
	if !VerifySignature(s.secret, signature, campaignID, target) {
		return "", ErrBadSignature
	}
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("unsupported target %q", target)
	}
	return target, nil
}
