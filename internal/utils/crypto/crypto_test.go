package crypto

import (
	"errors"
	"net/url"
	"strings"
	"testing"
)

func TestClickURLRoundTrip(t *testing.T) {
	signer := NewLinkSigner("secret", "https://api.example.com/")
	target := "https://example.com/report?id=1&x=y"

	link := signer.ClickURL("camp-1", target)
	if !strings.HasPrefix(link, "https://api.example.com/api/track/click/camp-1?") {
		t.Fatalf("link = %s", link)
	}
	u, err := url.Parse(link)
	if err != nil {
		t.Fatal(err)
	}
	got, err := signer.ResolveClick("camp-1", u.Query().Get("u"), u.Query().Get("s"))
	if err != nil {
		t.Fatalf("ResolveClick: %v", err)
	}
	if got != target {
		t.Errorf("target = %q", got)
	}

	if _, err := signer.ResolveClick("camp-2", u.Query().Get("u"), u.Query().Get("s")); !errors.Is(err, ErrBadSignature) {
		t.Errorf("other campaign: err = %v", err)
	}
	if _, err := NewLinkSigner("other", "x").ResolveClick("camp-1", u.Query().Get("u"), u.Query().Get("s")); !errors.Is(err, ErrBadSignature) {
		t.Errorf("other secret: err = %v", err)
	}
}

func TestResolveClickRejectsNonHTTP(t *testing.T) {
	signer := NewLinkSigner("secret", "https://api")
	link := signer.ClickURL("c", "javascript:alert(1)")
	u, _ := url.Parse(link)
	if _, err := signer.ResolveClick("c", u.Query().Get("u"), u.Query().Get("s")); err == nil {
		t.Fatal("javascript: target accepted")
	}
}

func TestVerifySignature(t *testing.T) {
	sig := ComputeSignature("k", "a", "b")
	if !VerifySignature("k", sig, "a", "b") {
		t.Error("valid signature rejected")
	}
	if !VerifySignature("k", sig, "a|b") {
		t.Error("pre-joined parts should verify")
	}
	if VerifySignature("k", sig, "b", "a") {
		t.Error("reordered parts accepted")
	}
}
