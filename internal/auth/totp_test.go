package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
)

func TestGenerateTOTPSecret(t *testing.T) {
	secret, uri, err := GenerateTOTPSecret("alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if secret == "" {
		t.Error("expected non-empty secret")
	}
	if !strings.HasPrefix(uri, "otpauth://totp/") {
		t.Errorf("expected otpauth uri, got %q", uri)
	}
	if !strings.Contains(uri, "alice") {
		t.Errorf("expected account name in uri, got %q", uri)
	}
}

func TestVerifyTOTPCode(t *testing.T) {
	secret, _, err := GenerateTOTPSecret("bob")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	code, err := totp.GenerateCode(secret, time.Now())
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	if !VerifyTOTPCode(code, secret) {
		t.Error("expected current code to validate")
	}
	if VerifyTOTPCode("000000", secret) && code != "000000" {
		t.Error("expected wrong code to fail")
	}
	if VerifyTOTPCode("", secret) {
		t.Error("expected empty code to fail")
	}
}
