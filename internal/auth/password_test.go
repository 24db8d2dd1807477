package auth

import (
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Errorf("expected PHC format hash, got %q", hash)
	}

	if !VerifyPassword("correct horse battery staple", hash) {
		t.Error("expected correct password to verify")
	}
	if VerifyPassword("wrong password", hash) {
		t.Error("expected wrong password to fail")
	}
}

func TestHashPasswordUsesRandomSalt(t *testing.T) {
	h1, err := HashPassword("samepassword")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	h2, err := HashPassword("samepassword")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same password must differ")
	}
	if !VerifyPassword("samepassword", h1) || !VerifyPassword("samepassword", h2) {
		t.Error("both hashes must verify")
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	cases := []string{
		"",
		"plaintext",
		"$bcrypt$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=1,p=4$not-base64!$aGFzaA",
		"$argon2id$v=19$garbage$c2FsdA$aGFzaA",
	}
	for _, encoded := range cases {
		if VerifyPassword("whatever", encoded) {
			t.Errorf("expected malformed hash %q to fail verification", encoded)
		}
	}
}

func TestGenerateResetToken(t *testing.T) {
	t1, err := GenerateResetToken()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	t2, err := GenerateResetToken()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if t1 == t2 {
		t.Error("tokens must be unique")
	}
	// 32 bytes -> 43 chars en base64 url-safe sin padding
	if len(t1) != 43 {
		t.Errorf("expected 43 char token, got %d", len(t1))
	}
	if strings.ContainsAny(t1, "+/=") {
		t.Errorf("token must be url-safe, got %q", t1)
	}
}
