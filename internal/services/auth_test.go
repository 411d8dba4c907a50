package services

import (
	"strings"
	"testing"
	"time"
)

func testTokens() TokenService {
	return TokenService{
		Secret:    []byte("test-secret"),
		Issuer:    "educalink",
		AccessTTL: 30 * time.Minute,
	}
}

func TestHashPasswordNotPlaintext(t *testing.T) {
	tokens := testTokens()
	hash, err := tokens.HashPassword("secreto123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "secreto123" {
		t.Fatal("hash equals plaintext")
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Fatalf("unexpected hash format: %s", hash)
	}
}

func TestVerifyPassword(t *testing.T) {
	tokens := testTokens()
	hash, err := tokens.HashPassword("secreto123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !tokens.VerifyPassword("secreto123", hash) {
		t.Error("correct password rejected")
	}
	if tokens.VerifyPassword("otracosa", hash) {
		t.Error("wrong password accepted")
	}
}

func TestHashPasswordUniqueSalts(t *testing.T) {
	tokens := testTokens()
	first, _ := tokens.HashPassword("secreto123")
	second, _ := tokens.HashPassword("secreto123")
	if first == second {
		t.Error("two hashes of the same password are identical")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	tokens := testTokens()
	access, exp, err := tokens.CreateAccessToken("maria@example.com")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if exp <= time.Now().Unix() {
		t.Errorf("expiry %d not in the future", exp)
	}
	mail, err := tokens.ParseToken(access)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if mail != "maria@example.com" {
		t.Errorf("subject = %q, want maria@example.com", mail)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	tokens := testTokens()
	tokens.AccessTTL = -time.Minute
	access, _, err := tokens.CreateAccessToken("maria@example.com")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := tokens.ParseToken(access); err == nil {
		t.Error("expired token accepted")
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	tokens := testTokens()
	access, _, err := tokens.CreateAccessToken("maria@example.com")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	other := TokenService{Secret: []byte("other-secret"), Issuer: "educalink", AccessTTL: time.Minute}
	if _, err := other.ParseToken(access); err == nil {
		t.Error("token signed with another secret accepted")
	}
	if _, err := tokens.ParseToken(access + "x"); err == nil {
		t.Error("mangled token accepted")
	}
}

func TestWrongIssuerRejected(t *testing.T) {
	issued := TokenService{Secret: []byte("test-secret"), Issuer: "someone-else", AccessTTL: time.Minute}
	access, _, err := issued.CreateAccessToken("maria@example.com")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := testTokens().ParseToken(access); err == nil {
		t.Error("token from another issuer accepted")
	}
}
