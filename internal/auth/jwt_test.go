package auth

import (
	"testing"
	"time"
)

var secret = []byte("test-secret")

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken("user@example.com", secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}

	email, err := GetEmailFromToken(token, secret)
	if err != nil {
		t.Fatalf("GetEmailFromToken returned error: %v", err)
	}
	if email != "user@example.com" {
		t.Errorf("email = %q; want user@example.com", email)
	}
}

func TestGetEmailFromToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken("user@example.com", secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}

	if _, err := GetEmailFromToken(token, []byte("other-secret")); err == nil {
		t.Errorf("expected error for a token signed with a different secret")
	}
}

func TestGetEmailFromToken_Expired(t *testing.T) {
	token, err := GenerateToken("user@example.com", secret, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}

	if _, err := GetEmailFromToken(token, secret); err == nil {
		t.Errorf("expected error for an expired token")
	}
}

func TestGetEmailFromToken_Garbage(t *testing.T) {
	if _, err := GetEmailFromToken("not.a.token", secret); err == nil {
		t.Errorf("expected error for a malformed token")
	}
}
