package auth

import (
	"errors"
	"testing"
	"time"
)

func TestIssueAndParse(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 0)
	familyID := int64(9)

	tok, err := issuer.Issue(3, &familyID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := issuer.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 3 {
		t.Errorf("UserID = %d, want 3", claims.UserID)
	}
	if claims.FamilyID == nil || *claims.FamilyID != 9 {
		t.Errorf("FamilyID = %v, want 9", claims.FamilyID)
	}
	ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	if ttl != DefaultTokenTTL {
		t.Errorf("ttl = %v, want %v", ttl, DefaultTokenTTL)
	}
}

func TestParseWithoutFamily(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	tok, _ := issuer.Issue(3, nil)
	claims, err := issuer.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.FamilyID != nil {
		t.Errorf("FamilyID = %v, want nil", *claims.FamilyID)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	tok, _ := NewTokenIssuer("secret-a", time.Hour).Issue(1, nil)
	if _, err := NewTokenIssuer("secret-b", time.Hour).Parse(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestParseRejectsExpired(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, _ := issuer.Issue(1, nil)

	issuer.now = time.Now
	if _, err := issuer.Parse(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := NewTokenIssuer("secret", time.Hour).Parse("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(hash, "secret1") {
		t.Error("expected password to match")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("expected wrong password to fail")
	}

	p1, _ := TemporaryPassword()
	p2, _ := TemporaryPassword()
	if len(p1) != 12 || p1 == p2 {
		t.Errorf("temporary passwords %q %q", p1, p2)
	}
}
