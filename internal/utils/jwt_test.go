package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestNewAccessTokenClaims(t *testing.T) {
	const secret = "test-secret"
	at, err := NewAccessToken(secret, 42, "ADMIN", 15)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if at.Token == "" {
		t.Fatal("empty token")
	}
	if !at.Exp.After(time.Now().UTC()) {
		t.Fatalf("expiry not in the future: %v", at.Exp)
	}

	tok, err := jwt.Parse(at.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		t.Fatalf("parse failed: %v", err)
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("unexpected claims type")
	}
	if sub, _ := claims["sub"].(float64); uint64(sub) != 42 {
		t.Fatalf("sub claim = %v, want 42", claims["sub"])
	}
	if role, _ := claims["role"].(string); role != "ADMIN" {
		t.Fatalf("role claim = %v, want ADMIN", claims["role"])
	}
}

func TestNewAccessTokenRejectedWithWrongSecret(t *testing.T) {
	at, err := NewAccessToken("right", 1, "CUSTOMER", 5)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	tok, err := jwt.Parse(at.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte("wrong"), nil
	})
	if err == nil && tok.Valid {
		t.Fatal("token validated with the wrong secret")
	}
}

func TestRefreshTokenHashing(t *testing.T) {
	rt, err := NewRefreshToken(7)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if len(rt.Raw) != 96 {
		t.Fatalf("raw token length = %d, want 96", len(rt.Raw))
	}
	h1 := HashRefreshRaw(rt.Raw)
	h2 := HashRefreshRaw(rt.Raw)
	if h1 != h2 {
		t.Fatal("hash not deterministic")
	}
	if h1 == rt.Raw {
		t.Fatal("hash must differ from the raw token")
	}

	other, err := NewRefreshToken(7)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if HashRefreshRaw(other.Raw) == h1 {
		t.Fatal("distinct tokens produced the same hash")
	}
}
