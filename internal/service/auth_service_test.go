package service

import (
	"errors"
	"testing"
	"time"

	"github.com/shiptrack-next/internal/config"

	"golang.org/x/crypto/bcrypt"
)

func newAuthTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.JWT.SecretKey = "unit-test-secret-key-0123456789abcdef"
	cfg.JWT.ExpireHours = 24
	cfg.Security.Operator.Username = "ops"
	cfg.Security.Operator.Password = "plain-password"
	return cfg
}

func TestLoginWithPlainPassword(t *testing.T) {
	svc := NewAuthService(newAuthTestConfig(t))

	token, expiresAt, err := svc.Login("ops", "plain-password")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatalf("expected a token")
	}
	if time.Until(expiresAt) < 23*time.Hour {
		t.Fatalf("unexpected expiry: %v", expiresAt)
	}

	claims, err := svc.ParseJWT(token)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.Username != "ops" {
		t.Fatalf("expected username ops, got %q", claims.Username)
	}
}

func TestLoginWithBcryptHash(t *testing.T) {
	cfg := newAuthTestConfig(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("hashed-password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt failed: %v", err)
	}
	cfg.Security.Operator.PasswordHash = string(hash)
	svc := NewAuthService(cfg)

	if _, _, err := svc.Login("ops", "hashed-password"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	// 配置了哈希后明文口令字段不再参与校验
	if _, _, err := svc.Login("ops", "plain-password"); !errors.Is(err, ErrOperatorCredentials) {
		t.Fatalf("expected credentials error, got %v", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := NewAuthService(newAuthTestConfig(t))

	cases := []struct {
		name     string
		username string
		password string
	}{
		{"wrong username", "root", "plain-password"},
		{"wrong password", "ops", "nope"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := svc.Login(tc.username, tc.password); !errors.Is(err, ErrOperatorCredentials) {
				t.Fatalf("expected credentials error, got %v", err)
			}
		})
	}
}

func TestParseJWTRejectsForgedToken(t *testing.T) {
	svc := NewAuthService(newAuthTestConfig(t))

	otherCfg := newAuthTestConfig(t)
	otherCfg.JWT.SecretKey = "another-secret-key-0123456789abcdef"
	other := NewAuthService(otherCfg)

	token, _, err := other.GenerateJWT("ops")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, err := svc.ParseJWT(token); err == nil {
		t.Fatalf("token signed with another key must be rejected")
	}
	if _, err := svc.ParseJWT("not-a-token"); err == nil {
		t.Fatalf("garbage token must be rejected")
	}
}
