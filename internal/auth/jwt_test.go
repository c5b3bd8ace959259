package auth

import (
	"testing"
	"time"

	"github.com/Suhailakram0318/AI-call/internal/config"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(config.AuthConfig{
		JWTSecret: "test-secret",
		JWTIssuer: "ai-call",
		TokenTTL:  time.Hour,
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m
}

func TestIssueAndVerify(t *testing.T) {
	m := newTestManager(t)
	now := time.Unix(1700000000, 0)

	tok, err := m.Issue(now, "ops@bank")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	subject, err := m.Verify(tok, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if subject != "ops@bank" {
		t.Fatalf("subject %q, want ops@bank", subject)
	}
}

func TestVerifyExpired(t *testing.T) {
	m := newTestManager(t)
	now := time.Unix(1700000000, 0)

	tok, err := m.Issue(now, "ops@bank")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := m.Verify(tok, now.Add(2*time.Hour)); err == nil {
		t.Fatal("expected an error for an expired token")
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	m := newTestManager(t)
	other, err := NewManager(config.AuthConfig{JWTSecret: "other-secret", TokenTTL: time.Hour})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	now := time.Unix(1700000000, 0)

	tok, err := other.Issue(now, "ops@bank")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := m.Verify(tok, now.Add(time.Minute)); err == nil {
		t.Fatal("expected an error for a token signed with another secret")
	}
}

func TestVerifyIssuerMismatch(t *testing.T) {
	m := newTestManager(t)
	other, err := NewManager(config.AuthConfig{
		JWTSecret: "test-secret",
		JWTIssuer: "someone-else",
		TokenTTL:  time.Hour,
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	now := time.Unix(1700000000, 0)

	tok, err := other.Issue(now, "ops@bank")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := m.Verify(tok, now.Add(time.Minute)); err == nil {
		t.Fatal("expected an issuer mismatch error")
	}
}

func TestNewManagerRequiresSecret(t *testing.T) {
	if _, err := NewManager(config.AuthConfig{}); err == nil {
		t.Fatal("expected an error without a secret")
	}
}
