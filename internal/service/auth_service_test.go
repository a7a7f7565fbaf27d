package service

import (
	"context"
	"testing"

	"github.com/crmkit/support-desk/internal/domain"
)

func TestAuthLogin(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.mustCustomer(ctx, "Ali", "ali@example.com")

	_, _, _, err := env.authSvc.Login(ctx, "nobody@example.com", "secret1")
	assertCode(t, err, "UNAUTHORIZED")

	_, _, _, err = env.authSvc.Login(ctx, "ali@example.com", "wrong-password")
	assertCode(t, err, "UNAUTHORIZED")

	user, token, expiresAt, err := env.authSvc.Login(ctx, "ALI@example.com", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" || expiresAt.IsZero() {
		t.Fatalf("expected signed token with expiry")
	}
	if user.Role != domain.RoleCustomer {
		t.Fatalf("expected CUSTOMER principal, got %s", user.Role)
	}

	claims, err := env.authSvc.TokenManager().ParseToken(token)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != user.Role {
		t.Fatalf("token claims do not match principal")
	}
}

func TestAuthChangePassword(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	customer := env.mustCustomer(ctx, "Ali", "ali@example.com")
	userID := customer.User.ID

	err := env.authSvc.ChangePassword(ctx, userID, "secret1", "short")
	assertCode(t, err, "VALIDATION_FAILED")

	err = env.authSvc.ChangePassword(ctx, userID, "wrong-current", "newsecret")
	assertCode(t, err, "UNAUTHORIZED")

	err = env.authSvc.ChangePassword(ctx, "missing", "secret1", "newsecret")
	assertCode(t, err, "NOT_FOUND")

	if err := env.authSvc.ChangePassword(ctx, userID, "secret1", "newsecret"); err != nil {
		t.Fatalf("change password: %v", err)
	}

	if _, _, _, err := env.authSvc.Login(ctx, "ali@example.com", "secret1"); err == nil {
		t.Fatalf("old password still accepted")
	}
	if _, _, _, err := env.authSvc.Login(ctx, "ali@example.com", "newsecret"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
}
