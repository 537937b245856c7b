package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func withSecret(t *testing.T, value string) {
	t.Helper()
	t.Setenv("MODACCESS_AUTH_SECRET", value)
	ResetSecretForTests()
	t.Cleanup(ResetSecretForTests)
}

func TestTokenRoundTrip(t *testing.T) {
	withSecret(t, "unit-test-secret")

	token, err := GenerateToken("member-1", []string{"Admin", "admin", " viewer "}, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := ParseAndValidate(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Subject != "member-1" {
		t.Fatalf("unexpected subject %q", claims.Subject)
	}
	if len(claims.Roles) != 2 || claims.Roles[0] != "admin" || claims.Roles[1] != "viewer" {
		t.Fatalf("roles not deduplicated: %v", claims.Roles)
	}
}

func TestGenerateTokenValidation(t *testing.T) {
	withSecret(t, "unit-test-secret")

	if _, err := GenerateToken("", []string{"admin"}, time.Minute); err == nil {
		t.Fatal("expected error for empty actor")
	}
	if _, err := GenerateToken("member-1", nil, 0); err == nil {
		t.Fatal("expected error for zero ttl")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	withSecret(t, "unit-test-secret")

	for _, token := range []string{"", "  ", "not.a.token"} {
		if _, err := ParseAndValidate(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("token %q: expected ErrInvalidToken, got %v", token, err)
		}
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	withSecret(t, "first-secret")
	token, err := GenerateToken("member-1", []string{"admin"}, time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	withSecret(t, "second-secret")
	if _, err := ParseAndValidate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseRejectsExpired(t *testing.T) {
	withSecret(t, "unit-test-secret")
	token, err := GenerateToken("member-1", []string{"admin"}, time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, err := ParseAndValidate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestSupportsTokens(t *testing.T) {
	withSecret(t, "")
	if SupportsTokens() {
		t.Fatal("expected token support to be off without a secret")
	}
	withSecret(t, "configured")
	if !SupportsTokens() {
		t.Fatal("expected token support with a secret")
	}
}

func TestActorContext(t *testing.T) {
	ctx := ContextWithActor(context.Background(), "member-1", []string{"Viewer", "viewer"})

	actor, ok := ActorIDFromContext(ctx)
	if !ok || actor != "member-1" {
		t.Fatalf("unexpected actor %q ok=%v", actor, ok)
	}
	roles := RolesFromContext(ctx)
	if len(roles) != 1 || roles[0] != "viewer" {
		t.Fatalf("unexpected roles %v", roles)
	}

	if _, ok := ActorIDFromContext(context.Background()); ok {
		t.Fatal("empty context should carry no actor")
	}
	if roles := RolesFromContext(context.Background()); roles != nil {
		t.Fatalf("empty context should carry no roles, got %v", roles)
	}
}
