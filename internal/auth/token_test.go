package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vaulty-hq/vaulty/internal/models"
)

func testUser() *models.User {
	return &models.User{
		ID:       uuid.New(),
		Username: "alice",
		Email:    "alice@x.com",
		Role:     models.RoleUser,
		IsActive: true,
	}
}

func TestIssueAndValidateRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)
	user := testUser()

	raw, err := svc.Issue(user)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := svc.Validate(raw)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if claims.UserID != user.ID.String() {
		t.Errorf("expected user id %s, got %s", user.ID, claims.UserID)
	}
	if claims.Username != user.Username {
		t.Errorf("expected username %s, got %s", user.Username, claims.Username)
	}
	if claims.Role != user.Role {
		t.Errorf("expected role %s, got %s", user.Role, claims.Role)
	}
	if claims.Issuer != "vaulty" {
		t.Errorf("expected issuer vaulty, got %s", claims.Issuer)
	}
}

func TestValidateExpiredToken(t *testing.T) {
	svc := NewTokenService("test-secret", -time.Minute)

	raw, err := svc.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := svc.Validate(raw); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	for _, raw := range []string{"", "garbage", "a.b.c"} {
		if _, err := svc.Validate(raw); !errors.Is(err, ErrTokenInvalid) {
			t.Errorf("Validate(%q): expected ErrTokenInvalid, got %v", raw, err)
		}
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenService("secret-one", time.Hour)
	verifier := NewTokenService("secret-two", time.Hour)

	raw, err := issuer.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := verifier.Validate(raw); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid for wrong secret, got %v", err)
	}
}

func TestPrincipalUserID(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)
	user := testUser()

	raw, err := svc.Issue(user)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	claims, err := svc.Validate(raw)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	p := &Principal{User: claims}
	id, ok := p.UserID()
	if !ok {
		t.Fatal("expected user scope")
	}
	if id != user.ID {
		t.Errorf("expected %s, got %s", user.ID, id)
	}

	var empty *Principal
	if _, ok := empty.UserID(); ok {
		t.Error("nil principal should have no user scope")
	}
}
