package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"taskforge-backend/shared/database/models"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	userID := uuid.New()
	orgID := uuid.New()

	token, err := svc.Generate(userID, models.RoleOrganizationAdmin, &orgID)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if claims.UserID != userID.String() {
		t.Errorf("UserID = %q, want %q", claims.UserID, userID.String())
	}
	if claims.Role != string(models.RoleOrganizationAdmin) {
		t.Errorf("Role = %q, want %q", claims.Role, models.RoleOrganizationAdmin)
	}
	if claims.OrganizationID != orgID.String() {
		t.Errorf("OrganizationID = %q, want %q", claims.OrganizationID, orgID.String())
	}
}

func TestTokenWithoutOrganization(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	token, err := svc.Generate(uuid.New(), models.RolePlatformAdmin, nil)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.OrganizationID != "" {
		t.Errorf("OrganizationID = %q, want empty", claims.OrganizationID)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	svc := NewTokenService("test-secret", -time.Minute)

	token, err := svc.Generate(uuid.New(), models.RoleOrganizationMember, nil)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if _, err := svc.Validate(token); err == nil {
		t.Error("expected expired token to fail validation")
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	issuer := NewTokenService("test-secret", time.Hour)
	verifier := NewTokenService("other-secret", time.Hour)

	token, err := issuer.Generate(uuid.New(), models.RoleOrganizationMember, nil)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if _, err := verifier.Validate(token); err == nil {
		t.Error("expected token signed with a different secret to fail validation")
	}
}

func TestGarbageTokenRejected(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	if _, err := svc.Validate("not-a-token"); err == nil {
		t.Error("expected garbage token to fail validation")
	}
}
