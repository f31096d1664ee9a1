package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	manager := NewManager("secret", "playhub-test", time.Minute, time.Hour)
	subject := uuid.New()

	token, err := manager.GenerateAccessToken(subject, RoleInstitution)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := manager.Validate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Subject != subject.String() {
		t.Fatalf("subject %s, want %s", claims.Subject, subject)
	}
	if claims.TokenType != TokenTypeAccess {
		t.Fatalf("token type %s, want access", claims.TokenType)
	}
	if claims.Role != RoleInstitution {
		t.Fatalf("role %s, want institution", claims.Role)
	}
}

func TestValidateRejectsForeignIssuer(t *testing.T) {
	manager := NewManager("secret", "playhub-test", time.Minute, time.Hour)
	other := NewManager("secret", "someone-else", time.Minute, time.Hour)

	token, err := other.GenerateAccessToken(uuid.New(), RoleIndividual)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := manager.Validate(token); err == nil {
		t.Fatal("expected issuer mismatch to fail validation")
	}
}

func TestValidateRejectsWrongKey(t *testing.T) {
	manager := NewManager("secret", "playhub-test", time.Minute, time.Hour)
	forged := NewManager("other-secret", "playhub-test", time.Minute, time.Hour)

	token, err := forged.GenerateAccessToken(uuid.New(), RoleIndividual)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := manager.Validate(token); err == nil {
		t.Fatal("expected signature mismatch to fail validation")
	}
}
