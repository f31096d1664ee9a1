package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"strikealight/playhub/internal/repository"
	jwtpkg "strikealight/playhub/pkg/jwt"
)

func newAuthService(t *testing.T) AuthService {
	t.Helper()
	db := setupVoucherDB(t)
	jwtManager := jwtpkg.NewManager("test-signing-key", "playhub-test", 15*time.Minute, 24*time.Hour)
	return NewAuthService(
		repository.NewPGUserRepository(db),
		repository.NewPGInstitutionRepository(db),
		repository.NewMemoryStateStore(),
		jwtManager,
	)
}

func TestRegisterAndLoginIndividual(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	user, err := svc.RegisterIndividual(ctx, RegisterIndividualInput{
		Name:     "Asha Rao",
		Email:    "asha@example.com",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	tokens, err := svc.Login(ctx, "asha@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if tokens.Role != jwtpkg.RoleIndividual {
		t.Fatalf("expected individual role, got %s", tokens.Role)
	}
	if tokens.SubjectID != user.ID {
		t.Fatalf("token subject %s, want %s", tokens.SubjectID, user.ID)
	}

	if _, err := svc.Login(ctx, "asha@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	in := RegisterIndividualInput{Name: "A", Email: "dup@example.com", Password: "password-1"}
	if _, err := svc.RegisterIndividual(ctx, in); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.RegisterIndividual(ctx, in); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestInstitutionLoginRole(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	institution, err := svc.RegisterInstitution(ctx, RegisterInstitutionInput{
		AdminName:       "Principal K",
		InstitutionName: "Northside Academy",
		Email:           "admin@northside.example",
		Password:        "school-pass-1",
	})
	if err != nil {
		t.Fatalf("register institution: %v", err)
	}

	tokens, err := svc.Login(ctx, "admin@northside.example", "school-pass-1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if tokens.Role != jwtpkg.RoleInstitution {
		t.Fatalf("expected institution role, got %s", tokens.Role)
	}
	if tokens.SubjectID != institution.ID {
		t.Fatalf("token subject %s, want %s", tokens.SubjectID, institution.ID)
	}
}

func TestRefreshRotation(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	if _, err := svc.RegisterIndividual(ctx, RegisterIndividualInput{
		Name: "R", Email: "rotate@example.com", Password: "password-1",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	tokens, err := svc.Login(ctx, "rotate@example.com", "password-1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	rotated, err := svc.Refresh(ctx, tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if rotated.RefreshToken == tokens.RefreshToken {
		t.Fatal("refresh must rotate the token")
	}

	// The presented token is revoked by rotation.
	if _, err := svc.Refresh(ctx, tokens.RefreshToken); !errors.Is(err, ErrRefreshTokenInvalid) {
		t.Fatalf("expected ErrRefreshTokenInvalid on reuse, got %v", err)
	}

	// Logout kills the live one too.
	if err := svc.Logout(ctx, rotated.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.Refresh(ctx, rotated.RefreshToken); !errors.Is(err, ErrRefreshTokenInvalid) {
		t.Fatalf("expected ErrRefreshTokenInvalid after logout, got %v", err)
	}
}
