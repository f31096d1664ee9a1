package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"strikealight/playhub/internal/model"
	"strikealight/playhub/internal/repository"
	"strikealight/playhub/pkg/crypto"
	jwtpkg "strikealight/playhub/pkg/jwt"
)

// TokenSet is returned after authentication.
type TokenSet struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	Role         jwtpkg.Role `json:"role"`
	SubjectID    uuid.UUID   `json:"subjectId"`
	ExpiresIn    int64       `json:"expiresIn"`
}

type RegisterIndividualInput struct {
	Name     string
	Email    string
	Password string
}

type RegisterInstitutionInput struct {
	AdminName       string
	InstitutionName string
	Email           string
	Password        string
}

type AuthService interface {
	RegisterIndividual(ctx context.Context, in RegisterIndividualInput) (*model.IndividualUser, error)
	RegisterInstitution(ctx context.Context, in RegisterInstitutionInput) (*model.Institution, error)
	Login(ctx context.Context, email, password string) (*TokenSet, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenSet, error)
	Logout(ctx context.Context, refreshToken string) error
}

type authService struct {
	userRepo        repository.UserRepository
	institutionRepo repository.InstitutionRepository
	stateStore      repository.StateStore
	jwtManager      *jwtpkg.Manager
}

func NewAuthService(
	userRepo repository.UserRepository,
	institutionRepo repository.InstitutionRepository,
	stateStore repository.StateStore,
	jwtManager *jwtpkg.Manager,
) AuthService {
	return &authService{
		userRepo:        userRepo,
		institutionRepo: institutionRepo,
		stateStore:      stateStore,
		jwtManager:      jwtManager,
	}
}

func (s *authService) RegisterIndividual(ctx context.Context, in RegisterIndividualInput) (*model.IndividualUser, error) {
	hash, err := crypto.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &model.IndividualUser{
		Name:         in.Name,
		Email:        strings.ToLower(in.Email),
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *authService) RegisterInstitution(ctx context.Context, in RegisterInstitutionInput) (*model.Institution, error) {
	hash, err := crypto.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	institution := &model.Institution{
		AdminName:       in.AdminName,
		InstitutionName: in.InstitutionName,
		Email:           strings.ToLower(in.Email),
		PasswordHash:    hash,
	}
	if err := s.institutionRepo.Create(ctx, institution); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create institution: %w", err)
	}
	return institution, nil
}

// Login checks the individual table first, then institutions, and answers with
// the same error either way so the response shape does not leak which table
// matched.
func (s *authService) Login(ctx context.Context, email, password string) (*TokenSet, error) {
	if user, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		if !crypto.CheckPassword(password, user.PasswordHash) {
			return nil, ErrInvalidCredentials
		}
		return s.issueTokens(ctx, user.ID, jwtpkg.RoleIndividual)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	institution, err := s.institutionRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup institution: %w", err)
	}
	if !crypto.CheckPassword(password, institution.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.issueTokens(ctx, institution.ID, jwtpkg.RoleInstitution)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenSet, error) {
	claims, err := s.jwtManager.Validate(refreshToken)
	if err != nil || claims.TokenType != jwtpkg.TokenTypeRefresh {
		return nil, ErrRefreshTokenInvalid
	}

	live, err := s.stateStore.Exists(ctx, refreshKey(claims.ID))
	if err != nil {
		return nil, fmt.Errorf("check refresh token: %w", err)
	}
	if !live {
		return nil, ErrRefreshTokenInvalid
	}

	subjectID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrRefreshTokenInvalid
	}

	// Rotation: the presented token is dead from here on.
	if err := s.stateStore.Delete(ctx, refreshKey(claims.ID)); err != nil {
		return nil, fmt.Errorf("revoke refresh token: %w", err)
	}
	return s.issueTokens(ctx, subjectID, claims.Role)
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.jwtManager.Validate(refreshToken)
	if err != nil || claims.TokenType != jwtpkg.TokenTypeRefresh {
		// Already unusable; nothing to revoke.
		return nil
	}
	return s.stateStore.Delete(ctx, refreshKey(claims.ID))
}

func (s *authService) issueTokens(ctx context.Context, subjectID uuid.UUID, role jwtpkg.Role) (*TokenSet, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(subjectID, role)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	refreshToken, claims, err := s.jwtManager.GenerateRefreshToken(subjectID, role)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	if err := s.stateStore.Set(ctx, refreshKey(claims.ID), []byte(subjectID.String()), s.jwtManager.RefreshTokenTTL()); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return &TokenSet{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Role:         role,
		SubjectID:    subjectID,
		ExpiresIn:    int64(s.jwtManager.AccessTokenTTL().Seconds()),
	}, nil
}

func refreshKey(jti string) string { return "refresh:" + jti }

// ensure authService implements AuthService
var _ AuthService = (*authService)(nil)
