package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"strikealight/playhub/internal/model"
	"strikealight/playhub/internal/repository"
)

// PlatformStats is the operator dashboard summary.
type PlatformStats struct {
	TotalUsers        int64 `json:"totalUsers"`
	TotalInstitutions int64 `json:"totalInstitutions"`
	TotalVouchers     int64 `json:"totalVouchers"`
}

// DirectoryService serves identity lookups and the operator's platform-wide
// stats and search.
type DirectoryService interface {
	GetUser(ctx context.Context, id uuid.UUID) (*model.IndividualUser, error)
	GetInstitution(ctx context.Context, id uuid.UUID) (*model.Institution, error)
	Stats(ctx context.Context) (*PlatformStats, error)
	SearchUsers(ctx context.Context, query string) ([]model.IndividualUser, error)
	SearchInstitutions(ctx context.Context, query string) ([]model.Institution, error)
}

type directoryService struct {
	userRepo        repository.UserRepository
	institutionRepo repository.InstitutionRepository
	voucherRepo     repository.VoucherRepository
}

func NewDirectoryService(
	userRepo repository.UserRepository,
	institutionRepo repository.InstitutionRepository,
	voucherRepo repository.VoucherRepository,
) DirectoryService {
	return &directoryService{
		userRepo:        userRepo,
		institutionRepo: institutionRepo,
		voucherRepo:     voucherRepo,
	}
}

func (s *directoryService) GetUser(ctx context.Context, id uuid.UUID) (*model.IndividualUser, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *directoryService) GetInstitution(ctx context.Context, id uuid.UUID) (*model.Institution, error) {
	institution, err := s.institutionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInstitutionNotFound
		}
		return nil, fmt.Errorf("get institution: %w", err)
	}
	return institution, nil
}

func (s *directoryService) Stats(ctx context.Context) (*PlatformStats, error) {
	users, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	institutions, err := s.institutionRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count institutions: %w", err)
	}
	vouchers, err := s.voucherRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count vouchers: %w", err)
	}
	return &PlatformStats{
		TotalUsers:        users,
		TotalInstitutions: institutions,
		TotalVouchers:     vouchers,
	}, nil
}

func (s *directoryService) SearchUsers(ctx context.Context, query string) ([]model.IndividualUser, error) {
	return s.userRepo.Search(ctx, query)
}

func (s *directoryService) SearchInstitutions(ctx context.Context, query string) ([]model.Institution, error) {
	return s.institutionRepo.Search(ctx, query)
}
