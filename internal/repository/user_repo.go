package repository

import (
	"context"

	"github.com/google/uuid"

	"strikealight/playhub/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.IndividualUser) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.IndividualUser, error)
	GetByEmail(ctx context.Context, email string) (*model.IndividualUser, error)
	Search(ctx context.Context, query string) ([]model.IndividualUser, error)
	Count(ctx context.Context) (int64, error)
}

type InstitutionRepository interface {
	Create(ctx context.Context, institution *model.Institution) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Institution, error)
	GetByEmail(ctx context.Context, email string) (*model.Institution, error)
	Search(ctx context.Context, query string) ([]model.Institution, error)
	Count(ctx context.Context) (int64, error)
}
