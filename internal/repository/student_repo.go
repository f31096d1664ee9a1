package repository

import (
	"context"

	"github.com/google/uuid"

	"strikealight/playhub/internal/model"
)

type StudentRepository interface {
	Create(ctx context.Context, student *model.Student) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Student, error)
	ListByInstitution(ctx context.Context, institutionID uuid.UUID) ([]model.Student, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}
