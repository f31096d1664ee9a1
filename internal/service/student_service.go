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

type CreateStudentInput struct {
	Name          string
	Email         string
	Standard      string
	Division      string
	RollNumber    string
	InstitutionID uuid.UUID
}

type StudentService interface {
	Create(ctx context.Context, in CreateStudentInput) (*model.Student, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Student, error)
	ListByInstitution(ctx context.Context, institutionID uuid.UUID) ([]model.Student, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type studentService struct {
	studentRepo repository.StudentRepository
}

func NewStudentService(studentRepo repository.StudentRepository) StudentService {
	return &studentService{studentRepo: studentRepo}
}

func (s *studentService) Create(ctx context.Context, in CreateStudentInput) (*model.Student, error) {
	student := &model.Student{
		Name:          in.Name,
		Email:         in.Email,
		Standard:      in.Standard,
		Division:      in.Division,
		RollNumber:    in.RollNumber,
		InstitutionID: in.InstitutionID,
	}
	if err := s.studentRepo.Create(ctx, student); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrRollNumberTaken
		}
		return nil, fmt.Errorf("create student: %w", err)
	}
	return student, nil
}

func (s *studentService) Get(ctx context.Context, id uuid.UUID) (*model.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("get student: %w", err)
	}
	return student, nil
}

func (s *studentService) ListByInstitution(ctx context.Context, institutionID uuid.UUID) ([]model.Student, error) {
	return s.studentRepo.ListByInstitution(ctx, institutionID)
}

func (s *studentService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.studentRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	if !deleted {
		return ErrStudentNotFound
	}
	return nil
}
