package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"strikealight/playhub/internal/model"
)

type pgStudentRepository struct {
	db *gorm.DB
}

func NewPGStudentRepository(db *gorm.DB) StudentRepository {
	return &pgStudentRepository{db: db}
}

func (r *pgStudentRepository) Create(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *pgStudentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Student, error) {
	var student model.Student
	if err := r.db.WithContext(ctx).First(&student, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *pgStudentRepository) ListByInstitution(ctx context.Context, institutionID uuid.UUID) ([]model.Student, error) {
	var students []model.Student
	err := r.db.WithContext(ctx).
		Where("institution_id = ?", institutionID).
		Order("created_at DESC").
		Find(&students).Error
	if err != nil {
		return nil, err
	}
	return students, nil
}

func (r *pgStudentRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&model.Student{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
