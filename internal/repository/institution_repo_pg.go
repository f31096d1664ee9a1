package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"strikealight/playhub/internal/model"
)

type pgInstitutionRepository struct {
	db *gorm.DB
}

func NewPGInstitutionRepository(db *gorm.DB) InstitutionRepository {
	return &pgInstitutionRepository{db: db}
}

func (r *pgInstitutionRepository) Create(ctx context.Context, institution *model.Institution) error {
	return r.db.WithContext(ctx).Create(institution).Error
}

func (r *pgInstitutionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Institution, error) {
	var institution model.Institution
	if err := r.db.WithContext(ctx).First(&institution, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &institution, nil
}

func (r *pgInstitutionRepository) GetByEmail(ctx context.Context, email string) (*model.Institution, error) {
	var institution model.Institution
	if err := r.db.WithContext(ctx).Where("lower(email) = lower(?)", email).First(&institution).Error; err != nil {
		return nil, err
	}
	return &institution, nil
}

func (r *pgInstitutionRepository) Search(ctx context.Context, query string) ([]model.Institution, error) {
	var institutions []model.Institution
	q := r.db.WithContext(ctx)
	if query != "" {
		q = q.Where("institution_name LIKE ?", "%"+query+"%")
	}
	if err := q.Order("created_at DESC").Find(&institutions).Error; err != nil {
		return nil, err
	}
	return institutions, nil
}

func (r *pgInstitutionRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Institution{}).Count(&n).Error
	return n, err
}
