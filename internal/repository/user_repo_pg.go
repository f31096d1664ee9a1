package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"strikealight/playhub/internal/model"
)

type pgUserRepository struct {
	db *gorm.DB
}

func NewPGUserRepository(db *gorm.DB) UserRepository {
	return &pgUserRepository{db: db}
}

func (r *pgUserRepository) Create(ctx context.Context, user *model.IndividualUser) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *pgUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.IndividualUser, error) {
	var user model.IndividualUser
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *pgUserRepository) GetByEmail(ctx context.Context, email string) (*model.IndividualUser, error) {
	var user model.IndividualUser
	if err := r.db.WithContext(ctx).Where("lower(email) = lower(?)", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *pgUserRepository) Search(ctx context.Context, query string) ([]model.IndividualUser, error) {
	var users []model.IndividualUser
	q := r.db.WithContext(ctx)
	if query != "" {
		pattern := "%" + query + "%"
		q = q.Where("name LIKE ? OR email LIKE ?", pattern, pattern)
	}
	if err := q.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *pgUserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.IndividualUser{}).Count(&n).Error
	return n, err
}
