package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"strikealight/playhub/internal/model"
)

type pgVoucherRepository struct {
	db *gorm.DB
}

func NewPGVoucherRepository(db *gorm.DB) VoucherRepository {
	return &pgVoucherRepository{db: db}
}

func (r *pgVoucherRepository) Create(ctx context.Context, voucher *model.Voucher) error {
	return r.db.WithContext(ctx).Create(voucher).Error
}

func (r *pgVoucherRepository) GetByToken(ctx context.Context, token string) (*model.Voucher, error) {
	var voucher model.Voucher
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&voucher).Error; err != nil {
		return nil, err
	}
	return &voucher, nil
}

func (r *pgVoucherRepository) ConsumePlay(ctx context.Context, token string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Voucher{}).
		Where("token = ? AND status = ? AND used_plays < assigned_plays", token, model.VoucherStatusActive).
		UpdateColumn("used_plays", gorm.Expr("used_plays + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *pgVoucherRepository) SetStatus(ctx context.Context, token string, from, to model.VoucherStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Voucher{}).
		Where("token = ? AND status = ?", token, from).
		UpdateColumn("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *pgVoucherRepository) CreateRedemption(ctx context.Context, redemption *model.Redemption) error {
	return r.db.WithContext(ctx).Create(redemption).Error
}

func (r *pgVoucherRepository) GetRedemption(ctx context.Context, voucherID uuid.UUID, requestID string) (*model.Redemption, error) {
	var redemption model.Redemption
	err := r.db.WithContext(ctx).
		Where("voucher_id = ? AND request_id = ?", voucherID, requestID).
		First(&redemption).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &redemption, nil
}

func (r *pgVoucherRepository) List(ctx context.Context) ([]model.Voucher, error) {
	var vouchers []model.Voucher
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&vouchers).Error; err != nil {
		return nil, err
	}
	return vouchers, nil
}

func (r *pgVoucherRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Voucher{}).Count(&n).Error
	return n, err
}

func (r *pgVoucherRepository) WithTx(ctx context.Context, fn func(VoucherRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&pgVoucherRepository{db: tx})
	})
}
