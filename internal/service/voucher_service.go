package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"strikealight/playhub/internal/model"
	"strikealight/playhub/internal/repository"
	"strikealight/playhub/pkg/crypto"
)

// IssueVoucherInput carries validated issuance parameters. OwnerID is an
// opaque reference; the voucher core does not enforce referential integrity
// against the principal tables.
type IssueVoucherInput struct {
	OwnerID          uuid.UUID
	OwnerType        model.OwnerType
	InstitutionID    *uuid.UUID
	AssignedPlays    int
	AmountPaid       float64
	ExpiresInMinutes int
}

// RedeemResult is the outcome of a successful (or replayed) redemption.
type RedeemResult struct {
	RemainingPlays int
	Replayed       bool
}

type VoucherService interface {
	Issue(ctx context.Context, in IssueVoucherInput) (*model.Voucher, error)
	Redeem(ctx context.Context, token, requestID string) (*RedeemResult, error)
	Get(ctx context.Context, token string) (*model.Voucher, error)
	Revoke(ctx context.Context, token string) (*model.Voucher, error)
	List(ctx context.Context) ([]model.Voucher, error)
}

type voucherService struct {
	vouchers      repository.VoucherRepository
	redeemTimeout time.Duration
	tokenRetries  int
	now           func() time.Time
}

func NewVoucherService(vouchers repository.VoucherRepository, redeemTimeout time.Duration, tokenRetries int) VoucherService {
	if redeemTimeout <= 0 {
		redeemTimeout = 5 * time.Second
	}
	if tokenRetries <= 0 {
		tokenRetries = 5
	}
	return &voucherService{
		vouchers:      vouchers,
		redeemTimeout: redeemTimeout,
		tokenRetries:  tokenRetries,
		now:           time.Now,
	}
}

func (s *voucherService) Issue(ctx context.Context, in IssueVoucherInput) (*model.Voucher, error) {
	if in.OwnerID == uuid.Nil {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidVoucher)
	}
	switch in.OwnerType {
	case model.OwnerTypeIndividual:
	case model.OwnerTypeStudent:
		if in.InstitutionID == nil || *in.InstitutionID == uuid.Nil {
			return nil, fmt.Errorf("%w: institutionId is required for student vouchers", ErrInvalidVoucher)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported userType %q", ErrInvalidVoucher, in.OwnerType)
	}
	if in.AssignedPlays <= 0 {
		return nil, fmt.Errorf("%w: assignedPlays must be a positive integer", ErrInvalidVoucher)
	}
	if in.AmountPaid < 0 {
		return nil, fmt.Errorf("%w: amountPaid cannot be negative", ErrInvalidVoucher)
	}
	if in.ExpiresInMinutes < 0 {
		return nil, fmt.Errorf("%w: expiresInMinutes cannot be negative", ErrInvalidVoucher)
	}

	var expiresAt *time.Time
	if in.ExpiresInMinutes > 0 {
		t := s.now().Add(time.Duration(in.ExpiresInMinutes) * time.Minute)
		expiresAt = &t
	}

	// Token collisions are vanishingly rare at 128 bits, but a collision must
	// never overwrite an existing voucher; regenerate and retry.
	for attempt := 0; attempt < s.tokenRetries; attempt++ {
		token, err := crypto.GenerateVoucherToken()
		if err != nil {
			return nil, fmt.Errorf("generate voucher token: %w", err)
		}

		voucher := &model.Voucher{
			Token:         token,
			OwnerID:       in.OwnerID,
			OwnerType:     in.OwnerType,
			InstitutionID: in.InstitutionID,
			AssignedPlays: in.AssignedPlays,
			AmountPaid:    in.AmountPaid,
			Status:        model.VoucherStatusActive,
			ExpiresAt:     expiresAt,
		}
		err = s.vouchers.Create(ctx, voucher)
		if err == nil {
			return voucher, nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil, ErrTokenGeneration
}

// Redeem consumes exactly one play. The whole read-classify-consume sequence
// runs in one scoped transaction with a bounded deadline; the conditional
// update inside ConsumePlay is what guarantees at most one winner per play
// unit under concurrent calls.
func (s *voucherService) Redeem(ctx context.Context, token, requestID string) (*RedeemResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.redeemTimeout)
	defer cancel()

	var result RedeemResult
	markExpired := false

	err := s.vouchers.WithTx(ctx, func(tx repository.VoucherRepository) error {
		voucher, err := tx.GetByToken(ctx, token)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVoucherNotFound
			}
			return err
		}

		// A resent request that already succeeded replays the recorded
		// outcome instead of consuming a second play. The replay check runs
		// before any state classification: the voucher may have expired
		// since the original call, but the client never saw its success.
		if requestID != "" {
			recorded, err := tx.GetRedemption(ctx, voucher.ID, requestID)
			if err != nil {
				return err
			}
			if recorded != nil {
				result = RedeemResult{RemainingPlays: recorded.RemainingPlays, Replayed: true}
				return nil
			}
		}

		if voucher.Status == model.VoucherStatusRevoked {
			return ErrVoucherRevoked
		}
		if voucher.IsExpiredAt(s.now()) {
			markExpired = voucher.Status == model.VoucherStatusActive
			return ErrVoucherExpired
		}
		if voucher.UsedPlays >= voucher.AssignedPlays {
			return ErrVoucherExhausted
		}

		consumed, err := tx.ConsumePlay(ctx, token)
		if err != nil {
			return err
		}
		if !consumed {
			// Lost a race for the last play, or the status flipped between
			// the read and the update.
			return ErrVoucherExhausted
		}

		voucher, err = tx.GetByToken(ctx, token)
		if err != nil {
			return err
		}
		remaining := voucher.RemainingPlays()
		if remaining == 0 {
			if _, err := tx.SetStatus(ctx, token, model.VoucherStatusActive, model.VoucherStatusExhausted); err != nil {
				return err
			}
		}

		redemption := &model.Redemption{VoucherID: voucher.ID, RemainingPlays: remaining}
		if requestID != "" {
			redemption.RequestID = &requestID
		}
		if err := tx.CreateRedemption(ctx, redemption); err != nil {
			return err
		}

		result = RedeemResult{RemainingPlays: remaining}
		return nil
	})

	if markExpired {
		// Best effort, outside the rolled-back transaction.
		flipCtx, flipCancel := context.WithTimeout(context.Background(), time.Second)
		defer flipCancel()
		_, _ = s.vouchers.SetStatus(flipCtx, token, model.VoucherStatusActive, model.VoucherStatusExpired)
	}

	if err != nil {
		return nil, classifyRedeemError(err)
	}
	return &result, nil
}

func (s *voucherService) Get(ctx context.Context, token string) (*model.Voucher, error) {
	voucher, err := s.vouchers.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVoucherNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return voucher, nil
}

// Revoke moves an active voucher into the absorbing revoked state. Vouchers
// that already reached a terminal state are left untouched.
func (s *voucherService) Revoke(ctx context.Context, token string) (*model.Voucher, error) {
	revoked, err := s.vouchers.SetStatus(ctx, token, model.VoucherStatusActive, model.VoucherStatusRevoked)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	voucher, err := s.vouchers.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVoucherNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !revoked {
		return nil, fmt.Errorf("%w: status is %s", ErrVoucherNotActive, voucher.Status)
	}
	return voucher, nil
}

func (s *voucherService) List(ctx context.Context) ([]model.Voucher, error) {
	return s.vouchers.List(ctx)
}

// classifyRedeemError keeps the terminal classifications as-is and folds
// everything else (deadline, connection loss, rollback failures) into the one
// class the caller may safely retry.
func classifyRedeemError(err error) error {
	switch {
	case errors.Is(err, ErrVoucherNotFound),
		errors.Is(err, ErrVoucherRevoked),
		errors.Is(err, ErrVoucherExpired),
		errors.Is(err, ErrVoucherExhausted):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
}

// ensure voucherService implements VoucherService
var _ VoucherService = (*voucherService)(nil)
