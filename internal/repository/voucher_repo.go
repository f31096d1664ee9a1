package repository

import (
	"context"

	"github.com/google/uuid"

	"strikealight/playhub/internal/model"
)

// VoucherRepository is the store contract the voucher lifecycle depends on.
// The store is the sole arbiter of truth: ConsumePlay is the single atomic
// write that decides which caller wins a play.
type VoucherRepository interface {
	Create(ctx context.Context, voucher *model.Voucher) error
	GetByToken(ctx context.Context, token string) (*model.Voucher, error)

	// ConsumePlay atomically increments used_plays by one, guarded by
	// `status = 'active' AND used_plays < assigned_plays`. Returns false when
	// the guard did not match (exhausted, revoked, or lost a race).
	ConsumePlay(ctx context.Context, token string) (bool, error)

	// SetStatus transitions status from one value to another. Returns false
	// when the voucher was not in the expected state.
	SetStatus(ctx context.Context, token string, from, to model.VoucherStatus) (bool, error)

	CreateRedemption(ctx context.Context, redemption *model.Redemption) error
	// GetRedemption returns the recorded redemption for a client request id,
	// or nil when none exists.
	GetRedemption(ctx context.Context, voucherID uuid.UUID, requestID string) (*model.Redemption, error)

	List(ctx context.Context) ([]model.Voucher, error)
	Count(ctx context.Context) (int64, error)

	// WithTx runs fn inside a scoped transaction: every repository call made
	// through the argument commits or rolls back as one unit.
	WithTx(ctx context.Context, fn func(VoucherRepository) error) error
}
