package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"strikealight/playhub/internal/model"
	"strikealight/playhub/internal/repository"
)

func setupVoucherDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:vouchers_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	// Single connection keeps the in-memory database alive and serializes
	// writers the way the production sqlite config does.
	sqlDB.SetMaxOpenConns(1)
	if err := model.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newVoucherService(t *testing.T) (VoucherService, *gorm.DB) {
	t.Helper()
	db := setupVoucherDB(t)
	svc := NewVoucherService(repository.NewPGVoucherRepository(db), 5*time.Second, 5)
	return svc, db
}

func issueTestVoucher(t *testing.T, svc VoucherService, plays int) *model.Voucher {
	t.Helper()
	voucher, err := svc.Issue(context.Background(), IssueVoucherInput{
		OwnerID:       uuid.New(),
		OwnerType:     model.OwnerTypeIndividual,
		AssignedPlays: plays,
		AmountPaid:    50,
	})
	if err != nil {
		t.Fatalf("issue voucher: %v", err)
	}
	return voucher
}

func TestIssueValidation(t *testing.T) {
	svc, _ := newVoucherService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   IssueVoucherInput
	}{
		{"missing owner", IssueVoucherInput{OwnerType: model.OwnerTypeIndividual, AssignedPlays: 3}},
		{"zero plays", IssueVoucherInput{OwnerID: uuid.New(), OwnerType: model.OwnerTypeIndividual, AssignedPlays: 0}},
		{"negative plays", IssueVoucherInput{OwnerID: uuid.New(), OwnerType: model.OwnerTypeIndividual, AssignedPlays: -2}},
		{"student without institution", IssueVoucherInput{OwnerID: uuid.New(), OwnerType: model.OwnerTypeStudent, AssignedPlays: 3}},
		{"unknown owner type", IssueVoucherInput{OwnerID: uuid.New(), OwnerType: "teacher", AssignedPlays: 3}},
		{"negative amount", IssueVoucherInput{OwnerID: uuid.New(), OwnerType: model.OwnerTypeIndividual, AssignedPlays: 3, AmountPaid: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Issue(ctx, tc.in); !errors.Is(err, ErrInvalidVoucher) {
				t.Fatalf("expected ErrInvalidVoucher, got %v", err)
			}
		})
	}

	// No rows may be persisted by rejected issuance.
	vouchers, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(vouchers) != 0 {
		t.Fatalf("expected no vouchers persisted, got %d", len(vouchers))
	}
}

// collidingVoucherRepo fails the first n Creates with a duplicate-key error,
// simulating token collisions.
type collidingVoucherRepo struct {
	repository.VoucherRepository
	failures int
}

func (r *collidingVoucherRepo) Create(ctx context.Context, voucher *model.Voucher) error {
	if r.failures > 0 {
		r.failures--
		return gorm.ErrDuplicatedKey
	}
	return r.VoucherRepository.Create(ctx, voucher)
}

func TestIssueRetriesOnTokenCollision(t *testing.T) {
	db := setupVoucherDB(t)
	repo := &collidingVoucherRepo{VoucherRepository: repository.NewPGVoucherRepository(db), failures: 2}
	svc := NewVoucherService(repo, 5*time.Second, 5)

	voucher, err := svc.Issue(context.Background(), IssueVoucherInput{
		OwnerID:       uuid.New(),
		OwnerType:     model.OwnerTypeIndividual,
		AssignedPlays: 1,
	})
	if err != nil {
		t.Fatalf("issue should survive collisions within the retry budget: %v", err)
	}
	if len(voucher.Token) != 32 {
		t.Fatalf("expected fresh 32-char token, got %q", voucher.Token)
	}

	// More collisions than the budget allows fails the issuance.
	repo.failures = 10
	if _, err := svc.Issue(context.Background(), IssueVoucherInput{
		OwnerID:       uuid.New(),
		OwnerType:     model.OwnerTypeIndividual,
		AssignedPlays: 1,
	}); !errors.Is(err, ErrTokenGeneration) {
		t.Fatalf("expected ErrTokenGeneration, got %v", err)
	}
}

func TestIssueCreatesActiveVoucher(t *testing.T) {
	svc, _ := newVoucherService(t)
	institutionID := uuid.New()

	voucher, err := svc.Issue(context.Background(), IssueVoucherInput{
		OwnerID:          uuid.New(),
		OwnerType:        model.OwnerTypeStudent,
		InstitutionID:    &institutionID,
		AssignedPlays:    5,
		AmountPaid:       120,
		ExpiresInMinutes: 60,
	})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if len(voucher.Token) != 32 {
		t.Fatalf("expected 32-char hex token, got %q", voucher.Token)
	}
	if voucher.Status != model.VoucherStatusActive {
		t.Fatalf("expected active status, got %s", voucher.Status)
	}
	if voucher.UsedPlays != 0 {
		t.Fatalf("expected 0 used plays, got %d", voucher.UsedPlays)
	}
	if voucher.ExpiresAt == nil {
		t.Fatal("expected expiresAt to be set")
	}
	if voucher.RemainingPlays() != 5 {
		t.Fatalf("expected 5 remaining plays, got %d", voucher.RemainingPlays())
	}
}

func TestIssueWithoutTTLNeverExpires(t *testing.T) {
	svc, _ := newVoucherService(t)
	voucher := issueTestVoucher(t, svc, 2)
	if voucher.ExpiresAt != nil {
		t.Fatalf("expected no expiry, got %v", voucher.ExpiresAt)
	}
}

func TestRedeemConsumesOnePlayPerCall(t *testing.T) {
	svc, _ := newVoucherService(t)
	voucher := issueTestVoucher(t, svc, 2)
	ctx := context.Background()

	result, err := svc.Redeem(ctx, voucher.Token, "")
	if err != nil {
		t.Fatalf("first redeem: %v", err)
	}
	if result.RemainingPlays != 1 {
		t.Fatalf("expected 1 remaining, got %d", result.RemainingPlays)
	}

	result, err = svc.Redeem(ctx, voucher.Token, "")
	if err != nil {
		t.Fatalf("second redeem: %v", err)
	}
	if result.RemainingPlays != 0 {
		t.Fatalf("expected 0 remaining, got %d", result.RemainingPlays)
	}

	if _, err := svc.Redeem(ctx, voucher.Token, ""); !errors.Is(err, ErrVoucherExhausted) {
		t.Fatalf("expected ErrVoucherExhausted, got %v", err)
	}

	current, err := svc.Get(ctx, voucher.Token)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if current.UsedPlays != 2 {
		t.Fatalf("expected usedPlays=2, got %d", current.UsedPlays)
	}
	if current.Status != model.VoucherStatusExhausted {
		t.Fatalf("expected exhausted status, got %s", current.Status)
	}
}

func TestRedeemRaceExactlyOneWinner(t *testing.T) {
	svc, _ := newVoucherService(t)
	voucher := issueTestVoucher(t, svc, 1)

	var wg sync.WaitGroup
	results := make([]error, 2)
	remaining := make([]int, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := svc.Redeem(context.Background(), voucher.Token, "")
			results[i] = err
			if err == nil {
				remaining[i] = res.RemainingPlays
			}
		}(i)
	}
	wg.Wait()

	var wins, exhausted int
	for i, err := range results {
		switch {
		case err == nil:
			wins++
			if remaining[i] != 0 {
				t.Fatalf("winner saw remaining=%d, want 0", remaining[i])
			}
		case errors.Is(err, ErrVoucherExhausted):
			exhausted++
		default:
			t.Fatalf("unexpected redemption error: %v", err)
		}
	}
	if wins != 1 || exhausted != 1 {
		t.Fatalf("expected exactly one winner and one exhausted, got wins=%d exhausted=%d", wins, exhausted)
	}

	current, err := svc.Get(context.Background(), voucher.Token)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if current.UsedPlays > current.AssignedPlays {
		t.Fatalf("invariant broken: used=%d assigned=%d", current.UsedPlays, current.AssignedPlays)
	}
}

func TestRedeemExpiredVoucher(t *testing.T) {
	svc, db := newVoucherService(t)
	voucher := issueTestVoucher(t, svc, 3)
	ctx := context.Background()

	past := time.Now().Add(-time.Minute)
	if err := db.Model(&model.Voucher{}).Where("token = ?", voucher.Token).Update("expires_at", past).Error; err != nil {
		t.Fatalf("set expiry: %v", err)
	}

	if _, err := svc.Redeem(ctx, voucher.Token, ""); !errors.Is(err, ErrVoucherExpired) {
		t.Fatalf("expected ErrVoucherExpired, got %v", err)
	}

	current, err := svc.Get(ctx, voucher.Token)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if current.UsedPlays != 0 {
		t.Fatalf("expired redemption must not consume plays, used=%d", current.UsedPlays)
	}
	if current.Status != model.VoucherStatusExpired {
		t.Fatalf("expected opportunistic expired status, got %s", current.Status)
	}
}

func TestRedeemUnknownToken(t *testing.T) {
	svc, _ := newVoucherService(t)
	if _, err := svc.Redeem(context.Background(), "nonexistent", ""); !errors.Is(err, ErrVoucherNotFound) {
		t.Fatalf("expected ErrVoucherNotFound, got %v", err)
	}
	if _, err := svc.Get(context.Background(), "nonexistent"); !errors.Is(err, ErrVoucherNotFound) {
		t.Fatalf("expected ErrVoucherNotFound on get, got %v", err)
	}
}

func TestRedeemRevokedVoucher(t *testing.T) {
	svc, _ := newVoucherService(t)
	voucher := issueTestVoucher(t, svc, 2)
	ctx := context.Background()

	revoked, err := svc.Revoke(ctx, voucher.Token)
	if err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if revoked.Status != model.VoucherStatusRevoked {
		t.Fatalf("expected revoked status, got %s", revoked.Status)
	}

	if _, err := svc.Redeem(ctx, voucher.Token, ""); !errors.Is(err, ErrVoucherRevoked) {
		t.Fatalf("expected ErrVoucherRevoked, got %v", err)
	}

	// Revoked is absorbing: a second revoke is a state conflict.
	if _, err := svc.Revoke(ctx, voucher.Token); !errors.Is(err, ErrVoucherNotActive) {
		t.Fatalf("expected ErrVoucherNotActive, got %v", err)
	}
}

func TestRedeemRequestIDReplay(t *testing.T) {
	svc, _ := newVoucherService(t)
	voucher := issueTestVoucher(t, svc, 3)
	ctx := context.Background()

	first, err := svc.Redeem(ctx, voucher.Token, "req-abc")
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if first.Replayed {
		t.Fatal("first call must not be a replay")
	}

	second, err := svc.Redeem(ctx, voucher.Token, "req-abc")
	if err != nil {
		t.Fatalf("replayed redeem: %v", err)
	}
	if !second.Replayed {
		t.Fatal("resend with same requestId must replay")
	}
	if second.RemainingPlays != first.RemainingPlays {
		t.Fatalf("replay remaining=%d, want %d", second.RemainingPlays, first.RemainingPlays)
	}

	current, err := svc.Get(ctx, voucher.Token)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if current.UsedPlays != 1 {
		t.Fatalf("replay consumed a play: used=%d", current.UsedPlays)
	}

	// A fresh request id consumes normally.
	third, err := svc.Redeem(ctx, voucher.Token, "req-def")
	if err != nil {
		t.Fatalf("redeem with new requestId: %v", err)
	}
	if third.Replayed || third.RemainingPlays != 1 {
		t.Fatalf("expected real consumption with remaining=1, got %+v", third)
	}
}

func TestRedeemSameRequestIDAcrossVouchers(t *testing.T) {
	svc, _ := newVoucherService(t)
	first := issueTestVoucher(t, svc, 2)
	second := issueTestVoucher(t, svc, 2)
	ctx := context.Background()

	// Terminals generate request ids from local counters, so the same id can
	// show up against different vouchers. Each voucher consumes independently.
	if _, err := svc.Redeem(ctx, first.Token, "counter-001"); err != nil {
		t.Fatalf("redeem first voucher: %v", err)
	}
	result, err := svc.Redeem(ctx, second.Token, "counter-001")
	if err != nil {
		t.Fatalf("redeem second voucher with reused requestId: %v", err)
	}
	if result.Replayed {
		t.Fatal("a different voucher must not replay another voucher's outcome")
	}
	if result.RemainingPlays != 1 {
		t.Fatalf("expected real consumption with remaining=1, got %d", result.RemainingPlays)
	}

	for _, voucher := range []*model.Voucher{first, second} {
		current, err := svc.Get(ctx, voucher.Token)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if current.UsedPlays != 1 {
			t.Fatalf("voucher %s: expected usedPlays=1, got %d", current.Token, current.UsedPlays)
		}
	}
}

func TestGetIsIdempotent(t *testing.T) {
	svc, _ := newVoucherService(t)
	voucher := issueTestVoucher(t, svc, 4)
	ctx := context.Background()

	if _, err := svc.Redeem(ctx, voucher.Token, ""); err != nil {
		t.Fatalf("redeem: %v", err)
	}

	first, err := svc.Get(ctx, voucher.Token)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	for i := 0; i < 3; i++ {
		again, err := svc.Get(ctx, voucher.Token)
		if err != nil {
			t.Fatalf("get #%d: %v", i, err)
		}
		if again.UsedPlays != first.UsedPlays || again.RemainingPlays() != first.RemainingPlays() {
			t.Fatalf("read not idempotent: %d/%d vs %d/%d",
				again.UsedPlays, again.RemainingPlays(), first.UsedPlays, first.RemainingPlays())
		}
	}
}

func TestRedeemTimeoutIsTransient(t *testing.T) {
	svc, _ := newVoucherService(t)
	voucher := issueTestVoucher(t, svc, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.Redeem(ctx, voucher.Token, ""); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable on dead context, got %v", err)
	}

	current, err := svc.Get(context.Background(), voucher.Token)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if current.UsedPlays != 0 {
		t.Fatalf("failed transaction must not consume plays, used=%d", current.UsedPlays)
	}
}
