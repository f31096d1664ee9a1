package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OwnerType string

const (
	OwnerTypeIndividual OwnerType = "individual"
	OwnerTypeStudent    OwnerType = "student"
)

type VoucherStatus string

const (
	VoucherStatusActive    VoucherStatus = "active"
	VoucherStatusExpired   VoucherStatus = "expired"
	VoucherStatusExhausted VoucherStatus = "exhausted"
	VoucherStatusRevoked   VoucherStatus = "revoked"
)

// Voucher entitles its bearer to a fixed number of plays. The token is the
// sole credential a terminal needs to redeem; nothing else is mutated after
// issuance except UsedPlays and Status.
type Voucher struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Token         string        `gorm:"type:varchar(64);uniqueIndex;not null" json:"token"`
	OwnerID       uuid.UUID     `gorm:"type:uuid;not null;index" json:"ownerId"`
	OwnerType     OwnerType     `gorm:"type:varchar(16);not null" json:"ownerType"`
	InstitutionID *uuid.UUID    `gorm:"type:uuid;index" json:"institutionId,omitempty"`
	AssignedPlays int           `gorm:"not null" json:"assignedPlays"`
	UsedPlays     int           `gorm:"not null;default:0" json:"usedPlays"`
	AmountPaid    float64       `gorm:"not null;default:0" json:"amountPaid"`
	Status        VoucherStatus `gorm:"type:varchar(16);not null;default:'active'" json:"status"`
	ExpiresAt     *time.Time    `json:"expiresAt,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

func (Voucher) TableName() string { return "vouchers" }

// BeforeCreate assigns the ID app-side; both dialects get the same uuid
// source instead of a database default sqlite cannot express.
func (v *Voucher) BeforeCreate(*gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

func (v *Voucher) RemainingPlays() int { return v.AssignedPlays - v.UsedPlays }

func (v *Voucher) IsExpiredAt(now time.Time) bool {
	return v.ExpiresAt != nil && !now.Before(*v.ExpiresAt)
}

// Redemption records one consumed play. RequestID is the optional
// client-supplied idempotency key; a resend carrying the same id replays the
// stored outcome instead of consuming another play.
type Redemption struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	VoucherID      uuid.UUID `gorm:"type:uuid;not null;index" json:"voucherId"`
	RequestID      *string   `gorm:"type:varchar(128)" json:"requestId,omitempty"`
	RemainingPlays int       `gorm:"not null" json:"remainingPlays"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (Redemption) TableName() string { return "voucher_redemptions" }

func (r *Redemption) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
