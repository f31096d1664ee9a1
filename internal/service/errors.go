package service

import "errors"

var (
	// Voucher lifecycle classifications. Each redemption failure maps to
	// exactly one of these so the terminal can tell the player what happened.
	ErrVoucherNotFound  = errors.New("voucher not found")
	ErrVoucherRevoked   = errors.New("voucher revoked")
	ErrVoucherExpired   = errors.New("voucher expired")
	ErrVoucherExhausted = errors.New("no plays remaining")
	ErrVoucherNotActive = errors.New("voucher is not active")
	ErrInvalidVoucher   = errors.New("invalid voucher request")
	ErrTokenGeneration  = errors.New("could not generate a unique voucher token")
	ErrStoreUnavailable = errors.New("store temporarily unavailable")

	// Auth.
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrRefreshTokenInvalid = errors.New("refresh token invalid or revoked")

	// Directory.
	ErrUserNotFound        = errors.New("user not found")
	ErrInstitutionNotFound = errors.New("institution not found")
	ErrStudentNotFound     = errors.New("student not found")
	ErrRollNumberTaken     = errors.New("roll number already in use for this institution")
)
