package model

import "gorm.io/gorm"

// AutoMigrate runs GORM auto-migration for all models and creates custom indexes.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&IndividualUser{},
		&Institution{},
		&Student{},
		&Voucher{},
		&Redemption{},
	); err != nil {
		return err
	}

	// Case-insensitive unique email per principal table, only enforced on
	// non-soft-deleted rows.
	if err := db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_individual_users_email_lower " +
			"ON individual_users ((lower(email))) WHERE deleted_at IS NULL",
	).Error; err != nil {
		return err
	}

	if err := db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_institutions_email_lower " +
			"ON institutions ((lower(email))) WHERE deleted_at IS NULL",
	).Error; err != nil {
		return err
	}

	// Replay lookups are scoped to one voucher, so a terminal may reuse a
	// request id against a different voucher without tripping the index.
	if err := db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_voucher_redemptions_voucher_request " +
			"ON voucher_redemptions (voucher_id, request_id) WHERE request_id IS NOT NULL",
	).Error; err != nil {
		return err
	}

	// One roll number per institution.
	return db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_students_institution_roll " +
			"ON students (institution_id, roll_number) WHERE deleted_at IS NULL",
	).Error
}
