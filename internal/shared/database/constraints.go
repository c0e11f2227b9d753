package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds database constraints the purchase transaction relies on.
// The unique index on ticket codes is what turns a code collision into a
// retryable insert error instead of a silent duplicate.
func MigrateConstraints(db *gorm.DB) error {
	err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_tickets_code_unique
		ON tickets (code);
	`).Error
	if err != nil {
		return err
	}

	// Sold-count recheck inside the purchase transaction scans by type and status
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_tickets_type_status
		ON tickets (ticket_type_id, status);
	`).Error
	if err != nil {
		return err
	}

	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_orders_user_created
		ON orders (user_id, created_at DESC);
	`).Error
	if err != nil {
		return err
	}

	return nil
}
