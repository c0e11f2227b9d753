package database

import (
	"tickethub/internal/events"
	"tickethub/internal/orders"
	"tickethub/internal/refunds"
	"tickethub/internal/tickettypes"
	"tickethub/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&users.User{},
		&events.Event{},
		&tickettypes.TicketType{},
		&orders.Order{},
		&orders.Ticket{},
		&orders.Payment{},
		&refunds.Refund{},
	)
}
