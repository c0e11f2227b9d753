package tickettypes

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TicketType is a priced inventory pool for an event, e.g. "General
// Admission" or "VIP". All purchase quantity and sale-window rules
// hang off the type, not the event.
type TicketType struct {
	ID            uuid.UUID       `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	EventID       uuid.UUID       `json:"event_id" gorm:"type:uuid;not null;index"`
	Name          string          `json:"name" gorm:"not null;size:100"`
	Description   string          `json:"description" gorm:"type:text"`
	Price         decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	Currency      string          `json:"currency" gorm:"type:char(3);not null;default:'USD'"`
	QuantityTotal int             `json:"quantity_total" gorm:"not null;check:quantity_total >= 0"`
	MinPerOrder   int             `json:"min_per_order" gorm:"not null;default:1;check:min_per_order >= 1"`
	MaxPerOrder   int             `json:"max_per_order" gorm:"not null;default:10"`
	SaleStartsAt  *time.Time      `json:"sale_starts_at"`
	SaleEndsAt    *time.Time      `json:"sale_ends_at"`
	IsActive      bool            `json:"is_active" gorm:"not null;default:true"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (TicketType) TableName() string {
	return "ticket_types"
}

// OnSaleAt reports whether the sale window is open at the given instant.
// A nil boundary means unbounded on that side.
func (t *TicketType) OnSaleAt(at time.Time) bool {
	if t.SaleStartsAt != nil && at.Before(*t.SaleStartsAt) {
		return false
	}
	if t.SaleEndsAt != nil && !at.Before(*t.SaleEndsAt) {
		return false
	}
	return true
}

// SaleNotStartedAt reports whether the window has not yet opened.
func (t *TicketType) SaleNotStartedAt(at time.Time) bool {
	return t.SaleStartsAt != nil && at.Before(*t.SaleStartsAt)
}

// SaleEndedAt reports whether the window has already closed.
func (t *TicketType) SaleEndedAt(at time.Time) bool {
	return t.SaleEndsAt != nil && !at.Before(*t.SaleEndsAt)
}

type TicketTypeResponse struct {
	ID            string          `json:"id"`
	EventID       string          `json:"event_id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Currency      string          `json:"currency"`
	QuantityTotal int             `json:"quantity_total"`
	Remaining     int             `json:"remaining"`
	MinPerOrder   int             `json:"min_per_order"`
	MaxPerOrder   int             `json:"max_per_order"`
	SaleStartsAt  *time.Time      `json:"sale_starts_at,omitempty"`
	SaleEndsAt    *time.Time      `json:"sale_ends_at,omitempty"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (t *TicketType) ToResponse(remaining int) TicketTypeResponse {
	return TicketTypeResponse{
		ID:            t.ID.String(),
		EventID:       t.EventID.String(),
		Name:          t.Name,
		Description:   t.Description,
		Price:         t.Price,
		Currency:      t.Currency,
		QuantityTotal: t.QuantityTotal,
		Remaining:     remaining,
		MinPerOrder:   t.MinPerOrder,
		MaxPerOrder:   t.MaxPerOrder,
		SaleStartsAt:  t.SaleStartsAt,
		SaleEndsAt:    t.SaleEndsAt,
		IsActive:      t.IsActive,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

type CreateTicketTypeRequest struct {
	EventID       string          `json:"event_id" binding:"required,uuid"`
	Name          string          `json:"name" binding:"required,min=2,max=100"`
	Description   string          `json:"description" binding:"max=2000"`
	Price         decimal.Decimal `json:"price" binding:"required"`
	Currency      string          `json:"currency" binding:"omitempty,len=3,uppercase"`
	QuantityTotal int             `json:"quantity_total" binding:"required,min=1,max=1000000"`
	MinPerOrder   int             `json:"min_per_order" binding:"omitempty,min=1"`
	MaxPerOrder   int             `json:"max_per_order" binding:"omitempty,min=1"`
	SaleStartsAt  *time.Time      `json:"sale_starts_at"`
	SaleEndsAt    *time.Time      `json:"sale_ends_at"`
}

type UpdateTicketTypeRequest struct {
	Name          *string          `json:"name" binding:"omitempty,min=2,max=100"`
	Description   *string          `json:"description" binding:"omitempty,max=2000"`
	Price         *decimal.Decimal `json:"price"`
	QuantityTotal *int             `json:"quantity_total" binding:"omitempty,min=1,max=1000000"`
	MinPerOrder   *int             `json:"min_per_order" binding:"omitempty,min=1"`
	MaxPerOrder   *int             `json:"max_per_order" binding:"omitempty,min=1"`
	SaleStartsAt  *time.Time       `json:"sale_starts_at"`
	SaleEndsAt    *time.Time       `json:"sale_ends_at"`
	IsActive      *bool            `json:"is_active"`
}
