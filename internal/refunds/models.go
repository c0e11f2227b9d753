package refunds

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Refund records a processed full-order refund. One refund per order.
type Refund struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OrderID      uuid.UUID       `gorm:"type:uuid;unique;not null" json:"order_id"`
	Amount       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency     string          `gorm:"type:char(3);not null" json:"currency"`
	Reason       string          `gorm:"type:text" json:"reason"`
	Status       string          `gorm:"type:varchar(20);check:status IN ('PENDING', 'PROCESSED', 'REJECTED');default:'PENDING'" json:"status"`
	RequestedAt  time.Time       `json:"requested_at"`
	ProcessedAt  *time.Time      `json:"processed_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (Refund) TableName() string {
	return "refunds"
}

const (
	RefundStatusPending   = "PENDING"
	RefundStatusProcessed = "PROCESSED"
	RefundStatusRejected  = "REJECTED"
)

type RefundRequest struct {
	Reason string `json:"reason" binding:"required,min=10,max=500"`
}

type RefundResponse struct {
	ID          string          `json:"id"`
	OrderID     string          `json:"order_id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Reason      string          `json:"reason"`
	Status      string          `json:"status"`
	RequestedAt time.Time       `json:"requested_at"`
	ProcessedAt *time.Time      `json:"processed_at,omitempty"`
}

func (r *Refund) ToResponse() RefundResponse {
	return RefundResponse{
		ID:          r.ID.String(),
		OrderID:     r.OrderID.String(),
		Amount:      r.Amount,
		Currency:    r.Currency,
		Reason:      r.Reason,
		Status:      r.Status,
		RequestedAt: r.RequestedAt,
		ProcessedAt: r.ProcessedAt,
	}
}
