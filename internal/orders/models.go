package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is one checkout transaction. It exclusively owns its Tickets:
// they are only ever created together inside the purchase transaction.
type Order struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID      uuid.UUID       `gorm:"type:uuid;index;not null" json:"user_id"`
	EventID     uuid.UUID       `gorm:"type:uuid;index;not null" json:"event_id"`
	OrderRef    string          `gorm:"unique;not null" json:"order_ref"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	Currency    string          `gorm:"type:char(3);not null;default:'USD'" json:"currency"`
	Status      OrderStatus     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`

	// Buyer contact snapshot taken at purchase time.
	CustomerName  string `gorm:"size:255;not null" json:"customer_name"`
	CustomerEmail string `gorm:"size:255;not null" json:"customer_email"`
	CustomerPhone string `gorm:"size:50" json:"customer_phone"`

	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	RefundedAt *time.Time `json:"refunded_at,omitempty"`

	Tickets  []Ticket  `json:"tickets,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE;"`
	Payments []Payment `json:"payments,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:RESTRICT;"`
}

func (Order) TableName() string {
	return "orders"
}

func (o *Order) IsRefunded() bool {
	return o.Status == OrderStatusRefunded
}

// Ticket is one issued admission unit. Created only inside a successful
// purchase transaction, never re-created afterwards.
type Ticket struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OrderID       uuid.UUID       `gorm:"type:uuid;index;not null" json:"order_id"`
	TicketTypeID  uuid.UUID       `gorm:"type:uuid;index;not null" json:"ticket_type_id"`
	Code          string          `gorm:"type:char(10);not null" json:"code"`
	Status        TicketStatus    `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	PurchasePrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"purchase_price"`
	Currency      string          `gorm:"type:char(3);not null;default:'USD'" json:"currency"`

	AttendeeName  string `gorm:"size:255;not null" json:"attendee_name"`
	AttendeeEmail string `gorm:"size:255;not null" json:"attendee_email"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Order *Order `json:"order,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE;"`
}

func (Ticket) TableName() string {
	return "tickets"
}

// Payment is the mock gateway record attached to an order.
type Payment struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OrderID       uuid.UUID       `gorm:"type:uuid;index;not null" json:"order_id"`
	Amount        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency      string          `gorm:"type:char(3);not null;default:'USD'" json:"currency"`
	Status        PaymentStatus   `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	PaymentMethod string          `gorm:"type:varchar(50)" json:"payment_method"`
	TransactionID string          `gorm:"unique" json:"transaction_id"`
	ProcessedAt   *time.Time      `json:"processed_at,omitempty"`
	FailureReason string          `json:"failure_reason,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	Order *Order `json:"order,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE;"`
}

func (Payment) TableName() string {
	return "payments"
}
