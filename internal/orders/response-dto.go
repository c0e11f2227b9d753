package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseQuote is the validator's read-only result: the admissible lines
// with their totals at validation-time prices. It carries no reservation.
type PurchaseQuote struct {
	EventID     string          `json:"event_id"`
	Lines       []QuotedLine    `json:"lines"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Currency    string          `json:"currency"`
}

type QuotedLine struct {
	TicketTypeID   string          `json:"ticket_type_id"`
	TicketTypeName string          `json:"ticket_type_name"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	LineTotal      decimal.Decimal `json:"line_total"`
	Remaining      int             `json:"remaining"`
}

type PurchaseResponse struct {
	OrderID     string          `json:"order_id"`
	OrderRef    string          `json:"order_ref"`
	Status      OrderStatus     `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Currency    string          `json:"currency"`
	Tickets     []IssuedTicket  `json:"tickets"`
	Payment     PaymentInfo     `json:"payment"`
	CreatedAt   time.Time       `json:"created_at"`
}

type IssuedTicket struct {
	ID             string          `json:"id"`
	Code           string          `json:"code"`
	TicketTypeID   string          `json:"ticket_type_id"`
	TicketTypeName string          `json:"ticket_type_name"`
	PurchasePrice  decimal.Decimal `json:"purchase_price"`
	AttendeeName   string          `json:"attendee_name"`
	AttendeeEmail  string          `json:"attendee_email"`
}

type PaymentInfo struct {
	ID            string          `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Status        PaymentStatus   `json:"status"`
	PaymentMethod string          `json:"payment_method"`
	TransactionID string          `json:"transaction_id"`
	ProcessedAt   *time.Time      `json:"processed_at,omitempty"`
}

type OrderResponse struct {
	ID            string          `json:"id"`
	OrderRef      string          `json:"order_ref"`
	EventID       string          `json:"event_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Currency      string          `json:"currency"`
	Status        OrderStatus     `json:"status"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	TicketCount   int             `json:"ticket_count"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (o *Order) ToResponse() OrderResponse {
	return OrderResponse{
		ID:            o.ID.String(),
		OrderRef:      o.OrderRef,
		EventID:       o.EventID.String(),
		TotalAmount:   o.TotalAmount,
		Currency:      o.Currency,
		Status:        o.Status,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		TicketCount:   len(o.Tickets),
		CreatedAt:     o.CreatedAt,
	}
}

type PaginatedOrders struct {
	Orders     []OrderResponse `json:"orders"`
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

type TicketResponse struct {
	ID            string          `json:"id"`
	OrderID       string          `json:"order_id"`
	TicketTypeID  string          `json:"ticket_type_id"`
	Code          string          `json:"code"`
	Status        TicketStatus    `json:"status"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	Currency      string          `json:"currency"`
	AttendeeName  string          `json:"attendee_name"`
	AttendeeEmail string          `json:"attendee_email"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (t *Ticket) ToResponse() TicketResponse {
	return TicketResponse{
		ID:            t.ID.String(),
		OrderID:       t.OrderID.String(),
		TicketTypeID:  t.TicketTypeID.String(),
		Code:          t.Code,
		Status:        t.Status,
		PurchasePrice: t.PurchasePrice,
		Currency:      t.Currency,
		AttendeeName:  t.AttendeeName,
		AttendeeEmail: t.AttendeeEmail,
		CreatedAt:     t.CreatedAt,
	}
}
