package analytics

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventSales is the per-event sales report returned to admins.
type EventSales struct {
	EventID         uuid.UUID       `json:"event_id"`
	EventName       string          `json:"event_name"`
	Status          string          `json:"status"`
	StartsAt        time.Time       `json:"starts_at"`
	TicketsSold     int             `json:"tickets_sold"`
	TicketsRefunded int             `json:"tickets_refunded"`
	GrossRevenue    decimal.Decimal `json:"gross_revenue"`
	NetRevenue      decimal.Decimal `json:"net_revenue"`
	TypeBreakdown   []TypeSales     `json:"type_breakdown"`
}

// TypeSales breaks event sales down by ticket type.
type TypeSales struct {
	TicketTypeID  uuid.UUID       `json:"ticket_type_id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Currency      string          `json:"currency"`
	QuantityTotal int             `json:"quantity_total"`
	Sold          int             `json:"sold"`
	Refunded      int             `json:"refunded"`
	Remaining     int             `json:"remaining"`
	Revenue       decimal.Decimal `json:"revenue"`
}

// SalesSummary is the platform-wide sales report.
type SalesSummary struct {
	TotalOrders     int             `json:"total_orders"`
	CompletedOrders int             `json:"completed_orders"`
	RefundedOrders  int             `json:"refunded_orders"`
	TicketsSold     int             `json:"tickets_sold"`
	GrossRevenue    decimal.Decimal `json:"gross_revenue"`
	NetRevenue      decimal.Decimal `json:"net_revenue"`
	DailySales      []DailySales    `json:"daily_sales"`
	TopEvents       []EventRanking  `json:"top_events"`
}

// DailySales aggregates completed orders for one calendar day.
type DailySales struct {
	Date    string          `json:"date"`
	Orders  int             `json:"orders"`
	Tickets int             `json:"tickets"`
	Revenue decimal.Decimal `json:"revenue"`
}

// EventRanking ranks events by tickets sold.
type EventRanking struct {
	EventID     uuid.UUID       `json:"event_id"`
	EventName   string          `json:"event_name"`
	TicketsSold int             `json:"tickets_sold"`
	Revenue     decimal.Decimal `json:"revenue"`
}
