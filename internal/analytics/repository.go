package analytics

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository defines the analytics repository interface
type Repository interface {
	GetEventSales(eventID uuid.UUID) (*EventSales, error)
	GetSalesSummary(days int) (*SalesSummary, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new analytics repository instance
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetEventSales(eventID uuid.UUID) (*EventSales, error) {
	var event struct {
		ID       uuid.UUID
		Name     string
		Status   string
		StartsAt time.Time
	}
	err := r.db.Table("events").
		Select("id, name, status, starts_at").
		Where("id = ?", eventID).
		Take(&event).Error
	if err != nil {
		return nil, err
	}

	var typeRows []struct {
		ID            uuid.UUID
		Name          string
		Price         decimal.Decimal
		Currency      string
		QuantityTotal int
		Sold          int
		Refunded      int
		Revenue       decimal.Decimal
	}
	err = r.db.Table("ticket_types tt").
		Select(`tt.id, tt.name, tt.price, tt.currency, tt.quantity_total,
			COUNT(t.id) FILTER (WHERE t.status != 'refunded') AS sold,
			COUNT(t.id) FILTER (WHERE t.status = 'refunded') AS refunded,
			COALESCE(SUM(t.purchase_price) FILTER (WHERE t.status != 'refunded'), 0) AS revenue`).
		Joins("LEFT JOIN tickets t ON t.ticket_type_id = tt.id").
		Where("tt.event_id = ?", eventID).
		Group("tt.id, tt.name, tt.price, tt.currency, tt.quantity_total").
		Order("tt.name").
		Scan(&typeRows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate ticket type sales: %w", err)
	}

	sales := &EventSales{
		EventID:      event.ID,
		EventName:    event.Name,
		Status:       event.Status,
		StartsAt:     event.StartsAt,
		GrossRevenue: decimal.Zero,
		NetRevenue:   decimal.Zero,
	}
	for _, row := range typeRows {
		remaining := row.QuantityTotal - row.Sold
		if remaining < 0 {
			remaining = 0
		}
		sales.TicketsSold += row.Sold
		sales.TicketsRefunded += row.Refunded
		sales.NetRevenue = sales.NetRevenue.Add(row.Revenue)
		sales.TypeBreakdown = append(sales.TypeBreakdown, TypeSales{
			TicketTypeID:  row.ID,
			Name:          row.Name,
			Price:         row.Price,
			Currency:      row.Currency,
			QuantityTotal: row.QuantityTotal,
			Sold:          row.Sold,
			Refunded:      row.Refunded,
			Remaining:     remaining,
			Revenue:       row.Revenue,
		})
	}

	// Gross revenue includes tickets that were later refunded.
	var gross decimal.Decimal
	err = r.db.Table("tickets t").
		Select("COALESCE(SUM(t.purchase_price), 0)").
		Joins("JOIN ticket_types tt ON tt.id = t.ticket_type_id").
		Where("tt.event_id = ?", eventID).
		Scan(&gross).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate gross revenue: %w", err)
	}
	sales.GrossRevenue = gross

	return sales, nil
}

func (r *repository) GetSalesSummary(days int) (*SalesSummary, error) {
	summary := &SalesSummary{
		GrossRevenue: decimal.Zero,
		NetRevenue:   decimal.Zero,
	}

	var orderCounts struct {
		Total     int
		Completed int
		Refunded  int
	}
	err := r.db.Table("orders").
		Select(`COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'completed') AS completed,
			COUNT(*) FILTER (WHERE status = 'refunded') AS refunded`).
		Scan(&orderCounts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	summary.TotalOrders = orderCounts.Total
	summary.CompletedOrders = orderCounts.Completed
	summary.RefundedOrders = orderCounts.Refunded

	var ticketStats struct {
		Sold  int
		Net   decimal.Decimal
		Gross decimal.Decimal
	}
	err = r.db.Table("tickets").
		Select(`COUNT(*) FILTER (WHERE status != 'refunded') AS sold,
			COALESCE(SUM(purchase_price) FILTER (WHERE status != 'refunded'), 0) AS net,
			COALESCE(SUM(purchase_price), 0) AS gross`).
		Scan(&ticketStats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate ticket revenue: %w", err)
	}
	summary.TicketsSold = ticketStats.Sold
	summary.NetRevenue = ticketStats.Net
	summary.GrossRevenue = ticketStats.Gross

	since := time.Now().AddDate(0, 0, -days)
	var daily []struct {
		Day     time.Time
		Orders  int
		Tickets int
		Revenue decimal.Decimal
	}
	err = r.db.Table("orders o").
		Select(`DATE(o.created_at) AS day,
			COUNT(DISTINCT o.id) AS orders,
			COUNT(t.id) AS tickets,
			COALESCE(SUM(t.purchase_price), 0) AS revenue`).
		Joins("JOIN tickets t ON t.order_id = o.id").
		Where("o.status = ? AND o.created_at >= ?", "completed", since).
		Group("DATE(o.created_at)").
		Order("day DESC").
		Scan(&daily).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate daily sales: %w", err)
	}
	for _, row := range daily {
		summary.DailySales = append(summary.DailySales, DailySales{
			Date:    row.Day.Format("2006-01-02"),
			Orders:  row.Orders,
			Tickets: row.Tickets,
			Revenue: row.Revenue,
		})
	}

	var top []struct {
		EventID uuid.UUID
		Name    string
		Sold    int
		Revenue decimal.Decimal
	}
	err = r.db.Table("tickets t").
		Select(`e.id AS event_id, e.name,
			COUNT(*) AS sold,
			COALESCE(SUM(t.purchase_price), 0) AS revenue`).
		Joins("JOIN ticket_types tt ON tt.id = t.ticket_type_id").
		Joins("JOIN events e ON e.id = tt.event_id").
		Where("t.status != 'refunded'").
		Group("e.id, e.name").
		Order("sold DESC").
		Limit(5).
		Scan(&top).Error
	if err != nil {
		return nil, fmt.Errorf("failed to rank events: %w", err)
	}
	for _, row := range top {
		summary.TopEvents = append(summary.TopEvents, EventRanking{
			EventID:     row.EventID,
			EventName:   row.Name,
			TicketsSold: row.Sold,
			Revenue:     row.Revenue,
		})
	}

	return summary, nil
}
