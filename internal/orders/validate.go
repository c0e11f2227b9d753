package orders

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventSnapshot is the purchase-relevant view of an event row.
type EventSnapshot struct {
	ID       uuid.UUID
	Name     string
	Status   string
	StartsAt time.Time
}

// TypeSnapshot is the inventory-relevant view of a ticket-type row plus
// its current sold count. The validator reads it unlocked; the executor
// reads it again under FOR UPDATE, and only that second read is
// authoritative.
type TypeSnapshot struct {
	ID            uuid.UUID
	EventID       uuid.UUID
	Name          string
	Price         decimal.Decimal
	Currency      string
	QuantityTotal int
	MinPerOrder   int
	MaxPerOrder   int
	SaleStartsAt  *time.Time
	SaleEndsAt    *time.Time
	IsActive      bool
	Sold          int
}

func (s *TypeSnapshot) Remaining() int {
	remaining := s.QuantityTotal - s.Sold
	if remaining < 0 {
		return 0
	}
	return remaining
}

// checkEvent rejects purchases against events that are missing, not
// published, or already started.
func checkEvent(event *EventSnapshot, at time.Time) *PurchaseError {
	if event == nil {
		return NewNotFound("event not found")
	}
	if event.Status != "published" {
		return NewNotFound("event not found")
	}
	if !event.StartsAt.After(at) {
		return NewSaleEnded(fmt.Sprintf("event %q has already started", event.Name))
	}
	return nil
}

// checkLine applies the per-line admission rules in their fixed order.
// The whole purchase is rejected on the first failing line.
func checkLine(snap *TypeSnapshot, eventID uuid.UUID, quantity int, at time.Time) *PurchaseError {
	if snap == nil {
		return NewNotFound("ticket type not found")
	}
	if snap.EventID != eventID {
		return NewNotFound(fmt.Sprintf("ticket type %s does not belong to this event", snap.ID))
	}
	if !snap.IsActive {
		return NewIneligible(fmt.Sprintf("ticket type %q is not available for purchase", snap.Name))
	}
	if snap.SaleStartsAt != nil && at.Before(*snap.SaleStartsAt) {
		return NewNotYetOnSale(fmt.Sprintf("sales for %q open at %s", snap.Name, snap.SaleStartsAt.Format(time.RFC3339)))
	}
	if snap.SaleEndsAt != nil && !at.Before(*snap.SaleEndsAt) {
		return NewSaleEnded(fmt.Sprintf("sales for %q ended at %s", snap.Name, snap.SaleEndsAt.Format(time.RFC3339)))
	}
	if quantity < snap.MinPerOrder {
		return NewLimitExceeded(fmt.Sprintf("minimum purchase for %q is %d", snap.Name, snap.MinPerOrder))
	}
	if quantity > snap.MaxPerOrder {
		return NewLimitExceeded(fmt.Sprintf("maximum purchase for %q is %d", snap.Name, snap.MaxPerOrder))
	}
	if remaining := snap.Remaining(); quantity > remaining {
		return NewInsufficientInventory(
			fmt.Sprintf("not enough %q tickets available", snap.Name), remaining)
	}
	return nil
}
