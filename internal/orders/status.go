package orders

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusFailed    OrderStatus = "failed"
	OrderStatusRefunded  OrderStatus = "refunded"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusFailed, OrderStatusRefunded:
		return true
	}
	return false
}

func (s OrderStatus) String() string {
	return string(s)
}

// CanBeRefunded reports whether an order in this status may be refunded.
func (s OrderStatus) CanBeRefunded() bool {
	return s == OrderStatusCompleted
}

type TicketStatus string

const (
	TicketStatusActive      TicketStatus = "active"
	TicketStatusUsed        TicketStatus = "used"
	TicketStatusRefunded    TicketStatus = "refunded"
	TicketStatusTransferred TicketStatus = "transferred"
)

func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketStatusActive, TicketStatusUsed, TicketStatusRefunded, TicketStatusTransferred:
		return true
	}
	return false
}

func (s TicketStatus) String() string {
	return string(s)
}

// ConsumesInventory reports whether a ticket in this status still counts
// against its type's quantity_total. Only refunded tickets free capacity.
func (s TicketStatus) ConsumesInventory() bool {
	return s != TicketStatusRefunded
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}
