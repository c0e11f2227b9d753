package orders

type PurchaseRequest struct {
	LineItems     []LineItemRequest `json:"line_items" binding:"required,min=1,max=20,dive"`
	Customer      CustomerInfo      `json:"customer" binding:"required"`
	PaymentMethod string            `json:"payment_method" binding:"required,oneof=card wallet bank_transfer"`
}

type LineItemRequest struct {
	TicketTypeID string         `json:"ticket_type_id" binding:"required,uuid"`
	Quantity     int            `json:"quantity" binding:"required,min=1,max=10"`
	Attendees    []AttendeeInfo `json:"attendees" binding:"omitempty,dive"`
}

type CustomerInfo struct {
	Name  string `json:"name" binding:"required,min=2,max=255"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone" binding:"omitempty,max=50"`
}

type AttendeeInfo struct {
	Name  string `json:"name" binding:"required,min=2,max=255"`
	Email string `json:"email" binding:"required,email"`
}

type OrderListQuery struct {
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Status string `form:"status" binding:"omitempty,oneof=pending completed failed refunded"`
}
