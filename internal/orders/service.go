package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tickethub/internal/shared/config"
	"tickethub/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrTicketNotFound     = errors.New("ticket not found")
	ErrNotOrderOwner      = errors.New("order does not belong to user")
	ErrDuplicateLineItems = errors.New("duplicate ticket type in line items")
	ErrAttendeeCount      = errors.New("attendee count must match line quantity")
)

// OrderConfirmation is the message handed to the notification publisher
// after a purchase commits.
type OrderConfirmation struct {
	OrderID       string    `json:"order_id"`
	OrderRef      string    `json:"order_ref"`
	UserID        string    `json:"user_id"`
	EventID       string    `json:"event_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	TotalAmount   string    `json:"total_amount"`
	Currency      string    `json:"currency"`
	TicketCount   int       `json:"ticket_count"`
	PurchasedAt   time.Time `json:"purchased_at"`
}

// ConfirmationPublisher decouples the purchase path from the Kafka
// producer. Publishing happens after commit and never fails a purchase.
type ConfirmationPublisher interface {
	PublishOrderConfirmation(ctx context.Context, confirmation OrderConfirmation) error
}

type Service interface {
	// ValidatePurchase is the read-only admission check. Identical state
	// yields identical results; nothing is written.
	ValidatePurchase(ctx context.Context, eventID uuid.UUID, req PurchaseRequest) (*PurchaseQuote, error)
	// Purchase runs the full reserve-and-sell flow and returns the
	// committed order, or a *PurchaseError.
	Purchase(ctx context.Context, userID uuid.UUID, eventID uuid.UUID, req PurchaseRequest) (*PurchaseResponse, error)

	GetOrder(ctx context.Context, orderID uuid.UUID, userID uuid.UUID, isAdmin bool) (*Order, error)
	GetUserOrders(ctx context.Context, userID uuid.UUID, query OrderListQuery) (*PaginatedOrders, error)
	GetTicketByCode(ctx context.Context, code string) (*TicketResponse, error)

	SetPublisher(publisher ConfirmationPublisher)
}

type service struct {
	repo      Repository
	cfg       config.PurchaseConfig
	publisher ConfirmationPublisher
	now       func() time.Time
}

func NewService(repo Repository, cfg config.PurchaseConfig) Service {
	return &service{
		repo: repo,
		cfg:  cfg,
		now:  time.Now,
	}
}

func (s *service) SetPublisher(publisher ConfirmationPublisher) {
	s.publisher = publisher
}

// checkRequestShape enforces the structural bounds that hold regardless
// of store state: line count, per-line quantity, distinct types, and
// attendee list lengths.
func (s *service) checkRequestShape(req PurchaseRequest) error {
	if len(req.LineItems) == 0 || len(req.LineItems) > s.cfg.MaxLineItems {
		return NewLimitExceeded(fmt.Sprintf("purchase must have between 1 and %d line items", s.cfg.MaxLineItems))
	}

	seen := make(map[string]bool, len(req.LineItems))
	for _, line := range req.LineItems {
		if seen[line.TicketTypeID] {
			return fmt.Errorf("%w: %s", ErrDuplicateLineItems, line.TicketTypeID)
		}
		seen[line.TicketTypeID] = true

		if line.Quantity < 1 || line.Quantity > s.cfg.MaxQuantityPerLine {
			return NewLimitExceeded(fmt.Sprintf("line quantity must be between 1 and %d", s.cfg.MaxQuantityPerLine))
		}
		if len(line.Attendees) != 0 && len(line.Attendees) != line.Quantity {
			return fmt.Errorf("%w: got %d attendees for quantity %d", ErrAttendeeCount, len(line.Attendees), line.Quantity)
		}
	}

	return nil
}

func parseLineTypeIDs(req PurchaseRequest) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, len(req.LineItems))
	for i, line := range req.LineItems {
		id, err := uuid.Parse(line.TicketTypeID)
		if err != nil {
			return nil, NewNotFound(fmt.Sprintf("invalid ticket type ID: %s", line.TicketTypeID))
		}
		ids[i] = id
	}
	return ids, nil
}

func (s *service) ValidatePurchase(ctx context.Context, eventID uuid.UUID, req PurchaseRequest) (*PurchaseQuote, error) {
	if err := s.checkRequestShape(req); err != nil {
		return nil, err
	}

	typeIDs, err := parseLineTypeIDs(req)
	if err != nil {
		return nil, err
	}

	at := s.now()

	event, err := s.repo.GetEventForPurchase(ctx, eventID)
	if err != nil {
		return nil, NewStoreFailure(err)
	}
	if perr := checkEvent(event, at); perr != nil {
		return nil, perr
	}

	snapshots, err := s.repo.GetTypeSnapshots(ctx, typeIDs)
	if err != nil {
		return nil, NewStoreFailure(err)
	}

	quote := &PurchaseQuote{
		EventID:     eventID.String(),
		Lines:       make([]QuotedLine, 0, len(req.LineItems)),
		TotalAmount: decimal.Zero,
	}

	for i, line := range req.LineItems {
		snap := snapshots[typeIDs[i]]
		if perr := checkLine(snap, eventID, line.Quantity, at); perr != nil {
			return nil, perr
		}

		lineTotal := snap.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		quote.Lines = append(quote.Lines, QuotedLine{
			TicketTypeID:   snap.ID.String(),
			TicketTypeName: snap.Name,
			Quantity:       line.Quantity,
			UnitPrice:      snap.Price,
			LineTotal:      lineTotal,
			Remaining:      snap.Remaining(),
		})
		quote.TotalAmount = quote.TotalAmount.Add(lineTotal)
		if quote.Currency == "" {
			quote.Currency = snap.Currency
		}
	}

	return quote, nil
}

func (s *service) Purchase(ctx context.Context, userID uuid.UUID, eventID uuid.UUID, req PurchaseRequest) (*PurchaseResponse, error) {
	if err := s.checkRequestShape(req); err != nil {
		return nil, err
	}

	typeIDs, err := parseLineTypeIDs(req)
	if err != nil {
		return nil, err
	}

	at := s.now()

	event, err := s.repo.GetEventForPurchase(ctx, eventID)
	if err != nil {
		return nil, NewStoreFailure(err)
	}
	if perr := checkEvent(event, at); perr != nil {
		s.logRejection(ctx, eventID, userID, perr)
		return nil, perr
	}

	orderRef, err := generateOrderReference()
	if err != nil {
		return nil, NewStoreFailure(err)
	}

	lines := make([]PurchaseLine, len(req.LineItems))
	for i, line := range req.LineItems {
		attendees := line.Attendees
		if len(attendees) == 0 {
			// Default every ticket to the buyer snapshot.
			attendees = make([]AttendeeInfo, line.Quantity)
			for j := range attendees {
				attendees[j] = AttendeeInfo{Name: req.Customer.Name, Email: req.Customer.Email}
			}
		}
		lines[i] = PurchaseLine{
			TicketTypeID: typeIDs[i],
			Quantity:     line.Quantity,
			Attendees:    attendees,
		}
	}

	order := &Order{
		UserID:        userID,
		EventID:       eventID,
		OrderRef:      orderRef,
		CustomerName:  req.Customer.Name,
		CustomerEmail: req.Customer.Email,
		CustomerPhone: req.Customer.Phone,
	}

	cmd := &PurchaseCommand{
		Order:          order,
		Lines:          lines,
		PaymentMethod:  req.PaymentMethod,
		At:             at,
		CodeRetryLimit: s.cfg.CodeRetryLimit,
	}

	snapshots, err := s.repo.ExecutePurchase(ctx, cmd)
	if err != nil {
		perr := AsPurchaseError(err)
		s.logRejection(ctx, eventID, userID, perr)
		return nil, perr
	}

	logger.GetDefault().LogPurchaseCommitted(ctx, order.ID.String(), eventID.String(), userID.String(), len(order.Tickets))
	for _, payment := range order.Payments {
		logger.GetDefault().LogPaymentProcessed(ctx, payment.ID.String(), order.ID.String(), string(payment.Status))
	}

	s.publishConfirmation(order)

	return buildPurchaseResponse(order, snapshots), nil
}

func (s *service) logRejection(ctx context.Context, eventID, userID uuid.UUID, perr *PurchaseError) {
	if perr.Kind == KindStoreFailure {
		logger.GetDefault().ErrorWithContext(ctx, "purchase failed", perr, map[string]interface{}{
			"event_id": eventID.String(),
			"user_id":  userID.String(),
		})
		return
	}
	logger.GetDefault().LogPurchaseRejected(ctx, eventID.String(), userID.String(), string(perr.Kind))
}

// publishConfirmation hands the committed order to the notification
// pipeline. Failures are logged, never surfaced to the buyer.
func (s *service) publishConfirmation(order *Order) {
	if s.publisher == nil {
		return
	}

	confirmation := OrderConfirmation{
		OrderID:       order.ID.String(),
		OrderRef:      order.OrderRef,
		UserID:        order.UserID.String(),
		EventID:       order.EventID.String(),
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		TotalAmount:   order.TotalAmount.StringFixed(2),
		Currency:      order.Currency,
		TicketCount:   len(order.Tickets),
		PurchasedAt:   order.CreatedAt,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.publisher.PublishOrderConfirmation(ctx, confirmation); err != nil {
			logger.GetDefault().Warn("failed to publish order confirmation", "order_id", confirmation.OrderID, "error", err)
		}
	}()
}

func buildPurchaseResponse(order *Order, snapshots map[uuid.UUID]*TypeSnapshot) *PurchaseResponse {
	tickets := make([]IssuedTicket, len(order.Tickets))
	for i, ticket := range order.Tickets {
		typeName := ""
		if snap, ok := snapshots[ticket.TicketTypeID]; ok {
			typeName = snap.Name
		}
		tickets[i] = IssuedTicket{
			ID:             ticket.ID.String(),
			Code:           ticket.Code,
			TicketTypeID:   ticket.TicketTypeID.String(),
			TicketTypeName: typeName,
			PurchasePrice:  ticket.PurchasePrice,
			AttendeeName:   ticket.AttendeeName,
			AttendeeEmail:  ticket.AttendeeEmail,
		}
	}

	resp := &PurchaseResponse{
		OrderID:     order.ID.String(),
		OrderRef:    order.OrderRef,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		Currency:    order.Currency,
		Tickets:     tickets,
		CreatedAt:   order.CreatedAt,
	}

	if len(order.Payments) > 0 {
		p := order.Payments[0]
		resp.Payment = PaymentInfo{
			ID:            p.ID.String(),
			Amount:        p.Amount,
			Currency:      p.Currency,
			Status:        p.Status,
			PaymentMethod: p.PaymentMethod,
			TransactionID: p.TransactionID,
			ProcessedAt:   p.ProcessedAt,
		}
	}

	return resp
}

func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID, userID uuid.UUID, isAdmin bool) (*Order, error) {
	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if !isAdmin && order.UserID != userID {
		return nil, ErrNotOrderOwner
	}

	return order, nil
}

func (s *service) GetUserOrders(ctx context.Context, userID uuid.UUID, query OrderListQuery) (*PaginatedOrders, error) {
	if query.Page == 0 {
		query.Page = 1
	}
	if query.Limit == 0 {
		query.Limit = 10
	}

	ordersList, totalCount, err := s.repo.GetUserOrders(ctx, userID, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}

	responses := make([]OrderResponse, len(ordersList))
	for i := range ordersList {
		responses[i] = ordersList[i].ToResponse()
	}

	totalPages := int((totalCount + int64(query.Limit) - 1) / int64(query.Limit))

	return &PaginatedOrders{
		Orders:     responses,
		TotalCount: totalCount,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: totalPages,
	}, nil
}

func (s *service) GetTicketByCode(ctx context.Context, code string) (*TicketResponse, error) {
	ticket, err := s.repo.GetTicketByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	resp := ticket.ToResponse()
	return &resp, nil
}
