package tickettypes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tickethub/internal/events"
	"tickethub/internal/shared/constants"
	"tickethub/pkg/cache"
	"tickethub/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrTicketTypeNotFound = errors.New("ticket type not found")
	ErrTypeHasSales       = errors.New("ticket type has sold tickets and cannot be deleted")
	ErrInvalidSaleWindow  = errors.New("sale window end must be after start")
	ErrInvalidOrderLimits = errors.New("max per order must be greater than or equal to min per order")
	ErrNegativePrice      = errors.New("price must not be negative")
	ErrQuantityBelowSold  = errors.New("quantity total cannot be reduced below tickets already sold")
)

type Service interface {
	SetCacheService(cacheService cache.Service)
	CreateTicketType(ctx context.Context, req CreateTicketTypeRequest) (*TicketTypeResponse, error)
	GetTicketType(ctx context.Context, id uuid.UUID) (*TicketTypeResponse, error)
	GetTicketTypesByEvent(ctx context.Context, eventID uuid.UUID) ([]TicketTypeResponse, error)
	UpdateTicketType(ctx context.Context, id uuid.UUID, req UpdateTicketTypeRequest) (*TicketTypeResponse, error)
	DeleteTicketType(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo         Repository
	eventService events.Service
	cacheService cache.Service
}

func NewService(repo Repository, eventService events.Service) Service {
	return &service{
		repo:         repo,
		eventService: eventService,
	}
}

func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

func (s *service) invalidateTypeCache(ctx context.Context) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.DeletePattern(ctx, constants.PatternInvalidateTicketTypes); err != nil {
		logger.GetDefault().Warn("failed to invalidate ticket type cache", "error", err)
	}
}

func validateSaleWindow(start, end *time.Time) error {
	if start != nil && end != nil && !end.After(*start) {
		return ErrInvalidSaleWindow
	}
	return nil
}

func (s *service) CreateTicketType(ctx context.Context, req CreateTicketTypeRequest) (*TicketTypeResponse, error) {
	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		return nil, fmt.Errorf("invalid event ID: %w", err)
	}

	if _, err := s.eventService.GetEventByID(ctx, eventID); err != nil {
		return nil, err
	}

	if req.Price.IsNegative() {
		return nil, ErrNegativePrice
	}
	if err := validateSaleWindow(req.SaleStartsAt, req.SaleEndsAt); err != nil {
		return nil, err
	}

	minPer := req.MinPerOrder
	if minPer == 0 {
		minPer = 1
	}
	maxPer := req.MaxPerOrder
	if maxPer == 0 {
		maxPer = 10
	}
	if maxPer < minPer {
		return nil, ErrInvalidOrderLimits
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	ticketType := &TicketType{
		EventID:       eventID,
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		Currency:      currency,
		QuantityTotal: req.QuantityTotal,
		MinPerOrder:   minPer,
		MaxPerOrder:   maxPer,
		SaleStartsAt:  req.SaleStartsAt,
		SaleEndsAt:    req.SaleEndsAt,
		IsActive:      true,
	}

	if err := s.repo.Create(ticketType); err != nil {
		return nil, fmt.Errorf("failed to create ticket type: %w", err)
	}

	s.invalidateTypeCache(ctx)

	resp := ticketType.ToResponse(ticketType.QuantityTotal)
	return &resp, nil
}

func (s *service) GetTicketType(ctx context.Context, id uuid.UUID) (*TicketTypeResponse, error) {
	ticketType, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketTypeNotFound
		}
		return nil, fmt.Errorf("failed to get ticket type: %w", err)
	}

	sold, err := s.soldCount(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := ticketType.ToResponse(remaining(ticketType.QuantityTotal, sold))
	return &resp, nil
}

func (s *service) GetTicketTypesByEvent(ctx context.Context, eventID uuid.UUID) ([]TicketTypeResponse, error) {
	cacheKey := constants.BuildTicketTypesByEventKey(eventID.String())

	if s.cacheService != nil {
		var cached []TicketTypeResponse
		if err := s.cacheService.Get(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	types, err := s.repo.GetByEventID(eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket types: %w", err)
	}

	typeIDs := make([]uuid.UUID, len(types))
	for i, t := range types {
		typeIDs[i] = t.ID
	}

	soldCounts, err := s.repo.CountSoldBatch(typeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to count sold tickets: %w", err)
	}

	responses := make([]TicketTypeResponse, len(types))
	for i, t := range types {
		responses[i] = t.ToResponse(remaining(t.QuantityTotal, soldCounts[t.ID]))
	}

	// Remaining counts are advisory for display, the purchase path
	// recomputes them under a row lock. A short TTL keeps them honest.
	if s.cacheService != nil {
		if err := s.cacheService.Set(ctx, cacheKey, responses, constants.TTLRealtime); err != nil {
			logger.GetDefault().Warn("failed to cache ticket types", "error", err)
		}
	}

	return responses, nil
}

func (s *service) UpdateTicketType(ctx context.Context, id uuid.UUID, req UpdateTicketTypeRequest) (*TicketTypeResponse, error) {
	current, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketTypeNotFound
		}
		return nil, fmt.Errorf("failed to get ticket type: %w", err)
	}

	sold, err := s.soldCount(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, ErrNegativePrice
		}
		updates["price"] = *req.Price
	}
	if req.QuantityTotal != nil {
		if *req.QuantityTotal < sold {
			return nil, ErrQuantityBelowSold
		}
		updates["quantity_total"] = *req.QuantityTotal
	}

	minPer := current.MinPerOrder
	if req.MinPerOrder != nil {
		minPer = *req.MinPerOrder
		updates["min_per_order"] = minPer
	}
	maxPer := current.MaxPerOrder
	if req.MaxPerOrder != nil {
		maxPer = *req.MaxPerOrder
		updates["max_per_order"] = maxPer
	}
	if maxPer < minPer {
		return nil, ErrInvalidOrderLimits
	}

	saleStart := current.SaleStartsAt
	if req.SaleStartsAt != nil {
		saleStart = req.SaleStartsAt
		updates["sale_starts_at"] = req.SaleStartsAt
	}
	saleEnd := current.SaleEndsAt
	if req.SaleEndsAt != nil {
		saleEnd = req.SaleEndsAt
		updates["sale_ends_at"] = req.SaleEndsAt
	}
	if err := validateSaleWindow(saleStart, saleEnd); err != nil {
		return nil, err
	}

	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		resp := current.ToResponse(remaining(current.QuantityTotal, sold))
		return &resp, nil
	}

	updated, err := s.repo.Update(id, updates)
	if err != nil {
		return nil, fmt.Errorf("failed to update ticket type: %w", err)
	}

	s.invalidateTypeCache(ctx)

	resp := updated.ToResponse(remaining(updated.QuantityTotal, sold))
	return &resp, nil
}

func (s *service) DeleteTicketType(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTicketTypeNotFound
		}
		return fmt.Errorf("failed to get ticket type: %w", err)
	}

	if err := s.repo.Delete(id); err != nil {
		if errors.Is(err, ErrTypeHasSales) {
			return err
		}
		return fmt.Errorf("failed to delete ticket type: %w", err)
	}

	s.invalidateTypeCache(ctx)
	return nil
}

func (s *service) soldCount(ctx context.Context, id uuid.UUID) (int, error) {
	sold, err := s.repo.CountSold(id)
	if err != nil {
		return 0, fmt.Errorf("failed to count sold tickets: %w", err)
	}
	return sold, nil
}

func remaining(total, sold int) int {
	if sold > total {
		return 0
	}
	return total - sold
}
