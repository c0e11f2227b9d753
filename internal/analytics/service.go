package analytics

import (
	"context"
	"errors"
	"fmt"

	"tickethub/internal/shared/constants"
	"tickethub/pkg/cache"
	"tickethub/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrEventNotFound = errors.New("event not found")

// Service defines the analytics service interface
type Service interface {
	SetCacheService(cacheService cache.Service)
	GetEventSales(ctx context.Context, eventID uuid.UUID) (*EventSales, error)
	GetSalesSummary(ctx context.Context) (*SalesSummary, error)
}

type service struct {
	repo         Repository
	cacheService cache.Service
}

// NewService creates a new analytics service instance
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

func (s *service) setCache(ctx context.Context, key string, value interface{}) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.Set(ctx, key, value, constants.TTLDynamic); err != nil {
		logger.GetDefault().Warn("failed to cache analytics", "key", key, "error", err)
	}
}

func (s *service) GetEventSales(ctx context.Context, eventID uuid.UUID) (*EventSales, error) {
	cacheKey := constants.BuildAnalyticsEventKey(eventID.String())
	if s.cacheService != nil {
		var cached EventSales
		if err := s.cacheService.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	sales, err := s.repo.GetEventSales(eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event sales: %w", err)
	}

	s.setCache(ctx, cacheKey, sales)
	return sales, nil
}

func (s *service) GetSalesSummary(ctx context.Context) (*SalesSummary, error) {
	cacheKey := constants.CacheKeyAnalyticsGlobal
	if s.cacheService != nil {
		var cached SalesSummary
		if err := s.cacheService.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	summary, err := s.repo.GetSalesSummary(30)
	if err != nil {
		return nil, fmt.Errorf("failed to get sales summary: %w", err)
	}

	s.setCache(ctx, cacheKey, summary)
	return summary, nil
}
