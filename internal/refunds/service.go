package refunds

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tickethub/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrRefundNotFound = errors.New("refund not found")
	ErrNotOrderOwner  = errors.New("order does not belong to user")
)

type Service interface {
	// RequestRefund processes a full-order refund on behalf of the
	// order's owner. Admins may refund any order.
	RequestRefund(ctx context.Context, orderID uuid.UUID, userID uuid.UUID, isAdmin bool, req RefundRequest) (*RefundResponse, error)
	GetRefund(ctx context.Context, refundID uuid.UUID) (*RefundResponse, error)
	GetUserRefunds(ctx context.Context, userID uuid.UUID) ([]RefundResponse, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service {
	return &service{
		repo: repo,
		now:  time.Now,
	}
}

func (s *service) RequestRefund(ctx context.Context, orderID uuid.UUID, userID uuid.UUID, isAdmin bool, req RefundRequest) (*RefundResponse, error) {
	order, err := s.repo.GetOrderForRefund(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !isAdmin && order.UserID != userID {
		return nil, ErrNotOrderOwner
	}

	refund, err := s.repo.ProcessRefund(ctx, orderID, req.Reason, s.now())
	if err != nil {
		return nil, err
	}

	logger.GetDefault().LogOrderRefunded(ctx, orderID.String(), order.UserID.String())

	resp := refund.ToResponse()
	return &resp, nil
}

func (s *service) GetRefund(ctx context.Context, refundID uuid.UUID) (*RefundResponse, error) {
	refund, err := s.repo.GetRefundByID(ctx, refundID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefundNotFound
		}
		return nil, fmt.Errorf("failed to get refund: %w", err)
	}

	resp := refund.ToResponse()
	return &resp, nil
}

func (s *service) GetUserRefunds(ctx context.Context, userID uuid.UUID) ([]RefundResponse, error) {
	refundList, err := s.repo.GetUserRefunds(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]RefundResponse, len(refundList))
	for i := range refundList {
		responses[i] = refundList[i].ToResponse()
	}
	return responses, nil
}
