package refunds

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tickethub/internal/orders"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrAlreadyRefunded    = errors.New("order has already been refunded")
	ErrOrderNotRefundable = errors.New("order is not in a refundable state")
	ErrEventStarted       = errors.New("refunds are closed once the event has started")
)

type Repository interface {
	// ProcessRefund atomically flips the order, its tickets, and its
	// payment to refunded and records the refund. Refunded tickets stop
	// counting against their type's inventory.
	ProcessRefund(ctx context.Context, orderID uuid.UUID, reason string, at time.Time) (*Refund, error)
	GetRefundByID(ctx context.Context, id uuid.UUID) (*Refund, error)
	GetRefundByOrderID(ctx context.Context, orderID uuid.UUID) (*Refund, error)
	GetUserRefunds(ctx context.Context, userID uuid.UUID) ([]Refund, error)
	GetOrderForRefund(ctx context.Context, orderID uuid.UUID) (*orders.Order, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetOrderForRefund(ctx context.Context, orderID uuid.UUID) (*orders.Order, error) {
	var order orders.Order
	err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

func (r *repository) ProcessRefund(ctx context.Context, orderID uuid.UUID, reason string, at time.Time) (*Refund, error) {
	var refund *Refund

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the order row so a concurrent refund attempt serializes
		// behind this one and sees the refunded status.
		var order orders.Order
		err := lockedOrderQuery(tx, orderID).First(&order).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("failed to lock order: %w", err)
		}

		if order.Status == orders.OrderStatusRefunded {
			return ErrAlreadyRefunded
		}
		if !order.Status.CanBeRefunded() {
			return ErrOrderNotRefundable
		}

		var event struct {
			StartsAt time.Time `gorm:"column:starts_at"`
		}
		err = tx.Table("events").
			Select("starts_at").
			Where("id = ?", order.EventID).
			First(&event).Error
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if !event.StartsAt.After(at) {
			return ErrEventStarted
		}

		if err := tx.Model(&orders.Order{}).
			Where("id = ?", orderID).
			Updates(map[string]interface{}{
				"status":      orders.OrderStatusRefunded,
				"refunded_at": at,
			}).Error; err != nil {
			return fmt.Errorf("failed to refund order: %w", err)
		}

		if err := tx.Model(&orders.Ticket{}).
			Where("order_id = ?", orderID).
			Update("status", orders.TicketStatusRefunded).Error; err != nil {
			return fmt.Errorf("failed to refund tickets: %w", err)
		}

		if err := tx.Model(&orders.Payment{}).
			Where("order_id = ? AND status = ?", orderID, orders.PaymentStatusCompleted).
			Update("status", orders.PaymentStatusRefunded).Error; err != nil {
			return fmt.Errorf("failed to refund payment: %w", err)
		}

		refund = &Refund{
			OrderID:     orderID,
			Amount:      order.TotalAmount,
			Currency:    order.Currency,
			Reason:      reason,
			Status:      RefundStatusProcessed,
			RequestedAt: at,
			ProcessedAt: &at,
		}
		if err := tx.Create(refund).Error; err != nil {
			return fmt.Errorf("failed to record refund: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return refund, nil
}

// lockedOrderQuery selects the order row FOR UPDATE.
func lockedOrderQuery(tx *gorm.DB, orderID uuid.UUID) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("id = ?", orderID)
}

func (r *repository) GetRefundByID(ctx context.Context, id uuid.UUID) (*Refund, error) {
	var refund Refund
	err := r.db.WithContext(ctx).First(&refund, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &refund, nil
}

func (r *repository) GetRefundByOrderID(ctx context.Context, orderID uuid.UUID) (*Refund, error) {
	var refund Refund
	err := r.db.WithContext(ctx).First(&refund, "order_id = ?", orderID).Error
	if err != nil {
		return nil, err
	}
	return &refund, nil
}

func (r *repository) GetUserRefunds(ctx context.Context, userID uuid.UUID) ([]Refund, error) {
	var refundList []Refund
	err := r.db.WithContext(ctx).
		Joins("JOIN orders ON refunds.order_id = orders.id").
		Where("orders.user_id = ?", userID).
		Order("refunds.created_at DESC").
		Find(&refundList).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get user refunds: %w", err)
	}
	return refundList, nil
}
