package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PurchaseLine is one validated line item ready for execution. Attendees
// has exactly Quantity entries, already defaulted to the buyer snapshot.
type PurchaseLine struct {
	TicketTypeID uuid.UUID
	Quantity     int
	Attendees    []AttendeeInfo
}

// PurchaseCommand carries everything the executor needs to run one
// purchase transaction. On success the Order draft is fully populated
// with its issued tickets and payment.
type PurchaseCommand struct {
	Order          *Order
	Lines          []PurchaseLine
	PaymentMethod  string
	At             time.Time
	CodeRetryLimit int
}

type Repository interface {
	// GetEventForPurchase returns the purchase-relevant event view, or
	// nil when no such event exists.
	GetEventForPurchase(ctx context.Context, eventID uuid.UUID) (*EventSnapshot, error)
	// GetTypeSnapshots reads ticket types with their sold counts without
	// locking. Display-grade only; ExecutePurchase re-reads under lock.
	GetTypeSnapshots(ctx context.Context, typeIDs []uuid.UUID) (map[uuid.UUID]*TypeSnapshot, error)
	// ExecutePurchase runs the atomic reserve-and-sell transaction and
	// returns the locked snapshots it sold against, keyed by type ID.
	ExecutePurchase(ctx context.Context, cmd *PurchaseCommand) (map[uuid.UUID]*TypeSnapshot, error)

	GetOrderByID(ctx context.Context, orderID uuid.UUID) (*Order, error)
	GetUserOrders(ctx context.Context, userID uuid.UUID, query OrderListQuery) ([]Order, int64, error)
	GetTicketByCode(ctx context.Context, code string) (*Ticket, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetEventForPurchase(ctx context.Context, eventID uuid.UUID) (*EventSnapshot, error) {
	var event struct {
		ID       uuid.UUID `gorm:"column:id"`
		Name     string    `gorm:"column:name"`
		Status   string    `gorm:"column:status"`
		StartsAt time.Time `gorm:"column:starts_at"`
	}

	err := r.db.WithContext(ctx).
		Table("events").
		Select("id, name, status, starts_at").
		Where("id = ?", eventID).
		First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read event: %w", err)
	}

	return &EventSnapshot{
		ID:       event.ID,
		Name:     event.Name,
		Status:   event.Status,
		StartsAt: event.StartsAt,
	}, nil
}

func (r *repository) GetTypeSnapshots(ctx context.Context, typeIDs []uuid.UUID) (map[uuid.UUID]*TypeSnapshot, error) {
	return loadTypeSnapshots(r.db.WithContext(ctx), typeIDs, false)
}

// typeSnapshotQuery builds the ticket-type read, ordered by ID so
// concurrent purchases touching overlapping type sets cannot deadlock
// each other. With forUpdate the SELECT carries a FOR UPDATE row lock.
func typeSnapshotQuery(tx *gorm.DB, typeIDs []uuid.UUID, forUpdate bool) *gorm.DB {
	query := tx.Table("ticket_types").
		Select("id, event_id, name, price, currency, quantity_total, min_per_order, max_per_order, sale_starts_at, sale_ends_at, is_active").
		Where("id IN ?", typeIDs).
		Order("id")
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
	}
	return query
}

// loadTypeSnapshots reads ticket-type rows plus sold counts, locking
// the rows when forUpdate is set.
func loadTypeSnapshots(tx *gorm.DB, typeIDs []uuid.UUID, forUpdate bool) (map[uuid.UUID]*TypeSnapshot, error) {
	if len(typeIDs) == 0 {
		return map[uuid.UUID]*TypeSnapshot{}, nil
	}

	var rows []struct {
		ID            uuid.UUID       `gorm:"column:id"`
		EventID       uuid.UUID       `gorm:"column:event_id"`
		Name          string          `gorm:"column:name"`
		Price         decimal.Decimal `gorm:"column:price"`
		Currency      string          `gorm:"column:currency"`
		QuantityTotal int             `gorm:"column:quantity_total"`
		MinPerOrder   int             `gorm:"column:min_per_order"`
		MaxPerOrder   int             `gorm:"column:max_per_order"`
		SaleStartsAt  *time.Time      `gorm:"column:sale_starts_at"`
		SaleEndsAt    *time.Time      `gorm:"column:sale_ends_at"`
		IsActive      bool            `gorm:"column:is_active"`
	}

	if err := typeSnapshotQuery(tx, typeIDs, forUpdate).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to read ticket types: %w", err)
	}

	snapshots := make(map[uuid.UUID]*TypeSnapshot, len(rows))
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		snapshots[row.ID] = &TypeSnapshot{
			ID:            row.ID,
			EventID:       row.EventID,
			Name:          row.Name,
			Price:         row.Price,
			Currency:      row.Currency,
			QuantityTotal: row.QuantityTotal,
			MinPerOrder:   row.MinPerOrder,
			MaxPerOrder:   row.MaxPerOrder,
			SaleStartsAt:  row.SaleStartsAt,
			SaleEndsAt:    row.SaleEndsAt,
			IsActive:      row.IsActive,
		}
		ids = append(ids, row.ID)
	}

	// Sold = tickets that still consume inventory (anything not refunded).
	var soldRows []struct {
		TicketTypeID uuid.UUID `gorm:"column:ticket_type_id"`
		Sold         int       `gorm:"column:sold"`
	}
	err := tx.Table("tickets").
		Select("ticket_type_id, COUNT(*) AS sold").
		Where("ticket_type_id IN ? AND status != ?", ids, TicketStatusRefunded).
		Group("ticket_type_id").
		Scan(&soldRows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count sold tickets: %w", err)
	}
	for _, row := range soldRows {
		if snap, ok := snapshots[row.TicketTypeID]; ok {
			snap.Sold = row.Sold
		}
	}

	return snapshots, nil
}

// ExecutePurchase is the reserve-and-sell core. The ticket-type rows are
// locked for the duration of the transaction, the inventory check is
// re-run against that locked read, and the order with its tickets and
// payment either all commit or all roll back.
func (r *repository) ExecutePurchase(ctx context.Context, cmd *PurchaseCommand) (map[uuid.UUID]*TypeSnapshot, error) {
	order := cmd.Order
	var snapshots map[uuid.UUID]*TypeSnapshot

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		typeIDs := make([]uuid.UUID, len(cmd.Lines))
		for i, line := range cmd.Lines {
			typeIDs[i] = line.TicketTypeID
		}

		var err error
		snapshots, err = loadTypeSnapshots(tx, typeIDs, true)
		if err != nil {
			return NewStoreFailure(err)
		}

		// Authoritative recheck under the row locks. A concurrent
		// purchase that committed first is visible here, so oversell
		// is impossible past this point.
		total := decimal.Zero
		for _, line := range cmd.Lines {
			snap := snapshots[line.TicketTypeID]
			if perr := checkLine(snap, order.EventID, line.Quantity, cmd.At); perr != nil {
				return perr
			}
			total = total.Add(snap.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}

		order.TotalAmount = total
		order.Status = OrderStatusPending
		if snap := snapshots[cmd.Lines[0].TicketTypeID]; snap.Currency != "" {
			order.Currency = snap.Currency
		}

		if err := tx.Create(order).Error; err != nil {
			return NewStoreFailure(fmt.Errorf("failed to create order: %w", err))
		}

		for _, line := range cmd.Lines {
			snap := snapshots[line.TicketTypeID]
			for unit := 0; unit < line.Quantity; unit++ {
				ticket := Ticket{
					OrderID:       order.ID,
					TicketTypeID:  snap.ID,
					Status:        TicketStatusActive,
					PurchasePrice: snap.Price,
					Currency:      snap.Currency,
					AttendeeName:  line.Attendees[unit].Name,
					AttendeeEmail: line.Attendees[unit].Email,
				}
				if err := insertTicketWithRetry(tx, &ticket, cmd.CodeRetryLimit); err != nil {
					return err
				}
				order.Tickets = append(order.Tickets, ticket)
			}
		}

		now := cmd.At
		payment := Payment{
			OrderID:       order.ID,
			Amount:        order.TotalAmount,
			Currency:      order.Currency,
			Status:        PaymentStatusCompleted,
			PaymentMethod: cmd.PaymentMethod,
			TransactionID: generateTransactionID(),
			ProcessedAt:   &now,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return NewStoreFailure(fmt.Errorf("failed to create payment: %w", err))
		}
		order.Payments = append(order.Payments, payment)

		if err := tx.Model(&Order{}).
			Where("id = ?", order.ID).
			Update("status", OrderStatusCompleted).Error; err != nil {
			return NewStoreFailure(fmt.Errorf("failed to complete order: %w", err))
		}
		order.Status = OrderStatusCompleted

		return nil
	})
	if err != nil {
		return nil, classifyTxError(err)
	}

	return snapshots, nil
}

// insertTicketWithRetry inserts a ticket, regenerating its code when the
// unique index rejects a collision. Each attempt runs in a nested
// transaction so the savepoint absorbs the unique violation and the
// surrounding purchase transaction stays usable for the next attempt.
func insertTicketWithRetry(tx *gorm.DB, ticket *Ticket, retryLimit int) error {
	return insertWithCodeRetry(ticket, retryLimit, func(t *Ticket) error {
		return tx.Transaction(func(tx *gorm.DB) error {
			return tx.Create(t).Error
		})
	})
}

// insertWithCodeRetry drives the code-collision retry loop. Retries are
// bounded; exhaustion is a store failure.
func insertWithCodeRetry(ticket *Ticket, retryLimit int, insert func(*Ticket) error) error {
	if retryLimit < 1 {
		retryLimit = 1
	}

	var lastErr error
	for attempt := 0; attempt < retryLimit; attempt++ {
		code, err := GenerateTicketCode()
		if err != nil {
			return NewStoreFailure(err)
		}
		ticket.Code = code
		ticket.ID = uuid.Nil

		err = insert(ticket)
		if err == nil {
			return nil
		}
		if !isDuplicateKey(err) {
			return NewStoreFailure(fmt.Errorf("failed to create ticket: %w", err))
		}
		lastErr = err
	}

	return NewStoreFailure(fmt.Errorf("ticket code generation exhausted %d attempts: %w", retryLimit, lastErr))
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// classifyTxError folds store-level outcomes into the purchase taxonomy.
// Serialization and deadlock aborts are transient and safe to retry.
func classifyTxError(err error) error {
	var perr *PurchaseError
	if errors.As(err, &perr) {
		return perr
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01":
			return NewConcurrencyConflict("purchase conflicted with a concurrent transaction, retry once")
		}
	}

	return NewStoreFailure(err)
}

func (r *repository) GetOrderByID(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	var order Order
	err := r.db.WithContext(ctx).
		Preload("Tickets").
		Preload("Payments").
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) GetUserOrders(ctx context.Context, userID uuid.UUID, query OrderListQuery) ([]Order, int64, error) {
	var ordersList []Order
	var totalCount int64

	db := r.db.WithContext(ctx).Model(&Order{}).Where("user_id = ?", userID)
	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}

	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	if query.Page == 0 {
		query.Page = 1
	}
	if query.Limit == 0 {
		query.Limit = 10
	}
	offset := (query.Page - 1) * query.Limit

	err := db.Preload("Tickets").
		Order("created_at DESC").
		Offset(offset).
		Limit(query.Limit).
		Find(&ordersList).Error

	return ordersList, totalCount, err
}

func (r *repository) GetTicketByCode(ctx context.Context, code string) (*Ticket, error) {
	var ticket Ticket
	err := r.db.WithContext(ctx).
		Preload("Order").
		Where("code = ?", code).
		First(&ticket).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}
