package orders

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tickethub/internal/shared/config"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeRepo implements Repository in memory with the same semantics as the
// Postgres implementation: ExecutePurchase holds an exclusive lock while
// it rechecks inventory and commits, so concurrent purchases serialize
// exactly like FOR UPDATE row locks do.
type fakeRepo struct {
	mu     sync.Mutex
	event  *EventSnapshot
	types  map[uuid.UUID]*TypeSnapshot
	orders []*Order
	codes  map[string]bool

	// failMidTransaction aborts every purchase after the inventory
	// recheck passes, simulating an insert failure before commit.
	failMidTransaction bool
}

func newFakeRepo(event *EventSnapshot, types ...*TypeSnapshot) *fakeRepo {
	typeMap := make(map[uuid.UUID]*TypeSnapshot, len(types))
	for _, t := range types {
		typeMap[t.ID] = t
	}
	return &fakeRepo{
		event: event,
		types: typeMap,
		codes: make(map[string]bool),
	}
}

func (f *fakeRepo) GetEventForPurchase(ctx context.Context, eventID uuid.UUID) (*EventSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.event == nil || f.event.ID != eventID {
		return nil, nil
	}
	snapshot := *f.event
	return &snapshot, nil
}

func (f *fakeRepo) snapshotTypes(typeIDs []uuid.UUID) map[uuid.UUID]*TypeSnapshot {
	snapshots := make(map[uuid.UUID]*TypeSnapshot, len(typeIDs))
	for _, id := range typeIDs {
		if t, ok := f.types[id]; ok {
			copied := *t
			snapshots[id] = &copied
		}
	}
	return snapshots
}

func (f *fakeRepo) GetTypeSnapshots(ctx context.Context, typeIDs []uuid.UUID) (map[uuid.UUID]*TypeSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotTypes(typeIDs), nil
}

func (f *fakeRepo) ExecutePurchase(ctx context.Context, cmd *PurchaseCommand) (map[uuid.UUID]*TypeSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	order := cmd.Order

	typeIDs := make([]uuid.UUID, len(cmd.Lines))
	for i, line := range cmd.Lines {
		typeIDs[i] = line.TicketTypeID
	}
	snapshots := f.snapshotTypes(typeIDs)

	total := decimal.Zero
	for _, line := range cmd.Lines {
		snap := snapshots[line.TicketTypeID]
		if perr := checkLine(snap, order.EventID, line.Quantity, cmd.At); perr != nil {
			return nil, perr
		}
		total = total.Add(snap.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	if f.failMidTransaction {
		// Nothing written: the transaction rolls back wholesale.
		return nil, NewStoreFailure(errors.New("injected insert failure"))
	}

	order.ID = uuid.New()
	order.TotalAmount = total
	order.Status = OrderStatusCompleted
	order.CreatedAt = cmd.At
	if snap := snapshots[cmd.Lines[0].TicketTypeID]; snap.Currency != "" {
		order.Currency = snap.Currency
	}

	for _, line := range cmd.Lines {
		snap := snapshots[line.TicketTypeID]
		for unit := 0; unit < line.Quantity; unit++ {
			var code string
			for attempt := 0; attempt < cmd.CodeRetryLimit; attempt++ {
				generated, err := GenerateTicketCode()
				if err != nil {
					return nil, NewStoreFailure(err)
				}
				if !f.codes[generated] {
					code = generated
					break
				}
			}
			if code == "" {
				return nil, NewStoreFailure(errors.New("code generation exhausted"))
			}
			f.codes[code] = true

			order.Tickets = append(order.Tickets, Ticket{
				ID:            uuid.New(),
				OrderID:       order.ID,
				TicketTypeID:  snap.ID,
				Code:          code,
				Status:        TicketStatusActive,
				PurchasePrice: snap.Price,
				Currency:      snap.Currency,
				AttendeeName:  line.Attendees[unit].Name,
				AttendeeEmail: line.Attendees[unit].Email,
				CreatedAt:     cmd.At,
			})
		}
		f.types[line.TicketTypeID].Sold += line.Quantity
	}

	order.Payments = append(order.Payments, Payment{
		ID:            uuid.New(),
		OrderID:       order.ID,
		Amount:        order.TotalAmount,
		Currency:      order.Currency,
		Status:        PaymentStatusCompleted,
		PaymentMethod: cmd.PaymentMethod,
		TransactionID: generateTransactionID(),
		ProcessedAt:   &cmd.At,
	})

	f.orders = append(f.orders, order)
	return snapshots, nil
}

func (f *fakeRepo) GetOrderByID(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, order := range f.orders {
		if order.ID == orderID {
			return order, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) GetUserOrders(ctx context.Context, userID uuid.UUID, query OrderListQuery) ([]Order, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []Order
	for _, order := range f.orders {
		if order.UserID == userID {
			result = append(result, *order)
		}
	}
	return result, int64(len(result)), nil
}

func (f *fakeRepo) GetTicketByCode(ctx context.Context, code string) (*Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, order := range f.orders {
		for i := range order.Tickets {
			if order.Tickets[i].Code == code {
				return &order.Tickets[i], nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) totalTickets() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, order := range f.orders {
		count += len(order.Tickets)
	}
	return count
}

func (f *fakeRepo) sold(typeID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.types[typeID].Sold
}

var testClock = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func testPurchaseConfig() config.PurchaseConfig {
	return config.PurchaseConfig{
		MaxLineItems:       20,
		MaxQuantityPerLine: 10,
		CodeRetryLimit:     5,
	}
}

func publishedEvent() *EventSnapshot {
	return &EventSnapshot{
		ID:       uuid.New(),
		Name:     "Summer Fest",
		Status:   "published",
		StartsAt: testClock.Add(48 * time.Hour),
	}
}

func generalAdmission(eventID uuid.UUID, capacity int) *TypeSnapshot {
	return &TypeSnapshot{
		ID:            uuid.New(),
		EventID:       eventID,
		Name:          "General Admission",
		Price:         decimal.NewFromFloat(20.00),
		Currency:      "USD",
		QuantityTotal: capacity,
		MinPerOrder:   1,
		MaxPerOrder:   5,
		IsActive:      true,
	}
}

func newTestService(repo *fakeRepo) *service {
	svc := NewService(repo, testPurchaseConfig()).(*service)
	svc.now = func() time.Time { return testClock }
	return svc
}

func singleLineRequest(typeID uuid.UUID, quantity int) PurchaseRequest {
	return PurchaseRequest{
		LineItems: []LineItemRequest{
			{TicketTypeID: typeID.String(), Quantity: quantity},
		},
		Customer: CustomerInfo{
			Name:  "Ada Lovelace",
			Email: "ada@example.com",
			Phone: "+1-555-0100",
		},
		PaymentMethod: "card",
	}
}

func requireKind(t *testing.T, err error, kind PurchaseErrorKind) *PurchaseError {
	t.Helper()
	var perr *PurchaseError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, kind, perr.Kind)
	return perr
}

func TestPurchaseOversellInvariant(t *testing.T) {
	const capacity = 5
	const buyers = 20

	event := publishedEvent()
	ga := generalAdmission(event.ID, capacity)
	repo := newFakeRepo(event, ga)
	svc := newTestService(repo)

	var wg sync.WaitGroup
	results := make([]error, buyers)

	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Purchase(context.Background(), uuid.New(), event.ID, singleLineRequest(ga.ID, 1))
			results[i] = err
		}(i)
	}
	wg.Wait()

	successes, rejections := 0, 0
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}
		perr := requireKind(t, err, KindInsufficientInventory)
		assert.GreaterOrEqual(t, perr.Remaining, 0)
		rejections++
	}

	assert.Equal(t, capacity, successes)
	assert.Equal(t, buyers-capacity, rejections)
	assert.Equal(t, capacity, repo.totalTickets(), "no tickets beyond capacity may exist")
	assert.Equal(t, capacity, repo.sold(ga.ID))
}

func TestPurchaseAtomicityOnInjectedFailure(t *testing.T) {
	event := publishedEvent()
	ga := generalAdmission(event.ID, 10)
	repo := newFakeRepo(event, ga)
	repo.failMidTransaction = true
	svc := newTestService(repo)

	_, err := svc.Purchase(context.Background(), uuid.New(), event.ID, singleLineRequest(ga.ID, 3))
	requireKind(t, err, KindStoreFailure)

	assert.Empty(t, repo.orders, "failed purchase must leave no order behind")
	assert.Equal(t, 0, repo.totalTickets(), "failed purchase must leave no tickets behind")
	assert.Equal(t, 0, repo.sold(ga.ID))
}

func TestValidateIsIdempotentAndReadOnly(t *testing.T) {
	event := publishedEvent()
	ga := generalAdmission(event.ID, 10)
	repo := newFakeRepo(event, ga)
	svc := newTestService(repo)

	req := singleLineRequest(ga.ID, 2)

	first, err := svc.ValidatePurchase(context.Background(), event.ID, req)
	require.NoError(t, err)
	second, err := svc.ValidatePurchase(context.Background(), event.ID, req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 0, repo.sold(ga.ID), "validation must not consume inventory")
	assert.Empty(t, repo.orders)

	assert.True(t, first.TotalAmount.Equal(decimal.NewFromFloat(40.00)))
	require.Len(t, first.Lines, 1)
	assert.Equal(t, 10, first.Lines[0].Remaining)
}

func TestPriceLockInAtTransactionTime(t *testing.T) {
	event := publishedEvent()
	ga := generalAdmission(event.ID, 10)
	repo := newFakeRepo(event, ga)
	svc := newTestService(repo)

	first, err := svc.Purchase(context.Background(), uuid.New(), event.ID, singleLineRequest(ga.ID, 1))
	require.NoError(t, err)
	assert.True(t, first.TotalAmount.Equal(decimal.NewFromFloat(20.00)))

	// Reprice the type between the two purchases.
	repo.mu.Lock()
	repo.types[ga.ID].Price = decimal.NewFromFloat(35.00)
	repo.mu.Unlock()

	second, err := svc.Purchase(context.Background(), uuid.New(), event.ID, singleLineRequest(ga.ID, 1))
	require.NoError(t, err)
	assert.True(t, second.TotalAmount.Equal(decimal.NewFromFloat(35.00)),
		"later purchase must use the price current at its own transaction time")

	require.Len(t, first.Tickets, 1)
	assert.True(t, first.Tickets[0].PurchasePrice.Equal(decimal.NewFromFloat(20.00)),
		"earlier tickets keep their locked purchase price")
}

func TestMaxPurchaseBoundary(t *testing.T) {
	event := publishedEvent()
	ga := generalAdmission(event.ID, 50) // MaxPerOrder is 5
	repo := newFakeRepo(event, ga)
	svc := newTestService(repo)

	result, err := svc.Purchase(context.Background(), uuid.New(), event.ID, singleLineRequest(ga.ID, 5))
	require.NoError(t, err)
	assert.Len(t, result.Tickets, 5)

	_, err = svc.Purchase(context.Background(), uuid.New(), event.ID, singleLineRequest(ga.ID, 6))
	requireKind(t, err, KindLimitExceeded)
}

func TestTwoBuyersLastUnit(t *testing.T) {
	event := publishedEvent()
	ga := generalAdmission(event.ID, 1)
	repo := newFakeRepo(event, ga)
	svc := newTestService(repo)

	var wg sync.WaitGroup
	results := make([]error, 2)
	responses := make([]*PurchaseResponse, 2)

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			responses[i], results[i] = svc.Purchase(context.Background(), uuid.New(), event.ID, singleLineRequest(ga.ID, 1))
		}(i)
	}
	wg.Wait()

	var winner *PurchaseResponse
	var loser *PurchaseError
	for i := 0; i < 2; i++ {
		if results[i] == nil {
			require.Nil(t, winner, "exactly one purchase may succeed")
			winner = responses[i]
		} else {
			loser = requireKind(t, results[i], KindInsufficientInventory)
		}
	}

	require.NotNil(t, winner)
	require.NotNil(t, loser)
	require.Len(t, winner.Tickets, 1)
	assert.True(t, winner.Tickets[0].PurchasePrice.Equal(decimal.NewFromFloat(20.00)))
	assert.Equal(t, 0, loser.Remaining)
}

func TestSaleEndedRegardlessOfInventory(t *testing.T) {
	event := publishedEvent()
	ga := generalAdmission(event.ID, 100)
	yesterday := testClock.Add(-24 * time.Hour)
	ga.SaleEndsAt = &yesterday

	repo := newFakeRepo(event, ga)
	svc := newTestService(repo)

	_, err := svc.Purchase(context.Background(), uuid.New(), event.ID, singleLineRequest(ga.ID, 1))
	requireKind(t, err, KindSaleEnded)

	_, err = svc.ValidatePurchase(context.Background(), event.ID, singleLineRequest(ga.ID, 1))
	requireKind(t, err, KindSaleEnded)
}

func TestSaleNotYetOpen(t *testing.T) {
	event := publishedEvent()
	ga := generalAdmission(event.ID, 100)
	tomorrow := testClock.Add(24 * time.Hour)
	ga.SaleStartsAt = &tomorrow

	repo := newFakeRepo(event, ga)
	svc := newTestService(repo)

	_, err := svc.Purchase(context.Background(), uuid.New(), event.ID, singleLineRequest(ga.ID, 1))
	requireKind(t, err, KindNotYetOnSale)
}

func TestInactiveTypeIsIneligible(t *testing.T) {
	event := publishedEvent()
	ga := generalAdmission(event.ID, 100)
	ga.IsActive = false

	repo := newFakeRepo(event, ga)
	svc := newTestService(repo)

	_, err := svc.Purchase(context.Background(), uuid.New(), event.ID, singleLineRequest(ga.ID, 1))
	requireKind(t, err, KindIneligible)
}

func TestUnknownTypeAndForeignType(t *testing.T) {
	event := publishedEvent()
	ga := generalAdmission(event.ID, 100)
	otherEventType := generalAdmission(uuid.New(), 100)

	repo := newFakeRepo(event, ga, otherEventType)
	svc := newTestService(repo)

	_, err := svc.Purchase(context.Background(), uuid.New(), event.ID, singleLineRequest(uuid.New(), 1))
	requireKind(t, err, KindNotFound)

	_, err = svc.Purchase(context.Background(), uuid.New(), event.ID, singleLineRequest(otherEventType.ID, 1))
	requireKind(t, err, KindNotFound)
}

func TestUnknownEvent(t *testing.T) {
	event := publishedEvent()
	ga := generalAdmission(event.ID, 100)
	repo := newFakeRepo(event, ga)
	svc := newTestService(repo)

	_, err := svc.Purchase(context.Background(), uuid.New(), uuid.New(), singleLineRequest(ga.ID, 1))
	requireKind(t, err, KindNotFound)
}

func TestUnpublishedEventIsNotPurchasable(t *testing.T) {
	event := publishedEvent()
	event.Status = "draft"
	ga := generalAdmission(event.ID, 100)
	repo := newFakeRepo(event, ga)
	svc := newTestService(repo)

	_, err := svc.Purchase(context.Background(), uuid.New(), event.ID, singleLineRequest(ga.ID, 1))
	requireKind(t, err, KindNotFound)
}

func TestStartedEventRejectsPurchases(t *testing.T) {
	event := publishedEvent()
	event.StartsAt = testClock.Add(-1 * time.Hour)
	ga := generalAdmission(event.ID, 100)
	repo := newFakeRepo(event, ga)
	svc := newTestService(repo)

	_, err := svc.Purchase(context.Background(), uuid.New(), event.ID, singleLineRequest(ga.ID, 1))
	requireKind(t, err, KindSaleEnded)
}

func TestDuplicateLineItemsRejected(t *testing.T) {
	event := publishedEvent()
	ga := generalAdmission(event.ID, 100)
	repo := newFakeRepo(event, ga)
	svc := newTestService(repo)

	req := singleLineRequest(ga.ID, 1)
	req.LineItems = append(req.LineItems, LineItemRequest{TicketTypeID: ga.ID.String(), Quantity: 2})

	_, err := svc.Purchase(context.Background(), uuid.New(), event.ID, req)
	require.ErrorIs(t, err, ErrDuplicateLineItems)
}

func TestAttendeeDefaultsToBuyerSnapshot(t *testing.T) {
	event := publishedEvent()
	ga := generalAdmission(event.ID, 100)
	repo := newFakeRepo(event, ga)
	svc := newTestService(repo)

	result, err := svc.Purchase(context.Background(), uuid.New(), event.ID, singleLineRequest(ga.ID, 2))
	require.NoError(t, err)

	require.Len(t, result.Tickets, 2)
	for _, ticket := range result.Tickets {
		assert.Equal(t, "Ada Lovelace", ticket.AttendeeName)
		assert.Equal(t, "ada@example.com", ticket.AttendeeEmail)
	}
}

func TestPerTicketAttendees(t *testing.T) {
	event := publishedEvent()
	ga := generalAdmission(event.ID, 100)
	repo := newFakeRepo(event, ga)
	svc := newTestService(repo)

	req := singleLineRequest(ga.ID, 2)
	req.LineItems[0].Attendees = []AttendeeInfo{
		{Name: "Grace Hopper", Email: "grace@example.com"},
		{Name: "Alan Turing", Email: "alan@example.com"},
	}

	result, err := svc.Purchase(context.Background(), uuid.New(), event.ID, req)
	require.NoError(t, err)

	require.Len(t, result.Tickets, 2)
	assert.Equal(t, "Grace Hopper", result.Tickets[0].AttendeeName)
	assert.Equal(t, "Alan Turing", result.Tickets[1].AttendeeName)
}

func TestAttendeeCountMismatchRejected(t *testing.T) {
	event := publishedEvent()
	ga := generalAdmission(event.ID, 100)
	repo := newFakeRepo(event, ga)
	svc := newTestService(repo)

	req := singleLineRequest(ga.ID, 3)
	req.LineItems[0].Attendees = []AttendeeInfo{
		{Name: "Grace Hopper", Email: "grace@example.com"},
	}

	_, err := svc.Purchase(context.Background(), uuid.New(), event.ID, req)
	require.ErrorIs(t, err, ErrAttendeeCount)
}

func TestMultiLinePurchaseTotals(t *testing.T) {
	event := publishedEvent()
	ga := generalAdmission(event.ID, 100)
	vip := &TypeSnapshot{
		ID:            uuid.New(),
		EventID:       event.ID,
		Name:          "VIP",
		Price:         decimal.NewFromFloat(75.50),
		Currency:      "USD",
		QuantityTotal: 10,
		MinPerOrder:   1,
		MaxPerOrder:   4,
		IsActive:      true,
	}

	repo := newFakeRepo(event, ga, vip)
	svc := newTestService(repo)

	req := PurchaseRequest{
		LineItems: []LineItemRequest{
			{TicketTypeID: ga.ID.String(), Quantity: 2},
			{TicketTypeID: vip.ID.String(), Quantity: 1},
		},
		Customer:      CustomerInfo{Name: "Ada Lovelace", Email: "ada@example.com"},
		PaymentMethod: "card",
	}

	result, err := svc.Purchase(context.Background(), uuid.New(), event.ID, req)
	require.NoError(t, err)

	assert.True(t, result.TotalAmount.Equal(decimal.NewFromFloat(115.50)))
	assert.Len(t, result.Tickets, 3)
	assert.Equal(t, OrderStatusCompleted, result.Status)
	assert.Equal(t, PaymentStatusCompleted, result.Payment.Status)

	names := map[string]int{}
	for _, ticket := range result.Tickets {
		names[ticket.TicketTypeName]++
	}
	assert.Equal(t, 2, names["General Admission"])
	assert.Equal(t, 1, names["VIP"])
}

func TestGetOrderOwnership(t *testing.T) {
	event := publishedEvent()
	ga := generalAdmission(event.ID, 100)
	repo := newFakeRepo(event, ga)
	svc := newTestService(repo)

	buyer := uuid.New()
	result, err := svc.Purchase(context.Background(), buyer, event.ID, singleLineRequest(ga.ID, 1))
	require.NoError(t, err)

	orderID := uuid.MustParse(result.OrderID)

	order, err := svc.GetOrder(context.Background(), orderID, buyer, false)
	require.NoError(t, err)
	assert.Equal(t, buyer, order.UserID)

	_, err = svc.GetOrder(context.Background(), orderID, uuid.New(), false)
	assert.ErrorIs(t, err, ErrNotOrderOwner)

	_, err = svc.GetOrder(context.Background(), orderID, uuid.New(), true)
	assert.NoError(t, err, "admins may read any order")

	_, err = svc.GetOrder(context.Background(), uuid.New(), buyer, false)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestInsufficientInventoryReportsFreshRemaining(t *testing.T) {
	event := publishedEvent()
	ga := generalAdmission(event.ID, 4)
	repo := newFakeRepo(event, ga)
	svc := newTestService(repo)

	_, err := svc.Purchase(context.Background(), uuid.New(), event.ID, singleLineRequest(ga.ID, 2))
	require.NoError(t, err)

	_, err = svc.Purchase(context.Background(), uuid.New(), event.ID, singleLineRequest(ga.ID, 3))
	perr := requireKind(t, err, KindInsufficientInventory)
	assert.Equal(t, 2, perr.Remaining)
}
