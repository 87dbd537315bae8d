package order

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"campus-food-ordering/internal/cache"
	"campus-food-ordering/internal/domain"
	orderrepo "campus-food-ordering/internal/repository/order"
	cartsvc "campus-food-ordering/internal/service/cart"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	burgerID = "11111111-1111-1111-1111-111111111111"
	friesID  = "22222222-2222-2222-2222-222222222222"
	alice    = "A0000001"
	bob      = "B1234567"
	carol    = "C7654321"
)

type memoryRepo struct {
	mu         sync.Mutex
	orders     map[string]domain.Order
	items      map[string][]domain.OrderedItem
	now        func() time.Time
	createErr  error
	failItems  map[string]bool
	itemCalls  int
	listErr    error
	deleteRuns int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		orders:    make(map[string]domain.Order),
		items:     make(map[string][]domain.OrderedItem),
		now:       time.Now,
		failItems: make(map[string]bool),
	}
}

func (r *memoryRepo) Create(_ context.Context, in orderrepo.CreateOrderInput) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	o := domain.Order{
		ID:         uuid.NewString(),
		FromUserID: in.FromUserID,
		Location:   in.Location,
		Status:     domain.OrderStatusPending,
		CreatedAt:  r.now(),
	}
	r.orders[o.ID] = o
	return &o, nil
}

func (r *memoryRepo) CreateItem(_ context.Context, it domain.OrderedItem) (*domain.OrderedItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.itemCalls++
	if r.failItems[it.ItemID] {
		return nil, errors.New("insert rejected")
	}
	if _, ok := r.orders[it.OrderID]; !ok {
		return nil, errors.New("foreign key violation")
	}
	r.items[it.OrderID] = append(r.items[it.OrderID], it)
	return &it, nil
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	o.Items = append([]domain.OrderedItem(nil), r.items[id]...)
	return &o, nil
}

func (r *memoryRepo) GetStatus(_ context.Context, id string) (domain.OrderStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return "", domain.ErrNotFound
	}
	return o.Status, nil
}

func (r *memoryRepo) List(_ context.Context) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []domain.Order
	for id, o := range r.orders {
		o.Items = append([]domain.OrderedItem(nil), r.items[id]...)
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryRepo) Accept(_ context.Context, id, courierID string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if o.Status != domain.OrderStatusPending {
		return nil, domain.ErrConflict
	}
	o.Status = domain.OrderStatusDelivering
	o.ToUserID = &courierID
	r.orders[id] = o
	return &o, nil
}

func (r *memoryRepo) Complete(_ context.Context, id, courierID string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if o.Status != domain.OrderStatusDelivering || o.ToUserID == nil || *o.ToUserID != courierID {
		return nil, domain.ErrConflict
	}
	o.Status = domain.OrderStatusCompleted
	r.orders[id] = o
	return &o, nil
}

func (r *memoryRepo) DeletePending(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleteRuns++
	o, ok := r.orders[id]
	if !ok || o.Status != domain.OrderStatusPending {
		return false, nil
	}
	delete(r.items, id)
	delete(r.orders, id)
	return true, nil
}

func (r *memoryRepo) ListPendingBefore(_ context.Context, cutoff time.Time) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for id, o := range r.orders {
		if o.Status == domain.OrderStatusPending && o.CreatedAt.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *memoryRepo) exists(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.orders[id]
	return ok || len(r.items[id]) > 0
}

type stubItems struct{}

func (stubItems) GetByID(_ context.Context, id string) (*domain.Item, error) {
	switch id {
	case burgerID:
		return &domain.Item{ID: burgerID, Name: "Burger", Price: decimal.RequireFromString("5.50")}, nil
	case friesID:
		return &domain.Item{ID: friesID, Name: "Fries", Price: decimal.RequireFromString("2.00")}, nil
	}
	return nil, domain.ErrNotFound
}

type stubProfiles struct{}

func (stubProfiles) GetByStudentID(_ context.Context, id string) (*domain.Profile, error) {
	return &domain.Profile{StudentID: id, Name: "Student " + id, PhoneNumber: "9" + id[1:]}, nil
}

type testEnv struct {
	svc   *Service
	repo  *memoryRepo
	ticks chan time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo := newMemoryRepo()
	svc := New(repo, cartsvc.New(stubItems{}), stubProfiles{}, stubItems{}, Options{
		ServiceFee: decimal.NewFromInt(2),
		Guard:      cache.NewMemoryGuard(),
	})
	ticks := make(chan time.Time)
	svc.newTicker = func(time.Duration) (<-chan time.Time, func()) { return ticks, func() {} }
	t.Cleanup(svc.Close)
	return &testEnv{svc: svc, repo: repo, ticks: ticks}
}

func (e *testEnv) tick(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case e.ticks <- time.Now():
		case <-time.After(2 * time.Second):
			t.Fatalf("countdown stopped receiving ticks after %d of %d", i, n)
		}
	}
}

// tickUntilDone feeds ticks until the countdown ends.
func (e *testEnv) tickUntilDone(t *testing.T, cd *Countdown) CountdownState {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case e.ticks <- time.Now():
		case <-cd.Done():
			return cd.State()
		case <-deadline:
			t.Fatalf("countdown did not finish")
		}
	}
}

func waitRemaining(t *testing.T, cd *Countdown, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for cd.State().Remaining != want {
		if time.Now().After(deadline) {
			t.Fatalf("remaining %d, want %d", cd.State().Remaining, want)
		}
		time.Sleep(time.Millisecond)
	}
}

func waitDone(t *testing.T, cd *Countdown) CountdownState {
	t.Helper()
	select {
	case <-cd.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("countdown did not finish")
	}
	return cd.State()
}

func burgerAndFries() PlaceInput {
	return PlaceInput{
		Location: "Library L2",
		Items: []PlaceLine{
			{ItemID: burgerID, Quantity: 2},
			{ItemID: friesID, Quantity: 1},
		},
	}
}

func TestCreateOrderThenStatusIsPending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id, err := env.svc.CreateOrder(ctx, alice, "Block A")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	status, err := env.svc.Status(ctx, id)
	if err != nil || status != domain.OrderStatusPending {
		t.Fatalf("expected Pending, got %q err=%v", status, err)
	}

	if _, err := env.svc.CreateOrder(ctx, alice, "   "); !errors.Is(err, ErrOrderNotCreated) || !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty location, got %v", err)
	}
}

func TestPlaceOrderCreatesItemsWithLineTotals(t *testing.T) {
	env := newTestEnv(t)
	p, err := env.svc.PlaceOrder(context.Background(), alice, burgerAndFries())
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if p.Order.Status != domain.OrderStatusPending || len(p.Order.Items) != 2 {
		t.Fatalf("unexpected order %+v", p.Order)
	}
	if !p.Order.Total().Equal(decimal.RequireFromString("13.00")) {
		t.Fatalf("expected items total 13.00, got %s", p.Order.Total())
	}
	if p.Countdown.Remaining != 300 || p.Countdown.Display != "5:00" || p.Countdown.Outcome != OutcomeRunning {
		t.Fatalf("unexpected countdown %+v", p.Countdown)
	}
	if len(p.FailedItems) != 0 {
		t.Fatalf("unexpected failed items %v", p.FailedItems)
	}
}

func TestPlaceOrderCreateFailureShortCircuitsItems(t *testing.T) {
	env := newTestEnv(t)
	env.repo.createErr = errors.New("insert rejected")

	_, err := env.svc.PlaceOrder(context.Background(), alice, burgerAndFries())
	if !errors.Is(err, ErrOrderNotCreated) {
		t.Fatalf("expected ErrOrderNotCreated, got %v", err)
	}
	if env.repo.itemCalls != 0 {
		t.Fatalf("expected no ordered item inserts, got %d", env.repo.itemCalls)
	}

	// The confirmation guard is released, so a retry can go through.
	env.repo.createErr = nil
	if _, err := env.svc.PlaceOrder(context.Background(), alice, burgerAndFries()); err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
}

func TestPlaceOrderPartialItemFailureKeepsOrder(t *testing.T) {
	env := newTestEnv(t)
	env.repo.failItems[friesID] = true

	p, err := env.svc.PlaceOrder(context.Background(), alice, burgerAndFries())
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if len(p.FailedItems) != 1 || p.FailedItems[0] != friesID {
		t.Fatalf("expected fries to fail, got %v", p.FailedItems)
	}
	if len(p.Order.Items) != 1 || p.Order.Items[0].ItemID != burgerID {
		t.Fatalf("expected only burger persisted, got %+v", p.Order.Items)
	}
}

func TestPlaceOrderRejectsDuplicateConfirmation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.svc.PlaceOrder(ctx, alice, burgerAndFries())
	if err != nil {
		t.Fatalf("first placement: %v", err)
	}
	if _, err := env.svc.PlaceOrder(ctx, alice, burgerAndFries()); !errors.Is(err, ErrConfirmationPending) {
		t.Fatalf("expected ErrConfirmationPending, got %v", err)
	}
	// Another student is unaffected.
	if _, err := env.svc.PlaceOrder(ctx, carol, burgerAndFries()); err != nil {
		t.Fatalf("other student placement: %v", err)
	}

	cd := env.svc.watch(first.Order.ID)
	if err := env.svc.Cancel(ctx, alice, first.Order.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	waitDone(t, cd)
	if _, err := env.svc.PlaceOrder(ctx, alice, burgerAndFries()); err != nil {
		t.Fatalf("placement after countdown ended: %v", err)
	}
}

func TestPlaceOrderValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.svc.PlaceOrder(ctx, alice, PlaceInput{Items: burgerAndFries().Items}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing location, got %v", err)
	}
	if _, err := env.svc.PlaceOrder(ctx, alice, PlaceInput{Location: "Block A"}); !errors.Is(err, cartsvc.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	in := PlaceInput{Location: "Block A", Items: []PlaceLine{{ItemID: uuid.NewString(), Quantity: 1}}}
	if _, err := env.svc.PlaceOrder(ctx, alice, in); !errors.Is(err, cartsvc.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
	if env.repo.itemCalls != 0 || len(env.repo.orders) != 0 {
		t.Fatalf("invalid placements must not write")
	}
}

func TestCountdownExpiresUnacceptedOrder(t *testing.T) {
	env := newTestEnv(t)
	p, err := env.svc.PlaceOrder(context.Background(), alice, burgerAndFries())
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	cd := env.svc.watch(p.Order.ID)
	if cd == nil {
		t.Fatalf("expected a running countdown")
	}

	env.tick(t, 299)
	waitRemaining(t, cd, 1)
	if got := cd.State(); got.Remaining != 1 || got.Display != "0:01" || got.Outcome != OutcomeRunning {
		t.Fatalf("unexpected state after 299 ticks %+v", got)
	}
	if !env.repo.exists(p.Order.ID) {
		t.Fatalf("order deleted before the window elapsed")
	}

	env.tick(t, 1)
	state := waitDone(t, cd)
	if state.Outcome != OutcomeExpired {
		t.Fatalf("expected expired outcome, got %+v", state)
	}
	if env.repo.exists(p.Order.ID) {
		t.Fatalf("order or its items still present after expiry")
	}
	if env.svc.watch(p.Order.ID) != nil {
		t.Fatalf("finished countdown still registered")
	}
}

func TestCountdownEndsWhenAcceptedAndOrderSurvivesSweep(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p, err := env.svc.PlaceOrder(ctx, alice, burgerAndFries())
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	cd := env.svc.watch(p.Order.ID)

	env.tick(t, 10)
	if _, err := env.svc.UpdateOrder(ctx, domain.OrderStatusDelivering, bob, p.Order.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	state := env.tickUntilDone(t, cd)
	if state.Outcome != OutcomeAccepted || state.Status != domain.OrderStatusDelivering {
		t.Fatalf("expected accepted outcome, got %+v", state)
	}

	env.svc.now = func() time.Time { return time.Now().Add(301 * time.Second) }
	removed, err := env.svc.SweepExpired(ctx)
	if err != nil || removed != 0 {
		t.Fatalf("sweep removed=%d err=%v", removed, err)
	}
	o, err := env.svc.Get(ctx, p.Order.ID)
	if err != nil || o.Status != domain.OrderStatusDelivering || len(o.Items) != 2 {
		t.Fatalf("accepted order not intact: %+v %v", o, err)
	}
}

func TestSweepRemovesStalePendingOrders(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	env.repo.now = func() time.Time { return base }
	stale, err := env.svc.CreateOrder(ctx, alice, "Block A")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := env.svc.CreateOrderedItem(ctx, stale, burgerID, 1, decimal.RequireFromString("5.50")); err != nil {
		t.Fatalf("create item: %v", err)
	}
	env.repo.now = func() time.Time { return base.Add(4 * time.Minute) }
	fresh, err := env.svc.CreateOrder(ctx, carol, "Block B")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	env.svc.now = func() time.Time { return base.Add(5*time.Minute + time.Second) }
	removed, err := env.svc.SweepExpired(ctx)
	if err != nil || removed != 1 {
		t.Fatalf("expected one removal, got %d err=%v", removed, err)
	}
	if env.repo.exists(stale) {
		t.Fatalf("stale order still present")
	}
	if !env.repo.exists(fresh) {
		t.Fatalf("fresh order removed")
	}

	// Running again is a no-op.
	if removed, _ := env.svc.SweepExpired(ctx); removed != 0 {
		t.Fatalf("second sweep removed %d", removed)
	}
}

func TestUpdateOrderDeliveringThenCompleted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id, err := env.svc.CreateOrder(ctx, alice, "Block A")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	o, err := env.svc.UpdateOrder(ctx, domain.OrderStatusDelivering, bob, id)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if o.Status != domain.OrderStatusDelivering || o.ToUserID == nil || *o.ToUserID != bob {
		t.Fatalf("unexpected accepted order %+v", o)
	}

	o, err = env.svc.UpdateOrder(ctx, domain.OrderStatusCompleted, bob, id)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if o.Status != domain.OrderStatusCompleted || o.ToUserID == nil || *o.ToUserID != bob {
		t.Fatalf("completion altered courier: %+v", o)
	}

	if _, err := env.svc.UpdateOrder(ctx, domain.OrderStatusCompleted, bob, id); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition from Completed, got %v", err)
	}
}

func TestUpdateOrderConditionalRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id, err := env.svc.CreateOrder(ctx, alice, "Block A")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := env.svc.UpdateOrder(ctx, domain.OrderStatusDelivering, alice, id); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected self acceptance to be rejected, got %v", err)
	}
	if _, err := env.svc.UpdateOrder(ctx, domain.OrderStatusCompleted, bob, id); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected completing a Pending order to be rejected, got %v", err)
	}
	if _, err := env.svc.UpdateOrder(ctx, domain.OrderStatusPending, bob, id); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected Pending target to be rejected, got %v", err)
	}

	if _, err := env.svc.UpdateOrder(ctx, domain.OrderStatusDelivering, bob, id); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := env.svc.UpdateOrder(ctx, domain.OrderStatusDelivering, carol, id); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected second acceptance to conflict, got %v", err)
	}
	if _, err := env.svc.UpdateOrder(ctx, domain.OrderStatusCompleted, carol, id); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected completion by another courier to be forbidden, got %v", err)
	}
	o, _ := env.svc.Get(ctx, id)
	if *o.ToUserID != bob {
		t.Fatalf("courier overwritten: %+v", o)
	}

	if _, err := env.svc.UpdateOrder(ctx, domain.OrderStatusDelivering, bob, "not-a-uuid"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for malformed id, got %v", err)
	}
}

func TestConcurrentAcceptHasSingleWinner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id, err := env.svc.CreateOrder(ctx, alice, "Block A")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	couriers := []string{"B0000001", "B0000002", "B0000003", "B0000004", "B0000005", "B0000006"}
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins []string
	)
	for _, c := range couriers {
		wg.Add(1)
		go func(courier string) {
			defer wg.Done()
			if _, err := env.svc.UpdateOrder(ctx, domain.OrderStatusDelivering, courier, id); err == nil {
				mu.Lock()
				wins = append(wins, courier)
				mu.Unlock()
			} else if !errors.Is(err, domain.ErrConflict) {
				t.Errorf("unexpected error %v", err)
			}
		}(c)
	}
	wg.Wait()

	if len(wins) != 1 {
		t.Fatalf("expected exactly one winner, got %v", wins)
	}
	o, _ := env.svc.Get(ctx, id)
	if *o.ToUserID != wins[0] {
		t.Fatalf("stored courier %s does not match winner %s", *o.ToUserID, wins[0])
	}
}

func TestCancel(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p, err := env.svc.PlaceOrder(ctx, alice, burgerAndFries())
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	cd := env.svc.watch(p.Order.ID)

	if err := env.svc.Cancel(ctx, bob, p.Order.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner, got %v", err)
	}
	if err := env.svc.Cancel(ctx, alice, p.Order.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if state := waitDone(t, cd); state.Outcome != OutcomeCancelled {
		t.Fatalf("expected cancelled outcome, got %+v", state)
	}
	if env.repo.exists(p.Order.ID) {
		t.Fatalf("cancelled order still present")
	}
	if err := env.svc.Cancel(ctx, alice, p.Order.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on second cancel, got %v", err)
	}
}

func TestCancelAcceptedOrderConflicts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id, _ := env.svc.CreateOrder(ctx, alice, "Block A")
	if _, err := env.svc.UpdateOrder(ctx, domain.OrderStatusDelivering, bob, id); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if err := env.svc.Cancel(ctx, alice, id); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestCountdownFor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p, err := env.svc.PlaceOrder(ctx, alice, burgerAndFries())
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	env.tick(t, 61)
	waitRemaining(t, env.svc.watch(p.Order.ID), 239)
	state, err := env.svc.CountdownFor(ctx, alice, p.Order.ID)
	if err != nil || state.Display != "3:59" {
		t.Fatalf("unexpected live state %+v err=%v", state, err)
	}
	if _, err := env.svc.CountdownFor(ctx, bob, p.Order.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	// Without a live countdown the window is derived from created_at.
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	env.repo.now = func() time.Time { return created }
	id, _ := env.svc.CreateOrder(ctx, carol, "Block B")
	env.svc.now = func() time.Time { return created.Add(90 * time.Second) }
	state, err = env.svc.CountdownFor(ctx, carol, id)
	if err != nil || state.Remaining != 210 || state.Display != "3:30" || state.Outcome != OutcomeRunning {
		t.Fatalf("unexpected derived state %+v err=%v", state, err)
	}
}

func TestReviewPartitionsOrders(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	mine, _ := env.svc.CreateOrder(ctx, alice, "Block A")
	if _, err := env.svc.CreateOrderedItem(ctx, mine, burgerID, 2, decimal.RequireFromString("11.00")); err != nil {
		t.Fatalf("create item: %v", err)
	}
	open, _ := env.svc.CreateOrder(ctx, carol, "Block C")
	delivering, _ := env.svc.CreateOrder(ctx, bob, "Block B")
	if _, err := env.svc.UpdateOrder(ctx, domain.OrderStatusDelivering, alice, delivering); err != nil {
		t.Fatalf("accept: %v", err)
	}
	taken, _ := env.svc.CreateOrder(ctx, bob, "Block D")
	if _, err := env.svc.UpdateOrder(ctx, domain.OrderStatusDelivering, carol, taken); err != nil {
		t.Fatalf("accept: %v", err)
	}

	r := env.svc.Review(ctx, alice)
	if len(r.Mine) != 1 || r.Mine[0].OrderID != mine {
		t.Fatalf("unexpected own orders %+v", r.Mine)
	}
	if !r.Mine[0].Total.Equal(decimal.RequireFromString("13.00")) {
		t.Fatalf("expected total with service fee 13.00, got %s", r.Mine[0].Total)
	}
	if r.Mine[0].Lines[0].ItemName != "Burger" {
		t.Fatalf("expected item name, got %+v", r.Mine[0].Lines)
	}

	got := map[string]OrderView{}
	for _, v := range r.Others {
		got[v.OrderID] = v
	}
	if len(got) != 2 {
		t.Fatalf("expected open and delivering orders, got %+v", r.Others)
	}
	if _, ok := got[open]; !ok {
		t.Fatalf("open order missing")
	}
	if v := got[delivering]; v.Contact == nil || v.Contact.StudentID != bob {
		t.Fatalf("expected orderer contact for delivery, got %+v", v.Contact)
	}
	if _, ok := got[taken]; ok {
		t.Fatalf("order taken by another courier should be hidden")
	}
}

func TestReviewReadFailureYieldsEmpty(t *testing.T) {
	env := newTestEnv(t)
	env.repo.listErr = errors.New("connection reset")
	r := env.svc.Review(context.Background(), alice)
	if r.Mine == nil || r.Others == nil || len(r.Mine)+len(r.Others) != 0 {
		t.Fatalf("expected empty review, got %+v", r)
	}
}

func TestCloseStopsCountdowns(t *testing.T) {
	env := newTestEnv(t)
	p, err := env.svc.PlaceOrder(context.Background(), alice, burgerAndFries())
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	cd := env.svc.watch(p.Order.ID)
	env.svc.Close()
	if state := waitDone(t, cd); state.Outcome != OutcomeStopped {
		t.Fatalf("expected stopped outcome, got %+v", state)
	}
	if !env.repo.exists(p.Order.ID) {
		t.Fatalf("shutdown must not delete pending orders")
	}
}

func TestFormatRemaining(t *testing.T) {
	cases := map[int]string{300: "5:00", 299: "4:59", 61: "1:01", 9: "0:09", 0: "0:00", -4: "0:00"}
	for in, want := range cases {
		if got := FormatRemaining(in); got != want {
			t.Fatalf("FormatRemaining(%d) = %q, want %q", in, got, want)
		}
	}
}
