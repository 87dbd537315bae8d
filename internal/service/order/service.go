package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"campus-food-ordering/internal/cache"
	"campus-food-ordering/internal/domain"
	"campus-food-ordering/internal/metrics"
	orderrepo "campus-food-ordering/internal/repository/order"
	cartsvc "campus-food-ordering/internal/service/cart"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrOrderNotCreated is returned when the order row could not be inserted.
	// No ordered items are attempted after it.
	ErrOrderNotCreated = errors.New("order not created")
	// ErrConfirmationPending rejects a second placement while the caller's
	// previous order is still counting down.
	ErrConfirmationPending = errors.New("an order confirmation is already pending")
	// ErrForbidden is returned when the caller does not own the order.
	ErrForbidden = errors.New("not permitted")
	// ErrInvalidInput wraps placement payload problems.
	ErrInvalidInput = errors.New("invalid input")
)

const (
	DefaultPendingTTL = 300 * time.Second
	defaultTick       = time.Second
	releaseTimeout    = 5 * time.Second
)

type cartBuilder interface {
	Build(ctx context.Context, actions []cartsvc.UpdateAction) (*domain.Cart, error)
}

type profileReader interface {
	GetByStudentID(ctx context.Context, studentID string) (*domain.Profile, error)
}

type itemReader interface {
	GetByID(ctx context.Context, id string) (*domain.Item, error)
}

type Options struct {
	PendingTTL time.Duration
	ServiceFee decimal.Decimal
	Guard      cache.Guard
	Metrics    *metrics.Metrics
	Logger     *log.Logger
}

// Service owns the order lifecycle: placement, the pending countdown,
// acceptance and completion by a courier, cancellation and expiry.
type Service struct {
	repo     orderrepo.Repository
	carts    cartBuilder
	profiles profileReader
	items    itemReader
	guard    cache.Guard
	metrics  *metrics.Metrics
	logger   *log.Logger

	pendingTTL time.Duration
	serviceFee decimal.Decimal
	tick       time.Duration
	newTicker  func(time.Duration) (<-chan time.Time, func())
	now        func() time.Time

	mu      sync.Mutex
	watches map[string]*Countdown
	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func New(repo orderrepo.Repository, carts cartBuilder, profiles profileReader, items itemReader, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	if opts.PendingTTL <= 0 {
		opts.PendingTTL = DefaultPendingTTL
	}
	if opts.Guard == nil {
		opts.Guard = cache.NewMemoryGuard()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		repo:       repo,
		carts:      carts,
		profiles:   profiles,
		items:      items,
		guard:      opts.Guard,
		metrics:    opts.Metrics,
		logger:     opts.Logger,
		pendingTTL: opts.PendingTTL,
		serviceFee: opts.ServiceFee,
		tick:       defaultTick,
		newTicker:  realTicker,
		now:        time.Now,
		watches:    make(map[string]*Countdown),
		baseCtx:    ctx,
		cancel:     cancel,
	}
}

func realTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// CreateOrder inserts a Pending order and returns its id.
func (s *Service) CreateOrder(ctx context.Context, fromUserID, location string) (string, error) {
	fromUserID = strings.TrimSpace(fromUserID)
	location = strings.TrimSpace(location)
	if fromUserID == "" {
		return "", fmt.Errorf("%w: %w: from_user_id required", ErrOrderNotCreated, ErrInvalidInput)
	}
	if location == "" {
		return "", fmt.Errorf("%w: %w: location required", ErrOrderNotCreated, ErrInvalidInput)
	}
	o, err := s.repo.Create(ctx, orderrepo.CreateOrderInput{FromUserID: fromUserID, Location: location})
	if err != nil {
		s.logger.Printf("order: create from_user_id=%s error=%v", fromUserID, err)
		return "", fmt.Errorf("%w: %w", ErrOrderNotCreated, err)
	}
	s.metrics.OrderCreated()
	s.logger.Printf("order: created order_id=%s from_user_id=%s", o.ID, fromUserID)
	return o.ID, nil
}

// CreateOrderedItem appends one line to an existing order.
func (s *Service) CreateOrderedItem(ctx context.Context, orderID, itemID string, quantity int, totalPrice decimal.Decimal) (*domain.OrderedItem, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: unit must be positive", ErrInvalidInput)
	}
	if totalPrice.IsNegative() {
		return nil, fmt.Errorf("%w: total_price must not be negative", ErrInvalidInput)
	}
	return s.repo.CreateItem(ctx, domain.OrderedItem{
		OrderID:    orderID,
		ItemID:     itemID,
		Unit:       quantity,
		TotalPrice: totalPrice,
	})
}

type PlaceLine struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

type PlaceInput struct {
	Location string      `json:"location"`
	Items    []PlaceLine `json:"items"`
}

// Placement is the result of confirming a cart.
type Placement struct {
	Order       *domain.Order  `json:"order"`
	FailedItems []string       `json:"failed_items"`
	Countdown   CountdownState `json:"countdown"`
}

// PlaceOrder prices the cart from the catalog, creates the order and one
// ordered item per line, then starts the pending countdown. Items that fail to
// insert are reported in FailedItems; the order is kept.
func (s *Service) PlaceOrder(ctx context.Context, studentID string, in PlaceInput) (*Placement, error) {
	if strings.TrimSpace(in.Location) == "" {
		return nil, fmt.Errorf("%w: location required", ErrInvalidInput)
	}
	actions := make([]cartsvc.UpdateAction, 0, len(in.Items))
	for _, l := range in.Items {
		actions = append(actions, cartsvc.UpdateAction{Action: "addLineItem", ItemID: l.ItemID, Quantity: l.Quantity})
	}
	if len(actions) == 0 {
		return nil, cartsvc.ErrEmptyCart
	}
	cart, err := s.carts.Build(ctx, actions)
	if err != nil {
		return nil, err
	}

	key := confirmKey(studentID)
	ok, err := s.guard.Acquire(ctx, key, s.pendingTTL)
	if err != nil {
		// Guard store unavailable: continue without duplicate protection.
		s.logger.Printf("order: confirmation guard student=%s error=%v", studentID, err)
	} else if !ok {
		return nil, ErrConfirmationPending
	}

	orderID, err := s.CreateOrder(ctx, studentID, in.Location)
	if err != nil {
		s.releaseGuard(key)
		return nil, err
	}

	var (
		created []domain.OrderedItem
		failed  []string
	)
	for _, line := range cart.Lines() {
		it, err := s.CreateOrderedItem(ctx, orderID, line.Item.ID, line.Quantity, line.Subtotal())
		if err != nil {
			s.logger.Printf("order: create ordered item order_id=%s item_id=%s error=%v", orderID, line.Item.ID, err)
			s.metrics.OrderItemFailed()
			failed = append(failed, line.Item.ID)
			continue
		}
		created = append(created, *it)
	}

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		s.logger.Printf("order: reload order_id=%s error=%v", orderID, err)
		o = &domain.Order{ID: orderID, FromUserID: studentID, Location: strings.TrimSpace(in.Location), Status: domain.OrderStatusPending, Items: created}
	}

	cd := s.startCountdown(orderID, studentID, key)
	if failed == nil {
		failed = []string{}
	}
	return &Placement{Order: o, FailedItems: failed, Countdown: cd.State()}, nil
}

// UpdateOrder moves an order to newStatus on behalf of actingUser. Delivering
// records actingUser as the courier and only succeeds while the order is
// Pending; Completed only succeeds for the courier of a Delivering order and
// leaves to_user_id as it was.
func (s *Service) UpdateOrder(ctx context.Context, newStatus domain.OrderStatus, actingUser, orderID string) (*domain.Order, error) {
	if !validID(orderID) {
		return nil, domain.ErrNotFound
	}
	actingUser = strings.TrimSpace(actingUser)
	if actingUser == "" {
		return nil, fmt.Errorf("%w: acting user required", ErrInvalidInput)
	}

	var (
		o   *domain.Order
		err error
	)
	switch newStatus {
	case domain.OrderStatusDelivering:
		o, err = s.accept(ctx, actingUser, orderID)
	case domain.OrderStatusCompleted:
		o, err = s.complete(ctx, actingUser, orderID)
	default:
		err = domain.ErrInvalidTransition
	}
	s.metrics.Transition(newStatus.String(), transitionResult(err))
	if err != nil {
		s.logger.Printf("order: update order_id=%s status=%s by=%s error=%v", orderID, newStatus, actingUser, err)
		return nil, err
	}
	s.logger.Printf("order: update order_id=%s status=%s by=%s", orderID, newStatus, actingUser)
	return o, nil
}

func (s *Service) accept(ctx context.Context, courier, orderID string) (*domain.Order, error) {
	current, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if current.FromUserID == courier {
		return nil, fmt.Errorf("%w: cannot accept your own order", domain.ErrInvalidTransition)
	}
	if !current.Status.CanTransitionTo(domain.OrderStatusDelivering) {
		return nil, domain.ErrConflict
	}
	return s.repo.Accept(ctx, orderID, courier)
}

func (s *Service) complete(ctx context.Context, courier, orderID string) (*domain.Order, error) {
	o, err := s.repo.Complete(ctx, orderID, courier)
	if err == nil || !errors.Is(err, domain.ErrConflict) {
		return o, err
	}
	status, serr := s.repo.GetStatus(ctx, orderID)
	if serr != nil {
		return nil, serr
	}
	if !status.CanTransitionTo(domain.OrderStatusCompleted) {
		return nil, domain.ErrInvalidTransition
	}
	// Delivering, but held by another courier.
	return nil, ErrForbidden
}

// Cancel deletes a Pending order owned by studentID, items first.
func (s *Service) Cancel(ctx context.Context, studentID, orderID string) error {
	if !validID(orderID) {
		return domain.ErrNotFound
	}
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if o.FromUserID != studentID {
		return ErrForbidden
	}
	deleted, err := s.repo.DeletePending(ctx, orderID)
	if err != nil {
		s.logger.Printf("order: cancel order_id=%s error=%v", orderID, err)
		return err
	}
	if !deleted {
		return domain.ErrConflict
	}
	s.stopCountdown(orderID, OutcomeCancelled)
	s.logger.Printf("order: cancelled order_id=%s by=%s", orderID, studentID)
	return nil
}

// Get returns an order with its items.
func (s *Service) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	if !validID(orderID) {
		return nil, domain.ErrNotFound
	}
	return s.repo.GetByID(ctx, orderID)
}

// Status reads the stored status of an order.
func (s *Service) Status(ctx context.Context, orderID string) (domain.OrderStatus, error) {
	if !validID(orderID) {
		return "", domain.ErrNotFound
	}
	return s.repo.GetStatus(ctx, orderID)
}

// SweepExpired deletes every order still Pending after the pending window.
// It returns how many orders were removed.
func (s *Service) SweepExpired(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.pendingTTL)
	ids, err := s.repo.ListPendingBefore(ctx, cutoff)
	if err != nil {
		s.logger.Printf("order: sweep list error=%v", err)
		return 0, err
	}
	removed := 0
	for _, id := range ids {
		deleted, err := s.repo.DeletePending(ctx, id)
		if err != nil {
			s.logger.Printf("order: sweep delete order_id=%s error=%v", id, err)
			continue
		}
		if !deleted {
			continue
		}
		removed++
		s.metrics.OrderExpired("sweep")
		s.stopCountdown(id, OutcomeExpired)
	}
	if removed > 0 {
		s.logger.Printf("order: sweep removed=%d cutoff=%s", removed, cutoff.UTC().Format(time.RFC3339))
	}
	return removed, nil
}

// Close stops all running countdowns and waits for them to exit. Orders left
// Pending are collected by the sweep.
func (s *Service) Close() {
	s.cancel()
	s.wg.Wait()
}

func (s *Service) releaseGuard(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()
	if err := s.guard.Release(ctx, key); err != nil {
		s.logger.Printf("order: release guard key=%s error=%v", key, err)
	}
}

func confirmKey(studentID string) string {
	return "confirm:" + studentID
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func transitionResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "invalid"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
