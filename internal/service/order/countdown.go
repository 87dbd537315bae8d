package order

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"campus-food-ordering/internal/domain"
)

type Outcome string

const (
	OutcomeRunning   Outcome = "running"
	OutcomeAccepted  Outcome = "accepted"
	OutcomeExpired   Outcome = "expired"
	OutcomeDeleted   Outcome = "deleted"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeStopped   Outcome = "stopped"
)

// CountdownState is a snapshot of a pending window.
type CountdownState struct {
	OrderID   string             `json:"order_id"`
	Remaining int                `json:"remaining_seconds"`
	Display   string             `json:"display"`
	Status    domain.OrderStatus `json:"status,omitempty"`
	Outcome   Outcome            `json:"outcome"`
}

// Countdown supervises one Pending order: every tick it decrements the
// remaining seconds and re-reads the status. A status other than Pending ends
// it as accepted; reaching zero while Pending deletes the order.
type Countdown struct {
	orderID   string
	studentID string
	guardKey  string

	mu        sync.Mutex
	remaining int
	status    domain.OrderStatus
	outcome   Outcome
	reason    Outcome
	stop      context.CancelFunc
	done      chan struct{}
}

func (c *Countdown) State() CountdownState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CountdownState{
		OrderID:   c.orderID,
		Remaining: c.remaining,
		Display:   FormatRemaining(c.remaining),
		Status:    c.status,
		Outcome:   c.outcome,
	}
}

// Done is closed once the countdown has ended.
func (c *Countdown) Done() <-chan struct{} {
	return c.done
}

func (c *Countdown) tickDown() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.remaining > 0 {
		c.remaining--
	}
	return c.remaining
}

func (c *Countdown) halt(reason Outcome) {
	c.mu.Lock()
	if c.reason == "" {
		c.reason = reason
	}
	stop := c.stop
	c.mu.Unlock()
	stop()
}

// FormatRemaining renders seconds as m:ss.
func FormatRemaining(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func (s *Service) startCountdown(orderID, studentID, guardKey string) *Countdown {
	ctx, stop := context.WithCancel(s.baseCtx)
	cd := &Countdown{
		orderID:   orderID,
		studentID: studentID,
		guardKey:  guardKey,
		remaining: int(s.pendingTTL / time.Second),
		status:    domain.OrderStatusPending,
		outcome:   OutcomeRunning,
		stop:      stop,
		done:      make(chan struct{}),
	}

	s.mu.Lock()
	s.watches[orderID] = cd
	s.mu.Unlock()
	s.metrics.CountdownStarted()

	s.wg.Add(1)
	go s.runCountdown(ctx, cd)
	return cd
}

func (s *Service) runCountdown(ctx context.Context, cd *Countdown) {
	defer s.wg.Done()
	ticks, stopTicker := s.newTicker(s.tick)
	defer stopTicker()

	for {
		select {
		case <-ctx.Done():
			cd.mu.Lock()
			reason := cd.reason
			cd.mu.Unlock()
			if reason == "" {
				reason = OutcomeStopped
			}
			s.finishCountdown(cd, reason, "")
			return
		case <-ticks:
		}

		remaining := cd.tickDown()
		status, err := s.repo.GetStatus(ctx, cd.orderID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			s.finishCountdown(cd, OutcomeDeleted, "")
			return
		case err != nil:
			if ctx.Err() == nil {
				s.logger.Printf("order: countdown poll order_id=%s error=%v", cd.orderID, err)
			}
			continue
		case status != domain.OrderStatusPending:
			s.finishCountdown(cd, OutcomeAccepted, status)
			return
		case remaining == 0:
			s.expire(ctx, cd)
			return
		}
	}
}

func (s *Service) expire(ctx context.Context, cd *Countdown) {
	deleted, err := s.repo.DeletePending(ctx, cd.orderID)
	if err != nil {
		s.logger.Printf("order: countdown expire order_id=%s error=%v", cd.orderID, err)
		// The sweep retries orders left behind.
		s.finishCountdown(cd, OutcomeStopped, domain.OrderStatusPending)
		return
	}
	if deleted {
		s.metrics.OrderExpired("countdown")
		s.logger.Printf("order: expired order_id=%s", cd.orderID)
		s.finishCountdown(cd, OutcomeExpired, "")
		return
	}
	// Not deleted: accepted or removed between the poll and the delete.
	status, err := s.repo.GetStatus(ctx, cd.orderID)
	if err != nil {
		s.finishCountdown(cd, OutcomeDeleted, "")
		return
	}
	s.finishCountdown(cd, OutcomeAccepted, status)
}

func (s *Service) finishCountdown(cd *Countdown, outcome Outcome, status domain.OrderStatus) {
	cd.mu.Lock()
	if cd.outcome != OutcomeRunning {
		cd.mu.Unlock()
		return
	}
	cd.outcome = outcome
	cd.status = status
	cd.mu.Unlock()

	s.mu.Lock()
	if s.watches[cd.orderID] == cd {
		delete(s.watches, cd.orderID)
	}
	s.mu.Unlock()

	s.releaseGuard(cd.guardKey)
	s.metrics.CountdownEnded()
	cd.stop()
	close(cd.done)
}

func (s *Service) stopCountdown(orderID string, reason Outcome) {
	s.mu.Lock()
	cd := s.watches[orderID]
	s.mu.Unlock()
	if cd != nil {
		cd.halt(reason)
	}
}

func (s *Service) watch(orderID string) *Countdown {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watches[orderID]
}

// CountdownFor reports the pending window of an order owned by studentID.
// Without a live countdown the remaining time is derived from created_at.
func (s *Service) CountdownFor(ctx context.Context, studentID, orderID string) (CountdownState, error) {
	if !validID(orderID) {
		return CountdownState{}, domain.ErrNotFound
	}
	if cd := s.watch(orderID); cd != nil {
		if cd.studentID != studentID {
			return CountdownState{}, ErrForbidden
		}
		return cd.State(), nil
	}

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return CountdownState{}, err
	}
	if o.FromUserID != studentID {
		return CountdownState{}, ErrForbidden
	}
	state := CountdownState{OrderID: o.ID, Status: o.Status, Outcome: OutcomeAccepted}
	if o.Status == domain.OrderStatusPending {
		left := s.pendingTTL - s.now().Sub(o.CreatedAt)
		if left < 0 {
			left = 0
		}
		state.Remaining = int(left / time.Second)
		state.Outcome = OutcomeRunning
	}
	state.Display = FormatRemaining(state.Remaining)
	return state, nil
}

