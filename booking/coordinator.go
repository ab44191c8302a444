// Package booking turns a validated draft manifest into one persisted order
// plus N persisted passengers. The store only offers independent writes per
// entity, so the commit is a two-write saga with a compensating delete, not
// a transaction.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"tengri/capacity"
	"tengri/manifest"
	"tengri/models"
	"tengri/notify"
	"tengri/store"
	"tengri/utils"
	"tengri/validate"
)

// Commit error kinds. All recoverable; none escapes as a panic or a bare
// transport error.
const (
	KindValidationFailed     = "ValidationFailed"
	KindCapacityExceeded     = "CapacityExceeded"
	KindOracleUnavailable    = "OracleUnavailable"
	KindStoreUnavailable     = "StoreUnavailable"
	KindPartialCommitFailure = "PartialCommitFailure"
)

// CommitError is the structured result of a failed commit.
type CommitError struct {
	Kind   string
	Fields []models.ValidationError
	Err    error
}

func (e *CommitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("commit: %s: %v", e.Kind, e.Err)
	}
	return "commit: " + e.Kind
}

func (e *CommitError) Unwrap() error { return e.Err }

// Coordinator owns the draft-to-committed transition and the seat ledger
// bookkeeping around it.
type Coordinator struct {
	Tours      store.TourStore
	Orders     store.OrderStore
	Passengers store.PassengerStore
	Ledger     store.SeatLedger
	Sink       notify.Sink
	// Cache receives the committed order immediately so the actor sees it
	// without waiting for the change feed.
	Cache OrderCache
	// Emit publishes change events; nil disables the feed (tests).
	Emit func(ctx context.Context, ev models.Change)

	mu        sync.Mutex
	committed map[string]*inflight // keyed by manifest id
}

// inflight is the idempotency record for one manifest instance. It is
// installed under the mutex before the saga starts, so a concurrent
// resubmission waits on done instead of running a second saga. The record
// outlives a successful commit; a failed one removes it so the manifest can
// be resubmitted.
type inflight struct {
	done    chan struct{}
	orderID string
	err     error
}

// OrderCache is the slice of the reconciler the coordinator feeds.
type OrderCache interface {
	CacheOrder(o models.Order, ps []models.CommittedPassenger)
}

func (c *Coordinator) sink() notify.Sink {
	if c.Sink == nil {
		return notify.Discard{}
	}
	return c.Sink
}

func (c *Coordinator) emit(ctx context.Context, ev models.Change) {
	if c.Emit != nil {
		c.Emit(ctx, ev)
	}
}

// Commit runs the full saga:
//
//	validate -> reserve seats (conditional write) -> insert order ->
//	insert passengers -> (compensate on failure)
//
// Re-submitting the same manifest instance is idempotent and returns the
// order created the first time, including when the resubmission races the
// original commit.
func (c *Coordinator) Commit(ctx context.Context, actor models.Actor, m *manifest.Manifest, paymentMethod string) (models.Order, error) {
	c.mu.Lock()
	if c.committed == nil {
		c.committed = make(map[string]*inflight)
	}
	if entry, ok := c.committed[m.ID()]; ok {
		c.mu.Unlock()
		<-entry.done
		if entry.err != nil {
			return models.Order{}, entry.err
		}
		o, err := c.Orders.GetOrder(ctx, entry.orderID)
		if err != nil {
			return models.Order{}, &CommitError{Kind: KindStoreUnavailable, Err: err}
		}
		return o, nil
	}
	entry := &inflight{done: make(chan struct{})}
	c.committed[m.ID()] = entry
	c.mu.Unlock()

	order, err := c.commit(ctx, actor, m, paymentMethod)
	entry.orderID, entry.err = order.ID, err
	if err != nil {
		c.mu.Lock()
		delete(c.committed, m.ID())
		c.mu.Unlock()
	}
	close(entry.done)
	return order, err
}

func (c *Coordinator) commit(ctx context.Context, actor models.Actor, m *manifest.Manifest, paymentMethod string) (models.Order, error) {
	tour := m.Tour()
	date := m.Date()
	passengers := m.Passengers()
	n := len(passengers)

	// Step 1: validation is always re-run at commit time.
	if errs := validate.All(tour, date, passengers, paymentMethod); len(errs) > 0 {
		return models.Order{}, &CommitError{Kind: KindValidationFailed, Fields: errs}
	}

	// Step 2: admission. The conditional ledger write both checks and
	// reserves in one atomic step, so two actors racing for the last seat
	// cannot both get past it.
	bypass := false
	seats, capped := capacity.Capacity(tour)
	if capped {
		err := c.Ledger.Reserve(ctx, tour.ID, date, n, seats)
		switch {
		case err == nil:
		case errors.Is(err, store.ErrNoSeats):
			if !models.CapacityBypassAllowed(actor.Roles) {
				return models.Order{}, &CommitError{Kind: KindCapacityExceeded}
			}
			// Staff override: reserve unconditionally so the ledger still
			// reflects every committed seat, and leave an audit trail.
			if err := c.Ledger.Reserve(ctx, tour.ID, date, n, math.MaxInt); err != nil {
				return models.Order{}, &CommitError{Kind: KindOracleUnavailable, Err: err}
			}
			bypass = true
			log.Printf("[COMMIT] capacity bypass on tour %s %s by %s (+%d past capacity)", tour.ID, date, actor.UserID, n)
			c.sink().Notify(notify.Error, "capacity exceeded by staff override")
		default:
			return models.Order{}, &CommitError{Kind: KindOracleUnavailable, Err: err}
		}
	}

	release := func() {
		if capped {
			if err := c.Ledger.Release(ctx, tour.ID, date, n); err != nil {
				log.Printf("[COMMIT] ledger release failed for tour %s %s: %v", tour.ID, date, err)
			}
		}
	}

	// Step 3: the order, derived from the first passenger's contact fields.
	first := passengers[0]
	var total float64
	for _, p := range passengers {
		total += p.Price
	}
	now := time.Now().Unix()
	order := models.Order{
		ID:             utils.GenerateRandomDigitString(12),
		UserID:         actor.UserID,
		TourID:         tour.ID,
		Date:           date,
		PaymentMethod:  paymentMethod,
		ContactName:    first.Name,
		ContactEmail:   first.Email,
		ContactPhone:   first.Phone,
		TotalPrice:     total,
		PaidAmount:     0,
		Balance:        total,
		Status:         models.OrderPending,
		Visible:        true,
		CapacityBypass: bypass,
		CreatedBy:      actor.UserID,
		CreatedAt:      now,
	}

	if err := c.Orders.InsertOrder(ctx, order); err != nil {
		release()
		return models.Order{}, &CommitError{Kind: KindStoreUnavailable, Err: err}
	}

	// Step 4: the passengers, all pointing at the new order.
	committed := make([]models.CommittedPassenger, n)
	for i, p := range passengers {
		cp := models.CommittedPassenger{
			ID:            durableID(p.ID),
			OrderID:       order.ID,
			SerialNo:      p.SerialNo,
			Status:        models.PassengerPending,
			PassengerInfo: p.PassengerInfo,
		}
		committed[i] = cp
	}

	if err := c.Passengers.InsertPassengers(ctx, committed); err != nil {
		// Step 5: compensation. An ordered bulk insert can persist the rows
		// before the failing one, so the passengers are swept along with the
		// order. Best effort; the error kind is the same either way so the
		// caller has one retry path.
		if delErr := c.Passengers.DeleteByOrder(ctx, order.ID); delErr != nil {
			log.Printf("[COMMIT] compensation failed, orphaned passengers on order %s: %v", order.ID, delErr)
		}
		if delErr := c.Orders.DeleteOrder(ctx, order.ID); delErr != nil {
			log.Printf("[COMMIT] compensation failed, orphaned order %s: %v", order.ID, delErr)
		}
		release()
		c.sink().Notify(notify.Error, "booking could not be completed")
		return models.Order{}, &CommitError{Kind: KindPartialCommitFailure, Err: err}
	}

	// Step 6: success. The draft is spent; fold the result into the local
	// committed view before the change feed echoes it back.
	m.Clear()

	if c.Cache != nil {
		c.Cache.CacheOrder(order, committed)
	}
	c.emit(ctx, models.Change{
		Entity: models.EntityOrder, EntityID: order.ID,
		TourID: tour.ID, Date: date,
		Action: "created", Actor: actor.UserID,
	})
	c.sink().Notify(notify.Success, fmt.Sprintf("order %s confirmed for %d passengers", order.ID, n))
	return order, nil
}

// CancelOrder flips an order to cancelled and gives its seats back to the
// ledger. Idempotent: cancelling a cancelled order is a no-op.
func (c *Coordinator) CancelOrder(ctx context.Context, actor models.Actor, orderID string) (models.Order, error) {
	o, err := c.Orders.GetOrder(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}
	if o.Status == models.OrderCancelled {
		return o, nil
	}
	if o.UserID != actor.UserID && !models.StaffRole(actor.Roles) {
		return models.Order{}, errors.New("not allowed to cancel this order")
	}

	ps, err := c.Passengers.ListByOrder(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}

	updated, err := c.Orders.UpdateOrderStatus(ctx, orderID, models.OrderCancelled, actor.UserID)
	if err != nil {
		return models.Order{}, err
	}
	if err := c.Passengers.CancelByOrder(ctx, orderID); err != nil {
		log.Printf("[CANCEL] passenger status update failed for order %s: %v", orderID, err)
	}

	tour, err := c.Tours.GetTour(ctx, o.TourID)
	if err == nil && tour.Capacity != nil {
		if err := c.Ledger.Release(ctx, o.TourID, o.Date, len(ps)); err != nil {
			log.Printf("[CANCEL] ledger release failed for tour %s %s: %v", o.TourID, o.Date, err)
		}
	}

	c.emit(ctx, models.Change{
		Entity: models.EntityOrder, EntityID: orderID,
		TourID: o.TourID, Date: o.Date,
		Action: "cancelled", Actor: actor.UserID,
	})
	c.sink().Notify(notify.Success, "order "+orderID+" cancelled")
	return updated, nil
}

// durableID keeps a draft id that already looks durable, otherwise mints a
// fresh one.
func durableID(draftID string) string {
	if len(draftID) >= 14 {
		return draftID
	}
	return utils.GenerateRandomString(14)
}
