// Package realtime keeps the locally cached committed view in sync with the
// record store by consuming the change feed. It never touches a draft
// manifest: reconciliation is committed state only.
package realtime

import (
	"context"
	"log"
	"sync"

	"tengri/capacity"
	"tengri/models"
	"tengri/store"
)

// SeatOracle is re-run after every applied change for the wizard's active
// (tour, date) so the displayed seat count stays live.
type SeatOracle interface {
	RemainingSeats(ctx context.Context, tourID, date string) (capacity.Availability, error)
}

// Reconciler holds one actor's committed view. Staff sessions are unscoped
// and see every visible order.
type Reconciler struct {
	Tours      store.TourStore
	Orders     store.OrderStore
	Passengers store.PassengerStore
	Oracle     SeatOracle
	Hub        *Hub // optional seat push

	ActorID string
	Staff   bool

	mu           sync.RWMutex
	activeTourID string
	activeDate   string
	tours        map[string]models.Tour
	orders       map[string]models.Order
	passengers   map[string][]models.CommittedPassenger
}

// SetActive points the live seat refresh at the wizard's current pair.
func (r *Reconciler) SetActive(tourID, date string) {
	r.mu.Lock()
	r.activeTourID, r.activeDate = tourID, date
	r.mu.Unlock()
}

// Run consumes the feed until ctx is done or the feed closes.
func (r *Reconciler) Run(ctx context.Context, feed <-chan models.Change) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-feed:
			if !ok {
				return
			}
			if err := r.Apply(ctx, ev); err != nil {
				log.Printf("[RECONCILE] apply %s/%s: %v", ev.Entity, ev.EntityID, err)
			}
		}
	}
}

// Apply re-fetches the affected entity set in full and replaces the cached
// view, then refreshes the live seat count. The feed carries no deltas, so
// a full re-fetch is the only safe interpretation of an event.
func (r *Reconciler) Apply(ctx context.Context, ev models.Change) error {
	switch ev.Entity {
	case models.EntityTour:
		if err := r.refreshTours(ctx); err != nil {
			return err
		}
	case models.EntityOrder, models.EntityPassenger:
		if err := r.refreshOrders(ctx); err != nil {
			return err
		}
	default:
		return nil
	}

	r.refreshSeats(ctx)
	return nil
}

func (r *Reconciler) refreshTours(ctx context.Context) error {
	tours, err := r.Tours.ListTours(ctx, !r.Staff)
	if err != nil {
		return err
	}
	byID := make(map[string]models.Tour, len(tours))
	for _, t := range tours {
		byID[t.ID] = t
	}
	r.mu.Lock()
	r.tours = byID
	r.mu.Unlock()
	return nil
}

func (r *Reconciler) refreshOrders(ctx context.Context) error {
	filter := store.OrderFilter{}
	if !r.Staff {
		filter.UserID = r.ActorID
	} else {
		filter.VisibleOnly = true
	}
	orders, err := r.Orders.ListOrders(ctx, filter)
	if err != nil {
		return err
	}

	byID := make(map[string]models.Order, len(orders))
	byOrder := make(map[string][]models.CommittedPassenger, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
		ps, err := r.Passengers.ListByOrder(ctx, o.ID)
		if err != nil {
			return err
		}
		byOrder[o.ID] = ps
	}

	r.mu.Lock()
	r.orders = byID
	r.passengers = byOrder
	r.mu.Unlock()
	return nil
}

func (r *Reconciler) refreshSeats(ctx context.Context) {
	r.mu.RLock()
	tourID, date := r.activeTourID, r.activeDate
	r.mu.RUnlock()
	if tourID == "" || date == "" || r.Oracle == nil {
		return
	}

	avail, err := r.Oracle.RemainingSeats(ctx, tourID, date)
	if err != nil {
		log.Printf("[RECONCILE] seat refresh for %s %s: %v", tourID, date, err)
		return
	}
	if r.Hub != nil {
		r.Hub.BroadcastSeats(tourID, date, avail)
	}
}

// CacheOrder folds a freshly committed order into the view immediately, so
// the actor sees it without waiting for the change feed echo.
func (r *Reconciler) CacheOrder(o models.Order, ps []models.CommittedPassenger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.orders == nil {
		r.orders = make(map[string]models.Order)
	}
	if r.passengers == nil {
		r.passengers = make(map[string][]models.CommittedPassenger)
	}
	r.orders[o.ID] = o
	r.passengers[o.ID] = ps
}

// Order returns one cached order and its passengers.
func (r *Reconciler) Order(id string) (models.Order, []models.CommittedPassenger, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return models.Order{}, nil, false
	}
	ps := make([]models.CommittedPassenger, len(r.passengers[id]))
	copy(ps, r.passengers[id])
	return o, ps, true
}

// OrderList snapshots the cached committed orders.
func (r *Reconciler) OrderList() []models.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, o)
	}
	return out
}

// TourList snapshots the cached tours.
func (r *Reconciler) TourList() []models.Tour {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Tour, 0, len(r.tours))
	for _, t := range r.tours {
		out = append(out, t)
	}
	return out
}
