package capacity

import (
	"context"
	"errors"
	"fmt"
	"math"

	"tengri/models"
	"tengri/store"
)

// ErrUnavailable marks a failed capacity check. Callers must not conflate it
// with a genuinely full tour: both block admission, but the UX differs.
var ErrUnavailable = errors.New("capacity check unavailable")

// Availability is a point-in-time snapshot, never cached across calls.
type Availability struct {
	Available bool `json:"available"`
	Seats     int  `json:"seats"`
	Unlimited bool `json:"unlimited,omitempty"`
}

// Oracle computes remaining bookable seats for a (tour, date) pair. The
// count is always derived from committed, non-cancelled orders; draft
// passengers never appear here.
type Oracle struct {
	Tours      store.TourStore
	Orders     store.OrderStore
	Passengers store.PassengerStore
}

// RemainingSeats compares the tour's configured capacity against the number
// of passengers attached to non-cancelled orders for the departure date.
func (o Oracle) RemainingSeats(ctx context.Context, tourID, date string) (Availability, error) {
	tour, err := o.Tours.GetTour(ctx, tourID)
	if err != nil {
		return Availability{}, fmt.Errorf("%w: tour %s: %v", ErrUnavailable, tourID, err)
	}

	if tour.Capacity == nil {
		return Availability{Available: true, Seats: math.MaxInt, Unlimited: true}, nil
	}

	orders, err := o.Orders.ListOrders(ctx, store.OrderFilter{
		TourID:           tourID,
		Date:             date,
		ExcludeCancelled: true,
	})
	if err != nil {
		return Availability{}, fmt.Errorf("%w: orders: %v", ErrUnavailable, err)
	}

	ids := make([]string, 0, len(orders))
	for _, ord := range orders {
		ids = append(ids, ord.ID)
	}
	booked, err := o.Passengers.CountByOrders(ctx, ids)
	if err != nil {
		return Availability{}, fmt.Errorf("%w: passengers: %v", ErrUnavailable, err)
	}

	seats := *tour.Capacity - booked
	if seats < 0 {
		seats = 0
	}
	return Availability{Available: seats > 0, Seats: seats}, nil
}

// Capacity returns the configured seat count of a tour, with ok=false for
// unlimited tours.
func Capacity(t models.Tour) (int, bool) {
	if t.Capacity == nil {
		return 0, false
	}
	return *t.Capacity, true
}
