package store

import (
	"context"
	"errors"

	"tengri/models"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrNoSeats is returned by SeatLedger.Reserve when the conditional
	// write would push the booked count past capacity.
	ErrNoSeats = errors.New("not enough seats")
)

// OrderFilter narrows ListOrders. Zero values are ignored.
type OrderFilter struct {
	TourID           string
	Date             string
	UserID           string
	ExcludeCancelled bool
	VisibleOnly      bool
}

// TourStore is the record-store contract for tours.
type TourStore interface {
	GetTour(ctx context.Context, id string) (models.Tour, error)
	ListTours(ctx context.Context, visibleOnly bool) ([]models.Tour, error)
	InsertTour(ctx context.Context, t models.Tour) error
	UpdateTour(ctx context.Context, t models.Tour) error
	DeleteTour(ctx context.Context, id string) error
}

// OrderStore is the record-store contract for orders.
type OrderStore interface {
	GetOrder(ctx context.Context, id string) (models.Order, error)
	ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, error)
	InsertOrder(ctx context.Context, o models.Order) error
	UpdateOrderStatus(ctx context.Context, id, status, editedBy string) (models.Order, error)
	DeleteOrder(ctx context.Context, id string) error
}

// PassengerStore is the record-store contract for committed passengers.
type PassengerStore interface {
	ListByOrder(ctx context.Context, orderID string) ([]models.CommittedPassenger, error)
	CountByOrders(ctx context.Context, orderIDs []string) (int, error)
	InsertPassengers(ctx context.Context, ps []models.CommittedPassenger) error
	DeleteByOrder(ctx context.Context, orderID string) error
	CancelByOrder(ctx context.Context, orderID string) error
}

// SeatLedger is the commit-time admission gate for a (tour, date) pair.
// Reserve must be atomic: it succeeds only if booked+n <= capacity still
// holds at write time, so two racing commits cannot both take the last seat.
type SeatLedger interface {
	Reserve(ctx context.Context, tourID, date string, n, capacity int) error
	Release(ctx context.Context, tourID, date string, n int) error
}
