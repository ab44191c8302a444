package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"tengri/models"
)

// Memory is an in-process record store. It backs the component tests and a
// Mongo-less development mode, and its Reserve is the reference semantics
// for the seat ledger: check and increment under one lock.
type Memory struct {
	mu         sync.Mutex
	tours      map[string]models.Tour
	orders     map[string]models.Order
	passengers map[string][]models.CommittedPassenger // keyed by order id
	booked     map[string]int                         // keyed by tourID|date
}

func NewMemory() *Memory {
	return &Memory{
		tours:      make(map[string]models.Tour),
		orders:     make(map[string]models.Order),
		passengers: make(map[string][]models.CommittedPassenger),
		booked:     make(map[string]int),
	}
}

func ledgerKey(tourID, date string) string { return tourID + "|" + date }

// ---------- Tours ----------

func (m *Memory) GetTour(_ context.Context, id string) (models.Tour, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tours[id]
	if !ok {
		return models.Tour{}, ErrNotFound
	}
	return t, nil
}

func (m *Memory) ListTours(_ context.Context, visibleOnly bool) ([]models.Tour, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var tours []models.Tour
	for _, t := range m.tours {
		if visibleOnly && !t.Visible {
			continue
		}
		tours = append(tours, t)
	}
	sort.Slice(tours, func(i, j int) bool { return tours[i].ID < tours[j].ID })
	return tours, nil
}

func (m *Memory) InsertTour(_ context.Context, t models.Tour) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tours[t.ID] = t
	return nil
}

func (m *Memory) UpdateTour(_ context.Context, t models.Tour) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tours[t.ID]; !ok {
		return ErrNotFound
	}
	m.tours[t.ID] = t
	return nil
}

func (m *Memory) DeleteTour(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tours, id)
	return nil
}

// ---------- Orders ----------

func (m *Memory) GetOrder(_ context.Context, id string) (models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return models.Order{}, ErrNotFound
	}
	return o, nil
}

func (m *Memory) ListOrders(_ context.Context, f OrderFilter) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var orders []models.Order
	for _, o := range m.orders {
		if f.TourID != "" && o.TourID != f.TourID {
			continue
		}
		if f.Date != "" && o.Date != f.Date {
			continue
		}
		if f.UserID != "" && o.UserID != f.UserID {
			continue
		}
		if f.ExcludeCancelled && o.Status == models.OrderCancelled {
			continue
		}
		if f.VisibleOnly && !o.Visible {
			continue
		}
		orders = append(orders, o)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
	return orders, nil
}

func (m *Memory) InsertOrder(_ context.Context, o models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = o
	return nil
}

func (m *Memory) UpdateOrderStatus(_ context.Context, id, status, editedBy string) (models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return models.Order{}, ErrNotFound
	}
	o.Status = status
	o.EditedBy = editedBy
	o.UpdatedAt = time.Now().Unix()
	m.orders[id] = o
	return o, nil
}

func (m *Memory) DeleteOrder(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.orders, id)
	return nil
}

// ---------- Passengers ----------

func (m *Memory) ListByOrder(_ context.Context, orderID string) ([]models.CommittedPassenger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ps := make([]models.CommittedPassenger, len(m.passengers[orderID]))
	copy(ps, m.passengers[orderID])
	return ps, nil
}

func (m *Memory) CountByOrders(_ context.Context, orderIDs []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, id := range orderIDs {
		for _, p := range m.passengers[id] {
			if p.Status != models.PassengerCancelled {
				n++
			}
		}
	}
	return n, nil
}

func (m *Memory) InsertPassengers(_ context.Context, ps []models.CommittedPassenger) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range ps {
		m.passengers[p.OrderID] = append(m.passengers[p.OrderID], p)
	}
	return nil
}

func (m *Memory) DeleteByOrder(_ context.Context, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.passengers, orderID)
	return nil
}

func (m *Memory) CancelByOrder(_ context.Context, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ps := m.passengers[orderID]
	for i := range ps {
		ps[i].Status = models.PassengerCancelled
	}
	return nil
}

// ---------- Seat ledger ----------

func (m *Memory) Reserve(_ context.Context, tourID, date string, n, capacity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := ledgerKey(tourID, date)
	if m.booked[key]+n > capacity {
		return ErrNoSeats
	}
	m.booked[key] += n
	return nil
}

func (m *Memory) Release(_ context.Context, tourID, date string, n int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := ledgerKey(tourID, date)
	m.booked[key] -= n
	if m.booked[key] < 0 {
		m.booked[key] = 0
	}
	return nil
}

// Booked reports the ledger count for a (tour, date) pair.
func (m *Memory) Booked(tourID, date string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.booked[ledgerKey(tourID, date)]
}
