package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"tengri/models"
)

func TestReserveConditional(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if err := m.Reserve(ctx, "t1", "2026-09-10", 3, 4); err != nil {
		t.Fatalf("reserve 3/4: %v", err)
	}
	if err := m.Reserve(ctx, "t1", "2026-09-10", 2, 4); !errors.Is(err, ErrNoSeats) {
		t.Fatalf("expected ErrNoSeats, got %v", err)
	}
	if err := m.Reserve(ctx, "t1", "2026-09-10", 1, 4); err != nil {
		t.Fatalf("reserve last seat: %v", err)
	}
	if got := m.Booked("t1", "2026-09-10"); got != 4 {
		t.Fatalf("booked %d", got)
	}

	// other dates have their own ledger row
	if err := m.Reserve(ctx, "t1", "2026-09-24", 4, 4); err != nil {
		t.Fatalf("other date: %v", err)
	}
}

func TestReserveConcurrent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := m.Reserve(ctx, "t1", "2026-09-10", 1, 5); err == nil {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if granted != 5 {
		t.Fatalf("granted %d of 5 seats", granted)
	}
	if got := m.Booked("t1", "2026-09-10"); got != 5 {
		t.Fatalf("booked %d", got)
	}
}

func TestReleaseFloorsAtZero(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	m.Reserve(ctx, "t1", "2026-09-10", 2, 10)
	m.Release(ctx, "t1", "2026-09-10", 5)
	if got := m.Booked("t1", "2026-09-10"); got != 0 {
		t.Fatalf("booked %d after over-release", got)
	}
}

func TestCountByOrdersSkipsCancelledPassengers(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	m.InsertPassengers(ctx, []models.CommittedPassenger{
		{ID: "p1", OrderID: "o1", SerialNo: 1, Status: models.PassengerPending},
		{ID: "p2", OrderID: "o1", SerialNo: 2, Status: models.PassengerCancelled},
		{ID: "p3", OrderID: "o2", SerialNo: 1, Status: models.PassengerActive},
	})

	n, err := m.CountByOrders(ctx, []string{"o1", "o2"})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Fatalf("counted %d", n)
	}
}

func TestOrderFilter(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	m.InsertOrder(ctx, models.Order{ID: "o1", UserID: "u1", TourID: "t1", Date: "d1", Status: models.OrderPending, Visible: true})
	m.InsertOrder(ctx, models.Order{ID: "o2", UserID: "u2", TourID: "t1", Date: "d1", Status: models.OrderCancelled, Visible: true})
	m.InsertOrder(ctx, models.Order{ID: "o3", UserID: "u1", TourID: "t2", Date: "d2", Status: models.OrderConfirmed, Visible: false})

	got, _ := m.ListOrders(ctx, OrderFilter{TourID: "t1", ExcludeCancelled: true})
	if len(got) != 1 || got[0].ID != "o1" {
		t.Fatalf("tour filter returned %+v", got)
	}

	got, _ = m.ListOrders(ctx, OrderFilter{UserID: "u1"})
	if len(got) != 2 {
		t.Fatalf("user filter returned %d orders", len(got))
	}

	got, _ = m.ListOrders(ctx, OrderFilter{VisibleOnly: true})
	if len(got) != 2 {
		t.Fatalf("visible filter returned %d orders", len(got))
	}
}
