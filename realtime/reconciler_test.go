package realtime

import (
	"context"
	"testing"

	"tengri/capacity"
	"tengri/models"
	"tengri/store"
)

func intp(n int) *int { return &n }

func seedCommitted(t *testing.T, m *store.Memory, orderID, userID string, passengers int) {
	t.Helper()
	ctx := context.Background()
	if err := m.InsertOrder(ctx, models.Order{
		ID: orderID, UserID: userID, TourID: "gobi1", Date: "2026-09-10",
		Status: models.OrderPending, Visible: true,
	}); err != nil {
		t.Fatalf("insert order: %v", err)
	}
	ps := make([]models.CommittedPassenger, passengers)
	for i := range ps {
		ps[i] = models.CommittedPassenger{
			ID: orderID + "-p", OrderID: orderID, SerialNo: i + 1,
			Status: models.PassengerPending,
		}
	}
	if err := m.InsertPassengers(ctx, ps); err != nil {
		t.Fatalf("insert passengers: %v", err)
	}
}

func newTestReconciler(m *store.Memory, actorID string, staff bool) *Reconciler {
	return &Reconciler{
		Tours:      m,
		Orders:     m,
		Passengers: m,
		Oracle:     capacity.Oracle{Tours: m, Orders: m, Passengers: m},
		ActorID:    actorID,
		Staff:      staff,
	}
}

func TestApplyReplacesCommittedView(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	m.InsertTour(ctx, models.Tour{ID: "gobi1", Capacity: intp(16), Visible: true})
	seedCommitted(t, m, "o1", "u1", 2)

	r := newTestReconciler(m, "u1", false)
	ev := models.Change{Entity: models.EntityOrder, EntityID: "o1", TourID: "gobi1", Date: "2026-09-10", Action: "created"}
	if err := r.Apply(ctx, ev); err != nil {
		t.Fatalf("apply: %v", err)
	}

	o, ps, ok := r.Order("o1")
	if !ok {
		t.Fatal("order missing from view")
	}
	if o.UserID != "u1" || len(ps) != 2 {
		t.Fatalf("bad cached order %+v with %d passengers", o, len(ps))
	}

	// the next event replaces, not merges: a cancelled order drops out of a
	// traveler's exclude-nothing view only via its stored status
	m.UpdateOrderStatus(ctx, "o1", models.OrderCancelled, "staff1")
	if err := r.Apply(ctx, ev); err != nil {
		t.Fatalf("re-apply: %v", err)
	}
	o, _, _ = r.Order("o1")
	if o.Status != models.OrderCancelled {
		t.Fatalf("stale status %q after refresh", o.Status)
	}
}

func TestApplyScopesToActor(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	m.InsertTour(ctx, models.Tour{ID: "gobi1", Capacity: intp(16), Visible: true})
	seedCommitted(t, m, "o1", "u1", 1)
	seedCommitted(t, m, "o2", "u2", 1)

	r := newTestReconciler(m, "u1", false)
	ev := models.Change{Entity: models.EntityOrder, EntityID: "o2", Action: "created"}
	if err := r.Apply(ctx, ev); err != nil {
		t.Fatalf("apply: %v", err)
	}

	if _, _, ok := r.Order("o2"); ok {
		t.Fatal("traveler view contains another user's order")
	}
	if _, _, ok := r.Order("o1"); !ok {
		t.Fatal("traveler's own order missing")
	}

	staff := newTestReconciler(m, "staff1", true)
	if err := staff.Apply(ctx, ev); err != nil {
		t.Fatalf("staff apply: %v", err)
	}
	if got := len(staff.OrderList()); got != 2 {
		t.Fatalf("staff view has %d orders", got)
	}
}

func TestApplyTourChangeRefreshesTours(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	m.InsertTour(ctx, models.Tour{ID: "gobi1", Visible: true})
	m.InsertTour(ctx, models.Tour{ID: "hidden1", Visible: false})

	r := newTestReconciler(m, "u1", false)
	ev := models.Change{Entity: models.EntityTour, EntityID: "gobi1", Action: "updated"}
	if err := r.Apply(ctx, ev); err != nil {
		t.Fatalf("apply: %v", err)
	}

	tours := r.TourList()
	if len(tours) != 1 || tours[0].ID != "gobi1" {
		t.Fatalf("traveler tour view %+v", tours)
	}
}

func TestCacheOrderIsImmediate(t *testing.T) {
	m := store.NewMemory()
	r := newTestReconciler(m, "u1", false)

	order := models.Order{ID: "o9", UserID: "u1", Status: models.OrderPending}
	ps := []models.CommittedPassenger{{ID: "p1", OrderID: "o9", SerialNo: 1}}
	r.CacheOrder(order, ps)

	got, gotPs, ok := r.Order("o9")
	if !ok || got.ID != "o9" || len(gotPs) != 1 {
		t.Fatalf("cached order not visible: %v %v %v", got, gotPs, ok)
	}
}

func TestApplyIgnoresUnknownEntity(t *testing.T) {
	m := store.NewMemory()
	r := newTestReconciler(m, "u1", false)
	if err := r.Apply(context.Background(), models.Change{Entity: "comment"}); err != nil {
		t.Fatalf("unknown entity errored: %v", err)
	}
}
