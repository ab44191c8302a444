package wizard

import (
	"context"
	"errors"
	"strings"
	"testing"

	"tengri/capacity"
	"tengri/models"
	"tengri/notify"
	"tengri/store"
	"tengri/validate"
)

func intp(n int) *int { return &n }

func gobiTour() models.Tour {
	return models.Tour{
		ID:        "gobi1",
		Title:     "Gobi Classic",
		BasePrice: 800,
		Capacity:  intp(16),
		Dates:     []string{"2026-09-10", "2026-09-24"},
		Hotels:    []string{"Ger Camp A", "Ger Camp B"},
		Services: []models.TourService{
			{Name: "camel ride", Price: 40},
		},
		Visible: true,
	}
}

func newTestWizard(t *testing.T, booked int) (*Wizard, *store.Memory, *notify.Collector) {
	t.Helper()
	ctx := context.Background()
	m := store.NewMemory()
	tour := gobiTour()
	if err := m.InsertTour(ctx, tour); err != nil {
		t.Fatalf("insert tour: %v", err)
	}
	if booked > 0 {
		if err := m.InsertOrder(ctx, models.Order{
			ID: "prior", TourID: tour.ID, Date: "2026-09-10",
			Status: models.OrderConfirmed, Visible: true,
		}); err != nil {
			t.Fatalf("insert order: %v", err)
		}
		ps := make([]models.CommittedPassenger, booked)
		for i := range ps {
			ps[i] = models.CommittedPassenger{
				ID: "prior-p", OrderID: "prior", SerialNo: i + 1,
				Status: models.PassengerPending,
			}
		}
		if err := m.InsertPassengers(ctx, ps); err != nil {
			t.Fatalf("insert passengers: %v", err)
		}
	}

	sink := &notify.Collector{}
	w := New(capacity.Oracle{Tours: m, Orders: m, Passengers: m}, sink, validate.All)
	return w, m, sink
}

func fillPassenger(t *testing.T, w *Wizard, id string) {
	t.Helper()
	fields := map[string]string{
		"first_name":      "Bat",
		"last_name":       "Erdene",
		"email":           "bat@example.mn",
		"phone":           "+976 9911 2233",
		"nationality":     "MN",
		"gender":          "male",
		"passport_number": "E1234567",
		"passport_expiry": "2027-09-10",
		"room_type":       "double",
		"hotel":           "Ger Camp A",
	}
	for field, value := range fields {
		if _, err := w.UpdatePassenger(id, field, value); err != nil {
			t.Fatalf("update %s: %v", field, err)
		}
	}
}

func TestWizardHappyPath(t *testing.T) {
	ctx := context.Background()
	w, _, _ := newTestWizard(t, 0)

	if w.Step() != StepSelectTour {
		t.Fatalf("fresh wizard at step %v", w.Step())
	}

	if err := w.SelectTour(ctx, gobiTour(), "2026-09-10"); err != nil {
		t.Fatalf("select tour: %v", err)
	}
	if w.Step() != StepManifestPassengers {
		t.Fatalf("expected manifest step, got %v", w.Step())
	}

	p, err := w.AddPassenger(ctx)
	if err != nil {
		t.Fatalf("add passenger: %v", err)
	}
	fillPassenger(t, w, p.ID)

	if err := w.SetPaymentMethod("cash"); err != nil {
		t.Fatalf("set payment: %v", err)
	}

	errs, err := w.Review(ctx)
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("unexpected validation errors: %v", errs)
	}
	if w.Step() != StepReviewAndCommit {
		t.Fatalf("expected commit step, got %v", w.Step())
	}
}

func TestSelectTourUnknownDate(t *testing.T) {
	w, _, _ := newTestWizard(t, 0)
	if err := w.SelectTour(context.Background(), gobiTour(), "2026-12-31"); !errors.Is(err, ErrNoSuchDate) {
		t.Fatalf("expected ErrNoSuchDate, got %v", err)
	}
}

func TestSelectTourFullBlocksEntry(t *testing.T) {
	w, _, sink := newTestWizard(t, 16)
	if err := w.SelectTour(context.Background(), gobiTour(), "2026-09-10"); !errors.Is(err, ErrTourFull) {
		t.Fatalf("expected ErrTourFull, got %v", err)
	}
	if w.Step() != StepSelectTour {
		t.Fatal("wizard advanced past a full tour")
	}
	if entries := sink.Entries(); len(entries) == 0 {
		t.Fatal("no notification for the full tour")
	}
}

func TestAddPassengersBeyondRemainingSeats(t *testing.T) {
	ctx := context.Background()
	w, _, sink := newTestWizard(t, 14) // 2 seats left

	if err := w.SelectTour(ctx, gobiTour(), "2026-09-10"); err != nil {
		t.Fatalf("select tour: %v", err)
	}
	if _, err := w.AddPassengers(ctx, 2); err != nil {
		t.Fatalf("add 2: %v", err)
	}
	if _, err := w.AddPassengers(ctx, 1); !errors.Is(err, ErrNotEnoughSeats) {
		t.Fatalf("expected ErrNotEnoughSeats, got %v", err)
	}

	found := false
	for _, e := range sink.Entries() {
		if strings.Contains(e.Message, "seats left") {
			found = true
		}
	}
	if !found {
		t.Fatal("no seats-left advisory surfaced")
	}
}

func TestDraftNeverConsumesSeats(t *testing.T) {
	ctx := context.Background()
	w, m, _ := newTestWizard(t, 0)

	if err := w.SelectTour(ctx, gobiTour(), "2026-09-10"); err != nil {
		t.Fatalf("select tour: %v", err)
	}
	if _, err := w.AddPassengers(ctx, 5); err != nil {
		t.Fatalf("add passengers: %v", err)
	}

	oracle := capacity.Oracle{Tours: m, Orders: m, Passengers: m}
	avail, err := oracle.RemainingSeats(ctx, "gobi1", "2026-09-10")
	if err != nil {
		t.Fatalf("remaining seats: %v", err)
	}
	if avail.Seats != 16 {
		t.Fatalf("draft passengers consumed seats: %d left", avail.Seats)
	}
}

func TestReviewReturnsErrorsWithoutAdvancing(t *testing.T) {
	ctx := context.Background()
	w, _, _ := newTestWizard(t, 0)

	if err := w.SelectTour(ctx, gobiTour(), "2026-09-10"); err != nil {
		t.Fatalf("select tour: %v", err)
	}
	if _, err := w.AddPassenger(ctx); err != nil {
		t.Fatalf("add passenger: %v", err)
	}

	errs, err := w.Review(ctx)
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if len(errs) == 0 {
		t.Fatal("blank passenger passed validation")
	}
	if w.Step() != StepManifestPassengers {
		t.Fatal("wizard advanced with validation errors")
	}
}

func TestStepGuards(t *testing.T) {
	ctx := context.Background()
	w, _, _ := newTestWizard(t, 0)

	if _, err := w.AddPassenger(ctx); !errors.Is(err, ErrWrongStep) {
		t.Fatalf("expected ErrWrongStep, got %v", err)
	}
	if _, err := w.Review(ctx); !errors.Is(err, ErrWrongStep) {
		t.Fatalf("expected ErrWrongStep, got %v", err)
	}
	if err := w.SetPaymentMethod("cash"); !errors.Is(err, ErrWrongStep) {
		t.Fatalf("expected ErrWrongStep, got %v", err)
	}
}

func TestResetDiscardsDraft(t *testing.T) {
	ctx := context.Background()
	w, _, _ := newTestWizard(t, 0)

	if err := w.SelectTour(ctx, gobiTour(), "2026-09-10"); err != nil {
		t.Fatalf("select tour: %v", err)
	}
	if _, err := w.AddPassengers(ctx, 3); err != nil {
		t.Fatalf("add passengers: %v", err)
	}
	w.SetPaymentMethod("cash")

	w.Reset()

	if w.Step() != StepSelectTour {
		t.Fatalf("reset left step %v", w.Step())
	}
	if w.Manifest() != nil {
		t.Fatal("reset kept the manifest")
	}
	if w.PaymentMethod() != "" {
		t.Fatal("reset kept the payment method")
	}
}
