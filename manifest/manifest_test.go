package manifest

import (
	"errors"
	"testing"
	"time"

	"tengri/models"
)

func intp(n int) *int { return &n }

func testTour() models.Tour {
	return models.Tour{
		ID:        "tour1",
		Title:     "Gobi Classic",
		BasePrice: 500,
		Capacity:  intp(16),
		Dates:     []string{"2026-09-10"},
		Hotels:    []string{"Ger Camp A", "Ger Camp B"},
		Services: []models.TourService{
			{Name: "camel ride", Price: 40},
			{Name: "airport pickup", Price: 25},
		},
	}
}

func TestCreateInheritsFromPrevious(t *testing.T) {
	m := New(testTour(), "2026-09-10")

	first, err := m.Create()
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.SerialNo != 1 {
		t.Fatalf("expected serial 1, got %d", first.SerialNo)
	}
	if first.Nationality != "" || first.RoomType != "" {
		t.Fatalf("first passenger must start blank, got %+v", first)
	}

	mustUpdate(t, m, first.ID, "nationality", "MN")
	mustUpdate(t, m, first.ID, "hotel", "Ger Camp A")
	mustUpdate(t, m, first.ID, "emergency_phone", "+976 9911 2233")
	mustUpdate(t, m, first.ID, "room_type", "double")

	second, err := m.Create()
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if second.Nationality != "MN" || second.Hotel != "Ger Camp A" || second.EmergencyPhone != "+976 9911 2233" {
		t.Fatalf("second passenger did not inherit: %+v", second)
	}
	// index 1 is odd, previous is double: pairs into the same double room
	if second.RoomType != "double" {
		t.Fatalf("expected inherited double room, got %q", second.RoomType)
	}

	mustUpdate(t, m, second.ID, "room_type", "double")
	third, err := m.Create()
	if err != nil {
		t.Fatalf("create third: %v", err)
	}
	// index 2 is even: starts a new room, no inheritance
	if third.RoomType != "" {
		t.Fatalf("expected blank room type at even index, got %q", third.RoomType)
	}
}

func TestRemoveRenumbersSerials(t *testing.T) {
	m := New(testTour(), "2026-09-10")
	ps, err := m.CreateMany(3)
	if err != nil {
		t.Fatalf("create many: %v", err)
	}

	if err := m.Remove(ps[1].ID); err != nil {
		t.Fatalf("remove: %v", err)
	}

	got := m.Passengers()
	if len(got) != 2 {
		t.Fatalf("expected 2 passengers, got %d", len(got))
	}
	for i, p := range got {
		if p.SerialNo != i+1 {
			t.Fatalf("serial %d at index %d", p.SerialNo, i)
		}
	}
	if got[0].ID != ps[0].ID || got[1].ID != ps[2].ID {
		t.Fatal("wrong passengers survived the removal")
	}
}

func TestRemoveLastPassengerRejected(t *testing.T) {
	m := New(testTour(), "2026-09-10")
	p, _ := m.Create()

	if err := m.Remove(p.ID); !errors.Is(err, ErrLastPassenger) {
		t.Fatalf("expected ErrLastPassenger, got %v", err)
	}
	if m.Len() != 1 {
		t.Fatalf("passenger vanished, len=%d", m.Len())
	}
}

func TestRemoveUnknownPassenger(t *testing.T) {
	m := New(testTour(), "2026-09-10")
	m.CreateMany(2)
	if err := m.Remove("nope"); !errors.Is(err, ErrNoSuchPassenger) {
		t.Fatalf("expected ErrNoSuchPassenger, got %v", err)
	}
}

func TestManifestCap(t *testing.T) {
	m := New(testTour(), "2026-09-10")
	if _, err := m.CreateMany(MaxPassengers); err != nil {
		t.Fatalf("filling to cap: %v", err)
	}
	if _, err := m.Create(); !errors.Is(err, ErrFull) {
		t.Fatalf("expected ErrFull, got %v", err)
	}
}

func TestUpdateRecomputesDerivedFields(t *testing.T) {
	m := New(testTour(), "2026-09-10")
	m.SetNow(func() time.Time { return time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC) })
	p, _ := m.Create()

	mustUpdate(t, m, p.ID, "first_name", "Bat")
	got := mustUpdate(t, m, p.ID, "last_name", "Erdene")
	if got.Name != "Bat Erdene" {
		t.Fatalf("display name %q", got.Name)
	}

	got = mustUpdate(t, m, p.ID, "date_of_birth", "1990-09-15")
	// birthday not yet reached in 2026
	if got.Age != 35 {
		t.Fatalf("expected age 35, got %d", got.Age)
	}

	got = mustUpdate(t, m, p.ID, "additional_services", "camel ride, airport pickup")
	if got.Price != 500+40+25 {
		t.Fatalf("expected price 565, got %v", got.Price)
	}

	// unmatched service names contribute zero
	got = mustUpdate(t, m, p.ID, "additional_services", "camel ride, helicopter")
	if got.Price != 540 {
		t.Fatalf("expected price 540, got %v", got.Price)
	}
}

func TestUpdateBadDateLeavesPassengerUnchanged(t *testing.T) {
	m := New(testTour(), "2026-09-10")
	p, _ := m.Create()

	_, err := m.Update(p.ID, "date_of_birth", "15/09/1990")
	var ve models.ValidationError
	if !errors.As(err, &ve) || ve.Field != "date_of_birth" {
		t.Fatalf("expected date_of_birth validation error, got %v", err)
	}
	if got := m.Passengers()[0]; got.DateOfBirth != "" || got.Age != 0 {
		t.Fatalf("passenger mutated by rejected update: %+v", got)
	}
}

func TestUpdateUnknownField(t *testing.T) {
	m := New(testTour(), "2026-09-10")
	p, _ := m.Create()

	_, err := m.Update(p.ID, "shoe_size", "42")
	var ve models.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAgeAt(t *testing.T) {
	tests := []struct {
		dob, now string
		want     int
	}{
		{"1990-06-15", "2026-06-14", 35}, // day before birthday
		{"1990-06-15", "2026-06-15", 36}, // on the birthday
		{"1990-06-15", "2026-06-16", 36},
		{"2026-01-01", "2026-06-01", 0},
		{"2000-02-29", "2026-02-28", 25}, // leap-day birth
		{"2000-02-29", "2026-03-01", 26},
	}
	for _, tc := range tests {
		dob, _ := time.Parse("2006-01-02", tc.dob)
		now, _ := time.Parse("2006-01-02", tc.now)
		if got := AgeAt(dob, now); got != tc.want {
			t.Errorf("AgeAt(%s, %s) = %d, want %d", tc.dob, tc.now, got, tc.want)
		}
	}
}

func mustUpdate(t *testing.T, m *Manifest, id, field, value string) models.DraftPassenger {
	t.Helper()
	p, err := m.Update(id, field, value)
	if err != nil {
		t.Fatalf("update %s: %v", field, err)
	}
	return p
}
