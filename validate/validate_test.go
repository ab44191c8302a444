package validate

import (
	"strings"
	"testing"

	"tengri/models"
)

func intp(n int) *int { return &n }

func testTour() models.Tour {
	return models.Tour{
		ID:       "tour1",
		Title:    "Gobi Classic",
		Capacity: intp(16),
		Dates:    []string{"2026-06-01"},
		Hotels:   []string{"Ger Camp A"},
	}
}

func validPassenger() models.DraftPassenger {
	p := models.DraftPassenger{ID: "p1", SerialNo: 1}
	p.FirstName = "Bat"
	p.LastName = "Erdene"
	p.Email = "bat@example.mn"
	p.Phone = "+976 9911 2233"
	p.Nationality = "MN"
	p.Gender = "male"
	p.PassportNumber = "E1234567"
	p.PassportExpiry = "2027-06-01"
	p.RoomType = "double"
	p.Hotel = "Ger Camp A"
	return p
}

func hasField(errs []models.ValidationError, field string) bool {
	for _, e := range errs {
		if e.Field == field {
			return true
		}
	}
	return false
}

func TestPassengerValid(t *testing.T) {
	if errs := Passenger(validPassenger(), testTour(), "2026-06-01"); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestPassengerRequiredFields(t *testing.T) {
	errs := Passenger(models.DraftPassenger{}, testTour(), "2026-06-01")

	for _, field := range []string{
		"first_name", "last_name", "email", "phone", "nationality",
		"gender", "passport_number", "passport_expiry", "room_type", "hotel",
	} {
		if !hasField(errs, field) {
			t.Errorf("missing error for %s", field)
		}
	}
}

func TestPassengerEmailShape(t *testing.T) {
	p := validPassenger()
	p.Email = "not-an-email"
	if errs := Passenger(p, testTour(), "2026-06-01"); !hasField(errs, "email") {
		t.Fatalf("bad email accepted: %v", errs)
	}
}

func TestPassportExpiryWindow(t *testing.T) {
	tests := []struct {
		expiry string
		ok     bool
	}{
		{"2026-10-01", false}, // 4 months past departure
		{"2027-02-01", true},  // 8 months past departure
		{"2026-12-01", true},  // exactly 6 months
		{"2026-11-30", false}, // one day short
		{"garbage", false},
	}
	for _, tc := range tests {
		p := validPassenger()
		p.PassportExpiry = tc.expiry
		errs := Passenger(p, testTour(), "2026-06-01")
		if tc.ok && hasField(errs, "passport_expiry") {
			t.Errorf("expiry %s rejected: %v", tc.expiry, errs)
		}
		if !tc.ok && !hasField(errs, "passport_expiry") {
			t.Errorf("expiry %s accepted", tc.expiry)
		}
	}
}

func TestPassengerHotelMustBeOffered(t *testing.T) {
	p := validPassenger()
	p.Hotel = "Hilton Ulaanbaatar"
	if errs := Passenger(p, testTour(), "2026-06-01"); !hasField(errs, "hotel") {
		t.Fatal("unknown hotel accepted")
	}
}

func TestManifestChecks(t *testing.T) {
	errs := Manifest("", "", 0, "")
	for _, field := range []string{"tour", "date", "passengers", "payment_method"} {
		if !hasField(errs, field) {
			t.Errorf("missing error for %s", field)
		}
	}

	if errs := Manifest("tour1", "2026-06-01", 2, "cash"); len(errs) != 0 {
		t.Fatalf("valid manifest rejected: %v", errs)
	}
}

func TestAllPrefixesPassengerFields(t *testing.T) {
	bad := models.DraftPassenger{ID: "p2", SerialNo: 2}
	errs := All(testTour(), "2026-06-01", []models.DraftPassenger{validPassenger(), bad}, "cash")

	if len(errs) == 0 {
		t.Fatal("expected errors for the blank passenger")
	}
	for _, e := range errs {
		if !strings.HasPrefix(e.Field, "passenger_2.") {
			t.Fatalf("unexpected error field %q", e.Field)
		}
	}
}
