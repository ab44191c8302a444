// Package validate contains the pure validation rules for booking drafts.
// Nothing here mutates state or consults capacity: admission is a separate
// concern from correctness of the entered data.
package validate

import (
	"fmt"
	"regexp"
	"time"

	"tengri/models"
)

const dateLayout = "2006-01-02"

// Passport must outlive the departure date by at least this margin.
const passportExpiryMonths = 6

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Passenger checks a single draft passenger against the selected tour and
// departure date and returns the field-tagged errors in field order.
func Passenger(p models.DraftPassenger, tour models.Tour, departure string) []models.ValidationError {
	var errs []models.ValidationError
	add := func(field, msg string) {
		errs = append(errs, models.ValidationError{Field: field, Message: msg})
	}

	if p.FirstName == "" {
		add("first_name", "first name is required")
	}
	if p.LastName == "" {
		add("last_name", "last name is required")
	}
	if p.Email == "" {
		add("email", "email is required")
	} else if !emailRe.MatchString(p.Email) {
		add("email", "email does not look valid")
	}
	if p.Phone == "" {
		add("phone", "phone is required")
	}
	if p.Nationality == "" {
		add("nationality", "nationality is required")
	}
	if p.Gender == "" {
		add("gender", "gender is required")
	}
	if p.PassportNumber == "" {
		add("passport_number", "passport number is required")
	}
	if p.PassportExpiry == "" {
		add("passport_expiry", "passport expiry is required")
	} else if msg := passportExpiryMessage(p.PassportExpiry, departure); msg != "" {
		add("passport_expiry", msg)
	}
	if p.RoomType == "" {
		add("room_type", "room type is required")
	}
	if p.Hotel == "" {
		add("hotel", "hotel is required")
	} else if !tour.OffersHotel(p.Hotel) {
		add("hotel", "hotel is not offered by this tour")
	}

	return errs
}

// Manifest checks the booking as a whole: tour and date chosen, at least
// one passenger, payment method chosen.
func Manifest(tourID, date string, passengerCount int, paymentMethod string) []models.ValidationError {
	var errs []models.ValidationError
	if tourID == "" {
		errs = append(errs, models.ValidationError{Field: "tour", Message: "no tour selected"})
	}
	if date == "" {
		errs = append(errs, models.ValidationError{Field: "date", Message: "no departure date selected"})
	}
	if passengerCount < 1 {
		errs = append(errs, models.ValidationError{Field: "passengers", Message: "at least one passenger is required"})
	}
	if paymentMethod == "" {
		errs = append(errs, models.ValidationError{Field: "payment_method", Message: "no payment method selected"})
	}
	return errs
}

// All runs the manifest-level checks and every per-passenger check,
// prefixing passenger fields with their serial so the caller can attach
// errors to the right form row.
func All(tour models.Tour, date string, passengers []models.DraftPassenger, paymentMethod string) []models.ValidationError {
	errs := Manifest(tour.ID, date, len(passengers), paymentMethod)
	for _, p := range passengers {
		for _, e := range Passenger(p, tour, date) {
			errs = append(errs, models.ValidationError{
				Field:   fmt.Sprintf("passenger_%d.%s", p.SerialNo, e.Field),
				Message: e.Message,
			})
		}
	}
	return errs
}

func passportExpiryMessage(expiry, departure string) string {
	exp, err := time.Parse(dateLayout, expiry)
	if err != nil {
		return "expected YYYY-MM-DD"
	}
	dep, err := time.Parse(dateLayout, departure)
	if err != nil {
		// No departure to compare against; the manifest-level check will
		// already flag the missing date.
		return ""
	}
	if exp.Before(dep.AddDate(0, passportExpiryMonths, 0)) {
		return fmt.Sprintf("passport must be valid at least %d months past departure", passportExpiryMonths)
	}
	return ""
}
