// Package manifest holds the per-actor working set of passengers for one
// in-progress booking. Nothing here is persisted; the manifest is discarded
// on commit or explicit reset.
package manifest

import (
	"errors"
	"strings"
	"sync"
	"time"

	"tengri/models"
	"tengri/utils"
)

// MaxPassengers caps the manifest independently of seat capacity.
const MaxPassengers = 20

const dateLayout = "2006-01-02"

var (
	ErrFull = errors.New("manifest is full")
	// ErrLastPassenger: a started manifest must keep at least one entry.
	// Callers that want an empty manifest reset the wizard instead.
	ErrLastPassenger   = errors.New("cannot remove the last passenger")
	ErrNoSuchPassenger = errors.New("no such passenger")
)

// Manifest is owned by a single authoring session. It stays editable while
// remote calls (capacity checks, commit, uploads) are in flight, so all
// mutations go through the mutex.
type Manifest struct {
	mu         sync.Mutex
	id         string
	tour       models.Tour
	date       string
	passengers []models.DraftPassenger
	now        func() time.Time
}

func New(tour models.Tour, date string) *Manifest {
	return &Manifest{
		id:   utils.GenerateRandomString(16),
		tour: tour,
		date: date,
		now:  time.Now,
	}
}

// ID identifies this manifest instance; the commit coordinator keys its
// idempotency on it.
func (m *Manifest) ID() string { return m.id }

func (m *Manifest) Tour() models.Tour { return m.tour }

func (m *Manifest) Date() string { return m.date }

func (m *Manifest) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.passengers)
}

// Passengers returns a snapshot of the manifest in serial order.
func (m *Manifest) Passengers() []models.DraftPassenger {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.DraftPassenger, len(m.passengers))
	copy(out, m.passengers)
	return out
}

// Create appends a new draft passenger. Nationality, hotel choice and
// emergency phone are inherited from the immediately preceding entry to cut
// repetitive typing on group bookings; room type is inherited only when the
// previous entry is a double room and the new 0-based index is odd, which
// pairs travelers into doubles two at a time.
func (m *Manifest) Create() (models.DraftPassenger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createLocked()
}

// CreateMany appends n passengers, applying the same inheritance chain
// entry by entry.
func (m *Manifest) CreateMany(n int) ([]models.DraftPassenger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.DraftPassenger, 0, n)
	for i := 0; i < n; i++ {
		p, err := m.createLocked()
		if err != nil {
			return out, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *Manifest) createLocked() (models.DraftPassenger, error) {
	if len(m.passengers) >= MaxPassengers {
		return models.DraftPassenger{}, ErrFull
	}

	p := models.DraftPassenger{
		ID:       utils.GenerateRandomString(14),
		SerialNo: len(m.passengers) + 1,
	}
	p.Price = m.tour.BasePrice

	if n := len(m.passengers); n > 0 {
		prev := m.passengers[n-1]
		p.Nationality = prev.Nationality
		p.Hotel = prev.Hotel
		p.EmergencyPhone = prev.EmergencyPhone
		if prev.RoomType == "double" && n%2 == 1 {
			p.RoomType = "double"
		}
	}

	m.passengers = append(m.passengers, p)
	return p, nil
}

// Update sets one field by its wire name and recomputes the derived fields
// that depend on it. A bad value comes back as a field-tagged
// ValidationError, leaving the passenger unchanged.
func (m *Manifest) Update(id, field, value string) (models.DraftPassenger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := -1
	for i, p := range m.passengers {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.DraftPassenger{}, ErrNoSuchPassenger
	}

	p := m.passengers[idx]
	value = strings.TrimSpace(value)

	switch field {
	case "first_name":
		p.FirstName = value
		p.Name = displayName(p.FirstName, p.LastName)
	case "last_name":
		p.LastName = value
		p.Name = displayName(p.FirstName, p.LastName)
	case "date_of_birth":
		dob, err := time.Parse(dateLayout, value)
		if err != nil {
			return p, models.ValidationError{Field: "date_of_birth", Message: "expected YYYY-MM-DD"}
		}
		p.DateOfBirth = value
		p.Age = AgeAt(dob, m.now())
	case "gender":
		p.Gender = value
	case "passport_number":
		p.PassportNumber = value
	case "passport_expiry":
		if _, err := time.Parse(dateLayout, value); err != nil {
			return p, models.ValidationError{Field: "passport_expiry", Message: "expected YYYY-MM-DD"}
		}
		p.PassportExpiry = value
	case "nationality":
		p.Nationality = value
	case "room_type":
		p.RoomType = value
	case "hotel":
		p.Hotel = value
	case "additional_services":
		p.Services = utils.SplitList(value)
		p.Price = m.tour.BasePrice
		for _, s := range p.Services {
			p.Price += m.tour.ServicePrice(s) // unmatched names contribute zero
		}
	case "email":
		p.Email = value
	case "phone":
		p.Phone = value
	case "emergency_phone":
		p.EmergencyPhone = value
	default:
		return p, models.ValidationError{Field: field, Message: "unknown field"}
	}

	m.passengers[idx] = p
	return p, nil
}

// SetDocument stores an uploaded document reference. A failed upload never
// reaches here, so the rest of the record is untouched either way.
func (m *Manifest) SetDocument(id, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.passengers {
		if p.ID == id {
			m.passengers[i].DocumentPath = path
			return nil
		}
	}
	return ErrNoSuchPassenger
}

// Remove drops a passenger and renumbers the remaining entries so serials
// stay contiguous from 1. Removing the last remaining passenger is rejected.
func (m *Manifest) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.passengers) == 1 && m.passengers[0].ID == id {
		return ErrLastPassenger
	}

	idx := -1
	for i, p := range m.passengers {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNoSuchPassenger
	}

	m.passengers = append(m.passengers[:idx], m.passengers[idx+1:]...)
	for i := range m.passengers {
		m.passengers[i].SerialNo = i + 1
	}
	return nil
}

// Clear discards every entry. Used by wizard reset and after commit.
func (m *Manifest) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.passengers = nil
}

// SetNow overrides the clock used for age computation in tests.
func (m *Manifest) SetNow(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// AgeAt is the calendar-accurate age: one year is subtracted when the
// birthday has not yet occurred in the current year.
func AgeAt(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() ||
		(now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	if age < 0 {
		age = 0
	}
	return age
}

func displayName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}
