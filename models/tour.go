package models

// TourService is a named add-on a tour offers, priced per passenger.
type TourService struct {
	Name  string  `json:"name" bson:"name"`
	Price float64 `json:"price" bson:"price"`
}

// Tour is a bookable trip product. Capacity nil means unlimited seats.
type Tour struct {
	ID          string        `json:"id" bson:"id"`
	Title       string        `json:"title" bson:"title"`
	Description string        `json:"description,omitempty" bson:"description,omitempty"`
	BasePrice   float64       `json:"basePrice" bson:"basePrice"`
	Capacity    *int          `json:"capacity,omitempty" bson:"capacity,omitempty"`
	Dates       []string      `json:"dates" bson:"dates"` // "2006-01-02"
	Hotels      []string      `json:"hotels,omitempty" bson:"hotels,omitempty"`
	Services    []TourService `json:"services,omitempty" bson:"services,omitempty"`
	CreatedBy   string        `json:"createdBy" bson:"createdBy"`
	Visible     bool          `json:"visible" bson:"visible"`
	CreatedAt   int64         `json:"createdAt" bson:"createdAt"`
	UpdatedAt   int64         `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

// HasDate reports whether the tour departs on the given date.
func (t Tour) HasDate(date string) bool {
	for _, d := range t.Dates {
		if d == date {
			return true
		}
	}
	return false
}

// OffersHotel reports whether the hotel is one the tour actually offers.
func (t Tour) OffersHotel(hotel string) bool {
	for _, h := range t.Hotels {
		if h == hotel {
			return true
		}
	}
	return false
}

// ServicePrice returns the price of a named add-on, zero when unmatched.
func (t Tour) ServicePrice(name string) float64 {
	for _, s := range t.Services {
		if s.Name == name {
			return s.Price
		}
	}
	return 0
}
